package wtinylfu

import (
	"math/rand"

	"github.com/pkg/errors"
)

// AdaptationKind tells the policy what to do with the window boundary.
type AdaptationKind int

const (
	// Hold keeps the current segmentation.
	Hold AdaptationKind = iota
	// IncreaseWindow grows the window at the expense of protected.
	IncreaseWindow
	// DecreaseWindow shrinks the window in favor of protected.
	DecreaseWindow
)

// An Adaptation is a directive from a Climber. Amount is a non-negative,
// possibly fractional number of cache slots; the policy carries sub-unit
// amounts across calls and only moves whole nodes.
type Adaptation struct {
	Kind   AdaptationKind
	Amount float64
}

var hold = Adaptation{Kind: Hold}

// A Climber observes the access stream and periodically directs the policy
// to retune the window size. Implementations must not mutate cache state,
// must return non-negative amounts, and must treat Hold as a no-op.
//
// The policy reports every access: OnHit with the segment the key occupied
// before the hit was applied, OnMiss otherwise. isFull reflects the cache
// occupancy before the access mutated anything.
type Climber interface {
	OnHit(key uint64, segment Segment, isFull bool)
	OnMiss(key uint64, isFull bool)
	Adapt(windowSize, probationSize, protectedSize float64, isFull bool) Adaptation
}

// NewClimber resolves a climber strategy by name. The seed is only used by
// randomized strategies, so runs stay reproducible.
func NewClimber(strategy string, capacity int, seed int64) (Climber, error) {
	switch strategy {
	case "static":
		return StaticClimber{}, nil
	case "simple":
		return NewSimpleClimber(capacity), nil
	case "stochastic":
		return NewStochasticClimber(capacity, seed), nil
	}
	return nil, errors.Errorf("wtinylfu: unknown climber strategy %q", strategy)
}

// StaticClimber never adapts. It pins the initial segmentation, which makes
// it the baseline for comparing adaptive strategies against.
type StaticClimber struct{}

func (StaticClimber) OnHit(key uint64, segment Segment, isFull bool) {}

func (StaticClimber) OnMiss(key uint64, isFull bool) {}

func (StaticClimber) Adapt(windowSize, probationSize, protectedSize float64, isFull bool) Adaptation {
	return hold
}

const (
	// climberSamplePeriod is the number of full-cache accesses observed
	// between adaptations, as a multiple of the capacity.
	climberSamplePeriod = 10

	// pivot bounds for the simple hill climber, as fractions of capacity.
	initialPivot = 0.0625
	minimumPivot = 0.001

	// pivotDecay shrinks the step after every adaptation so the climber
	// settles once it is near an optimum.
	pivotDecay = 0.98

	// rateTolerance ignores hit-rate noise below this absolute delta when
	// deciding whether the last step helped.
	rateTolerance = 0.001
)

// SimpleClimber is a pure hill climber. It samples the hit rate over a fixed
// window of full-cache accesses, keeps climbing in the same direction while
// the rate improves, and turns around when it regresses. The step size
// decays geometrically so the boundary converges instead of oscillating.
type SimpleClimber struct {
	sampleSize int
	samples    int
	hits       int

	previousRate float64
	hasPrevious  bool
	increasing   bool
	pivot        float64
	capacity     int
}

// NewSimpleClimber creates a hill climber for a cache with the given
// capacity.
func NewSimpleClimber(capacity int) *SimpleClimber {
	return &SimpleClimber{
		sampleSize: climberSamplePeriod * capacity,
		increasing: true,
		pivot:      initialPivot,
		capacity:   capacity,
	}
}

func (c *SimpleClimber) OnHit(key uint64, segment Segment, isFull bool) {
	if isFull {
		c.samples++
		c.hits++
	}
}

func (c *SimpleClimber) OnMiss(key uint64, isFull bool) {
	if isFull {
		c.samples++
	}
}

func (c *SimpleClimber) Adapt(windowSize, probationSize, protectedSize float64, isFull bool) Adaptation {
	if !isFull || c.samples < c.sampleSize {
		return hold
	}

	rate := float64(c.hits) / float64(c.samples)
	if c.hasPrevious && rate < c.previousRate-rateTolerance {
		// The last move hurt; climb the other way.
		c.increasing = !c.increasing
	}
	c.previousRate = rate
	c.hasPrevious = true
	c.samples = 0
	c.hits = 0

	amount := c.pivot * float64(c.capacity)
	if c.pivot > minimumPivot {
		c.pivot *= pivotDecay
		if c.pivot < minimumPivot {
			c.pivot = minimumPivot
		}
	}

	if c.increasing {
		return Adaptation{Kind: IncreaseWindow, Amount: amount}
	}
	return Adaptation{Kind: DecreaseWindow, Amount: amount}
}

// stochasticStepProbability is the chance that a stochastic climber probes
// at the end of a sample window rather than holding.
const stochasticStepProbability = 0.5

// StochasticClimber perturbs the window boundary with seeded random
// single-slot steps. It is a sanity strategy: a workload-sensitive climber
// should beat it, and a broken one loses to it.
type StochasticClimber struct {
	sampleSize int
	samples    int
	rng        *rand.Rand
}

// NewStochasticClimber creates a random-walk climber for a cache with the
// given capacity, driven by the given seed.
func NewStochasticClimber(capacity int, seed int64) *StochasticClimber {
	return &StochasticClimber{
		sampleSize: climberSamplePeriod * capacity,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (c *StochasticClimber) OnHit(key uint64, segment Segment, isFull bool) {
	if isFull {
		c.samples++
	}
}

func (c *StochasticClimber) OnMiss(key uint64, isFull bool) {
	if isFull {
		c.samples++
	}
}

func (c *StochasticClimber) Adapt(windowSize, probationSize, protectedSize float64, isFull bool) Adaptation {
	if !isFull || c.samples < c.sampleSize {
		return hold
	}
	c.samples = 0

	if c.rng.Float64() >= stochasticStepProbability {
		return hold
	}
	if c.rng.Intn(2) == 0 {
		return Adaptation{Kind: IncreaseWindow, Amount: 1}
	}
	return Adaptation{Kind: DecreaseWindow, Amount: 1}
}
