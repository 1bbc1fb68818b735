package wtinylfu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClimber(t *testing.T) {
	for _, strategy := range []string{"static", "simple", "stochastic"} {
		c, err := NewClimber(strategy, 100, 1)
		require.NoError(t, err, strategy)
		require.NotNil(t, c, strategy)
	}

	_, err := NewClimber("gradient-descent", 100, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gradient-descent")
}

func TestStaticClimberHolds(t *testing.T) {
	c := StaticClimber{}
	for i := 0; i < 100; i++ {
		c.OnMiss(uint64(i), true)
		c.OnHit(uint64(i), SegmentWindow, true)
		assert.Equal(t, hold, c.Adapt(1, 1, 1, true))
	}
}

func feed(c Climber, hits, misses int, isFull bool) {
	for i := 0; i < hits; i++ {
		c.OnHit(uint64(i), SegmentProbation, isFull)
	}
	for i := 0; i < misses; i++ {
		c.OnMiss(uint64(i), isFull)
	}
}

func TestSimpleClimber(t *testing.T) {
	t.Run("HoldsUntilFull", func(t *testing.T) {
		c := NewSimpleClimber(10)
		feed(c, 100, 100, false)
		assert.Equal(t, hold, c.Adapt(1, 8, 1, false))
		assert.Equal(t, hold, c.Adapt(1, 8, 1, true), "accesses before full must not count")
	})

	t.Run("HoldsUntilSampled", func(t *testing.T) {
		c := NewSimpleClimber(10)
		feed(c, 30, 69, true)
		assert.Equal(t, hold, c.Adapt(1, 8, 1, true))
	})

	t.Run("ClimbsThenFlipsOnRegress", func(t *testing.T) {
		c := NewSimpleClimber(10)

		// First sample: no history, keep the initial direction.
		feed(c, 50, 50, true)
		a := c.Adapt(1, 8, 1, true)
		require.Equal(t, IncreaseWindow, a.Kind)
		assert.InDelta(t, 0.625, a.Amount, 1e-9)

		// Hit rate regressed; turn around.
		feed(c, 30, 70, true)
		a = c.Adapt(1, 8, 1, true)
		require.Equal(t, DecreaseWindow, a.Kind)
		assert.Less(t, a.Amount, 0.625, "pivot must decay")

		// Hit rate recovered; keep going the same way.
		feed(c, 60, 40, true)
		a = c.Adapt(1, 8, 1, true)
		assert.Equal(t, DecreaseWindow, a.Kind)
	})

	t.Run("ToleratesNoise", func(t *testing.T) {
		// A sample of 10000 accesses resolves hit-rate deltas finer than
		// the tolerance.
		c := NewSimpleClimber(1000)
		feed(c, 5000, 5000, true)
		require.Equal(t, IncreaseWindow, c.Adapt(1, 8, 1, true).Kind)

		// A regression below the tolerance (0.5 -> 0.4995) is not a regression.
		feed(c, 4995, 5005, true)
		assert.Equal(t, IncreaseWindow, c.Adapt(1, 8, 1, true).Kind)
	})
}

func TestStochasticClimber(t *testing.T) {
	t.Run("Reproducible", func(t *testing.T) {
		run := func() []Adaptation {
			c := NewStochasticClimber(10, 42)
			var out []Adaptation
			for round := 0; round < 20; round++ {
				feed(c, 50, 50, true)
				out = append(out, c.Adapt(1, 8, 1, true))
			}
			return out
		}
		assert.Equal(t, run(), run())
	})

	t.Run("SingleSlotSteps", func(t *testing.T) {
		c := NewStochasticClimber(10, 7)
		for round := 0; round < 50; round++ {
			feed(c, 50, 50, true)
			a := c.Adapt(1, 8, 1, true)
			if a.Kind != Hold {
				assert.Equal(t, 1.0, a.Amount)
			}
		}
	})

	t.Run("HoldsUntilSampled", func(t *testing.T) {
		c := NewStochasticClimber(10, 7)
		feed(c, 10, 10, true)
		assert.Equal(t, hold, c.Adapt(1, 8, 1, true))
	})
}
