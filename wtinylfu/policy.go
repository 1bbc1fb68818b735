// Package wtinylfu implements the adaptive W-TinyLFU cache replacement
// policy: a small admission window in front of a segmented main region,
// with a frequency-based admission filter at the boundary and a climber
// that retunes the window size against the live workload.
// See details at http://arxiv.org/abs/1512.00727
package wtinylfu

import (
	"fmt"
	"math"
)

// Segment identifies one of the three LRU lists a resident key can occupy.
type Segment int

const (
	SegmentWindow Segment = iota
	SegmentProbation
	SegmentProtected
)

func (s Segment) String() string {
	switch s {
	case SegmentWindow:
		return "window"
	case SegmentProbation:
		return "probation"
	case SegmentProtected:
		return "protected"
	}
	return fmt.Sprintf("segment(%d)", int(s))
}

// Policy implements an adaptive windowed TinyLFU eviction policy over a
// fixed keyspace. It is not safe for concurrent access: the policy is the
// single-threaded core of an offline simulator and every Record call runs
// to completion before the next.
type Policy struct {
	data     map[uint64]*node
	admittor AdmissionPolicy
	stats    StatsRecorder
	climber  Climber

	window    *list
	probation *list
	protected *list

	capacity     int
	maxWindow    int
	maxProtected int

	// Resident counts as reals: whole nodes plus the fractional carry left
	// behind by adaptations that moved less than one slot.
	windowSize    float64
	protectedSize float64

	initialPercentMain float64
}

// New creates an adaptive W-TinyLFU policy for the given total capacity.
func New(capacity int, opts ...Option) *Policy {
	if capacity < 1 {
		panic("wtinylfu: capacity must be positive")
	}

	p := &Policy{
		data:      make(map[uint64]*node, capacity),
		window:    newList(),
		probation: newList(),
		protected: newList(),
		capacity:  capacity,
	}

	WithSegmentation(0.99, 0.80)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Len returns the number of resident keys.
func (p *Policy) Len() int {
	return len(p.data)
}

// Capacity returns the fixed total capacity.
func (p *Policy) Capacity() int {
	return p.capacity
}

// MaxWindow returns the current window budget.
func (p *Policy) MaxWindow() int {
	return p.maxWindow
}

// MaxProtected returns the current protected budget.
func (p *Policy) MaxProtected() int {
	return p.maxProtected
}

// Stats returns the recorder passed in at construction, if any.
func (p *Policy) Stats() StatsRecorder {
	return p.stats
}

// Record ingests one access.
func (p *Policy) Record(key uint64) {
	// Capture occupancy before any mutation; the climber classifies the
	// whole access against the state it arrived at.
	isFull := len(p.data) >= p.capacity

	if p.admittor != nil {
		p.admittor.Record(key)
	}

	n, ok := p.data[key]
	if !ok {
		if p.stats != nil {
			p.stats.RecordMiss()
		}
		p.onMiss(key)
		if p.climber != nil {
			p.climber.OnMiss(key, isFull)
		}
	} else {
		segment := p.segmentOf(n.list)
		if p.stats != nil {
			p.stats.RecordHit()
		}
		p.onHit(n, segment)
		if p.climber != nil {
			p.climber.OnHit(key, segment, isFull)
		}
	}

	p.adapt(isFull)
	p.checkCounts()
}

// onMiss admits the key into the window, evicting if necessary.
func (p *Policy) onMiss(key uint64) {
	n := &node{key: key}
	p.window.PushFront(n)
	p.data[key] = n
	p.windowSize++
	p.evict()
}

// onHit refreshes the node within its segment, promoting probation hits.
func (p *Policy) onHit(n *node, segment Segment) {
	switch segment {
	case SegmentWindow, SegmentProtected:
		n.MoveToFront()

	case SegmentProbation:
		// Promote the accessed node to the protected segment; PushFront
		// unlinks it from probation first.
		p.protected.PushFront(n)
		p.protectedSize++
		p.demoteProtected()
	}
}

// demoteProtected slides the protected LRU node back to probation when the
// segment is over budget. Insertion always precedes demotion, so at most one
// node moves per call.
func (p *Policy) demoteProtected() {
	if p.protectedSize <= float64(p.maxProtected) {
		return
	}
	demoted := p.protected.Back()
	p.probation.PushFront(demoted)
	p.protectedSize--
}

// evict balances the window after a miss inserted a node. The window victim
// becomes the admission candidate; if the cache is over capacity the filter
// decides whether it replaces the probation victim or dies itself.
func (p *Policy) evict() {
	if p.windowSize <= float64(p.maxWindow) {
		return
	}

	candidate := p.window.Back()
	p.windowSize--
	p.probation.PushFront(candidate)

	if len(p.data) <= p.capacity {
		return
	}

	victim := p.probation.Back()
	loser := candidate
	if p.admittor == nil || p.admittor.Admit(candidate.key, victim.key) {
		loser = victim
	}
	delete(p.data, loser.key)
	loser.Remove()

	if p.stats != nil {
		p.stats.RecordEviction()
	}
}

// adapt asks the climber for a directive and moves the window boundary.
func (p *Policy) adapt(isFull bool) {
	if p.climber == nil {
		return
	}

	probationSize := float64(p.capacity) - p.windowSize - p.protectedSize
	a := p.climber.Adapt(p.windowSize, probationSize, p.protectedSize, isFull)
	invariant(a.Amount >= 0,
		"climber returned a negative amount: kind=%d amount=%f", int(a.Kind), a.Amount)

	switch a.Kind {
	case Hold:
	case IncreaseWindow:
		p.increaseWindow(a.Amount)
	case DecreaseWindow:
		p.decreaseWindow(a.Amount)
	default:
		panic(fmt.Sprintf("wtinylfu: unknown adaptation kind %d", int(a.Kind)))
	}
}

// increaseWindow grows the window at the expense of protected (and
// transitively probation). Whole nodes move only when the accumulated real
// size crosses an integer boundary; the remainder is carried.
func (p *Policy) increaseWindow(amount float64) {
	if p.maxProtected == 0 {
		// No donor.
		return
	}

	quota := math.Min(amount, float64(p.maxProtected))
	steps := int(math.Floor(p.windowSize+quota) - math.Floor(p.windowSize))
	p.windowSize += quota

	for i := 0; i < steps; i++ {
		p.maxWindow++
		p.maxProtected--
		p.demoteProtected()

		candidate := p.probation.Back()
		if candidate == nil {
			candidate = p.protected.Back()
			invariant(candidate != nil,
				"window grow without a donor node: step=%d of %d", i, steps)
			p.protectedSize--
		}
		p.window.PushFront(candidate)
	}
}

// decreaseWindow shrinks the window in favor of protected. Transferred nodes
// enter probation at its LRU end: they were window victims and should face
// the next eviction cycle first, not be spared.
func (p *Policy) decreaseWindow(amount float64) {
	if p.maxWindow == 0 {
		return
	}

	// The real window population can trail the budget under a miss-heavy
	// workload; clamping to it keeps windowSize non-negative and the step
	// count within the nodes actually present.
	quota := math.Min(amount, math.Min(float64(p.maxWindow), p.windowSize))
	steps := int(math.Floor(p.windowSize) - math.Floor(p.windowSize-quota))
	p.windowSize -= quota

	for i := 0; i < steps; i++ {
		p.maxWindow--
		p.maxProtected++

		candidate := p.window.Back()
		invariant(candidate != nil,
			"window shrink without a window node: step=%d of %d", i, steps)
		p.probation.PushBack(candidate)
	}
}

func (p *Policy) segmentOf(l *list) Segment {
	switch l {
	case p.window:
		return SegmentWindow
	case p.probation:
		return SegmentProbation
	case p.protected:
		return SegmentProtected
	}
	panic("wtinylfu: node not linked into any segment")
}

// checkCounts verifies the O(1) size invariants. It runs after every Record;
// the cost is negligible versus the cost of silently wrong hit ratios.
func (p *Policy) checkCounts() {
	maxMain := p.capacity - p.maxWindow
	invariant(p.maxWindow >= 0,
		"negative window budget: maxWindow=%d capacity=%d", p.maxWindow, p.capacity)
	invariant(p.maxProtected >= 0 && p.maxProtected <= maxMain,
		"protected budget out of range: maxProtected=%d maxMain=%d", p.maxProtected, maxMain)
	invariant(len(p.data) <= p.capacity,
		"over capacity: residents=%d capacity=%d", len(p.data), p.capacity)
	invariant(int(math.Floor(p.windowSize)) == p.window.Len(),
		"window count drift: floor(windowSize)=%d linked=%d",
		int(math.Floor(p.windowSize)), p.window.Len())
	invariant(int(math.Floor(p.protectedSize)) == p.protected.Len(),
		"protected count drift: floor(protectedSize)=%d linked=%d",
		int(math.Floor(p.protectedSize)), p.protected.Len())
	invariant(p.window.Len()+p.probation.Len()+p.protected.Len() == len(p.data),
		"segment sum mismatch: linked=%d residents=%d",
		p.window.Len()+p.probation.Len()+p.protected.Len(), len(p.data))
}

// Finished audits the full policy state at the end of a run and commits the
// final window adaptation to the recorder, if it accepts one.
func (p *Policy) Finished() {
	windowCount := p.countSegment(p.window, SegmentWindow)
	probationCount := p.countSegment(p.probation, SegmentProbation)
	protectedCount := p.countSegment(p.protected, SegmentProtected)

	invariant(windowCount+probationCount+protectedCount == len(p.data),
		"audit: segment sum mismatch: linked=%d residents=%d",
		windowCount+probationCount+protectedCount, len(p.data))
	invariant(len(p.data) <= p.capacity,
		"audit: over capacity: residents=%d capacity=%d", len(p.data), p.capacity)
	invariant(int(math.Floor(p.windowSize)) == windowCount,
		"audit: window count drift: floor(windowSize)=%d counted=%d",
		int(math.Floor(p.windowSize)), windowCount)
	invariant(int(math.Floor(p.protectedSize)) == protectedCount,
		"audit: protected count drift: floor(protectedSize)=%d counted=%d",
		int(math.Floor(p.protectedSize)), protectedCount)
	invariant(probationCount == len(p.data)-windowCount-protectedCount,
		"audit: probation count drift: counted=%d derived=%d",
		probationCount, len(p.data)-windowCount-protectedCount)

	if r, ok := p.stats.(AdaptationRecorder); ok {
		r.RecordPercentAdapted(p.percentAdapted())
	}
}

// percentAdapted is how far the climber moved the window from its initial
// fraction of the capacity.
func (p *Policy) percentAdapted() float64 {
	return float64(p.maxWindow)/float64(p.capacity) - (1 - p.initialPercentMain)
}

// countSegment walks one list, verifying every node is directory-resident
// and tagged with this segment.
func (p *Policy) countSegment(l *list, segment Segment) int {
	count := 0
	for n := l.Front(); n != nil; n = n.Next() {
		invariant(n.list == l,
			"audit: node %d reachable through %s but tagged elsewhere", n.key, segment)
		invariant(p.data[n.key] == n,
			"audit: node %d in %s missing from the directory", n.key, segment)
		count++
		invariant(count <= len(p.data),
			"audit: %s list cycle: walked=%d residents=%d", segment, count, len(p.data))
	}
	return count
}

func invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("wtinylfu: invariant violated: "+format, args...))
	}
}
