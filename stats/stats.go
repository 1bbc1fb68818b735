// Package stats accumulates per-policy performance counters for a
// simulation run and renders them as a report.
package stats

// PolicyStats is the accumulator handed to one policy instance at
// construction. It satisfies the policy's StatsRecorder and
// AdaptationRecorder contracts. Like the policy core, it is single-threaded.
type PolicyStats struct {
	name string

	hits      uint64
	misses    uint64
	evictions uint64

	percentAdapted float64
	footprint      uint64
}

// New creates a named accumulator.
func New(name string) *PolicyStats {
	return &PolicyStats{name: name}
}

func (s *PolicyStats) RecordHit() {
	s.hits++
}

func (s *PolicyStats) RecordMiss() {
	s.misses++
}

func (s *PolicyStats) RecordEviction() {
	s.evictions++
}

// RecordPercentAdapted commits the final window adaptation of a run.
func (s *PolicyStats) RecordPercentAdapted(delta float64) {
	s.percentAdapted = delta
}

// SetFootprint stores the measured in-memory size of the policy, in bytes.
func (s *PolicyStats) SetFootprint(bytes uint64) {
	s.footprint = bytes
}

func (s *PolicyStats) Name() string {
	return s.name
}

func (s *PolicyStats) Hits() uint64 {
	return s.hits
}

func (s *PolicyStats) Misses() uint64 {
	return s.misses
}

func (s *PolicyStats) Evictions() uint64 {
	return s.evictions
}

// Requests is the total number of accesses observed.
func (s *PolicyStats) Requests() uint64 {
	return s.hits + s.misses
}

// Ratio is the number of hits over all accesses.
func (s *PolicyStats) Ratio() float64 {
	if s.hits == 0 && s.misses == 0 {
		return 0.0
	}
	return float64(s.hits) / float64(s.hits+s.misses)
}

func (s *PolicyStats) PercentAdapted() float64 {
	return s.percentAdapted
}

func (s *PolicyStats) Footprint() uint64 {
	return s.footprint
}
