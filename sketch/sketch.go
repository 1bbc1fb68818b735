// Package sketch provides the frequency-sketch admission filter used at the
// window/main boundary: a doorkeeper bloom filter in front of a Count-Min
// sketch with 4-bit counters, periodically halved so stale popularity decays.
package sketch

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// depth is the number of counter rows. Each row is indexed with its own
// seed, so a single noisy collision cannot inflate an estimate.
const depth = 4

// sampleFactor scales the reset window: after sampleFactor * numCounters
// records all counters halve and the doorkeeper clears.
const sampleFactor = 10

// Sketch tracks approximate access frequencies for 64-bit keys. It satisfies
// the policy's AdmissionPolicy contract.
type Sketch struct {
	rows  [depth]row
	seeds [depth]uint64
	mask  uint64

	door       bitset
	additions  int
	sampleSize int
}

// New creates a sketch sized for the given number of counters, typically the
// cache capacity. The width is rounded up to the next power of 2 for cheap
// masking.
func New(numCounters int) *Sketch {
	if numCounters <= 0 {
		panic("sketch: bad numCounters")
	}

	width := next2Power(uint64(numCounters))
	if width < 8 {
		// A row packs two counters per byte; keep at least a few bytes.
		width = 8
	}
	s := &Sketch{
		mask:       width - 1,
		door:       newBitset(width),
		sampleSize: sampleFactor * numCounters,
	}
	for i := range s.rows {
		s.rows[i] = newRow(width)
		// Odd multiplier keeps the per-row permutations independent.
		s.seeds[i] = uint64(2*i+1) * 0x9E3779B97F4A7C15
	}
	return s
}

// Record informs the sketch that key was referenced. First touches only set
// the doorkeeper; repeats reach the counters.
func (s *Sketch) Record(key uint64) {
	h := spread(key)
	if !s.door.has(h) {
		s.door.set(h)
	} else {
		for i := range s.rows {
			s.rows[i].increment(((h * s.seeds[i]) >> 32) & s.mask)
		}
	}

	s.additions++
	if s.additions >= s.sampleSize {
		s.reset()
	}
}

// Admit reports whether the candidate should replace the victim. The
// candidate must be strictly more popular; ties keep the incumbent.
func (s *Sketch) Admit(candidate, victim uint64) bool {
	return s.Estimate(candidate) > s.Estimate(victim)
}

// Estimate returns the sketched frequency of key, boosted by one if the
// doorkeeper has seen it this sample window.
func (s *Sketch) Estimate(key uint64) int {
	h := spread(key)
	min := 255
	for i := range s.rows {
		if v := int(s.rows[i].get(((h * s.seeds[i]) >> 32) & s.mask)); v < min {
			min = v
		}
	}
	if s.door.has(h) {
		min++
	}
	return min
}

// reset halves every counter and forgets the doorkeeper, aging out keys that
// were popular in an earlier phase of the workload.
func (s *Sketch) reset() {
	s.additions = 0
	s.door.clear()
	for i := range s.rows {
		s.rows[i].reset()
	}
}

// spread hashes the raw key so that dense integer keyspaces do not map to
// adjacent counters.
func spread(key uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], key)
	return xxhash.Sum64(b[:])
}

// row is a row of bytes, with each byte holding two 4-bit counters.
type row []byte

func newRow(width uint64) row {
	return make(row, width/2)
}

func (r row) get(n uint64) byte {
	return (r[n/2] >> ((n & 1) * 4)) & 0x0f
}

func (r row) increment(n uint64) {
	i := n / 2
	// Shift distance: even counters live in the low nibble, odd in the high.
	shift := (n & 1) * 4
	if v := (r[i] >> shift) & 0x0f; v < 15 {
		// Saturate instead of wrapping; overflow wrap is bad for LFU.
		r[i] += 1 << shift
	}
}

func (r row) reset() {
	for i := range r {
		r[i] = (r[i] >> 1) & 0x77
	}
}

// bitset is the doorkeeper: one bit per counter slot, probed twice per key.
type bitset struct {
	bits []uint64
	mask uint64
}

func newBitset(width uint64) bitset {
	return bitset{
		bits: make([]uint64, (width+63)/64),
		mask: width - 1,
	}
}

func (b bitset) probes(h uint64) (uint64, uint64) {
	return h & b.mask, (h >> 17) & b.mask
}

func (b bitset) has(h uint64) bool {
	p1, p2 := b.probes(h)
	return b.bits[p1/64]&(1<<(p1%64)) != 0 && b.bits[p2/64]&(1<<(p2%64)) != 0
}

func (b bitset) set(h uint64) {
	p1, p2 := b.probes(h)
	b.bits[p1/64] |= 1 << (p1 % 64)
	b.bits[p2/64] |= 1 << (p2 % 64)
}

func (b bitset) clear() {
	for i := range b.bits {
		b.bits[i] = 0
	}
}

// next2Power rounds x up to the next power of 2, if it's not already one.
func next2Power(x uint64) uint64 {
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	return x
}
