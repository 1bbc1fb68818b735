package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEstimate(t *testing.T) {
	s := New(64)

	// The first touch only reaches the doorkeeper.
	s.Record(1)
	assert.Equal(t, 1, s.Estimate(1))
	assert.Equal(t, 0, s.Estimate(2), "neighbor corruption")

	s.Record(1)
	s.Record(1)
	s.Record(1)
	assert.Equal(t, 4, s.Estimate(1))
	assert.Equal(t, 0, s.Estimate(2), "neighbor corruption")
}

func TestSaturation(t *testing.T) {
	s := New(64)
	for i := 0; i < 40; i++ {
		s.Record(7)
	}
	// 15 from the saturated 4-bit counters plus the doorkeeper boost.
	assert.Equal(t, 16, s.Estimate(7))
}

func TestReset(t *testing.T) {
	// numCounters 1 gives a sample window of 10 records.
	s := New(1)
	require.Equal(t, 10, s.sampleSize)

	for i := 0; i < 10; i++ {
		s.Record(3)
	}

	// The 10th record triggered the reset: the nine counter increments
	// halved to four and the doorkeeper forgot the key.
	assert.Equal(t, 0, s.additions)
	assert.Equal(t, 4, s.Estimate(3))
	assert.False(t, s.door.has(spread(3)))
}

func TestAdmit(t *testing.T) {
	s := New(64)

	for i := 0; i < 5; i++ {
		s.Record(100)
	}
	s.Record(200)

	assert.True(t, s.Admit(100, 200))
	assert.False(t, s.Admit(200, 100))

	// Ties keep the incumbent.
	s.Record(300)
	assert.False(t, s.Admit(200, 300))
}

func TestBadSize(t *testing.T) {
	assert.Panics(t, func() { New(0) })
	assert.Panics(t, func() { New(-1) })
}

func TestTinyWidth(t *testing.T) {
	s := New(1)
	s.Record(1)
	s.Record(1)
	assert.GreaterOrEqual(t, s.Estimate(1), 2)
}
