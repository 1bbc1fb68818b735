package affogato

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachesim/affogato/trace"
)

func sliceStream(keys []uint64) trace.Stream {
	i := 0
	return func() (uint64, error) {
		if i >= len(keys) {
			return 0, trace.ErrDone
		}
		k := keys[i]
		i++
		return k, nil
	}
}

func TestRun(t *testing.T) {
	cfg := &Config{
		Capacity:             8,
		MainPercents:         []float64{0.5, 0.99},
		PercentMainProtected: 0.8,
		Climbers:             []string{"static", "simple"},
		Seed:                 1,
	}

	keys := trace.Collection(trace.NewZipfian(1.2, 1, 256, 1), 5000)
	results, err := Run(cfg, sliceStream(keys))
	require.NoError(t, err)
	require.Len(t, results, 4, "one policy per (percent, climber) pair")

	for _, s := range results {
		assert.Equal(t, uint64(5000), s.Requests(), s.Name())
		assert.GreaterOrEqual(t, s.Misses(), s.Evictions(), s.Name())
		assert.GreaterOrEqual(t, s.Ratio(), 0.0, s.Name())
		assert.LessOrEqual(t, s.Ratio(), 1.0, s.Name())
		assert.NotZero(t, s.Footprint(), s.Name())
	}

	// Every policy saw the identical stream, so hit+miss totals agree.
	for _, s := range results[1:] {
		assert.Equal(t, results[0].Requests(), s.Requests())
	}
}

func TestRunRequestCap(t *testing.T) {
	cfg := &Config{
		Capacity:             4,
		MainPercents:         []float64{0.9},
		PercentMainProtected: 0.5,
		Climbers:             []string{"static"},
		MaxRequests:          100,
	}

	results, err := Run(cfg, trace.NewUniform(1000, 3))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint64(100), results[0].Requests())
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := &Config{Capacity: 0}
	_, err := Run(cfg, sliceStream(nil))
	assert.Error(t, err)
}
