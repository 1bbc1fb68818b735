// Package affogato drives adaptive W-TinyLFU cache policies through
// recorded or synthetic access streams and reports their hit ratios.
package affogato

import (
	"fmt"

	"github.com/DmitriyVTitov/size"

	"github.com/cachesim/affogato/sketch"
	"github.com/cachesim/affogato/stats"
	"github.com/cachesim/affogato/trace"
	"github.com/cachesim/affogato/wtinylfu"
)

// Run replays one access stream through the (main percent × climber) policy
// matrix described by cfg. The stream is collected once so every policy sees
// the identical key sequence, then each policy is driven to completion,
// audited, and measured.
func Run(cfg *Config, stream trace.Stream) ([]*stats.PolicyStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := cfg.MaxRequests
	if limit == 0 {
		limit = DefaultMaxRequests
	}
	keys := trace.Collection(stream, limit)

	results := make([]*stats.PolicyStats, 0, len(cfg.MainPercents)*len(cfg.Climbers))
	for _, mainPct := range cfg.MainPercents {
		for _, strategy := range cfg.Climbers {
			climber, err := wtinylfu.NewClimber(strategy, cfg.Capacity, cfg.Seed)
			if err != nil {
				return nil, err
			}

			recorder := stats.New(fmt.Sprintf("wtlfu main=%.2f %s", mainPct, strategy))
			policy := wtinylfu.New(cfg.Capacity,
				wtinylfu.WithSegmentation(mainPct, cfg.PercentMainProtected),
				wtinylfu.WithAdmission(sketch.New(cfg.Capacity)),
				wtinylfu.WithRecorder(recorder),
				wtinylfu.WithClimber(climber),
			)

			for _, key := range keys {
				policy.Record(key)
			}
			policy.Finished()

			if bytes := size.Of(policy); bytes > 0 {
				recorder.SetFootprint(uint64(bytes))
			}
			results = append(results, recorder)
		}
	}
	return results, nil
}
