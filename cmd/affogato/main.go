// Command affogato replays a cache trace (or a synthetic keyspace) through a
// matrix of adaptive W-TinyLFU configurations and prints a comparison table.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/cachesim/affogato"
	"github.com/cachesim/affogato/stats"
	"github.com/cachesim/affogato/trace"
)

var cli struct {
	Config string `help:"YAML simulation config; overrides the sizing flags below." type:"existingfile" optional:""`

	Capacity         int       `help:"Cache capacity in keys." default:"512"`
	MainPercents     []float64 `help:"Initial main-region fractions to sweep." default:"0.99"`
	ProtectedPercent float64   `help:"Fraction of main reserved for the protected segment." default:"0.80"`
	Climbers         []string  `help:"Climber strategies to race (static, simple, stochastic)." default:"static,simple"`
	Requests         uint64    `help:"Maximum number of accesses to replay." default:"1000000"`
	Seed             int64     `help:"Seed for generators and stochastic climbers." default:"1"`

	Trace    string  `help:"Trace file (.lirs, .arc, .txt, .bin; optionally .gz). Synthetic keys are generated when omitted." type:"existingfile" optional:""`
	Zipf     bool    `help:"Generate Zipfian keys instead of uniform ones." default:"true" negatable:""`
	ZipfS    float64 `help:"Zipfian s parameter." default:"1.01"`
	ZipfV    float64 `help:"Zipfian v parameter." default:"1"`
	Keyspace uint64  `help:"Number of distinct synthetic keys." default:"65536"`

	Verbose bool `help:"Enable debug logging." short:"v"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("affogato"),
		kong.Description("Adaptive W-TinyLFU cache replacement policy simulator."),
	)

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if cli.Verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	kctx.FatalIfErrorf(run(logger))
}

func run(logger log.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	stream, closer, err := openStream(logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	level.Debug(logger).Log("msg", "starting simulation",
		"capacity", cfg.Capacity,
		"main_percents", len(cfg.MainPercents),
		"climbers", len(cfg.Climbers),
	)

	results, err := affogato.Run(cfg, stream)
	if err != nil {
		return err
	}

	var requests uint64
	if len(results) > 0 {
		requests = results[0].Requests()
	}
	level.Info(logger).Log("msg", "simulation finished",
		"policies", len(results),
		"requests", humanize.Comma(int64(requests)),
	)

	stats.Render(os.Stdout, results)
	return nil
}

func loadConfig() (*affogato.Config, error) {
	if cli.Config != "" {
		return affogato.LoadConfig(cli.Config)
	}
	cfg := &affogato.Config{
		Capacity:             cli.Capacity,
		MainPercents:         cli.MainPercents,
		PercentMainProtected: cli.ProtectedPercent,
		Climbers:             cli.Climbers,
		Seed:                 cli.Seed,
		MaxRequests:          cli.Requests,
	}
	return cfg, cfg.Validate()
}

func openStream(logger log.Logger) (trace.Stream, interface{ Close() error }, error) {
	if cli.Trace != "" {
		level.Info(logger).Log("msg", "replaying trace", "path", cli.Trace)
		return trace.Open(cli.Trace)
	}
	if cli.Zipf {
		level.Info(logger).Log("msg", "generating zipfian keys",
			"s", cli.ZipfS, "v", cli.ZipfV, "keyspace", cli.Keyspace)
		return trace.NewZipfian(cli.ZipfS, cli.ZipfV, cli.Keyspace, cli.Seed), nil, nil
	}
	level.Info(logger).Log("msg", "generating uniform keys", "keyspace", cli.Keyspace)
	return trace.NewUniform(cli.Keyspace, cli.Seed), nil, nil
}
