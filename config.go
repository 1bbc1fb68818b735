package affogato

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cachesim/affogato/wtinylfu"
)

// DefaultMaxRequests bounds a run when the config doesn't: synthetic
// generators never return ErrDone on their own.
const DefaultMaxRequests = 1 << 20

// Config describes one simulation: a capacity, a sweep of initial main
// fractions, a protected fraction, and the climber strategies to race. The
// policy core receives already-resolved scalars; everything here is
// validated before any policy is constructed.
type Config struct {
	// Capacity is the total number of keys each policy may hold.
	Capacity int `yaml:"capacity"`

	// MainPercents is the sweep of initial main-region fractions, each in
	// (0, 1]. One policy instance is built per (fraction, climber) pair.
	MainPercents []float64 `yaml:"main_percents"`

	// PercentMainProtected is the fraction of main initially assigned to
	// the protected segment, in [0, 1].
	PercentMainProtected float64 `yaml:"percent_main_protected"`

	// Climbers names the adaptation strategies to race.
	Climbers []string `yaml:"climbers"`

	// Seed drives stochastic climbers, so runs stay reproducible.
	Seed int64 `yaml:"seed"`

	// MaxRequests caps how many accesses are replayed; zero means
	// DefaultMaxRequests.
	MaxRequests uint64 `yaml:"max_requests"`
}

// LoadConfig reads and validates a yaml simulation config.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validating config %s", path)
	}
	return &cfg, nil
}

// Validate rejects configurations the policy core would refuse, so the
// failure surfaces here instead of as a panic mid-run.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return errors.Errorf("capacity must be positive, got %d", c.Capacity)
	}
	if len(c.MainPercents) == 0 {
		return errors.New("at least one main percent is required")
	}
	for _, pct := range c.MainPercents {
		if pct <= 0 || pct > 1 {
			return errors.Errorf("main percent must be within (0, 1], got %f", pct)
		}
	}
	if c.PercentMainProtected < 0 || c.PercentMainProtected > 1 {
		return errors.Errorf("protected percent must be within [0, 1], got %f",
			c.PercentMainProtected)
	}
	if len(c.Climbers) == 0 {
		return errors.New("at least one climber strategy is required")
	}
	for _, strategy := range c.Climbers {
		if _, err := wtinylfu.NewClimber(strategy, c.Capacity, c.Seed); err != nil {
			return err
		}
	}
	return nil
}
