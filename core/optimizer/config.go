package optimizer

import (
	"fmt"
	"time"

	"github.com/kilianp07/tariffbroker/core/factory"
	"github.com/kilianp07/tariffbroker/core/search"
)

// Config selects and tunes the strategy tree of one broker.
type Config struct {
	// Strategy is the root of the strategy tree. Composite and refining
	// strategies name their children in Conf, see Builder.
	Strategy       factory.ModuleConfig `json:"strategy"`
	MaxEvaluations int                  `json:"max_evaluations"`
	NumRates       int                  `json:"num_rates"`
	WithdrawFees   bool                 `json:"withdraw_fees"`
	MinDuration    time.Duration        `json:"min_duration"`
	// Search holds defaults shared by every continuous method.
	Search search.Config `json:"search"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Strategy.Type == "" {
		c.Strategy.Type = IncrementalName
	}
	if c.MaxEvaluations == 0 {
		c.MaxEvaluations = 200
	}
	if c.NumRates == 0 {
		c.NumRates = 24
	}
	if c.WithdrawFees && c.MinDuration == 0 {
		c.MinDuration = 7 * 24 * time.Hour
	}
	c.Search.SetDefaults()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxEvaluations < 1 {
		return fmt.Errorf("max_evaluations must be positive")
	}
	if c.NumRates < 1 || c.NumRates > 24 {
		return fmt.Errorf("num_rates must be within [1,24], got %d", c.NumRates)
	}
	if c.MinDuration < 0 {
		return fmt.Errorf("min_duration must not be negative")
	}
	return nil
}
