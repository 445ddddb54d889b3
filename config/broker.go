package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/tariffbroker/core/model"
)

// BrokerConfig identifies the agent on the market.
type BrokerConfig struct {
	Name string `json:"name"`
	// PowerType is the single power type this agent prices tariffs for.
	PowerType string `json:"power_type"`
}

// SetDefaults applies sane defaults.
func (c *BrokerConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "tariffbroker"
	}
	c.PowerType = strings.ToUpper(strings.TrimSpace(c.PowerType))
	if c.PowerType == "" {
		c.PowerType = model.Consumption.String()
	}
}

// Validate checks the power type label.
func (c BrokerConfig) Validate() error {
	if model.ParsePowerType(c.PowerType).String() != c.PowerType {
		return fmt.Errorf("unknown power_type %q", c.PowerType)
	}
	return nil
}

// Type returns the parsed power type.
func (c BrokerConfig) Type() model.PowerType { return model.ParsePowerType(c.PowerType) }

// Shifting modes.
const (
	ShiftingIdentity  = "identity"
	ShiftingHeuristic = "heuristic"
)

// ShiftingConfig selects how demand shifting is predicted.
type ShiftingConfig struct {
	Mode string `json:"mode"`
	// Elasticity and Penalty tune the heuristic sandbox.
	Elasticity float64 `json:"elasticity"`
	Penalty    float64 `json:"penalty"`
}

// SetDefaults applies sane defaults.
func (c *ShiftingConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ShiftingIdentity
	}
	if c.Elasticity == 0 {
		c.Elasticity = 0.3
	}
	if c.Penalty == 0 {
		c.Penalty = 0.002
	}
}

// Validate checks the mode.
func (c ShiftingConfig) Validate() error {
	switch c.Mode {
	case ShiftingIdentity, ShiftingHeuristic:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Elasticity < 0 || c.Penalty < 0 {
		return fmt.Errorf("elasticity and penalty must not be negative")
	}
	return nil
}
