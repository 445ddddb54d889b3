package decision

import "fmt"

// Config tunes action selection.
type Config struct {
	// WarmupTimeslots is the number of initial timeslots during which doing
	// nothing is never selected.
	WarmupTimeslots   int  `json:"warmup_timeslots"`
	RevocationEnabled bool `json:"revocation_enabled"`
	// HourOffset is the hour of day of timeslot zero.
	HourOffset int `json:"hour_offset"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.WarmupTimeslots == 0 {
		c.WarmupTimeslots = 24
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.WarmupTimeslots < 0 {
		return fmt.Errorf("warmup_timeslots must not be negative")
	}
	if c.HourOffset < 0 || c.HourOffset > 23 {
		return fmt.Errorf("hour_offset must be within [0,23], got %d", c.HourOffset)
	}
	return nil
}
