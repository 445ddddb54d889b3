package candidates

import "fmt"

// Config tunes fixed-rate candidate generation.
type Config struct {
	// NumTariffs is the number of evenly spaced candidates emitted per call.
	NumTariffs int `json:"num_tariffs"`
	// StddevFactor is the number of market price standard deviations kept as
	// safety margin below the market based bound.
	StddevFactor float64 `json:"stddev_factor"`
	// LargeFieldBrokers halves the margin when at least that many brokers
	// compete.
	LargeFieldBrokers int `json:"large_field_brokers"`
	// Interpolation factors between the market bound (1) and the reference
	// rate (0).
	InitialInterpolation   float64 `json:"initial_interpolation"`
	Interpolation          float64 `json:"interpolation"`
	TransientInterpolation float64 `json:"transient_interpolation"`
	// TransientThreshold marks the early market phase: a rival whose best
	// consumption rate is below it is still on its default tariff.
	TransientThreshold float64 `json:"transient_threshold"`
	// ProductionFloor is the minimum production rate ever proposed.
	ProductionFloor float64 `json:"production_floor"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.NumTariffs == 0 {
		c.NumTariffs = 80
	}
	if c.StddevFactor == 0 {
		c.StddevFactor = 0.7
	}
	if c.LargeFieldBrokers == 0 {
		c.LargeFieldBrokers = 4
	}
	if c.InitialInterpolation == 0 {
		c.InitialInterpolation = 0.8
	}
	if c.Interpolation == 0 {
		c.Interpolation = 0.9
	}
	if c.TransientInterpolation == 0 {
		c.TransientInterpolation = 0.96
	}
	if c.TransientThreshold == 0 {
		c.TransientThreshold = -0.125
	}
	if c.ProductionFloor == 0 {
		c.ProductionFloor = 0.001
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NumTariffs < 1 {
		return fmt.Errorf("num_tariffs must be positive")
	}
	for name, f := range map[string]float64{
		"initial_interpolation":   c.InitialInterpolation,
		"interpolation":           c.Interpolation,
		"transient_interpolation": c.TransientInterpolation,
	} {
		if f < 0 || f > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, f)
		}
	}
	if c.StddevFactor < 0 {
		return fmt.Errorf("stddev_factor must not be negative")
	}
	return nil
}
