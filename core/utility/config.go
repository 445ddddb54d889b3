package utility

import "fmt"

// Wholesale cost models.
const (
	WholesaleCostCurve = "cost-curve"
	WholesaleFlat      = "flat"
)

// Config holds the market fees and cost model selection. Fees are signed
// from the broker's perspective: a fee the broker pays is negative.
type Config struct {
	DistributionFee float64 `json:"distribution_fee"`
	PublicationFee  float64 `json:"publication_fee"`
	RevocationFee   float64 `json:"revocation_fee"`
	// BalancingUnitCost prices each kWh of net imbalance. The default of zero
	// means balancing is assumed to cost nothing.
	BalancingUnitCost float64 `json:"balancing_unit_cost"`
	WholesaleMode     string  `json:"wholesale_mode"`
	// Horizon is the number of future timeslots energy is predicted for.
	Horizon int `json:"horizon"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DistributionFee == 0 {
		c.DistributionFee = -0.01
	}
	if c.PublicationFee == 0 {
		c.PublicationFee = -50
	}
	if c.RevocationFee == 0 {
		c.RevocationFee = -50
	}
	if c.WholesaleMode == "" {
		c.WholesaleMode = WholesaleCostCurve
	}
	if c.Horizon == 0 {
		c.Horizon = 168
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.WholesaleMode {
	case WholesaleCostCurve, WholesaleFlat:
	default:
		return fmt.Errorf("unknown wholesale_mode %q", c.WholesaleMode)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive")
	}
	if c.PublicationFee > 0 || c.RevocationFee > 0 {
		return fmt.Errorf("publication and revocation fees are costs and must not be positive")
	}
	return nil
}
