package simulator

import (
	"fmt"

	"github.com/kilianp07/tariffbroker/core/model"
)

// Config describes a synthetic tariff market.
type Config struct {
	Self        string         `yaml:"self" json:"self"`
	NumBrokers  int            `yaml:"num_brokers" json:"num_brokers"`
	HourOffset  int            `yaml:"hour_offset" json:"hour_offset"`
	Seed        int64          `yaml:"seed" json:"seed"`
	Customers   []CustomerDef  `yaml:"customers" json:"customers"`
	Population  *PopulationDef `yaml:"population,omitempty" json:"population,omitempty"`
	OwnTariffs  []TariffDef    `yaml:"own_tariffs" json:"own_tariffs"`
	Competitors []TariffDef    `yaml:"competitors" json:"competitors"`
	// Arrivals publishes competitor tariffs at the given timeslots.
	Arrivals  []ArrivalDef `yaml:"arrivals,omitempty" json:"arrivals,omitempty"`
	Prices    PriceDef     `yaml:"prices" json:"prices"`
	CostCurve CostCurveDef `yaml:"cost_curve" json:"cost_curve"`
	Migration MigrationDef `yaml:"migration" json:"migration"`
}

// CustomerDef is one customer population.
type CustomerDef struct {
	Name       string `yaml:"name" json:"name"`
	Population int    `yaml:"population" json:"population"`
	PowerType  string `yaml:"power_type" json:"power_type"`
	// Usage is the energy magnitude per member and timeslot in kWh.
	Usage float64 `yaml:"usage" json:"usage"`
	// Profile holds 24 hourly multipliers; empty means flat.
	Profile []float64 `yaml:"profile,omitempty" json:"profile,omitempty"`
	// OwnShare is the fraction of the population initially on own tariffs.
	OwnShare float64 `yaml:"own_share" json:"own_share"`
}

// Info returns the customer as seen by the broker.
func (c CustomerDef) Info() model.CustomerInfo {
	return model.CustomerInfo{Name: c.Name, Population: c.Population, PowerType: model.ParsePowerType(c.PowerType)}
}

// TariffDef is a tariff published by a broker.
type TariffDef struct {
	Broker    string  `yaml:"broker" json:"broker"`
	PowerType string  `yaml:"power_type" json:"power_type"`
	Rate      float64 `yaml:"rate" json:"rate"`
	// Hourly overrides Rate with 24 hour-of-day values.
	Hourly               []float64 `yaml:"hourly,omitempty" json:"hourly,omitempty"`
	PeriodicPayment      float64   `yaml:"periodic_payment" json:"periodic_payment"`
	EarlyWithdrawPayment float64   `yaml:"early_withdraw_payment" json:"early_withdraw_payment"`
}

// Spec converts the definition into a TariffSpec with a fresh identifier.
func (d TariffDef) Spec() *model.TariffSpec {
	pt := model.ParsePowerType(d.PowerType)
	var spec *model.TariffSpec
	if len(d.Hourly) == model.HoursPerDay {
		rates := make([]model.Rate, model.HoursPerDay)
		for h, v := range d.Hourly {
			rates[h] = model.HourlyRate(h, v)
		}
		spec = model.NewTariffSpec(d.Broker, pt, rates...)
	} else {
		spec = model.NewTariffSpec(d.Broker, pt, model.FixedRate(d.Rate))
	}
	spec.PeriodicPayment = d.PeriodicPayment
	spec.EarlyWithdrawPayment = d.EarlyWithdrawPayment
	return spec
}

// ArrivalDef schedules a competitor tariff.
type ArrivalDef struct {
	At     int       `yaml:"at" json:"at"`
	Tariff TariffDef `yaml:"tariff" json:"tariff"`
}

// PriceDef seeds the wholesale price history.
type PriceDef struct {
	History []float64 `yaml:"history" json:"history"`
	Window  int       `yaml:"window" json:"window"`
	Noise   float64   `yaml:"noise" json:"noise"`
}

// CostCurveDef parameterises the linear wholesale cost curve.
type CostCurveDef struct {
	Intercept        float64   `yaml:"intercept" json:"intercept"`
	Slope            float64   `yaml:"slope" json:"slope"`
	CompetitorDemand float64   `yaml:"competitor_demand" json:"competitor_demand"`
	Profile          []float64 `yaml:"profile,omitempty" json:"profile,omitempty"`
	Fudge            float64   `yaml:"fudge" json:"fudge"`
}

// MigrationDef tunes customer switching.
type MigrationDef struct {
	Rationality float64 `yaml:"rationality" json:"rationality"`
	Inertia     float64 `yaml:"inertia" json:"inertia"`
	// Horizon is how many timeslots customers look ahead when comparing bills.
	Horizon int `yaml:"horizon" json:"horizon"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Self == "" {
		c.Self = "self"
	}
	if c.NumBrokers == 0 {
		c.NumBrokers = 2
	}
	if c.Population != nil {
		c.Customers = append(c.Customers, GenerateCustomers(*c.Population, c.Seed)...)
		c.Population = nil
	}
	for i := range c.OwnTariffs {
		if c.OwnTariffs[i].Broker == "" {
			c.OwnTariffs[i].Broker = c.Self
		}
	}
	if c.Prices.Window == 0 {
		c.Prices.Window = 168
	}
	if len(c.Prices.History) == 0 {
		c.Prices.History = []float64{0.05}
	}
	if c.CostCurve.Intercept == 0 {
		c.CostCurve.Intercept = 0.04
	}
	if c.Migration.Rationality == 0 {
		c.Migration.Rationality = 0.5
	}
	if c.Migration.Inertia == 0 {
		c.Migration.Inertia = 0.8
	}
	if c.Migration.Horizon == 0 {
		c.Migration.Horizon = 24
	}
}

// Validate checks the market definition.
func (c Config) Validate() error {
	if len(c.Customers) == 0 {
		return fmt.Errorf("simulator: no customers")
	}
	seen := map[string]bool{}
	for _, cu := range c.Customers {
		if cu.Name == "" || cu.Population <= 0 {
			return fmt.Errorf("simulator: customer %q needs a name and a positive population", cu.Name)
		}
		if seen[cu.Name] {
			return fmt.Errorf("simulator: duplicate customer %q", cu.Name)
		}
		seen[cu.Name] = true
		if n := len(cu.Profile); n != 0 && n != model.HoursPerDay {
			return fmt.Errorf("simulator: customer %q profile needs %d values, got %d", cu.Name, model.HoursPerDay, n)
		}
		if cu.OwnShare < 0 || cu.OwnShare > 1 {
			return fmt.Errorf("simulator: customer %q own_share must be within [0,1]", cu.Name)
		}
	}
	if n := len(c.CostCurve.Profile); n != 0 && n != model.HoursPerDay {
		return fmt.Errorf("simulator: cost curve profile needs %d values, got %d", model.HoursPerDay, n)
	}
	if c.Migration.Inertia < 0 || c.Migration.Inertia > 1 {
		return fmt.Errorf("simulator: inertia must be within [0,1]")
	}
	if c.HourOffset < 0 || c.HourOffset >= model.HoursPerDay {
		return fmt.Errorf("simulator: hour_offset must be within [0,23]")
	}
	return nil
}
