package simulator

import (
	"github.com/kilianp07/tariffbroker/core/model"
)

// ProfileEnergy forecasts per-member energy from hourly usage profiles.
// Consumption is positive and production negative.
type ProfileEnergy struct {
	customers  map[string]CustomerDef
	hourOffset int
}

// NewProfileEnergy indexes the customer definitions.
func NewProfileEnergy(defs []CustomerDef, hourOffset int) *ProfileEnergy {
	m := make(map[string]CustomerDef, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return &ProfileEnergy{customers: m, hourOffset: hourOffset}
}

// Forecast implements prediction.EnergyPredictor. Unknown customers forecast zero.
func (p *ProfileEnergy) Forecast(c model.CustomerInfo, horizon, currentTimeslot int) model.EnergyVector {
	out := make(model.EnergyVector, horizon)
	def, ok := p.customers[c.Name]
	if !ok {
		return out
	}
	sign := 1.0
	if c.PowerType.IsProduction() {
		sign = -1
	}
	for i, h := range model.SlotHours(currentTimeslot, p.hourOffset, horizon) {
		out[i] = sign * def.Usage * profileAt(def.Profile, h)
	}
	return out
}

// NetDemand returns the aggregate energy of the given subscriptions at one
// future timeslot.
func (p *ProfileEnergy) NetDemand(subs model.Subscriptions, customers []model.CustomerInfo, timeslot int) float64 {
	var net float64
	for _, c := range customers {
		count := subs.CustomerTotal(c.Name)
		if count == 0 {
			continue
		}
		net += count * p.Forecast(c, 1, timeslot-1)[0]
	}
	return net
}

func profileAt(profile []float64, hour int) float64 {
	if len(profile) != model.HoursPerDay {
		return 1
	}
	return profile[hour]
}
