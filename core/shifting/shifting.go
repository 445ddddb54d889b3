// Package shifting adjusts raw energy forecasts for the demand shifting a
// tariff's time-of-use structure induces.
package shifting

import (
	"errors"

	"github.com/kilianp07/tariffbroker/core/model"
)

// ErrIncomplete reports that a sandbox did not return a value for every
// (customer, tariff) pair it was asked about.
var ErrIncomplete = errors.New("sandbox returned an incomplete forecast")

// Outcome is the result of a shifting prediction. Energy is always complete.
// Degraded is non-nil when the predictor fell back to unshifted energy.
type Outcome struct {
	Energy   model.ShiftedEnergyMap
	Degraded error
}

// Predictor computes shifted energy for every (customer, tariff) pair present
// in the predicted subscriptions.
type Predictor interface {
	UpdateEstimatedEnergyWithShifting(energy map[string]model.EnergyVector, predicted model.Subscriptions, tariffs []*model.TariffSpec, currentTimeslot int) Outcome
}

// Identity returns unshifted energy with zero inconvenience.
type Identity struct{}

// UpdateEstimatedEnergyWithShifting implements Predictor.
func (Identity) UpdateEstimatedEnergyWithShifting(energy map[string]model.EnergyVector, predicted model.Subscriptions, _ []*model.TariffSpec, _ int) Outcome {
	out := make(model.ShiftedEnergyMap, len(energy))
	for tariffID, customers := range predicted {
		for customer := range customers {
			e, ok := energy[customer]
			if !ok {
				continue
			}
			out.Put(customer, tariffID, model.ShiftedEnergy{Energy: e.Clone()})
		}
	}
	return Outcome{Energy: out}
}
