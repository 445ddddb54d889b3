// Package charges estimates what a customer member would pay under a tariff
// over the prediction horizon.
package charges

import (
	"math"

	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
)

// Estimator computes charge estimates from shifted energy.
type Estimator struct {
	// HourOffset is the hour of day of timeslot zero.
	HourOffset int
	log        logger.Logger
}

// NewEstimator returns an Estimator.
func NewEstimator(hourOffset int, log logger.Logger) *Estimator {
	return &Estimator{HourOffset: hourOffset, log: logger.OrNop(log)}
}

// Bill returns the customer-perspective bill of one member consuming or
// producing e under t. e starts at the timeslot after currentTimeslot.
func Bill(t *model.TariffSpec, e model.EnergyVector, currentTimeslot, hourOffset int) float64 {
	var bill float64
	for i, v := range e {
		bill += math.Abs(v) * t.RateAt(model.HourOf(currentTimeslot+1+i, hourOffset))
	}
	days := float64(len(e)) / model.HoursPerDay
	return bill + t.PeriodicPayment*days
}

// EstimateRelevantTariffCharges returns a charge estimate for every
// (customer, tariff) pair the customer can use and that has shifted energy.
// Incompatible pairs are skipped.
func (e *Estimator) EstimateRelevantTariffCharges(tariffs []*model.TariffSpec, customers []model.CustomerInfo, shifted model.ShiftedEnergyMap, currentTimeslot int) model.Charges {
	out := make(model.Charges, len(customers))
	var missing int
	for _, c := range customers {
		for _, t := range tariffs {
			if !c.PowerType.CanUse(t.PowerType) {
				continue
			}
			se, ok := shifted.Get(c.Name, t.ID)
			if !ok {
				missing++
				continue
			}
			bill := Bill(t, se.Energy, currentTimeslot, e.HourOffset)
			out.Put(c.Name, t.ID, model.ChargeEstimate{Bill: bill, Evaluation: bill + se.Inconvenience})
		}
	}
	if missing > 0 {
		e.log.Debugf("charges at ts %d: %d compatible pairs without shifted energy", currentTimeslot, missing)
	}
	return out
}
