package shifting

import (
	"fmt"
	"math"

	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
)

// HeuristicSandbox is an in-process Sandbox. Consumers on a time-of-use
// tariff move a share of each day's consumption towards the hours that are
// cheap for them, preserving the daily total. Production and flat tariffs are
// left untouched.
type HeuristicSandbox struct {
	Repo prediction.TariffRepository
	// Elasticity is the relative load change per unit of relative rate
	// deviation from the daily mean.
	Elasticity float64
	// Penalty is charged per kWh moved.
	Penalty    float64
	HourOffset int

	energy    map[string]model.EnergyVector
	predicted model.Subscriptions
	result    model.ShiftedEnergyMap
}

// Load implements Sandbox.
func (h *HeuristicSandbox) Load(energy map[string]model.EnergyVector, predicted model.Subscriptions) {
	h.energy = energy
	h.predicted = predicted
	h.result = nil
}

// Reforecast implements Sandbox.
func (h *HeuristicSandbox) Reforecast(currentTimeslot int) error {
	out := make(model.ShiftedEnergyMap, len(h.energy))
	for tariffID, customers := range h.predicted {
		spec, ok := h.Repo.FindByID(tariffID)
		if !ok {
			return fmt.Errorf("tariff %s not in repository", tariffID)
		}
		for customer := range customers {
			e, ok := h.energy[customer]
			if !ok {
				continue
			}
			out.Put(customer, tariffID, h.shift(spec, e, currentTimeslot))
		}
	}
	h.result = out
	return nil
}

// ShiftedEnergy implements Sandbox.
func (h *HeuristicSandbox) ShiftedEnergy(customer, tariffID string) (model.ShiftedEnergy, bool) {
	return h.result.Get(customer, tariffID)
}

func (h *HeuristicSandbox) shift(spec *model.TariffSpec, e model.EnergyVector, ts int) model.ShiftedEnergy {
	if !spec.PowerType.IsConsumption() || !spec.IsTimeOfUse() || h.Elasticity == 0 {
		return model.ShiftedEnergy{Energy: e.Clone()}
	}
	hours := model.SlotHours(ts, h.HourOffset, len(e))
	out := e.Clone()
	var moved float64
	for start := 0; start < len(e); start += model.HoursPerDay {
		end := min(start+model.HoursPerDay, len(e))
		moved += h.shiftDay(spec, e[start:end], out[start:end], hours[start:end])
	}
	return model.ShiftedEnergy{Energy: out, Inconvenience: -h.Penalty * moved}
}

// shiftDay rewrites dst from src for one day and returns the energy moved.
func (h *HeuristicSandbox) shiftDay(spec *model.TariffSpec, src, dst model.EnergyVector, hours []int) float64 {
	rates := make([]float64, len(src))
	var mean float64
	for i, hr := range hours {
		rates[i] = spec.RateAt(hr)
		mean += rates[i]
	}
	mean /= float64(len(src))
	if mean == 0 {
		return 0
	}
	var before, after float64
	for i := range src {
		// Consumption rates are negative: a higher rate is cheaper.
		w := math.Max(0, 1+h.Elasticity*(rates[i]-mean)/math.Abs(mean))
		dst[i] = src[i] * w
		before += src[i]
		after += dst[i]
	}
	if after == 0 {
		copy(dst, src)
		return 0
	}
	scale := before / after
	var moved float64
	for i := range dst {
		dst[i] *= scale
		moved += math.Abs(dst[i] - src[i])
	}
	return moved / 2
}
