package shifting

import (
	"fmt"

	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
)

// Sandbox is a customer simulation that can re-forecast energy under
// hypothetical subscriptions.
type Sandbox interface {
	// Load replaces the sandbox state with the given energy and
	// subscriptions.
	Load(energy map[string]model.EnergyVector, predicted model.Subscriptions)
	// Reforecast recomputes shifted energy for every loaded pair.
	Reforecast(currentTimeslot int) error
	// ShiftedEnergy returns the re-forecast energy of customer under tariff.
	ShiftedEnergy(customer, tariffID string) (model.ShiftedEnergy, bool)
}

// ModelBased asks a sandbox for shifted energy. Candidate tariffs unknown to
// the repository are registered for the duration of the call only. Any
// sandbox failure yields the identity result.
type ModelBased struct {
	repo    prediction.TariffRepository
	sandbox Sandbox
	log     logger.Logger
}

// NewModelBased returns a model based predictor.
func NewModelBased(repo prediction.TariffRepository, sb Sandbox, log logger.Logger) *ModelBased {
	return &ModelBased{repo: repo, sandbox: sb, log: logger.OrNop(log)}
}

// UpdateEstimatedEnergyWithShifting implements Predictor.
func (m *ModelBased) UpdateEstimatedEnergyWithShifting(energy map[string]model.EnergyVector, predicted model.Subscriptions, tariffs []*model.TariffSpec, currentTimeslot int) Outcome {
	identity := Identity{}.UpdateEstimatedEnergyWithShifting(energy, predicted, tariffs, currentTimeslot)

	var temporary []string
	for _, t := range tariffs {
		if _, ok := m.repo.FindByID(t.ID); ok {
			continue
		}
		m.repo.Add(t)
		temporary = append(temporary, t.ID)
	}
	defer func() {
		for _, id := range temporary {
			m.repo.Remove(id)
		}
	}()

	m.sandbox.Load(energy, predicted)
	if err := m.reforecast(currentTimeslot); err != nil {
		m.log.Errorf("shifting re-forecast at ts %d failed, using unshifted energy: %v", currentTimeslot, err)
		return Outcome{Energy: identity.Energy, Degraded: err}
	}

	out := make(model.ShiftedEnergyMap, len(identity.Energy))
	for customer, byTariff := range identity.Energy {
		for tariffID := range byTariff {
			se, ok := m.sandbox.ShiftedEnergy(customer, tariffID)
			if !ok {
				err := fmt.Errorf("%w: %s on %s", ErrIncomplete, customer, tariffID)
				m.log.Errorf("shifting at ts %d: %v", currentTimeslot, err)
				return Outcome{Energy: identity.Energy, Degraded: err}
			}
			out.Put(customer, tariffID, se)
		}
	}
	return Outcome{Energy: out}
}

// reforecast shields the decision cycle from sandbox panics.
func (m *ModelBased) reforecast(ts int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sandbox panic: %v", r)
		}
	}()
	return m.sandbox.Reforecast(ts)
}
