package scenarios

import (
	"github.com/kilianp07/tariffbroker/app"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/simulator"
)

// WorldMarket exposes a simulated world as an app.Market.
type WorldMarket struct {
	World *simulator.World
	Steps []simulator.StepResult
}

var _ app.Market = (*WorldMarket)(nil)

// Observe implements app.Market.
func (m *WorldMarket) Observe() app.Observation {
	w := m.World
	return app.Observation{
		Timeslot:    w.Timeslot(),
		Customers:   w.Customers(),
		Current:     w.Subscriptions(),
		OwnTariffs:  w.OwnTariffs(),
		Competitors: w.Competitors(),
		NumBrokers:  w.NumBrokers(),
	}
}

// Apply implements app.Market.
func (m *WorldMarket) Apply(actions []model.Action) error {
	res, err := m.World.Apply(actions)
	if err != nil {
		return err
	}
	m.Steps = append(m.Steps, res)
	return nil
}

// Predictors gives the broker the world's own models.
func Predictors(w *simulator.World) app.Predictors {
	return app.Predictors{
		Energy:     w.Energy(),
		Migration:  w.Migration(),
		CostCurve:  w.CostCurve(),
		Market:     w.Prices(),
		Repository: w.Repository(),
	}
}
