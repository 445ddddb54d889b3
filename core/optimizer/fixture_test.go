package optimizer

import (
	"fmt"
	"math"

	"github.com/kilianp07/tariffbroker/core/candidates"
	"github.com/kilianp07/tariffbroker/core/charges"
	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
	"github.com/kilianp07/tariffbroker/core/shifting"
	"github.com/kilianp07/tariffbroker/core/utility"
)

// softmaxMigration splits each customer over the tariffs on offer by a
// softmax of their charge evaluations.
type softmaxMigration struct {
	scale float64
}

func (m softmaxMigration) split(offered []*model.TariffSpec, mine map[string]bool, charges model.Charges, current model.Subscriptions) model.Subscriptions {
	out := model.Subscriptions{}
	population := map[string]float64{}
	for id := range current {
		for c := range current[id] {
			population[c] += current[id][c]
		}
	}
	for customer, pop := range population {
		weights := map[string]float64{}
		var total float64
		for _, t := range offered {
			est, ok := charges.Get(customer, t.ID)
			if !ok {
				continue
			}
			w := math.Exp(est.Evaluation / m.scale)
			weights[t.ID] = w
			total += w
		}
		for id, w := range weights {
			if mine[id] {
				out.Set(id, customer, pop*w/total)
			}
		}
	}
	return out
}

func (m softmaxMigration) offer(candidate *model.TariffSpec, current model.Subscriptions, competitors []*model.TariffSpec, own []*model.TariffSpec) ([]*model.TariffSpec, map[string]bool) {
	offered := append([]*model.TariffSpec(nil), competitors...)
	mine := map[string]bool{}
	for _, t := range own {
		offered = append(offered, t)
		mine[t.ID] = true
	}
	if candidate != nil {
		offered = append(offered, candidate)
		mine[candidate.ID] = true
	}
	return offered, mine
}

type migrationFixture struct {
	softmaxMigration
	own []*model.TariffSpec
}

func (m migrationFixture) Predict(c *model.TariffSpec, ch model.Charges, cur model.Subscriptions, comp []*model.TariffSpec, _ int) model.Subscriptions {
	offered, mine := m.offer(c, cur, comp, m.own)
	return m.split(offered, mine, ch, cur)
}

func (m migrationFixture) PredictRevoke(r *model.TariffSpec, ch model.Charges, cur model.Subscriptions, comp []*model.TariffSpec, _ int) model.Subscriptions {
	var own []*model.TariffSpec
	for _, t := range m.own {
		if t.ID != r.ID {
			own = append(own, t)
		}
	}
	offered, mine := m.offer(nil, cur, comp, own)
	return m.split(offered, mine, ch, cur)
}

type recordingPublisher struct {
	events []events.StrategyEvent
}

func (r *recordingPublisher) Publish(e events.StrategyEvent) { r.events = append(r.events, e) }

func (r *recordingPublisher) actions() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type world struct {
	in   Input
	deps Deps
	pub  *recordingPublisher
}

func flatEnergy(n int, v float64) model.EnergyVector {
	e := make(model.EnergyVector, n)
	for i := range e {
		e[i] = v
	}
	return e
}

func newWorld(numTariffs int) world {
	own := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.12))
	rival := model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.11))
	current := model.Subscriptions{}
	current.Set(own.ID, "homes", 100)

	pub := &recordingPublisher{}
	deps := Deps{
		Candidates: candidates.New(candidates.Config{NumTariffs: numTariffs}, nil),
		Shifting:   shifting.Identity{},
		Charges:    charges.NewEstimator(0, nil),
		Utility: utility.New(utility.Config{DistributionFee: -0.01, PublicationFee: -1, RevocationFee: -1},
			migrationFixture{softmaxMigration: softmaxMigration{scale: 1}, own: []*model.TariffSpec{own}}, nil),
		Events: pub,
	}
	in := Input{
		Self:        "me",
		PowerType:   model.Consumption,
		Customers:   []model.CustomerInfo{{Name: "homes", Population: 100, PowerType: model.Consumption}},
		Current:     current,
		OwnTariffs:  []*model.TariffSpec{own},
		Energy:      map[string]model.EnergyVector{"homes": flatEnergy(24, 1)},
		Competitors: []*model.TariffSpec{rival},
		Market:      prediction.FixedMarket{Mean: 0.05, Stddev: 0.01},
		Context:     Context{NumBrokers: 2, DistributionFee: -0.01},
		CostCurve:   prediction.FlatCostCurve{UnitCost: -0.05},
		Timeslot:    10,
	}
	return world{in: in, deps: deps, pub: pub}
}

// newCrowdedWorld spreads several own tariffs over many customers with
// uneven energy profiles.
func newCrowdedWorld(numTariffs int) world {
	w := newWorld(numTariffs)
	own := []*model.TariffSpec{w.in.OwnTariffs[0]}
	for i := 1; i < 4; i++ {
		t := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.12-float64(i)/300))
		t.EarlyWithdrawPayment = -1.0 / float64(i+2)
		own = append(own, t)
	}
	current := model.Subscriptions{}
	energy := map[string]model.EnergyVector{}
	var customers []model.CustomerInfo
	for c := 0; c < 9; c++ {
		name := fmt.Sprintf("cust%02d", c)
		pop := 0
		for i, t := range own {
			n := (c+2*i)%4 + 1
			current.Set(t.ID, name, float64(n))
			pop += n
		}
		customers = append(customers, model.CustomerInfo{Name: name, Population: pop + 3, PowerType: model.Consumption})
		e := make(model.EnergyVector, 24)
		for h := range e {
			e[h] = 1.0/float64(c+3) + float64(h%7)/float64(c+11)
		}
		energy[name] = e
	}
	w.in.OwnTariffs = own
	w.in.Current = current
	w.in.Customers = customers
	w.in.Energy = energy
	w.deps.Utility = utility.New(utility.Config{DistributionFee: -0.01, PublicationFee: -1, RevocationFee: -1, BalancingUnitCost: -0.0003},
		migrationFixture{softmaxMigration: softmaxMigration{scale: 1}, own: own}, nil)
	return w
}

func (w world) pipeline() *Pipeline {
	return NewPipeline(w.deps, WithdrawFees{})
}
