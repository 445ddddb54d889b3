package simulator

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kilianp07/tariffbroker/core/charges"
	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
	"github.com/kilianp07/tariffbroker/core/shifting"
)

// World is a synthetic market with one observed broker. It implements
// every prediction contract from its own ground truth and moves customers
// when the broker acts.
type World struct {
	cfg         Config
	customers   []model.CustomerInfo
	own         []*model.TariffSpec
	competitors []*model.TariffSpec
	subs        model.Subscriptions
	timeslot    int

	energy    *ProfileEnergy
	migration *LogitMigration
	curve     *LinearCostCurve
	prices    *PriceHistory
	repo      *prediction.MemoryRepository
	charges   *charges.Estimator
	rng       *rand.Rand
}

// StepResult summarises one simulated timeslot.
type StepResult struct {
	Timeslot      int
	Subscribers   float64
	NetDemand     float64
	ClearingPrice float64
}

// NewWorld builds the initial market state.
func NewWorld(cfg Config, log logger.Logger) (*World, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:    cfg,
		subs:   model.Subscriptions{},
		energy: NewProfileEnergy(cfg.Customers, cfg.HourOffset),
		curve:  NewLinearCostCurve(cfg.CostCurve, cfg.HourOffset),
		prices: NewPriceHistory(cfg.Prices.History, cfg.Prices.Window),
		repo:   prediction.NewMemoryRepository(),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	w.charges = charges.NewEstimator(cfg.HourOffset, log)
	for _, c := range cfg.Customers {
		w.customers = append(w.customers, c.Info())
	}
	w.migration = NewLogitMigration(w.customers, cfg.Migration)
	for _, d := range cfg.OwnTariffs {
		w.addOwn(d.Spec())
	}
	for _, d := range cfg.Competitors {
		spec := d.Spec()
		w.competitors = append(w.competitors, spec)
		w.repo.Add(spec)
	}
	for _, c := range cfg.Customers {
		w.assignInitial(c)
	}
	return w, nil
}

func (w *World) addOwn(spec *model.TariffSpec) {
	w.own = append(w.own, spec)
	w.repo.Add(spec)
	if _, ok := w.subs[spec.ID]; !ok {
		w.subs[spec.ID] = map[string]float64{}
	}
}

// assignInitial spreads the customer's own share evenly over the usable own tariffs.
func (w *World) assignInitial(c CustomerDef) {
	info := c.Info()
	var usable []*model.TariffSpec
	for _, t := range w.own {
		if info.PowerType.CanUse(t.PowerType) {
			usable = append(usable, t)
		}
	}
	members := int(math.Round(float64(c.Population) * c.OwnShare))
	if len(usable) == 0 || members == 0 {
		return
	}
	each, rest := members/len(usable), members%len(usable)
	for i, t := range usable {
		n := each
		if i < rest {
			n++
		}
		if n > 0 {
			w.subs.Set(t.ID, c.Name, float64(n))
		}
	}
}

// Timeslot is the current timeslot.
func (w *World) Timeslot() int { return w.timeslot }

// Self is the observed broker's name.
func (w *World) Self() string { return w.cfg.Self }

// NumBrokers is the number of competing brokers.
func (w *World) NumBrokers() int { return w.cfg.NumBrokers }

// Customers lists every customer population.
func (w *World) Customers() []model.CustomerInfo { return w.customers }

// Subscriptions returns a copy of the broker's current subscriptions.
func (w *World) Subscriptions() model.Subscriptions { return w.subs.Clone() }

// OwnTariffs lists the broker's active tariffs.
func (w *World) OwnTariffs() []*model.TariffSpec { return append([]*model.TariffSpec(nil), w.own...) }

// Competitors lists the other brokers' tariffs.
func (w *World) Competitors() []*model.TariffSpec {
	return append([]*model.TariffSpec(nil), w.competitors...)
}

// Energy returns the world's energy predictor.
func (w *World) Energy() *ProfileEnergy { return w.energy }

// Migration returns the world's customer migration model.
func (w *World) Migration() *LogitMigration { return w.migration }

// CostCurve returns the world's wholesale cost curve.
func (w *World) CostCurve() *LinearCostCurve { return w.curve }

// Prices returns the wholesale price history.
func (w *World) Prices() *PriceHistory { return w.prices }

// Repository holds every tariff on the market.
func (w *World) Repository() *prediction.MemoryRepository { return w.repo }

// HourOffset is the hour of day of timeslot zero.
func (w *World) HourOffset() int { return w.cfg.HourOffset }

// Apply executes the broker's actions, lets customers migrate, clears the
// wholesale market and advances one timeslot. No action lets customers
// drift under the current offers.
func (w *World) Apply(actions []model.Action) (StepResult, error) {
	if len(actions) == 0 {
		actions = []model.Action{model.NoOpAction()}
	}
	for _, a := range actions {
		if err := w.apply(a); err != nil {
			return StepResult{}, err
		}
	}
	w.roundSubscriptions()

	next := w.timeslot + 1
	own := w.energy.NetDemand(w.subs, w.customers, next)
	total := own + w.curve.CompetitorDemand(w.timeslot, next)
	price := w.curve.ClearingPrice(total)
	if w.cfg.Prices.Noise > 0 {
		price = math.Max(price+w.rng.NormFloat64()*w.cfg.Prices.Noise, w.cfg.CostCurve.Intercept/10)
	}
	w.prices.Record(price)
	w.timeslot = next
	for _, arr := range w.cfg.Arrivals {
		if arr.At == w.timeslot {
			spec := arr.Tariff.Spec()
			w.competitors = append(w.competitors, spec)
			w.repo.Add(spec)
		}
	}

	var subscribers float64
	for id := range w.subs {
		subscribers += w.subs.TariffTotal(id)
	}
	return StepResult{Timeslot: w.timeslot, Subscribers: subscribers, NetDemand: own, ClearingPrice: price}, nil
}

func (w *World) apply(a model.Action) error {
	switch a.Kind {
	case model.Publish:
		if a.Tariff == nil {
			return fmt.Errorf("publish without tariff")
		}
		w.subs = w.migration.Predict(a.Tariff, w.trueCharges(a.Tariff), w.subs, w.competitors, w.timeslot)
		w.addOwn(a.Tariff)
	case model.Revoke:
		if a.Tariff == nil {
			return fmt.Errorf("revoke without tariff")
		}
		if !w.isOwn(a.Tariff.ID) {
			return fmt.Errorf("revoke of unknown tariff %s", a.Tariff.ID)
		}
		w.subs = w.migration.PredictRevoke(a.Tariff, w.trueCharges(nil), w.subs, w.competitors, w.timeslot)
		w.removeOwn(a.Tariff.ID)
	default:
		w.subs = w.migration.Predict(nil, w.trueCharges(nil), w.subs, w.competitors, w.timeslot)
	}
	for _, t := range w.own {
		if _, ok := w.subs[t.ID]; !ok {
			w.subs[t.ID] = map[string]float64{}
		}
	}
	return nil
}

func (w *World) isOwn(id string) bool {
	for _, t := range w.own {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (w *World) removeOwn(id string) {
	out := w.own[:0]
	for _, t := range w.own {
		if t.ID != id {
			out = append(out, t)
		}
	}
	w.own = out
	w.repo.Remove(id)
	delete(w.subs, id)
}

// trueCharges evaluates every tariff on the market, plus extra, with the
// customers' real usage.
func (w *World) trueCharges(extra *model.TariffSpec) model.Charges {
	tariffs := make([]*model.TariffSpec, 0, len(w.own)+len(w.competitors)+1)
	tariffs = append(tariffs, w.own...)
	tariffs = append(tariffs, w.competitors...)
	if extra != nil {
		tariffs = append(tariffs, extra)
	}
	energy := make(map[string]model.EnergyVector, len(w.customers))
	exposed := model.Subscriptions{}
	for _, c := range w.customers {
		energy[c.Name] = w.energy.Forecast(c, w.cfg.Migration.Horizon, w.timeslot)
		for _, t := range tariffs {
			if c.PowerType.CanUse(t.PowerType) {
				exposed.Set(t.ID, c.Name, float64(c.Population))
			}
		}
	}
	out := shifting.Identity{}.UpdateEstimatedEnergyWithShifting(energy, exposed, tariffs, w.timeslot)
	return w.charges.EstimateRelevantTariffCharges(tariffs, w.customers, out.Energy, w.timeslot)
}

// roundSubscriptions turns predicted counts into whole subscribers without
// exceeding any population.
func (w *World) roundSubscriptions() {
	ids := ownIDs(w.subs)
	for _, c := range w.customers {
		total := 0.0
		for _, id := range ids {
			n := math.Floor(w.subs.Count(id, c.Name) + 0.5)
			if total+n > float64(c.Population) {
				n = float64(c.Population) - total
			}
			if n <= 0 {
				delete(w.subs[id], c.Name)
				continue
			}
			w.subs.Set(id, c.Name, n)
			total += n
		}
	}
}
