// Package utility turns predicted customer behaviour into one profit figure
// per candidate action.
package utility

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
)

// ErrHorizonMismatch reports energy and price vectors of different length.
var ErrHorizonMismatch = errors.New("prediction horizon mismatch")

// Input is the decision-cycle context shared by every candidate evaluation.
// Nothing in it is modified by the estimator.
type Input struct {
	Current     model.Subscriptions
	OwnTariffs  []*model.TariffSpec
	Competitors []*model.TariffSpec
	Charges     model.Charges
	Shifted     model.ShiftedEnergyMap
	// RawEnergy is used for pairs missing from Shifted.
	RawEnergy map[string]model.EnergyVector
	Market    prediction.MarketPricePredictor
	CostCurve prediction.CostCurvePredictor
	Timeslot  int
}

// Breakdown itemises one utility. Every term is signed from the broker's
// perspective.
type Breakdown struct {
	Income       float64 `json:"income"`
	Wholesale    float64 `json:"wholesale"`
	Distribution float64 `json:"distribution"`
	Balancing    float64 `json:"balancing"`
	Withdrawal   float64 `json:"withdrawal"`
	Fee          float64 `json:"fee"`
}

// Total returns the utility.
func (b Breakdown) Total() float64 {
	return b.Income + b.Wholesale + b.Distribution + b.Balancing + b.Withdrawal + b.Fee
}

// Estimator computes utilities. It holds no per-call state, so repeated calls
// with the same input yield the same ranking.
type Estimator struct {
	cfg       Config
	migration prediction.MigrationPredictor
	log       logger.Logger
}

// New returns an Estimator. The config is completed with defaults.
func New(cfg Config, migration prediction.MigrationPredictor, log logger.Logger) *Estimator {
	cfg.SetDefaults()
	return &Estimator{cfg: cfg, migration: migration, log: logger.OrNop(log)}
}

// Config returns the effective configuration.
func (e *Estimator) Config() Config { return e.cfg }

// EstimateUtilities ranks publish candidates. The NoOp action is ranked only
// if present in actions.
func (e *Estimator) EstimateUtilities(actions []model.Action, in Input) *model.Ranking {
	r := model.NewRanking()
	for _, a := range actions {
		u, _ := e.Evaluate(a, in)
		r.Put(u, a)
	}
	return r
}

// EstimateRevokeUtilities ranks revoking each of the given tariffs against
// doing nothing.
func (e *Estimator) EstimateRevokeUtilities(revoke []*model.TariffSpec, in Input) *model.Ranking {
	actions := make([]model.Action, 0, len(revoke)+1)
	actions = append(actions, model.NoOpAction())
	for _, t := range revoke {
		actions = append(actions, model.RevokeAction(t))
	}
	return e.EstimateUtilities(actions, in)
}

// Evaluate returns the utility of one action. A candidate whose evaluation
// cannot complete gets zero utility and the error is logged.
func (e *Estimator) Evaluate(a model.Action, in Input) (float64, Breakdown) {
	var predicted model.Subscriptions
	switch a.Kind {
	case model.Revoke:
		predicted = e.migration.PredictRevoke(a.Tariff, in.Charges, in.Current, in.Competitors, in.Timeslot)
	default:
		predicted = e.migration.Predict(a.Tariff, in.Charges, in.Current, in.Competitors, in.Timeslot)
	}
	b, err := e.breakdown(a, predicted, in)
	if err != nil {
		e.log.Errorf("utility of %s at ts %d: %v", a, in.Timeslot, err)
		return 0, Breakdown{}
	}
	return b.Total(), b
}

func (e *Estimator) fee(a model.Action) float64 {
	switch a.Kind {
	case model.Publish:
		return e.cfg.PublicationFee
	case model.Revoke:
		return e.cfg.RevocationFee
	default:
		return 0
	}
}

func (e *Estimator) breakdown(a model.Action, predicted model.Subscriptions, in Input) (Breakdown, error) {
	specs := make(map[string]*model.TariffSpec, len(in.OwnTariffs)+1)
	for _, t := range in.OwnTariffs {
		specs[t.ID] = t
	}
	if a.Tariff != nil {
		specs[a.Tariff.ID] = a.Tariff
	}

	b := Breakdown{Fee: e.fee(a)}
	var consumption, production model.EnergyVector
	for _, tariffID := range predicted.TariffIDs() {
		spec, ok := specs[tariffID]
		if !ok {
			e.log.Errorf("predicted subscriptions reference unknown tariff %s", tariffID)
			continue
		}
		for _, customer := range predicted.Customers(tariffID) {
			count := predicted[tariffID][customer]
			if est, ok := in.Charges.Get(customer, tariffID); ok {
				b.Income -= est.Bill * count
			}
			if decrease := in.Current.Count(tariffID, customer) - count; decrease > 0 {
				b.Withdrawal += decrease * spec.EarlyWithdrawPayment
			}
			energy := e.energyOf(customer, tariffID, in)
			if energy == nil {
				continue
			}
			if consumption == nil {
				consumption = make(model.EnergyVector, len(energy))
				production = make(model.EnergyVector, len(energy))
			}
			if len(energy) != len(consumption) {
				return Breakdown{}, fmt.Errorf("%w: %s has %d slots, expected %d", ErrHorizonMismatch, customer, len(energy), len(consumption))
			}
			for t, v := range energy {
				if v >= 0 {
					consumption[t] += v * count
				} else {
					production[t] += v * count
				}
			}
		}
	}
	// Customers the prediction drops entirely leave their tariff too.
	for _, tariffID := range in.Current.TariffIDs() {
		spec, ok := specs[tariffID]
		if !ok || (a.Kind == model.Revoke && a.Tariff.ID == tariffID) {
			continue
		}
		for _, customer := range in.Current.Customers(tariffID) {
			count := in.Current[tariffID][customer]
			if _, kept := predicted[tariffID][customer]; !kept && count > 0 {
				b.Withdrawal += count * spec.EarlyWithdrawPayment
			}
		}
	}
	if consumption == nil {
		return b, nil
	}

	net := consumption.Clone()
	floats.Add(net, production)
	for t := range net {
		b.Distribution += math.Max(math.Abs(consumption[t]), math.Abs(production[t])) * e.cfg.DistributionFee
		b.Balancing += math.Abs(net[t]) * e.cfg.BalancingUnitCost
	}
	wholesale, err := e.wholesale(net, in)
	if err != nil {
		return Breakdown{}, err
	}
	b.Wholesale = wholesale
	return b, nil
}

func (e *Estimator) energyOf(customer, tariffID string, in Input) model.EnergyVector {
	if se, ok := in.Shifted.Get(customer, tariffID); ok {
		return se.Energy
	}
	return in.RawEnergy[customer]
}

// wholesale returns the signed cost of procuring net energy.
func (e *Estimator) wholesale(net model.EnergyVector, in Input) (float64, error) {
	if e.cfg.WholesaleMode == WholesaleFlat {
		prices := in.Market.PriceForecast(len(net))
		if len(prices) != len(net) {
			return 0, fmt.Errorf("%w: %d prices for %d energy slots", ErrHorizonMismatch, len(prices), len(net))
		}
		return -floats.Dot(prices, net), nil
	}
	fudge := in.CostCurve.FudgeFactor(in.Timeslot)
	var cost float64
	for i, v := range net {
		future := in.Timeslot + 1 + i
		unit := in.CostCurve.PredictUnitCost(in.Timeslot, future, v, in.CostCurve.CompetitorDemand(in.Timeslot, future))
		cost += (unit + fudge) * v
	}
	return cost, nil
}
