package optimizer

import (
	"errors"

	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
)

// Strategy names used in configuration.
const (
	OneShotName            = "one-shot"
	BinaryOneShotName      = "binary-one-shot"
	IncrementalName        = "incremental"
	TOUFixedMarginName     = "tou-fixed-margin"
	FirstTimeDifferentName = "first-time-different"
	CounterPeriodicName    = "counter-periodic"
)

var (
	// ErrNoCandidates reports that the generator produced nothing to rank.
	ErrNoCandidates = errors.New("no candidate tariffs")
	// ErrNoSeed reports that no fixed-rate tariff was available to refine.
	ErrNoSeed = errors.New("no seed tariff")
)

// Context describes the competition.
type Context struct {
	NumBrokers      int
	DistributionFee float64
}

// Input is everything a strategy sees in one timeslot. Strategies do not
// modify it.
type Input struct {
	Self        string
	PowerType   model.PowerType
	Customers   []model.CustomerInfo
	Current     model.Subscriptions
	OwnTariffs  []*model.TariffSpec
	Energy      map[string]model.EnergyVector
	Competitors []*model.TariffSpec
	Market      prediction.MarketPricePredictor
	Context     Context
	CostCurve   prediction.CostCurvePredictor
	Timeslot    int
}

// Strategy ranks candidate actions for one timeslot. The ranking always
// holds the NoOp action.
type Strategy interface {
	Name() string
	OptimizeTariffs(in Input) *model.Ranking
}

// seeder is a strategy that also exposes the cycle it evaluated, so that
// refining strategies can evaluate new tariffs in the same context.
type seeder interface {
	Strategy
	optimize(in Input) (*model.Ranking, *cycle)
}
