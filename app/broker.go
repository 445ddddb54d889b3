package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/core/candidates"
	"github.com/kilianp07/tariffbroker/core/charges"
	"github.com/kilianp07/tariffbroker/core/decision"
	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/journal"
	"github.com/kilianp07/tariffbroker/core/logger"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/optimizer"
	"github.com/kilianp07/tariffbroker/core/prediction"
	"github.com/kilianp07/tariffbroker/core/shifting"
	"github.com/kilianp07/tariffbroker/core/utility"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
	"github.com/kilianp07/tariffbroker/internal/eventbus"
)

// topEntries is the number of ranking entries kept in the journal.
const topEntries = 5

// Predictors are the external forecasters the broker consumes.
type Predictors struct {
	Energy     prediction.EnergyPredictor
	Migration  prediction.MigrationPredictor
	CostCurve  prediction.CostCurvePredictor
	Market     prediction.MarketPricePredictor
	Repository prediction.TariffRepository
}

func (p Predictors) validate() error {
	if p.Energy == nil || p.Migration == nil || p.CostCurve == nil || p.Market == nil {
		return errors.New("energy, migration, cost curve and market predictors are required")
	}
	if p.Repository == nil {
		return errors.New("tariff repository is required")
	}
	return nil
}

// Observation is the market state the broker sees at the start of a timeslot.
type Observation struct {
	Timeslot    int
	Customers   []model.CustomerInfo
	Current     model.Subscriptions
	OwnTariffs  []*model.TariffSpec
	Competitors []*model.TariffSpec
	NumBrokers  int
}

// Decision is the outcome of one Decide call.
type Decision struct {
	Actions   []model.Action
	Selection decision.Selection
	Event     events.DecisionEvent
}

// Broker owns the strategy tree and selector of one agent. Strategies keep
// state across timeslots, so a Broker must live as long as the agent and
// Decide must be called once per timeslot, in order.
type Broker struct {
	name      string
	powerType model.PowerType
	horizon   int
	fee       float64
	revoking  bool

	preds     Predictors
	strategy  optimizer.Strategy
	pipeline  *optimizer.Pipeline
	revoker   *decision.TariffRevoker
	selector  *decision.ActionSelector
	journal   journal.Store
	sink      coremetrics.DecisionSink
	bus       eventbus.EventBus
	publisher mqtt.Publisher
	log       logger.Logger
}

// Options are the optional outputs of a Broker. Nil fields are replaced by
// no-op implementations.
type Options struct {
	Journal   journal.Store
	Sink      coremetrics.DecisionSink
	Bus       eventbus.EventBus
	Publisher mqtt.Publisher
	Log       logger.Logger
}

// busPublisher adapts the event bus to the optimizer's strategy events.
type busPublisher struct{ bus eventbus.EventBus }

func (b busPublisher) Publish(ev events.StrategyEvent) { b.bus.Publish(ev) }

// NewBroker builds the decision pipeline described by cfg.
func NewBroker(cfg *config.Config, preds Predictors, opts Options) (*Broker, error) {
	if err := preds.validate(); err != nil {
		return nil, err
	}
	log := logger.OrNop(opts.Log)
	b := &Broker{
		name:      cfg.Broker.Name,
		powerType: cfg.Broker.Type(),
		preds:     preds,
		journal:   opts.Journal,
		sink:      opts.Sink,
		bus:       opts.Bus,
		publisher: opts.Publisher,
		log:       log,
		revoking:  cfg.Decision.RevocationEnabled,
	}
	if b.journal == nil {
		b.journal = journal.NopStore{}
	}
	if b.sink == nil {
		b.sink = coremetrics.NopSink{}
	}
	if b.publisher == nil {
		b.publisher = mqtt.NopPublisher{}
	}
	var stratEvents events.StrategyPublisher = events.NopStrategyPublisher{}
	if b.bus != nil {
		stratEvents = busPublisher{bus: b.bus}
	}

	hourOffset := cfg.Decision.HourOffset
	util := utility.New(cfg.Utility, preds.Migration, log)
	b.horizon = util.Config().Horizon
	b.fee = util.Config().DistributionFee

	var shift shifting.Predictor = shifting.Identity{}
	if cfg.Shifting.Mode == config.ShiftingHeuristic {
		sb := &shifting.HeuristicSandbox{
			Repo:       preds.Repository,
			Elasticity: cfg.Shifting.Elasticity,
			Penalty:    cfg.Shifting.Penalty,
			HourOffset: hourOffset,
		}
		shift = shifting.NewModelBased(preds.Repository, sb, log)
	}

	builder := optimizer.NewBuilder(cfg.Optimizer, optimizer.Deps{
		Candidates: candidates.New(cfg.Candidates, log),
		Shifting:   shift,
		Charges:    charges.NewEstimator(hourOffset, log),
		Utility:    util,
		Log:        log,
		Events:     stratEvents,
	}, hourOffset)
	strategy, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build strategy: %w", err)
	}
	b.strategy = strategy
	b.pipeline = builder.Pipeline()
	b.revoker = decision.NewTariffRevoker(util, log)
	b.selector = decision.NewActionSelector(cfg.Decision, log)
	return b, nil
}

// Name is the broker's market name.
func (b *Broker) Name() string { return b.name }

// Strategy is the root strategy name.
func (b *Broker) Strategy() string { return b.strategy.Name() }

// Decide runs one decision cycle and returns at most one action. Output
// failures are logged and never prevent the decision.
func (b *Broker) Decide(ctx context.Context, obs Observation) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	in := b.input(obs)
	publish := b.strategy.OptimizeTariffs(in)

	var revoke *model.Ranking
	if b.revoking && len(in.OwnTariffs) > 0 {
		revoke = b.revoker.RevokeRanking(in.OwnTariffs, b.pipeline.BaselineInput(in))
		if worth := b.revoker.SelectTariffsToRevoke(revoke); len(worth) > 0 {
			b.log.Debugf("ts %d: %d tariffs worth revoking, best %s", obs.Timeslot, len(worth), worth[0])
		}
	}

	sel := b.selector.Select(publish, revoke, obs.Timeslot)
	ev := events.DecisionEvent{
		ID:             uuid.NewString(),
		Broker:         b.name,
		Timeslot:       obs.Timeslot,
		Strategy:       b.strategy.Name(),
		Action:         sel.Chosen.Action,
		Utility:        sel.Chosen.Utility,
		Candidates:     publish.Len(),
		WarmupOverride: sel.WarmupOverride,
		DecidedAt:      time.Now().UTC(),
	}
	if noop, ok := sel.Ranking.NoOpUtility(); ok {
		ev.NoOpUtility = noop
	}
	b.log.Infof("ts %d: %s (utility %.2f, noop %.2f, %d ranked)", obs.Timeslot, ev.Action, ev.Utility, ev.NoOpUtility, sel.Ranking.Len())

	b.record(ctx, ev, sel)
	return Decision{Actions: sel.Actions, Selection: sel, Event: ev}, nil
}

// input assembles the strategy input, restricted to the broker's power type.
func (b *Broker) input(obs Observation) optimizer.Input {
	energy := make(map[string]model.EnergyVector, len(obs.Customers))
	for _, c := range obs.Customers {
		energy[c.Name] = b.preds.Energy.Forecast(c, b.horizon, obs.Timeslot)
	}
	var own []*model.TariffSpec
	for _, t := range obs.OwnTariffs {
		if t.PowerType == b.powerType {
			own = append(own, t)
		}
	}
	return optimizer.Input{
		Self:        b.name,
		PowerType:   b.powerType,
		Customers:   obs.Customers,
		Current:     obs.Current,
		OwnTariffs:  own,
		Energy:      energy,
		Competitors: obs.Competitors,
		Market:      b.preds.Market,
		Context:     optimizer.Context{NumBrokers: obs.NumBrokers, DistributionFee: b.fee},
		CostCurve:   b.preds.CostCurve,
		Timeslot:    obs.Timeslot,
	}
}

func (b *Broker) record(ctx context.Context, ev events.DecisionEvent, sel decision.Selection) {
	rec := journal.Record{
		ID:             ev.ID,
		Broker:         ev.Broker,
		Timeslot:       ev.Timeslot,
		Strategy:       ev.Strategy,
		Action:         ev.Action,
		Utility:        ev.Utility,
		NoOpUtility:    ev.NoOpUtility,
		Evaluations:    ev.Candidates,
		WarmupOverride: ev.WarmupOverride,
		Top:            sel.Ranking.Top(topEntries),
		DecidedAt:      ev.DecidedAt,
	}
	if err := b.journal.Append(ctx, rec); err != nil {
		b.log.Errorf("journal ts %d: %v", ev.Timeslot, err)
	}
	if r, ok := b.sink.(coremetrics.RankingRecorder); ok {
		snap := coremetrics.RankingSnapshot{Timeslot: ev.Timeslot, Entries: rec.Top, Time: ev.DecidedAt}
		if err := r.RecordRanking(snap); err != nil {
			b.log.Errorf("record ranking ts %d: %v", ev.Timeslot, err)
		}
	}
	if b.bus != nil {
		b.bus.Publish(ev)
	} else if err := b.sink.RecordDecision(coremetrics.RecordFromEvent(ev)); err != nil {
		b.log.Errorf("record decision ts %d: %v", ev.Timeslot, err)
	}
	if err := b.publisher.PublishDecision(ctx, ev); err != nil {
		b.log.Errorf("publish decision ts %d: %v", ev.Timeslot, err)
	}
}
