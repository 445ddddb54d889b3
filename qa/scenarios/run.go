package scenarios

import (
	"context"
	"fmt"

	"github.com/kilianp07/tariffbroker/app"
	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/simulator"
)

// Report summarises a scenario run.
type Report struct {
	Scenario        string
	Strategy        string
	Timeslots       int
	Publishes       int
	Revokes         int
	NoOps           int
	WarmupOverrides int
	// Subscribers is the number of own subscribers after the last timeslot.
	Subscribers float64
	Steps       []simulator.StepResult
	Decisions   []app.Decision
}

// Prepare builds the world and the broker configuration of a scenario. The
// scenario's strategy and revocation settings override cfg, which is not
// modified.
func Prepare(sc *Scenario, cfg *config.Config, opts app.Options) (*WorldMarket, *config.Config, error) {
	c := *cfg
	if sc.Strategy != nil {
		c.Optimizer.Strategy = *sc.Strategy
	}
	if sc.Revocation {
		c.Decision.RevocationEnabled = true
	}
	mcfg := sc.Market
	if mcfg.Self == "" {
		mcfg.Self = c.Broker.Name
	}
	world, err := simulator.NewWorld(mcfg, opts.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	c.Broker.Name = world.Self()
	c.Decision.HourOffset = world.HourOffset()
	return &WorldMarket{World: world}, &c, nil
}

// Run plays the scenario with a fresh broker.
func Run(ctx context.Context, sc *Scenario, cfg *config.Config, opts app.Options) (*Report, error) {
	market, c, err := Prepare(sc, cfg, opts)
	if err != nil {
		return nil, err
	}
	broker, err := app.NewBroker(c, Predictors(market.World), opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	rep := &Report{Scenario: sc.Name, Strategy: broker.Strategy()}
	for i := 0; i < sc.Timeslots; i++ {
		d, err := broker.Decide(ctx, market.Observe())
		if err != nil {
			return rep, err
		}
		if err := market.Apply(d.Actions); err != nil {
			return rep, fmt.Errorf("scenario %s ts %d: %w", sc.Name, d.Event.Timeslot, err)
		}
		rep.Timeslots++
		rep.Decisions = append(rep.Decisions, d)
		rep.count(d)
	}
	rep.Steps = market.Steps
	if n := len(market.Steps); n > 0 {
		rep.Subscribers = market.Steps[n-1].Subscribers
	}
	return rep, nil
}

func (r *Report) count(d app.Decision) {
	if d.Selection.WarmupOverride {
		r.WarmupOverrides++
	}
	if len(d.Actions) == 0 {
		r.NoOps++
		return
	}
	switch d.Actions[0].Kind {
	case model.Publish:
		r.Publishes++
	case model.Revoke:
		r.Revokes++
	}
}

// Check compares the report with the expected bounds.
func (r *Report) Check(e Expected) error {
	if r.Publishes < e.MinPublishes {
		return fmt.Errorf("%s: %d publishes, expected at least %d", r.Scenario, r.Publishes, e.MinPublishes)
	}
	if e.MaxPublishes != nil && r.Publishes > *e.MaxPublishes {
		return fmt.Errorf("%s: %d publishes, expected at most %d", r.Scenario, r.Publishes, *e.MaxPublishes)
	}
	if e.MaxRevokes != nil && r.Revokes > *e.MaxRevokes {
		return fmt.Errorf("%s: %d revokes, expected at most %d", r.Scenario, r.Revokes, *e.MaxRevokes)
	}
	if e.MinSubscribers != nil && r.Subscribers < *e.MinSubscribers {
		return fmt.Errorf("%s: %.0f subscribers, expected at least %.0f", r.Scenario, r.Subscribers, *e.MinSubscribers)
	}
	return nil
}
