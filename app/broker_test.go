package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/factory"
	"github.com/kilianp07/tariffbroker/core/journal"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
	"github.com/kilianp07/tariffbroker/internal/eventbus"
	"github.com/kilianp07/tariffbroker/simulator"
)

type fixture struct {
	world *simulator.World
	cfg   *config.Config
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	world, err := simulator.NewWorld(simulator.Config{
		Self:       "tariffbroker",
		NumBrokers: 2,
		Customers: []simulator.CustomerDef{
			{Name: "homes", Population: 100, PowerType: "CONSUMPTION", Usage: 1, OwnShare: 0.5},
			{Name: "panels", Population: 20, PowerType: "SOLAR_PRODUCTION", Usage: 2},
		},
		OwnTariffs:  []simulator.TariffDef{{PowerType: "CONSUMPTION", Rate: -0.14}},
		Competitors: []simulator.TariffDef{{Broker: "rival", PowerType: "CONSUMPTION", Rate: -0.12}},
		Prices:      simulator.PriceDef{History: []float64{0.05, 0.06, 0.04}},
	}, nil)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Utility.Horizon = 24
	cfg.Candidates.NumTariffs = 10
	cfg.Optimizer.Strategy = factory.ModuleConfig{Type: "one-shot"}
	return fixture{world: world, cfg: cfg}
}

func (f fixture) predictors() Predictors {
	return Predictors{
		Energy:     f.world.Energy(),
		Migration:  f.world.Migration(),
		CostCurve:  f.world.CostCurve(),
		Market:     f.world.Prices(),
		Repository: f.world.Repository(),
	}
}

func (f fixture) observe() Observation {
	return Observation{
		Timeslot:    f.world.Timeslot(),
		Customers:   f.world.Customers(),
		Current:     f.world.Subscriptions(),
		OwnTariffs:  f.world.OwnTariffs(),
		Competitors: f.world.Competitors(),
		NumBrokers:  f.world.NumBrokers(),
	}
}

type recordingSink struct {
	decisions []coremetrics.DecisionRecord
	rankings  []coremetrics.RankingSnapshot
}

func (s *recordingSink) RecordDecision(r coremetrics.DecisionRecord) error {
	s.decisions = append(s.decisions, r)
	return nil
}

func (s *recordingSink) RecordRanking(r coremetrics.RankingSnapshot) error {
	s.rankings = append(s.rankings, r)
	return nil
}

func TestNewBrokerValidation(t *testing.T) {
	f := newFixture(t)
	_, err := NewBroker(f.cfg, Predictors{}, Options{})
	assert.Error(t, err)

	preds := f.predictors()
	preds.Repository = nil
	_, err = NewBroker(f.cfg, preds, Options{})
	assert.Error(t, err)

	f.cfg.Optimizer.Strategy = factory.ModuleConfig{Type: "clairvoyant"}
	_, err = NewBroker(f.cfg, f.predictors(), Options{})
	assert.Error(t, err)
}

func TestDecidePublishesDuringWarmup(t *testing.T) {
	f := newFixture(t)
	store, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "j.jsonl"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, store.Close()) }()
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	b, err := NewBroker(f.cfg, f.predictors(), Options{Journal: store, Bus: bus})
	require.NoError(t, err)
	assert.Equal(t, "one-shot", b.Strategy())

	d, err := b.Decide(context.Background(), f.observe())
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, model.Publish, d.Actions[0].Kind)
	assert.Equal(t, d.Selection.Chosen.Utility, d.Event.Utility)
	assert.Equal(t, 11, d.Event.Candidates, "ten candidates and the noop")
	assert.NotEmpty(t, d.Event.ID)

	select {
	case ev := <-sub:
		de, ok := ev.(events.DecisionEvent)
		require.True(t, ok)
		assert.Equal(t, d.Event.ID, de.ID)
	case <-time.After(time.Second):
		t.Fatal("no decision event on the bus")
	}

	recs, err := store.Query(context.Background(), journal.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, d.Event.ID, recs[0].ID)
	assert.LessOrEqual(t, len(recs[0].Top), topEntries)
}

func TestDecideRanksRevocations(t *testing.T) {
	f := newFixture(t)
	f.cfg.Decision.RevocationEnabled = true
	b, err := NewBroker(f.cfg, f.predictors(), Options{})
	require.NoError(t, err)

	d, err := b.Decide(context.Background(), f.observe())
	require.NoError(t, err)
	_, ok := d.Selection.Ranking.BestOfKind(model.Revoke)
	assert.True(t, ok)
	assert.Equal(t, 1, d.Selection.Ranking.NoOpCount())
}

func TestDecideWithoutBusRecordsOnSink(t *testing.T) {
	f := newFixture(t)
	sink := &recordingSink{}
	pub := mqtt.NewMemoryPublisher()
	pub.FailTimeslots[0] = true
	b, err := NewBroker(f.cfg, f.predictors(), Options{Sink: sink, Publisher: pub})
	require.NoError(t, err)

	d, err := b.Decide(context.Background(), f.observe())
	require.NoError(t, err, "publisher failures do not abort the decision")
	require.Len(t, sink.decisions, 1)
	assert.Equal(t, model.Publish, sink.decisions[0].Kind)
	assert.Equal(t, d.Actions[0].Tariff.ID, sink.decisions[0].TariffID)
	require.Len(t, sink.rankings, 1)
	assert.Empty(t, pub.Published())
}

func TestInputKeepsOwnPowerType(t *testing.T) {
	f := newFixture(t)
	b, err := NewBroker(f.cfg, f.predictors(), Options{})
	require.NoError(t, err)

	obs := f.observe()
	obs.OwnTariffs = append(obs.OwnTariffs, model.NewTariffSpec("tariffbroker", model.Production, model.FixedRate(0.03)))
	in := b.input(obs)
	require.Len(t, in.OwnTariffs, 1)
	assert.Equal(t, model.Consumption, in.OwnTariffs[0].PowerType)
	assert.Len(t, in.Energy, 2)
	assert.Len(t, in.Energy["homes"], 24)
	assert.Negative(t, in.Energy["panels"][0])
	assert.Equal(t, -0.01, in.Context.DistributionFee)
}

func TestDecideCancelled(t *testing.T) {
	f := newFixture(t)
	b, err := NewBroker(f.cfg, f.predictors(), Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Decide(ctx, f.observe())
	assert.ErrorIs(t, err, context.Canceled)
}
