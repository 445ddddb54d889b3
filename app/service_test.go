package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/monitoring"
)

type worldMarket struct {
	f       fixture
	applied [][]model.Action
	fail    bool
}

func (m *worldMarket) Observe() Observation { return m.f.observe() }

func (m *worldMarket) Apply(actions []model.Action) error {
	if m.fail {
		return errors.New("market closed")
	}
	m.applied = append(m.applied, actions)
	_, err := m.f.world.Apply(actions)
	return err
}

func TestServiceRun(t *testing.T) {
	f := newFixture(t)
	svc, err := New(f.cfg, f.predictors())
	require.NoError(t, err)

	m := &worldMarket{f: f}
	require.NoError(t, svc.Run(context.Background(), m, 0, 3))
	assert.Len(t, m.applied, 3)
	assert.Equal(t, 3, f.world.Timeslot())
	assert.NoError(t, svc.Close())
}

func TestServiceStepApplyError(t *testing.T) {
	f := newFixture(t)
	svc, err := New(f.cfg, f.predictors())
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	mon := &monitoring.MemoryMonitor{}
	svc.SetMonitor(mon)

	_, err = svc.Step(context.Background(), &worldMarket{f: f, fail: true})
	assert.ErrorContains(t, err, "market closed")
	captured := mon.Captured()
	require.Len(t, captured, 1)
	assert.ErrorContains(t, captured[0].Err, "market closed")
	assert.Equal(t, "0", captured[0].Tags["timeslot"])
	assert.Equal(t, svc.Broker.Name(), captured[0].Tags["broker"])
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	svc, err := New(f.cfg, f.predictors())
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &worldMarket{f: f}
	mon := &monitoring.MemoryMonitor{}
	svc.SetMonitor(mon)
	assert.NoError(t, svc.Run(ctx, m, 0, 0))
	assert.Empty(t, m.applied)
	assert.Empty(t, mon.Captured())
}

func TestNewRejectsBadJournal(t *testing.T) {
	f := newFixture(t)
	f.cfg.Journal.Backend = "postgres"
	_, err := New(f.cfg, f.predictors())
	assert.Error(t, err)
}

func TestNewRejectsBadSentryRate(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sentry.DSN = "http://public@127.0.0.1:1/1"
	f.cfg.Sentry.TracesSampleRate = 2
	assert.Error(t, f.cfg.Validate())
}
