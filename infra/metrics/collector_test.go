package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/events"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/internal/eventbus"
)

type memorySink struct {
	mu         sync.Mutex
	decisions  []coremetrics.DecisionRecord
	strategies []coremetrics.StrategyRecord
}

func (m *memorySink) RecordDecision(r coremetrics.DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, r)
	return nil
}

func (m *memorySink) RecordStrategyEvent(r coremetrics.StrategyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies = append(m.strategies, r)
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &memorySink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	// the subscription is registered before StartEventCollector returns
	bus.Publish(events.StrategyEvent{Strategy: "incremental", Action: events.ActionIncrementalFallback, Err: errors.New("boom")})
	bus.Publish(events.DecisionEvent{Timeslot: 7, Action: model.NoOpAction(), Utility: 1})
	bus.Publish("ignored")
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop")
	}
	require.Len(t, sink.decisions, 1)
	assert.Equal(t, 7, sink.decisions[0].Timeslot)
	require.Len(t, sink.strategies, 1)
	assert.Equal(t, "boom", sink.strategies[0].Error)
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
	_, open := <-done
	assert.False(t, open)
}
