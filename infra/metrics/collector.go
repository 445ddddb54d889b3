package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/tariffbroker/core/events"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/infra/logger"
	"github.com/kilianp07/tariffbroker/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards decision and
// strategy events to the sink. It stops when the context is canceled or the
// bus is closed; the returned channel is closed once it has stopped.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.DecisionSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(sink, ev); err != nil {
					log.Errorf("record event: %v", err)
				}
			}
		}
	}()
	return done
}

func forward(sink coremetrics.DecisionSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.DecisionEvent:
		return sink.RecordDecision(coremetrics.RecordFromEvent(e))
	case events.StrategyEvent:
		r, ok := sink.(coremetrics.StrategyRecorder)
		if !ok {
			return nil
		}
		rec := coremetrics.StrategyRecord{Strategy: e.Strategy, Action: e.Action, Timeslot: e.Timeslot, Time: time.Now()}
		if e.Err != nil {
			rec.Error = e.Err.Error()
		}
		return r.RecordStrategyEvent(rec)
	}
	return nil
}
