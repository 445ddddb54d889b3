package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/tariffbroker/core/events"
)

func TestTypedBusFanOut(t *testing.T) {
	bus := NewTyped[events.StrategyEvent]()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(events.StrategyEvent{Strategy: "counter-periodic", Action: events.ActionCounterPeriodicBackup})

	assert.Equal(t, events.ActionCounterPeriodicBackup, (<-a).Action)
	assert.Equal(t, events.ActionCounterPeriodicBackup, (<-b).Action)
}

func TestTypedBusDropsWhenFull(t *testing.T) {
	bus := NewTypedWithBuffer[int](2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(i)
	}
	assert.Equal(t, uint64(3), bus.Dropped())
	assert.Equal(t, 0, <-ch)
	assert.Equal(t, 1, <-ch)
}

func TestTypedBusUnsubscribe(t *testing.T) {
	bus := NewTyped[float64]()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)

	bus.Publish(1.5)
	assert.Zero(t, bus.Dropped())

	bus.Close()
	assert.NotPanics(t, func() { bus.Unsubscribe(ch) })
}
