package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/tariffbroker/core/events"
)

// Publisher announces decisions to observers.
type Publisher interface {
	PublishDecision(ctx context.Context, ev events.DecisionEvent) error
	Close() error
}

// NopPublisher drops every decision.
type NopPublisher struct{}

func (NopPublisher) PublishDecision(context.Context, events.DecisionEvent) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

// MemoryPublisher keeps published messages in memory. It is used in tests
// and by the simulate command.
type MemoryPublisher struct {
	mu       sync.Mutex
	Messages []DecisionMessage
	// FailTimeslots makes PublishDecision fail for the listed timeslots.
	FailTimeslots map[int]bool
}

// NewMemoryPublisher creates an empty MemoryPublisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{FailTimeslots: map[int]bool{}}
}

func (m *MemoryPublisher) PublishDecision(_ context.Context, ev events.DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTimeslots[ev.Timeslot] {
		return fmt.Errorf("publish failed for timeslot %d", ev.Timeslot)
	}
	m.Messages = append(m.Messages, MessageFromEvent(ev))
	return nil
}

// Published returns a copy of the recorded messages.
func (m *MemoryPublisher) Published() []DecisionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DecisionMessage(nil), m.Messages...)
}

func (m *MemoryPublisher) Close() error { return nil }

var (
	_ Publisher = (*DecisionPublisher)(nil)
	_ Publisher = (*MemoryPublisher)(nil)
	_ Publisher = NopPublisher{}
)

// New returns a DecisionPublisher when a broker is configured and a
// NopPublisher otherwise.
func New(cfg Config, broker string) (Publisher, error) {
	if !cfg.Enabled() {
		return NopPublisher{}, nil
	}
	return NewDecisionPublisher(cfg, broker)
}
