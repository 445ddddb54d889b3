package eventbus

// Event is any value carried by the broker's bus. The agent publishes
// events.StrategyEvent and events.DecisionEvent values.
type Event any

// EventBus is the untyped bus shared by the agent and its collectors.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }

var _ EventBus = (*Bus)(nil)
