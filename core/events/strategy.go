package events

// Strategy event actions.
const (
	ActionFirstCall             = "first_call"
	ActionSwitched              = "switched"
	ActionCounterPeriodicBackup = "counter_periodic_backup"
	ActionIncrementalFallback   = "incremental_fallback"
	ActionShiftingDegraded      = "shifting_degraded"
)

// StrategyEvent is emitted when a strategy delegates or degrades.
type StrategyEvent struct {
	Strategy string
	Action   string
	Timeslot int
	Err      error
}

// StrategyPublisher receives strategy events. Implementations must not block.
type StrategyPublisher interface {
	Publish(StrategyEvent)
}

// NopStrategyPublisher drops every event.
type NopStrategyPublisher struct{}

func (NopStrategyPublisher) Publish(StrategyEvent) {}
