package events

import (
	"time"

	"github.com/kilianp07/tariffbroker/core/model"
)

// DecisionEvent is published once per timeslot with the selected action.
type DecisionEvent struct {
	ID          string
	Broker      string
	Timeslot    int
	Strategy    string
	Action      model.Action
	Utility     float64
	NoOpUtility float64
	Candidates  int
	// WarmupOverride is set when a no-op was replaced during warm-up.
	WarmupOverride bool
	DecidedAt      time.Time
}
