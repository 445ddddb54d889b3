package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tariffbroker/core/model"
)

// Record captures one timeslot's decision.
type Record struct {
	ID             string               `json:"id"`
	Broker         string               `json:"broker"`
	Timeslot       int                  `json:"timeslot"`
	Strategy       string               `json:"strategy"`
	Action         model.Action         `json:"action"`
	Utility        float64              `json:"utility"`
	NoOpUtility    float64              `json:"noop_utility"`
	Evaluations    int                  `json:"evaluations"`
	WarmupOverride bool                 `json:"warmup_override"`
	Top            []model.RankedAction `json:"top,omitempty"`
	DecidedAt      time.Time            `json:"decided_at"`
}

// NewRecord stamps a record with a fresh ID and the current time.
func NewRecord(broker string, timeslot int) Record {
	return Record{ID: uuid.NewString(), Broker: broker, Timeslot: timeslot, DecidedAt: time.Now().UTC()}
}

// Query filters records. Zero values match everything; To is inclusive.
type Query struct {
	From     int
	To       int
	Kind     *model.ActionKind
	Strategy string
}

// Matches reports whether r passes the filter.
func (q Query) Matches(r Record) bool {
	if q.From > 0 && r.Timeslot < q.From {
		return false
	}
	if q.To > 0 && r.Timeslot > q.To {
		return false
	}
	if q.Kind != nil && r.Action.Kind != *q.Kind {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	return true
}

// Store persists decision records and supports querying by timeslot range.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error         { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                  { return nil }
