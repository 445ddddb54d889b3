package metrics

import (
	"time"

	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/model"
)

// DecisionRecord is the observable summary of one timeslot's decision.
type DecisionRecord struct {
	Broker         string
	Strategy       string
	Timeslot       int
	Kind           model.ActionKind
	TariffID       string
	PowerType      string
	MeanRate       float64
	Utility        float64
	NoOpUtility    float64
	Candidates     int
	WarmupOverride bool
	Time           time.Time
}

// RecordFromEvent flattens a DecisionEvent into a DecisionRecord.
func RecordFromEvent(ev events.DecisionEvent) DecisionRecord {
	rec := DecisionRecord{
		Broker:         ev.Broker,
		Strategy:       ev.Strategy,
		Timeslot:       ev.Timeslot,
		Kind:           ev.Action.Kind,
		Utility:        ev.Utility,
		NoOpUtility:    ev.NoOpUtility,
		Candidates:     ev.Candidates,
		WarmupOverride: ev.WarmupOverride,
		Time:           ev.DecidedAt,
	}
	if t := ev.Action.Tariff; t != nil {
		rec.TariffID = t.ID
		rec.PowerType = t.PowerType.String()
		rec.MeanRate = t.MeanRate()
	}
	return rec
}

// DecisionSink records decisions for observability purposes.
type DecisionSink interface {
	RecordDecision(rec DecisionRecord) error
}

// StrategyRecord captures a strategy delegation or degradation.
type StrategyRecord struct {
	Strategy string
	Action   string
	Timeslot int
	Error    string
	Time     time.Time
}

// StrategyRecorder is implemented by sinks able to record strategy events.
type StrategyRecorder interface {
	RecordStrategyEvent(rec StrategyRecord) error
}

// RankingSnapshot is the top of a ranking at decision time.
type RankingSnapshot struct {
	Timeslot int
	Entries  []model.RankedAction
	Time     time.Time
}

// RankingRecorder records the leading candidates of a decision.
type RankingRecorder interface {
	RecordRanking(s RankingSnapshot) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision(DecisionRecord) error      { return nil }
func (NopSink) RecordStrategyEvent(StrategyRecord) error { return nil }
func (NopSink) RecordRanking(RankingSnapshot) error      { return nil }
