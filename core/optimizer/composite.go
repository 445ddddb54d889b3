package optimizer

import (
	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
)

// FirstTimeDifferent delegates to First on its very first call and to Then
// on every later call. The switch is one-way, so one instance must live as
// long as the broker.
type FirstTimeDifferent struct {
	First, Then Strategy
	log         logger.Logger
	events      events.StrategyPublisher
	calls       int
}

// NewFirstTimeDifferent returns the composite.
func NewFirstTimeDifferent(first, then Strategy, log logger.Logger, pub events.StrategyPublisher) *FirstTimeDifferent {
	if pub == nil {
		pub = events.NopStrategyPublisher{}
	}
	return &FirstTimeDifferent{First: first, Then: then, log: logger.OrNop(log), events: pub}
}

func (*FirstTimeDifferent) Name() string { return FirstTimeDifferentName }

func (s *FirstTimeDifferent) OptimizeTariffs(in Input) *model.Ranking {
	s.calls++
	switch s.calls {
	case 1:
		s.events.Publish(events.StrategyEvent{Strategy: FirstTimeDifferentName, Action: events.ActionFirstCall, Timeslot: in.Timeslot})
		delegationsTotal.WithLabelValues(FirstTimeDifferentName, "first").Inc()
		return s.First.OptimizeTariffs(in)
	case 2:
		s.log.Infof("%s: switching from %s to %s at ts %d", FirstTimeDifferentName, s.First.Name(), s.Then.Name(), in.Timeslot)
		s.events.Publish(events.StrategyEvent{Strategy: FirstTimeDifferentName, Action: events.ActionSwitched, Timeslot: in.Timeslot})
	}
	delegationsTotal.WithLabelValues(FirstTimeDifferentName, "then").Inc()
	return s.Then.OptimizeTariffs(in)
}

// CounterPeriodic delegates to Backup when exactly two brokers compete and
// the rival offers a tariff of our power type with a periodic payment, which
// makes utility non-convex along the fixed-rate candidates. Otherwise it
// delegates to Default.
type CounterPeriodic struct {
	Default, Backup Strategy
	log             logger.Logger
	events          events.StrategyPublisher
}

// NewCounterPeriodic returns the composite.
func NewCounterPeriodic(def, backup Strategy, log logger.Logger, pub events.StrategyPublisher) *CounterPeriodic {
	if pub == nil {
		pub = events.NopStrategyPublisher{}
	}
	return &CounterPeriodic{Default: def, Backup: backup, log: logger.OrNop(log), events: pub}
}

func (*CounterPeriodic) Name() string { return CounterPeriodicName }

// RivalHasPeriodicPayment reports whether the backup condition holds.
func RivalHasPeriodicPayment(in Input) bool {
	if in.Context.NumBrokers != 2 {
		return false
	}
	for _, t := range in.Competitors {
		if t.Broker == in.Self || t.PowerType.Generic() != in.PowerType.Generic() {
			continue
		}
		if t.PeriodicPayment != 0 {
			return true
		}
	}
	return false
}

func (s *CounterPeriodic) OptimizeTariffs(in Input) *model.Ranking {
	if RivalHasPeriodicPayment(in) {
		s.log.Debugf("%s: rival periodic payment at ts %d, using %s", CounterPeriodicName, in.Timeslot, s.Backup.Name())
		s.events.Publish(events.StrategyEvent{Strategy: CounterPeriodicName, Action: events.ActionCounterPeriodicBackup, Timeslot: in.Timeslot})
		delegationsTotal.WithLabelValues(CounterPeriodicName, "backup").Inc()
		return s.Backup.OptimizeTariffs(in)
	}
	delegationsTotal.WithLabelValues(CounterPeriodicName, "default").Inc()
	return s.Default.OptimizeTariffs(in)
}
