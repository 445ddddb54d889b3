package metrics

import "errors"

// MultiSink fans records out to several sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []DecisionSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...DecisionSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordDecision(rec DecisionRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordDecision(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordStrategyEvent forwards to sinks implementing StrategyRecorder.
func (m *MultiSink) RecordStrategyEvent(rec StrategyRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StrategyRecorder); ok {
			if err := r.RecordStrategyEvent(rec); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordRanking forwards to sinks implementing RankingRecorder.
func (m *MultiSink) RecordRanking(s RankingSnapshot) error {
	var errs []error
	for _, sink := range m.Sinks {
		if r, ok := sink.(RankingRecorder); ok {
			if err := r.RecordRanking(s); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
