package optimizer

import (
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/search"
)

// OneShot ranks every fixed-rate candidate plus NoOp.
type OneShot struct {
	p *Pipeline
}

// NewOneShot returns a OneShot strategy.
func NewOneShot(p *Pipeline) *OneShot { return &OneShot{p: p} }

func (*OneShot) Name() string { return OneShotName }

func (s *OneShot) OptimizeTariffs(in Input) *model.Ranking {
	r, _ := s.optimize(in)
	return r
}

func (s *OneShot) optimize(in Input) (*model.Ranking, *cycle) {
	c, err := s.p.prepare(OneShotName, in)
	if err != nil {
		s.p.log.Errorf("%s at ts %d: %v", OneShotName, in.Timeslot, err)
		fallbacksTotal.WithLabelValues(OneShotName, "no_candidates").Inc()
		return s.p.noOpRanking(c), c
	}
	actions := make([]model.Action, 0, len(c.candidates)+1)
	actions = append(actions, model.NoOpAction())
	for _, t := range c.candidates {
		actions = append(actions, model.PublishAction(t))
	}
	r := s.p.util.EstimateUtilities(actions, c.util)
	evaluationsTotal.WithLabelValues(OneShotName).Add(float64(len(actions)))
	observeBest(OneShotName, r)
	return r, c
}

// BinaryOneShot evaluates NoOp and a binary-searched subset of the
// fixed-rate candidates, assuming utility is unimodal along the candidate
// list.
type BinaryOneShot struct {
	p *Pipeline
}

// NewBinaryOneShot returns a BinaryOneShot strategy.
func NewBinaryOneShot(p *Pipeline) *BinaryOneShot { return &BinaryOneShot{p: p} }

func (*BinaryOneShot) Name() string { return BinaryOneShotName }

func (s *BinaryOneShot) OptimizeTariffs(in Input) *model.Ranking {
	r, _ := s.optimize(in)
	return r
}

func (s *BinaryOneShot) optimize(in Input) (*model.Ranking, *cycle) {
	c, err := s.p.prepare(BinaryOneShotName, in)
	r := s.p.noOpRanking(c)
	if err != nil {
		s.p.log.Errorf("%s at ts %d: %v", BinaryOneShotName, in.Timeslot, err)
		fallbacksTotal.WithLabelValues(BinaryOneShotName, "no_candidates").Inc()
		return r, c
	}
	found := search.BinarySearch{Log: s.p.log}.Search(len(c.candidates), func(i int) float64 {
		a := model.PublishAction(c.candidates[i])
		u, _ := s.p.util.Evaluate(a, c.util)
		r.Put(u, a)
		return u
	})
	evaluationsTotal.WithLabelValues(BinaryOneShotName).Add(float64(len(found) + 1))
	s.p.log.Debugf("%s at ts %d: evaluated %d of %d candidates", BinaryOneShotName, in.Timeslot, len(found), len(c.candidates))
	observeBest(BinaryOneShotName, r)
	return r, c
}
