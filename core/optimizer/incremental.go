package optimizer

import (
	"fmt"

	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/search"
)

// Incremental refines the best fixed-rate tariff of its seed strategy into a
// time-of-use tariff, one offset per hour of day. Every refinement evaluation
// is merged into the returned ranking. When refinement fails the seed
// ranking is returned unchanged.
type Incremental struct {
	p              *Pipeline
	seed           seeder
	method         search.Method
	numRates       int
	maxEvaluations int
}

// NewIncremental returns an Incremental strategy.
func NewIncremental(p *Pipeline, seed seeder, method search.Method, numRates, maxEvaluations int) *Incremental {
	return &Incremental{p: p, seed: seed, method: method, numRates: numRates, maxEvaluations: maxEvaluations}
}

func (*Incremental) Name() string { return IncrementalName }

func (s *Incremental) OptimizeTariffs(in Input) *model.Ranking {
	seedRanking, c := s.seed.optimize(in)
	best, ok := seedRanking.BestOfKind(model.Publish)
	if !ok {
		s.fallback(in, "no_seed", ErrNoSeed)
		return seedRanking
	}
	r, err := s.refine(seedRanking, c, best.Action.Tariff)
	if err != nil {
		s.fallback(in, "refinement_failed", err)
		return seedRanking
	}
	observeBest(IncrementalName, r)
	return r
}

func (s *Incremental) fallback(in Input, reason string, err error) {
	s.p.log.Errorf("%s at ts %d: %v, keeping %s ranking", IncrementalName, in.Timeslot, err, s.seed.Name())
	fallbacksTotal.WithLabelValues(IncrementalName, reason).Inc()
	s.p.events.Publish(events.StrategyEvent{Strategy: IncrementalName, Action: events.ActionIncrementalFallback, Timeslot: in.Timeslot, Err: err})
}

func (s *Incremental) refine(seedRanking *model.Ranking, c *cycle, seed *model.TariffSpec) (r *model.Ranking, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("refinement panic: %v", rec)
		}
	}()
	method := s.method
	if sm, ok := method.(search.Seeded); ok {
		method = sm.WithSeed(seed.MeanRate())
	}
	est := NewTariffUtilityEstimate(seed, func(spec *model.TariffSpec) float64 {
		return s.p.evaluateNew(IncrementalName, c, spec)
	})
	res := method.Maximize(est.Utility, s.numRates, s.maxEvaluations)
	evaluationsTotal.WithLabelValues(IncrementalName).Add(float64(est.Evaluations()))
	if _, ok := est.CorrespondingSpec(res.X); !ok {
		return nil, fmt.Errorf("%s returned an unevaluated point", method.Name())
	}
	s.p.log.Debugw("incremental refinement", map[string]any{
		"method":      method.Name(),
		"seed_rate":   seed.MeanRate(),
		"utility":     res.Utility,
		"evaluations": res.Evaluations,
	})
	out := seedRanking.Clone()
	out.Merge(est.Ranking(), true)
	return out, nil
}
