package optimizer

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/tariffbroker/core/model"
)

// TOUFixedMargin shapes a time-of-use tariff after the predicted wholesale
// unit cost curve, keeping the average margin of the seed's best fixed rate.
type TOUFixedMargin struct {
	p          *Pipeline
	seed       seeder
	hourOffset int
}

// NewTOUFixedMargin returns the strategy. hourOffset is the hour of day of
// timeslot zero.
func NewTOUFixedMargin(p *Pipeline, seed seeder, hourOffset int) *TOUFixedMargin {
	return &TOUFixedMargin{p: p, seed: seed, hourOffset: hourOffset}
}

func (*TOUFixedMargin) Name() string { return TOUFixedMarginName }

func (s *TOUFixedMargin) OptimizeTariffs(in Input) *model.Ranking {
	seedRanking, c := s.seed.optimize(in)
	best, ok := seedRanking.BestOfKind(model.Publish)
	if !ok {
		s.p.log.Errorf("%s at ts %d: %v", TOUFixedMarginName, in.Timeslot, ErrNoSeed)
		fallbacksTotal.WithLabelValues(TOUFixedMarginName, "no_seed").Inc()
		return seedRanking
	}
	spec := s.Construct(c, best.Action.Tariff)
	u := s.p.evaluateNew(TOUFixedMarginName, c, spec)
	evaluationsTotal.WithLabelValues(TOUFixedMarginName).Inc()
	out := seedRanking.Clone()
	out.Put(u, model.PublishAction(spec))
	observeBest(TOUFixedMarginName, out)
	return out
}

// UnitCostCurve returns the predicted unit cost for each hour of day over the
// next day.
func (s *TOUFixedMargin) UnitCostCurve(c *cycle) []float64 {
	in := c.in
	curve := make([]float64, model.HoursPerDay)
	for i := 0; i < model.HoursPerDay; i++ {
		future := in.Timeslot + 1 + i
		hour := model.HourOf(future, s.hourOffset)
		curve[hour] = in.CostCurve.PredictUnitCost(in.Timeslot, future, c.currentNet(i), in.CostCurve.CompetitorDemand(in.Timeslot, future))
	}
	return curve
}

// Construct returns a tariff whose rate at each hour is the unit cost minus
// the seed's average margin over the curve.
func (s *TOUFixedMargin) Construct(c *cycle, seed *model.TariffSpec) *model.TariffSpec {
	curve := s.UnitCostCurve(c)
	margin := stat.Mean(curve, nil) - seed.MeanRate()
	spec := seed.Clone()
	spec.Rates = make([]model.Rate, model.HoursPerDay)
	for h, unit := range curve {
		spec.Rates[h] = model.HourlyRate(h, unit-margin)
	}
	return spec
}
