// Package candidates proposes fixed-rate tariff candidates bracketed between
// a market based price bound and the rates already on offer.
package candidates

import (
	"errors"
	"math"

	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
)

// WorstRate is returned when no reference rate exists. Customers prefer
// higher rate values, so the lowest float is the worst possible rate.
const WorstRate = -math.MaxFloat64

// ErrNoRate reports that no tariff of the requested power type was found.
var ErrNoRate = errors.New("no rate of matching power type")

// Market carries the market statistics used to bound candidate rates.
type Market struct {
	MeanPrice       float64
	StddevPrice     float64
	DistributionFee float64
}

// Input is what the generator looks at on each call.
type Input struct {
	PowerType         model.PowerType
	Self              string
	OwnTariffs        []*model.TariffSpec
	Subscriptions     model.Subscriptions
	CompetitorTariffs []*model.TariffSpec
	Market            Market
	NumBrokers        int
}

// Bracket describes the rate interval candidates are drawn from.
type Bracket struct {
	MarketBound   float64
	MyBest        float64
	CompetingBest float64
	Interpolation float64
	Best          float64
	Worst         float64
	Transient     bool
	// Degenerate is set when a reference rate was missing and the market
	// bound was used in its place.
	Degenerate bool
}

// Generator produces fixed-rate candidates. It remembers whether it was
// already called, so one instance must live as long as the broker.
type Generator struct {
	cfg   Config
	log   logger.Logger
	calls int
}

// New returns a generator. The config is completed with defaults.
func New(cfg Config, log logger.Logger) *Generator {
	cfg.SetDefaults()
	return &Generator{cfg: cfg, log: logger.OrNop(log)}
}

// Calls returns how many times Generate ran.
func (g *Generator) Calls() int { return g.calls }

// MarketBasedBound returns the least attractive-to-us rate that still covers
// the expected wholesale and distribution cost plus a safety margin.
func (g *Generator) MarketBasedBound(pt model.PowerType, m Market, numBrokers int) float64 {
	k := g.cfg.StddevFactor
	if g.cfg.LargeFieldBrokers > 0 && numBrokers >= g.cfg.LargeFieldBrokers {
		k /= 2
	}
	if pt.IsProduction() {
		return m.MeanPrice + m.DistributionFee - k*m.StddevPrice
	}
	return -m.MeanPrice + m.DistributionFee - k*m.StddevPrice
}

// MyBestRateValue returns the best rate among own subscribed tariffs of the
// matching power type, or WorstRate when there is none.
func (g *Generator) MyBestRateValue(in Input) float64 {
	best, err := myBestRate(in)
	if err != nil {
		g.log.Errorf("my best %s rate: %v", in.PowerType, err)
		return WorstRate
	}
	return best
}

func myBestRate(in Input) (float64, error) {
	best, found := WorstRate, false
	for _, t := range in.OwnTariffs {
		if t.PowerType.Generic() != in.PowerType.Generic() {
			continue
		}
		if _, ok := in.Subscriptions[t.ID]; !ok {
			continue
		}
		if r := t.MeanRate(); r > best || !found {
			best, found = r, true
		}
	}
	if !found {
		return WorstRate, ErrNoRate
	}
	return best, nil
}

// CompetingBestRateValue returns the best rival rate still worse than bound,
// i.e. the nearest rate we can undercut profitably, or WorstRate.
func (g *Generator) CompetingBestRateValue(in Input, bound float64) float64 {
	best, found := WorstRate, false
	for _, t := range in.CompetitorTariffs {
		if t.Broker == in.Self || t.PowerType.Generic() != in.PowerType.Generic() {
			continue
		}
		r := t.MeanRate()
		if r >= bound {
			continue
		}
		if r > best || !found {
			best, found = r, true
		}
	}
	if !found {
		g.log.Errorf("competing best %s rate below %.4f: %v", in.PowerType, bound, ErrNoRate)
		return WorstRate
	}
	return best
}

// transient reports the early two-broker phase where the only rival still
// charges more than the transient threshold.
func (g *Generator) transient(in Input) bool {
	if in.NumBrokers != 2 {
		return false
	}
	rival, found := WorstRate, false
	for _, t := range in.CompetitorTariffs {
		if t.Broker == in.Self || !t.PowerType.IsConsumption() {
			continue
		}
		if r := t.MeanRate(); r > rival || !found {
			rival, found = r, true
		}
	}
	return found && rival < g.cfg.TransientThreshold
}

func (g *Generator) interpolation(transient bool) float64 {
	if transient {
		return g.cfg.TransientInterpolation
	}
	if g.calls == 0 {
		return g.cfg.InitialInterpolation
	}
	return g.cfg.Interpolation
}

// interpolate moves from ref toward bound by factor f.
func interpolate(bound, ref, f float64) float64 {
	return bound + (1-f)*(ref-bound)
}

// Bracket computes the candidate interval without advancing the generator
// state.
func (g *Generator) Bracket(in Input) Bracket {
	b := Bracket{MarketBound: g.MarketBasedBound(in.PowerType, in.Market, in.NumBrokers)}
	b.MyBest = g.MyBestRateValue(in)
	b.CompetingBest = g.CompetingBestRateValue(in, b.MarketBound)
	b.Transient = g.transient(in)
	b.Interpolation = g.interpolation(b.Transient)

	myRef, compRef := b.MyBest, b.CompetingBest
	if myRef == WorstRate {
		myRef, b.Degenerate = b.MarketBound, true
	}
	if compRef == WorstRate {
		compRef, b.Degenerate = b.MarketBound, true
	}
	b.Best = interpolate(b.MarketBound, compRef, b.Interpolation)
	b.Worst = interpolate(b.MarketBound, myRef, b.Interpolation)
	if in.PowerType.IsProduction() {
		b.Best = math.Max(b.Best, g.cfg.ProductionFloor)
		b.Worst = math.Max(b.Worst, g.cfg.ProductionFloor)
	}
	return b
}

// Generate emits NumTariffs fixed-rate candidates evenly spaced between the
// best and worst suggested rates, both included.
func (g *Generator) Generate(in Input) []*model.TariffSpec {
	b := g.Bracket(in)
	g.calls++
	if b.Degenerate {
		g.log.Warnf("degenerate %s bracket around bound %.4f", in.PowerType, b.MarketBound)
	}
	g.log.Debugw("candidate bracket", map[string]any{
		"power_type":     in.PowerType.String(),
		"bound":          b.MarketBound,
		"my_best":        b.MyBest,
		"competing_best": b.CompetingBest,
		"best":           b.Best,
		"worst":          b.Worst,
		"interpolation":  b.Interpolation,
	})
	rates := EvenlySpaced(b.Best, b.Worst, g.cfg.NumTariffs)
	out := make([]*model.TariffSpec, len(rates))
	for i, r := range rates {
		out[i] = model.NewTariffSpec(in.Self, in.PowerType, model.FixedRate(r))
	}
	return out
}

// EvenlySpaced returns n values forming an arithmetic sequence from first to
// last inclusive.
func EvenlySpaced(first, last float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = first
		return out
	}
	step := (last - first) / float64(n-1)
	for i := range out {
		out[i] = first + float64(i)*step
	}
	out[n-1] = last
	return out
}
