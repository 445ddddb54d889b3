package optimizer

import (
	"github.com/kilianp07/tariffbroker/core/candidates"
	"github.com/kilianp07/tariffbroker/core/charges"
	"github.com/kilianp07/tariffbroker/core/events"
	"github.com/kilianp07/tariffbroker/core/logger"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/shifting"
	"github.com/kilianp07/tariffbroker/core/utility"
)

// Deps are the collaborators every strategy of one broker shares.
type Deps struct {
	Candidates *candidates.Generator
	Shifting   shifting.Predictor
	Charges    *charges.Estimator
	Utility    *utility.Estimator
	Log        logger.Logger
	Events     events.StrategyPublisher
}

// Pipeline runs generator, shifting, charge and utility estimation.
type Pipeline struct {
	gen      *candidates.Generator
	shift    shifting.Predictor
	charges  *charges.Estimator
	util     *utility.Estimator
	withdraw WithdrawFees
	log      logger.Logger
	events   events.StrategyPublisher
}

// NewPipeline wires the shared collaborators. A nil shifting predictor means
// no shifting.
func NewPipeline(d Deps, withdraw WithdrawFees) *Pipeline {
	p := &Pipeline{
		gen:      d.Candidates,
		shift:    d.Shifting,
		charges:  d.Charges,
		util:     d.Utility,
		withdraw: withdraw,
		log:      logger.OrNop(d.Log),
		events:   d.Events,
	}
	if p.shift == nil {
		p.shift = shifting.Identity{}
	}
	if p.events == nil {
		p.events = events.NopStrategyPublisher{}
	}
	return p
}

// cycle is the per-timeslot evaluation context. It is discarded after the
// call that built it.
type cycle struct {
	in         Input
	candidates []*model.TariffSpec
	shifted    model.ShiftedEnergyMap
	charges    model.Charges
	util       utility.Input
}

// exposure lists, for each tariff, every customer that could use it with its
// full population. It drives which (customer, tariff) pairs get shifted
// energy and charges.
func exposure(tariffs []*model.TariffSpec, customers []model.CustomerInfo) model.Subscriptions {
	out := make(model.Subscriptions, len(tariffs))
	for _, t := range tariffs {
		for _, c := range customers {
			if c.PowerType.CanUse(t.PowerType) {
				out.Set(t.ID, c.Name, float64(c.Population))
			}
		}
	}
	return out
}

// shiftAndCharge computes shifted energy and charges for the given tariffs.
func (p *Pipeline) shiftAndCharge(strategy string, in Input, tariffs []*model.TariffSpec) (model.ShiftedEnergyMap, model.Charges) {
	out := p.shift.UpdateEstimatedEnergyWithShifting(in.Energy, exposure(tariffs, in.Customers), tariffs, in.Timeslot)
	if out.Degraded != nil {
		shiftingDegraded.Inc()
		p.events.Publish(events.StrategyEvent{Strategy: strategy, Action: events.ActionShiftingDegraded, Timeslot: in.Timeslot, Err: out.Degraded})
	}
	return out.Energy, p.charges.EstimateRelevantTariffCharges(tariffs, in.Customers, out.Energy, in.Timeslot)
}

// baseline builds a cycle over the tariffs already on the market.
func (p *Pipeline) baseline(strategy string, in Input) *cycle {
	tariffs := make([]*model.TariffSpec, 0, len(in.OwnTariffs)+len(in.Competitors))
	tariffs = append(tariffs, in.OwnTariffs...)
	tariffs = append(tariffs, in.Competitors...)
	shifted, ch := p.shiftAndCharge(strategy, in, tariffs)
	c := &cycle{in: in, shifted: shifted, charges: ch}
	c.util = p.utilityInput(c)
	return c
}

// BaselineInput returns the utility context of the tariffs already on the
// market. The revoker evaluates its actions against it.
func (p *Pipeline) BaselineInput(in Input) utility.Input {
	return p.baseline("revoke", in).util
}

// prepare generates fixed-rate candidates and evaluates their context. On
// error the returned cycle still covers existing tariffs.
func (p *Pipeline) prepare(strategy string, in Input) (*cycle, error) {
	cands := p.gen.Generate(candidates.Input{
		PowerType:         in.PowerType,
		Self:              in.Self,
		OwnTariffs:        in.OwnTariffs,
		Subscriptions:     in.Current,
		CompetitorTariffs: in.Competitors,
		Market: candidates.Market{
			MeanPrice:       in.Market.MeanPrice(),
			StddevPrice:     in.Market.StddevPrice(),
			DistributionFee: in.Context.DistributionFee,
		},
		NumBrokers: in.Context.NumBrokers,
	})
	tariffs := make([]*model.TariffSpec, 0, len(cands)+len(in.OwnTariffs)+len(in.Competitors))
	tariffs = append(tariffs, cands...)
	tariffs = append(tariffs, in.OwnTariffs...)
	tariffs = append(tariffs, in.Competitors...)
	shifted, ch := p.shiftAndCharge(strategy, in, tariffs)
	p.withdraw.Apply(cands, in.Customers, ch)

	c := &cycle{in: in, candidates: cands, shifted: shifted, charges: ch}
	c.util = p.utilityInput(c)
	if len(cands) == 0 {
		return c, ErrNoCandidates
	}
	return c, nil
}

func (p *Pipeline) utilityInput(c *cycle) utility.Input {
	return utility.Input{
		Current:     c.in.Current,
		OwnTariffs:  c.in.OwnTariffs,
		Competitors: c.in.Competitors,
		Charges:     c.charges,
		Shifted:     c.shifted,
		RawEnergy:   c.in.Energy,
		Market:      c.in.Market,
		CostCurve:   c.in.CostCurve,
		Timeslot:    c.in.Timeslot,
	}
}

// noOpRanking is the ranking of last resort: doing nothing.
func (p *Pipeline) noOpRanking(c *cycle) *model.Ranking {
	r := model.NewRanking()
	u, _ := p.util.Evaluate(model.NoOpAction(), c.util)
	r.Put(u, model.NoOpAction())
	return r
}

// evaluateNew returns the utility of publishing a tariff that was not part
// of the cycle's candidates. The cycle itself is left untouched.
func (p *Pipeline) evaluateNew(strategy string, c *cycle, spec *model.TariffSpec) float64 {
	tariffs := []*model.TariffSpec{spec}
	shifted, ch := p.shiftAndCharge(strategy, c.in, tariffs)
	p.withdraw.Apply(tariffs, c.in.Customers, ch)
	in := c.util
	in.Shifted = overlayShifted(c.shifted, shifted)
	in.Charges = overlayCharges(c.charges, ch)
	u, _ := p.util.Evaluate(model.PublishAction(spec), in)
	return u
}

// currentNet returns the net energy of the broker's current subscribers for
// the i-th future timeslot.
func (c *cycle) currentNet(i int) float64 {
	var net float64
	for _, tariffID := range c.in.Current.TariffIDs() {
		for _, customer := range c.in.Current.Customers(tariffID) {
			if e := c.in.Energy[customer]; i < len(e) {
				net += e[i] * c.in.Current[tariffID][customer]
			}
		}
	}
	return net
}

func overlayCharges(base, extra model.Charges) model.Charges {
	out := make(model.Charges, len(base)+len(extra))
	for customer, inner := range base {
		out[customer] = inner
	}
	for customer, inner := range extra {
		merged := make(map[string]model.ChargeEstimate, len(base[customer])+len(inner))
		for id, est := range base[customer] {
			merged[id] = est
		}
		for id, est := range inner {
			merged[id] = est
		}
		out[customer] = merged
	}
	return out
}

func overlayShifted(base, extra model.ShiftedEnergyMap) model.ShiftedEnergyMap {
	out := make(model.ShiftedEnergyMap, len(base)+len(extra))
	for customer, inner := range base {
		out[customer] = inner
	}
	for customer, inner := range extra {
		merged := make(map[string]model.ShiftedEnergy, len(base[customer])+len(inner))
		for id, se := range base[customer] {
			merged[id] = se
		}
		for id, se := range inner {
			merged[id] = se
		}
		out[customer] = merged
	}
	return out
}
