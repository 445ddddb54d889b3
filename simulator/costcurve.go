package simulator

import (
	"math"

	"github.com/kilianp07/tariffbroker/core/model"
)

// LinearCostCurve prices wholesale energy linearly in total net demand.
// Buying gives a negative unit cost.
type LinearCostCurve struct {
	def        CostCurveDef
	hourOffset int
}

// NewLinearCostCurve returns a cost curve.
func NewLinearCostCurve(def CostCurveDef, hourOffset int) *LinearCostCurve {
	return &LinearCostCurve{def: def, hourOffset: hourOffset}
}

// ClearingPrice returns the positive wholesale price for a total net demand.
// Prices never fall below a tenth of the intercept.
func (c *LinearCostCurve) ClearingPrice(totalDemand float64) float64 {
	return math.Max(c.def.Intercept+c.def.Slope*totalDemand, c.def.Intercept/10)
}

// PredictUnitCost implements prediction.CostCurvePredictor.
func (c *LinearCostCurve) PredictUnitCost(_, _ int, ownNetDemand, competitorDemand float64) float64 {
	return -c.ClearingPrice(ownNetDemand + competitorDemand)
}

// CompetitorDemand implements prediction.CostCurvePredictor.
func (c *LinearCostCurve) CompetitorDemand(_, futureTimeslot int) float64 {
	return c.def.CompetitorDemand * profileAt(c.def.Profile, model.HourOf(futureTimeslot, c.hourOffset))
}

// FudgeFactor implements prediction.CostCurvePredictor.
func (c *LinearCostCurve) FudgeFactor(int) float64 { return c.def.Fudge }
