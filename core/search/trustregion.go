package search

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TrustRegion is a simplified derivative-free trust region method, registered
// under the "bobyqa" name. Unlike BOBYQA it keeps no interpolation set and
// ignores cross terms: each iteration samples the objective at ±radius along
// every axis, fits a separable quadratic model, and takes the model's
// maximizing step within the box of the current radius. The radius grows on good agreement
// between model and objective, shrinks on poor agreement, and the search
// ends once it falls below FinalRadius.
type TrustRegion struct {
	cfg Config
}

// NewTrustRegion returns the method. cfg is completed with defaults.
func NewTrustRegion(cfg Config) *TrustRegion {
	cfg.SetDefaults()
	return &TrustRegion{cfg: cfg}
}

func (*TrustRegion) Name() string { return "bobyqa" }

func (tr *TrustRegion) Maximize(f Objective, dim, maxEvaluations int) Result {
	b := newBudget(f, maxEvaluations)
	x := make([]float64, dim)
	u, ok := b.eval(x)
	if !ok {
		return b.result(dim)
	}
	rho := tr.cfg.InitialRadius
	maxRho := 8 * tr.cfg.InitialRadius
	grad := make([]float64, dim)
	curv := make([]float64, dim)
	probe := make([]float64, dim)
	step := make([]float64, dim)

	for rho >= tr.cfg.FinalRadius && !b.exhausted() {
		for i := 0; i < dim; i++ {
			copy(probe, x)
			probe[i] = x[i] + rho
			up, ok := b.eval(probe)
			if !ok {
				return b.result(dim)
			}
			probe[i] = x[i] - rho
			down, ok := b.eval(probe)
			if !ok {
				return b.result(dim)
			}
			grad[i] = (up - down) / (2 * rho)
			curv[i] = (up + down - 2*u) / (rho * rho)
		}

		var predicted float64
		for i := range step {
			switch {
			case curv[i] < 0:
				step[i] = clamp(-grad[i]/curv[i], -rho, rho)
			case grad[i] > 0:
				step[i] = rho
			case grad[i] < 0:
				step[i] = -rho
			default:
				step[i] = 0
			}
			predicted += grad[i]*step[i] + 0.5*curv[i]*step[i]*step[i]
		}

		// Axis samples may already beat the center.
		if b.best.Utility > u {
			copy(x, b.best.X)
			u = b.best.Utility
			continue
		}
		if predicted <= 0 || floats.Norm(step, math.Inf(1)) == 0 {
			rho /= 2
			continue
		}

		floats.AddTo(probe, x, step)
		v, ok := b.eval(probe)
		if !ok {
			break
		}
		ratio := (v - u) / predicted
		if v > u {
			copy(x, probe)
			u = v
		}
		switch {
		case ratio > 0.7:
			rho = math.Min(2*rho, maxRho)
		case ratio < 0.1:
			rho /= 2
		}
	}
	return b.result(dim)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
