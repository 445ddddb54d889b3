package search

import (
	"gonum.org/v1/gonum/optimize"
)

// NelderMead delegates to gonum's simplex minimizer on the negated
// objective, starting from a simplex of edge SimplexSize around zero.
type NelderMead struct {
	cfg Config
}

// NewNelderMead returns the method. cfg is completed with defaults.
func NewNelderMead(cfg Config) *NelderMead {
	cfg.SetDefaults()
	return &NelderMead{cfg: cfg}
}

func (*NelderMead) Name() string { return "nelder-mead" }

func (n *NelderMead) Maximize(f Objective, dim, maxEvaluations int) Result {
	b := newBudget(f, maxEvaluations)
	problem := optimize.Problem{Func: func(x []float64) float64 {
		v, _ := b.eval(x)
		return -v
	}}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   n.cfg.Tolerance,
			Iterations: 10 * dim,
		},
	}
	if _, err := optimize.Minimize(problem, make([]float64, dim), settings, &optimize.NelderMead{SimplexSize: n.cfg.SimplexSize}); err != nil {
		n.cfg.Logger.Debugf("nelder-mead stopped: %v", err)
	}
	return b.result(dim)
}
