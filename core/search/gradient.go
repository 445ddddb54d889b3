package search

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// GradientAscent estimates the gradient with central differences, then walks
// along its direction in fixed steps while utility improves by at least
// Tolerance, and starts over from the new point.
type GradientAscent struct {
	cfg  Config
	step float64
}

// NewGradientAscent returns the method. cfg is completed with defaults.
func NewGradientAscent(cfg Config) *GradientAscent {
	cfg.SetDefaults()
	return &GradientAscent{cfg: cfg, step: cfg.StepSize}
}

func (*GradientAscent) Name() string { return "gradient" }

// WithSeed scales the step size by |rate| / ReferenceRate, so tariffs with
// larger rates move in proportionally larger steps.
func (g *GradientAscent) WithSeed(rate float64) Method {
	cp := *g
	if ref := math.Abs(g.cfg.ReferenceRate); ref > 0 && rate != 0 {
		cp.step = g.cfg.StepSize * math.Abs(rate) / ref
	}
	return &cp
}

// Step returns the effective step size.
func (g *GradientAscent) Step() float64 { return g.step }

func (g *GradientAscent) Maximize(f Objective, dim, maxEvaluations int) Result {
	b := newBudget(f, maxEvaluations)
	x := make([]float64, dim)
	u, ok := b.eval(x)
	if !ok {
		return b.result(dim)
	}
	settings := &fd.Settings{Formula: fd.Central, Step: g.step}
	grad := make([]float64, dim)
	next := make([]float64, dim)
	for !b.exhausted() {
		fd.Gradient(grad, func(p []float64) float64 {
			v, _ := b.eval(p)
			return v
		}, x, settings)
		if b.exhausted() {
			break
		}
		norm := floats.Norm(grad, 2)
		if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
			break
		}
		floats.Scale(1/norm, grad)

		moved := false
		for !b.exhausted() {
			floats.AddScaledTo(next, x, g.step, grad)
			v, ok := b.eval(next)
			if !ok || v-u < g.cfg.Tolerance {
				break
			}
			copy(x, next)
			u = v
			moved = true
		}
		if !moved {
			break
		}
	}
	return b.result(dim)
}
