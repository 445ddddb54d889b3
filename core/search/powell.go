package search

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const goldenRatio = 0.6180339887498949

// Powell runs successive line maximizations along a set of directions,
// starting with the coordinate axes. After each sweep the overall
// displacement replaces the direction that contributed the largest gain.
type Powell struct {
	cfg Config
}

// NewPowell returns the method. cfg is completed with defaults.
func NewPowell(cfg Config) *Powell {
	cfg.SetDefaults()
	return &Powell{cfg: cfg}
}

func (*Powell) Name() string { return "powell" }

func (p *Powell) Maximize(f Objective, dim, maxEvaluations int) Result {
	b := newBudget(f, maxEvaluations)
	x := make([]float64, dim)
	u, ok := b.eval(x)
	if !ok {
		return b.result(dim)
	}
	dirs := make([][]float64, dim)
	for i := range dirs {
		dirs[i] = make([]float64, dim)
		dirs[i][i] = 1
	}
	start := make([]float64, dim)
	for !b.exhausted() {
		copy(start, x)
		startU := u
		bigIdx, bigGain := -1, 0.0
		for i, d := range dirs {
			before := u
			x, u = p.lineMax(b, x, u, d)
			if gain := u - before; gain > bigGain {
				bigIdx, bigGain = i, gain
			}
			if b.exhausted() {
				break
			}
		}
		if u-startU < p.cfg.Tolerance || b.exhausted() {
			break
		}
		disp := make([]float64, dim)
		floats.SubTo(disp, x, start)
		if n := floats.Norm(disp, 2); n > 0 && bigIdx >= 0 {
			floats.Scale(1/n, disp)
			dirs[bigIdx] = dirs[len(dirs)-1]
			dirs[len(dirs)-1] = disp
			x, u = p.lineMax(b, x, u, disp)
		}
	}
	return b.result(dim)
}

// lineMax brackets a maximum of f(x + t*d) by stepping out from t = 0 and then
// narrows it with a golden section search.
func (p *Powell) lineMax(b *budget, x []float64, u float64, d []float64) ([]float64, float64) {
	at := func(t float64) (float64, bool) {
		pt := make([]float64, len(x))
		floats.AddScaledTo(pt, x, t, d)
		return b.eval(pt)
	}
	step := p.cfg.StepSize
	fwd, ok := at(step)
	if !ok {
		return x, u
	}
	if fwd <= u {
		bwd, ok := at(-step)
		if !ok || bwd <= u {
			// Maximum lies within (-step, step); stay put.
			return x, u
		}
		step, fwd = -step, bwd
	}
	// Expand until utility drops.
	lo, mid, midU := 0.0, step, fwd
	hi := 2 * step
	for {
		v, ok := at(hi)
		if !ok {
			return p.moveTo(x, mid, d), midU
		}
		if v <= midU {
			break
		}
		lo, mid, midU = mid, hi, v
		hi *= 2
	}
	// Golden section on [lo, hi] which contains mid.
	a, c := math.Min(lo, hi), math.Max(lo, hi)
	bestT, bestU := mid, midU
	for math.Abs(c-a) > p.cfg.StepSize*1e-2 && !b.exhausted() {
		t1 := c - goldenRatio*(c-a)
		t2 := a + goldenRatio*(c-a)
		v1, ok1 := at(t1)
		v2, ok2 := at(t2)
		if !ok1 || !ok2 {
			break
		}
		if v1 > bestU {
			bestT, bestU = t1, v1
		}
		if v2 > bestU {
			bestT, bestU = t2, v2
		}
		if v1 > v2 {
			c = t2
		} else {
			a = t1
		}
	}
	return p.moveTo(x, bestT, d), bestU
}

func (p *Powell) moveTo(x []float64, t float64, d []float64) []float64 {
	out := make([]float64, len(x))
	floats.AddScaledTo(out, x, t, d)
	return out
}
