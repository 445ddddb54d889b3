// Package search holds the black-box maximizers used to refine tariffs. They
// work on a vector of rate offsets, one per hour of day, starting from the
// all-zero vector, and never exceed their evaluation budget. Running out of
// budget is not an error: the best point seen so far is returned.
package search

import (
	"math"

	"github.com/kilianp07/tariffbroker/core/logger"
)

// Objective returns the utility of an offset vector. It must not retain x.
type Objective func(x []float64) float64

// Result is the best point found by a method.
type Result struct {
	X           []float64
	Utility     float64
	Evaluations int
}

// Method maximizes an objective over R^dim.
type Method interface {
	Name() string
	Maximize(f Objective, dim, maxEvaluations int) Result
}

// Seeded is implemented by methods whose step size depends on the fixed rate
// the offsets are applied to.
type Seeded interface {
	WithSeed(rate float64) Method
}

// Config gathers the tunables of every method. Each method reads only the
// fields it needs.
type Config struct {
	StepSize  float64 `json:"step_size"`
	NumSteps  int     `json:"num_steps"`
	Tolerance float64 `json:"tolerance"`
	// Repeat makes coordinate ascent sweep the dimensions again while the
	// utility keeps improving.
	Repeat bool `json:"repeat"`
	// ReferenceRate is the seed rate StepSize was tuned for.
	ReferenceRate float64 `json:"reference_rate"`
	SimplexSize   float64 `json:"simplex_size"`
	InitialRadius float64 `json:"initial_radius"`
	FinalRadius   float64 `json:"final_radius"`

	Logger logger.Logger `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.StepSize == 0 {
		c.StepSize = 0.005
	}
	if c.NumSteps == 0 {
		c.NumSteps = 3
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-9
	}
	if c.ReferenceRate == 0 {
		c.ReferenceRate = 0.1
	}
	if c.SimplexSize == 0 {
		c.SimplexSize = 0.01
	}
	if c.InitialRadius == 0 {
		c.InitialRadius = 0.02
	}
	if c.FinalRadius == 0 {
		c.FinalRadius = 1e-4
	}
	c.Logger = logger.OrNop(c.Logger)
}

// budget counts evaluations and remembers the best point. Once exhausted it
// stops calling the objective and reports the best utility seen.
type budget struct {
	f    Objective
	max  int
	best Result
}

func newBudget(f Objective, maxEvaluations int) *budget {
	return &budget{f: f, max: maxEvaluations, best: Result{Utility: math.Inf(-1)}}
}

func (b *budget) exhausted() bool { return b.best.Evaluations >= b.max }

// eval returns the utility of x and false when the budget was already spent.
func (b *budget) eval(x []float64) (float64, bool) {
	if b.exhausted() {
		return b.best.Utility, false
	}
	u := b.f(x)
	b.best.Evaluations++
	if u > b.best.Utility || b.best.X == nil {
		b.best.Utility = u
		b.best.X = append([]float64(nil), x...)
	}
	return u, true
}

func (b *budget) result(dim int) Result {
	if b.best.X == nil {
		return Result{X: make([]float64, dim), Utility: math.Inf(-1), Evaluations: b.best.Evaluations}
	}
	return b.best
}
