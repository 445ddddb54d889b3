package search

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/kilianp07/tariffbroker/infra/logger"
)

var target = []float64{0.01, -0.005, 0}

// bowl peaks at target with utility zero.
func bowl(calls *int) Objective {
	return func(x []float64) float64 {
		*calls++
		var s float64
		for i, v := range x {
			d := v - target[i]
			s += d * d
		}
		return -s
	}
}

func allMethods() []Method {
	reg := Registry(Config{})
	out := make([]Method, 0, 5)
	for _, name := range reg.Names() {
		m, err := reg.Create(factoryConfig(name))
		if err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	return out
}

func TestMethodsNeverWorseThanZeroOffsets(t *testing.T) {
	var calls int
	origin := bowl(&calls)(make([]float64, len(target)))
	for _, m := range allMethods() {
		t.Run(m.Name(), func(t *testing.T) {
			calls = 0
			res := m.Maximize(bowl(&calls), len(target), 500)
			require.Len(t, res.X, len(target))
			assert.GreaterOrEqual(t, res.Utility, origin)
			assert.LessOrEqual(t, calls, 500)
			assert.Equal(t, calls, res.Evaluations)
		})
	}
}

func TestMethodsRespectTinyBudget(t *testing.T) {
	for _, m := range allMethods() {
		t.Run(m.Name(), func(t *testing.T) {
			var calls int
			res := m.Maximize(bowl(&calls), len(target), 5)
			assert.LessOrEqual(t, calls, 5)
			assert.False(t, math.IsInf(res.Utility, 0))
		})
	}
}

func TestZeroBudget(t *testing.T) {
	var calls int
	res := NewPowell(Config{}).Maximize(bowl(&calls), 3, 0)
	assert.Zero(t, calls)
	assert.Equal(t, []float64{0, 0, 0}, res.X)
	assert.True(t, math.IsInf(res.Utility, -1))
}

func TestCoordinateAscentHitsGrid(t *testing.T) {
	var calls int
	res := NewCoordinateAscent(Config{StepSize: 0.005, NumSteps: 3, Repeat: true}).Maximize(bowl(&calls), 3, 1000)
	for i := range target {
		assert.InDelta(t, target[i], res.X[i], 1e-12)
	}
}

func TestCoordinateAscentWalksFromImprovedPoint(t *testing.T) {
	peak := func(x []float64) float64 { return -(x[0] - 0.02) * (x[0] - 0.02) }
	res := NewCoordinateAscent(Config{StepSize: 0.005, NumSteps: 2}).Maximize(peak, 1, 100)
	assert.InDelta(t, 0.02, res.X[0], 1e-12)
	assert.Less(t, res.Evaluations, 100)
}

func TestPowellConverges(t *testing.T) {
	var calls int
	res := NewPowell(Config{}).Maximize(bowl(&calls), 3, 2000)
	for i := range target {
		assert.InDelta(t, target[i], res.X[i], 1e-3)
	}
}

func TestTrustRegionSolvesSeparableQuadratic(t *testing.T) {
	var calls int
	res := NewTrustRegion(Config{}).Maximize(bowl(&calls), 3, 2000)
	for i := range target {
		assert.InDelta(t, target[i], res.X[i], 1e-6)
	}
}

func TestNelderMeadImproves(t *testing.T) {
	var calls int
	res := NewNelderMead(Config{}).Maximize(bowl(&calls), 3, 3000)
	assert.Greater(t, res.Utility, -1e-5)
}

func TestGradientAscentImproves(t *testing.T) {
	var calls int
	origin := -(0.01*0.01 + 0.005*0.005)
	res := NewGradientAscent(Config{StepSize: 0.002, Tolerance: 1e-9}).Maximize(bowl(&calls), 3, 500)
	assert.Greater(t, res.Utility, origin)
}

func TestGradientStepScalesWithSeed(t *testing.T) {
	g := NewGradientAscent(Config{StepSize: 0.01, ReferenceRate: 0.1})
	scaled, ok := g.WithSeed(-0.2).(*GradientAscent)
	require.True(t, ok)
	assert.InDelta(t, 0.02, scaled.Step(), 1e-12)
	assert.InDelta(t, 0.01, g.Step(), 1e-12, "receiver unchanged")
}

func TestBinarySearchFindsPeak(t *testing.T) {
	evals := map[int]int{}
	got := BinarySearch{}.Search(80, func(i int) float64 {
		evals[i]++
		d := float64(i - 30)
		return -d * d
	})
	require.NotEmpty(t, got)
	assert.Equal(t, 30, got[0].Index)
	assert.Less(t, len(evals), 20)
	for i, n := range evals {
		assert.Equal(t, 1, n, "index %d evaluated twice", i)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Utility, got[i].Utility)
	}
}

func TestBinarySearchStopsOnNonConvexity(t *testing.T) {
	utilities := []float64{5, 0, 0, 0, 1, 0, 0, 0, 4}
	var buf bytes.Buffer
	s := BinarySearch{Log: infralogger.NewWriterLogger(&buf, "search")}
	got := s.Search(len(utilities), func(i int) float64 { return utilities[i] })
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Index)
	assert.Contains(t, buf.String(), "not unimodal")
}

func TestBinarySearchSmallLists(t *testing.T) {
	assert.Empty(t, BinarySearch{}.Search(0, func(int) float64 { return 0 }))
	one := BinarySearch{}.Search(1, func(int) float64 { return 1 })
	require.Len(t, one, 1)
	two := BinarySearch{}.Search(2, func(i int) float64 { return float64(i) })
	require.Len(t, two, 2)
	assert.Equal(t, 1, two[0].Index)
}
