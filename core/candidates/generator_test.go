package candidates

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
	infralogger "github.com/kilianp07/tariffbroker/infra/logger"
)

var twoBrokerMarket = Market{MeanPrice: 0.05, StddevPrice: 0.01, DistributionFee: -0.01}

func baseInput() Input {
	mine := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.15))
	rival := model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.11))
	subs := model.Subscriptions{}
	subs.Set(mine.ID, "village", 40)
	return Input{
		PowerType:         model.Consumption,
		Self:              "me",
		OwnTariffs:        []*model.TariffSpec{mine},
		Subscriptions:     subs,
		CompetitorTariffs: []*model.TariffSpec{rival},
		Market:            twoBrokerMarket,
		NumBrokers:        2,
	}
}

func TestMarketBasedBound_TwoBrokers(t *testing.T) {
	g := New(Config{}, nil)
	bound := g.MarketBasedBound(model.Consumption, twoBrokerMarket, 2)
	assert.InDelta(t, -0.067, bound, 1e-9)
}

func TestMarketBasedBound_LargeFieldHalvesMargin(t *testing.T) {
	g := New(Config{}, nil)
	bound := g.MarketBasedBound(model.Consumption, twoBrokerMarket, 5)
	assert.InDelta(t, -0.0635, bound, 1e-9)
}

func TestMarketBasedBound_ProductionMirrored(t *testing.T) {
	g := New(Config{}, nil)
	bound := g.MarketBasedBound(model.Production, twoBrokerMarket, 2)
	assert.InDelta(t, 0.033, bound, 1e-9)
}

func TestGenerate_ArithmeticSequence(t *testing.T) {
	for _, n := range []int{1, 2, 5, 80} {
		g := New(Config{NumTariffs: n}, nil)
		in := baseInput()
		b := g.Bracket(in)
		specs := g.Generate(in)
		require.Len(t, specs, n)
		assert.Equal(t, b.Best, specs[0].Rates[0].Value)
		if n == 1 {
			continue
		}
		assert.Equal(t, b.Worst, specs[n-1].Rates[0].Value)
		step := specs[1].Rates[0].Value - specs[0].Rates[0].Value
		for i := 1; i < n; i++ {
			d := specs[i].Rates[0].Value - specs[i-1].Rates[0].Value
			assert.InDelta(t, step, d, 1e-12)
		}
		for _, s := range specs {
			assert.Equal(t, "me", s.Broker)
			assert.False(t, s.IsTimeOfUse())
		}
	}
}

func TestBracket_AroundBound(t *testing.T) {
	g := New(Config{}, nil)
	b := g.Bracket(baseInput())
	assert.InDelta(t, -0.067, b.MarketBound, 1e-9)
	assert.Equal(t, -0.15, b.MyBest)
	assert.Equal(t, -0.11, b.CompetingBest)
	assert.Equal(t, 0.8, b.Interpolation)
	// 20% of the way from the bound toward each reference.
	assert.InDelta(t, -0.067+0.2*(-0.11+0.067), b.Best, 1e-12)
	assert.InDelta(t, -0.067+0.2*(-0.15+0.067), b.Worst, 1e-12)
	assert.False(t, b.Degenerate)
}

func TestInterpolation_TightensAfterFirstCall(t *testing.T) {
	g := New(Config{}, nil)
	in := baseInput()
	g.Generate(in)
	assert.Equal(t, 0.9, g.Bracket(in).Interpolation)
	assert.Equal(t, 1, g.Calls())
}

func TestInterpolation_TransientTwoBrokerPhase(t *testing.T) {
	g := New(Config{}, nil)
	in := baseInput()
	in.CompetitorTariffs = []*model.TariffSpec{model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.5))}
	b := g.Bracket(in)
	assert.True(t, b.Transient)
	assert.Equal(t, 0.96, b.Interpolation)

	in.NumBrokers = 3
	assert.False(t, g.Bracket(in).Transient)
}

func TestMyBestRate_EmptySubscriptionsLogsAndReturnsSentinel(t *testing.T) {
	var buf bytes.Buffer
	g := New(Config{}, infralogger.NewWriterLogger(&buf, "candidates"))
	in := baseInput()
	in.Subscriptions = model.Subscriptions{}
	assert.Equal(t, WorstRate, g.MyBestRateValue(in))
	assert.Contains(t, buf.String(), `"level":"error"`)

	specs := g.Generate(in)
	require.Len(t, specs, 80)
	for _, s := range specs {
		assert.False(t, math.IsInf(s.Rates[0].Value, 0))
		assert.False(t, math.IsNaN(s.Rates[0].Value))
	}
	assert.True(t, g.Bracket(in).Degenerate)
}

func TestCompetingBestRate_IgnoresRatesAboveBound(t *testing.T) {
	g := New(Config{}, nil)
	in := baseInput()
	in.CompetitorTariffs = []*model.TariffSpec{
		model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.05)),
		model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.09)),
		model.NewTariffSpec("rival", model.Consumption, model.FixedRate(-0.2)),
		model.NewTariffSpec("rival", model.Production, model.FixedRate(0.01)),
	}
	assert.Equal(t, -0.09, g.CompetingBestRateValue(in, -0.067))
}

func TestGenerate_ProductionFloor(t *testing.T) {
	g := New(Config{NumTariffs: 3, ProductionFloor: 0.02}, nil)
	mine := model.NewTariffSpec("me", model.Production, model.FixedRate(0.001))
	subs := model.Subscriptions{}
	subs.Set(mine.ID, "farm", 3)
	in := Input{
		PowerType:         model.Production,
		Self:              "me",
		OwnTariffs:        []*model.TariffSpec{mine},
		Subscriptions:     subs,
		CompetitorTariffs: []*model.TariffSpec{model.NewTariffSpec("rival", model.Production, model.FixedRate(0.005))},
		Market:            twoBrokerMarket,
		NumBrokers:        2,
	}
	for _, s := range g.Generate(in) {
		assert.GreaterOrEqual(t, s.Rates[0].Value, 0.02)
	}
}

func TestEvenlySpaced(t *testing.T) {
	assert.Nil(t, EvenlySpaced(0, 1, 0))
	assert.Equal(t, []float64{0, 0.5, 1}, EvenlySpaced(0, 1, 3))
}

func TestConfigValidate(t *testing.T) {
	c := Config{}
	c.SetDefaults()
	require.NoError(t, c.Validate())
	c.Interpolation = 1.5
	assert.Error(t, c.Validate())
}
