package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
)

func TestMemoryRepository(t *testing.T) {
	spec := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.1))
	repo := NewMemoryRepository(spec)
	got, ok := repo.FindByID(spec.ID)
	require.True(t, ok)
	assert.Same(t, spec, got)
	repo.Remove(spec.ID)
	_, ok = repo.FindByID(spec.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

func TestStaticEnergyPredictor_RepeatsProfile(t *testing.T) {
	p := StaticEnergyPredictor{Profiles: map[string]model.EnergyVector{"v": {1, 2}}}
	got := p.Forecast(model.CustomerInfo{Name: "v"}, 5, 0)
	assert.Equal(t, model.EnergyVector{1, 2, 1, 2, 1}, got)
	assert.Equal(t, model.EnergyVector{0, 0}, p.Forecast(model.CustomerInfo{Name: "x"}, 2, 0))
}

func TestFixedMarket_Forecast(t *testing.T) {
	m := FixedMarket{Mean: 0.05, Stddev: 0.01}
	assert.Equal(t, []float64{0.05, 0.05, 0.05}, m.PriceForecast(3))
	m.Forecast = []float64{0.1}
	assert.Len(t, m.PriceForecast(3), 1, "explicit forecasts keep their own length")
}
