package charges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
)

func TestBillFixedRate(t *testing.T) {
	tariff := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.1))
	tariff.PeriodicPayment = -0.5
	e := make(model.EnergyVector, 48)
	for i := range e {
		e[i] = 2
	}
	assert.InDelta(t, 48*2*-0.1+2*-0.5, Bill(tariff, e, 0, 0), 1e-9)
}

func TestBillTimeOfUseAlignment(t *testing.T) {
	tariff := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.1), model.HourlyRate(7, -1))
	e := model.EnergyVector{1, 1, 1}
	// Timeslot 4 with offset 1 puts the entries on hours 6, 7 and 8.
	assert.InDelta(t, -0.1-1-0.1, Bill(tariff, e, 4, 1), 1e-9)
	assert.InDelta(t, -0.3, Bill(tariff, e, 0, 0), 1e-9)
}

func TestBillProductionIsPositive(t *testing.T) {
	tariff := model.NewTariffSpec("me", model.Production, model.FixedRate(0.02))
	assert.InDelta(t, 0.1, Bill(tariff, model.EnergyVector{-2, -3}, 0, 0), 1e-9)
}

func TestEstimateRelevantTariffCharges(t *testing.T) {
	cons := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.1))
	prod := model.NewTariffSpec("me", model.Production, model.FixedRate(0.05))
	customers := []model.CustomerInfo{
		{Name: "homes", Population: 10, PowerType: model.Consumption},
		{Name: "solar", Population: 5, PowerType: model.SolarProduction},
	}
	shifted := model.ShiftedEnergyMap{}
	shifted.Put("homes", cons.ID, model.ShiftedEnergy{Energy: model.EnergyVector{1, 2}, Inconvenience: -0.05})
	shifted.Put("homes", prod.ID, model.ShiftedEnergy{Energy: model.EnergyVector{1, 2}})
	shifted.Put("solar", prod.ID, model.ShiftedEnergy{Energy: model.EnergyVector{-4}})

	got := NewEstimator(0, nil).EstimateRelevantTariffCharges([]*model.TariffSpec{cons, prod}, customers, shifted, 0)

	est, ok := got.Get("homes", cons.ID)
	require.True(t, ok)
	assert.InDelta(t, -0.3, est.Bill, 1e-9)
	assert.InDelta(t, -0.35, est.Evaluation, 1e-9)

	_, ok = got.Get("homes", prod.ID)
	assert.False(t, ok, "consumers cannot use production tariffs")
	_, ok = got.Get("solar", cons.ID)
	assert.False(t, ok)

	est, ok = got.Get("solar", prod.ID)
	require.True(t, ok)
	assert.InDelta(t, 0.2, est.Bill, 1e-9)
}
