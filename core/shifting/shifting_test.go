package shifting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/prediction"
)

func flatDay(v float64) model.EnergyVector {
	e := make(model.EnergyVector, model.HoursPerDay)
	for i := range e {
		e[i] = v
	}
	return e
}

func nightTariff() *model.TariffSpec {
	rates := []model.Rate{model.FixedRate(-0.2)}
	for h := 0; h < 6; h++ {
		rates = append(rates, model.HourlyRate(h, -0.05))
	}
	return model.NewTariffSpec("me", model.Consumption, rates...)
}

func TestIdentityCoversPredictedPairs(t *testing.T) {
	energy := map[string]model.EnergyVector{"homes": {1, 2}, "offices": {3, 4}}
	predicted := model.Subscriptions{}
	predicted.Set("t1", "homes", 3)
	predicted.Set("t2", "homes", 1)
	predicted.Set("t2", "offices", 2)
	predicted.Set("t3", "ghost", 1)

	out := Identity{}.UpdateEstimatedEnergyWithShifting(energy, predicted, nil, 0)
	require.NoError(t, out.Degraded)
	assert.Len(t, out.Energy["homes"], 2)
	assert.Len(t, out.Energy["offices"], 1)
	assert.NotContains(t, out.Energy, "ghost")

	se, ok := out.Energy.Get("offices", "t2")
	require.True(t, ok)
	assert.Equal(t, model.EnergyVector{3, 4}, se.Energy)
	assert.Zero(t, se.Inconvenience)

	se.Energy[0] = 99
	assert.Equal(t, 3.0, energy["offices"][0], "input must not be aliased")
}

type stubSandbox struct {
	err    error
	panics bool
	values model.ShiftedEnergyMap
	repo   *prediction.MemoryRepository
	seen   int
}

func (s *stubSandbox) Load(map[string]model.EnergyVector, model.Subscriptions) {}

func (s *stubSandbox) Reforecast(int) error {
	if s.repo != nil {
		s.seen = s.repo.Len()
	}
	if s.panics {
		panic("boom")
	}
	return s.err
}

func (s *stubSandbox) ShiftedEnergy(customer, tariffID string) (model.ShiftedEnergy, bool) {
	return s.values.Get(customer, tariffID)
}

func TestModelBasedFallsBackOnFailure(t *testing.T) {
	energy := map[string]model.EnergyVector{"homes": {1, 1}}
	cand := nightTariff()
	predicted := model.Subscriptions{}
	predicted.Set(cand.ID, "homes", 10)

	cases := map[string]*stubSandbox{
		"error":      {err: errors.New("sandbox down")},
		"panic":      {panics: true},
		"incomplete": {values: model.ShiftedEnergyMap{}},
	}
	for name, sb := range cases {
		t.Run(name, func(t *testing.T) {
			repo := prediction.NewMemoryRepository()
			sb.repo = repo
			p := NewModelBased(repo, sb, nil)
			out := p.UpdateEstimatedEnergyWithShifting(energy, predicted, []*model.TariffSpec{cand}, 5)
			require.Error(t, out.Degraded)
			se, ok := out.Energy.Get("homes", cand.ID)
			require.True(t, ok)
			assert.Equal(t, model.EnergyVector{1, 1}, se.Energy)
			assert.Equal(t, 1, sb.seen, "candidate registered during re-forecast")
			assert.Zero(t, repo.Len(), "temporary tariffs removed")
		})
	}
	assert.ErrorIs(t, NewModelBased(prediction.NewMemoryRepository(), cases["incomplete"], nil).
		UpdateEstimatedEnergyWithShifting(energy, predicted, []*model.TariffSpec{cand}, 5).Degraded, ErrIncomplete)
}

func TestModelBasedKeepsKnownTariffs(t *testing.T) {
	live := nightTariff()
	repo := prediction.NewMemoryRepository(live)
	sb := &HeuristicSandbox{Repo: repo}
	predicted := model.Subscriptions{}
	predicted.Set(live.ID, "homes", 1)

	out := NewModelBased(repo, sb, nil).UpdateEstimatedEnergyWithShifting(
		map[string]model.EnergyVector{"homes": flatDay(1)}, predicted, []*model.TariffSpec{live}, 23)
	require.NoError(t, out.Degraded)
	_, ok := repo.FindByID(live.ID)
	assert.True(t, ok)
}

func TestHeuristicSandboxShiftsTowardsCheapHours(t *testing.T) {
	tou := nightTariff()
	flat := model.NewTariffSpec("me", model.Consumption, model.FixedRate(-0.15))
	repo := prediction.NewMemoryRepository()
	sb := &HeuristicSandbox{Repo: repo, Elasticity: 0.5, Penalty: 0.01}

	predicted := model.Subscriptions{}
	predicted.Set(tou.ID, "homes", 5)
	predicted.Set(flat.ID, "homes", 5)
	energy := map[string]model.EnergyVector{"homes": flatDay(1)}

	// Timeslot 23 with zero offset makes entry i fall on hour i.
	out := NewModelBased(repo, sb, nil).UpdateEstimatedEnergyWithShifting(energy, predicted, []*model.TariffSpec{tou, flat}, 23)
	require.NoError(t, out.Degraded)

	shifted, ok := out.Energy.Get("homes", tou.ID)
	require.True(t, ok)
	assert.InDelta(t, 24.0, shifted.Energy.Sum(), 1e-9)
	assert.Greater(t, shifted.Energy[0], 1.0)
	assert.Less(t, shifted.Energy[12], 1.0)
	assert.Less(t, shifted.Inconvenience, 0.0)

	unshifted, ok := out.Energy.Get("homes", flat.ID)
	require.True(t, ok)
	assert.Equal(t, flatDay(1), unshifted.Energy)
	assert.Zero(t, unshifted.Inconvenience)
	assert.Zero(t, repo.Len())
}

func TestHeuristicSandboxLeavesProductionAlone(t *testing.T) {
	prod := model.NewTariffSpec("me", model.Production, model.HourlyRate(12, 0.1), model.FixedRate(0.02))
	repo := prediction.NewMemoryRepository(prod)
	sb := &HeuristicSandbox{Repo: repo, Elasticity: 1}
	predicted := model.Subscriptions{}
	predicted.Set(prod.ID, "solar", 1)
	sb.Load(map[string]model.EnergyVector{"solar": flatDay(-2)}, predicted)
	require.NoError(t, sb.Reforecast(0))
	se, ok := sb.ShiftedEnergy("solar", prod.ID)
	require.True(t, ok)
	assert.Equal(t, flatDay(-2), se.Energy)
}

func TestHeuristicSandboxUnknownTariff(t *testing.T) {
	sb := &HeuristicSandbox{Repo: prediction.NewMemoryRepository()}
	predicted := model.Subscriptions{}
	predicted.Set("missing", "homes", 1)
	sb.Load(map[string]model.EnergyVector{"homes": {1}}, predicted)
	assert.Error(t, sb.Reforecast(0))
}

func TestSlotHoursWrap(t *testing.T) {
	assert.Equal(t, []int{22, 23, 0, 1}, model.SlotHours(20, 1, 4))
}
