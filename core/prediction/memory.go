package prediction

import (
	"github.com/kilianp07/tariffbroker/core/model"
)

// MemoryRepository is a map-backed TariffRepository.
type MemoryRepository struct {
	tariffs map[string]*model.TariffSpec
}

// NewMemoryRepository returns a repository holding the given tariffs.
func NewMemoryRepository(ts ...*model.TariffSpec) *MemoryRepository {
	r := &MemoryRepository{tariffs: make(map[string]*model.TariffSpec, len(ts))}
	for _, t := range ts {
		r.Add(t)
	}
	return r
}

func (r *MemoryRepository) Add(t *model.TariffSpec) {
	if t != nil {
		r.tariffs[t.ID] = t
	}
}

func (r *MemoryRepository) Remove(id string) { delete(r.tariffs, id) }

func (r *MemoryRepository) FindByID(id string) (*model.TariffSpec, bool) {
	t, ok := r.tariffs[id]
	return t, ok
}

// Len returns the number of stored tariffs.
func (r *MemoryRepository) Len() int { return len(r.tariffs) }

// StaticEnergyPredictor returns configured profiles, repeated or truncated to
// the requested horizon.
type StaticEnergyPredictor struct {
	Profiles map[string]model.EnergyVector
}

// Forecast returns the configured profile for the customer or zeros.
func (p StaticEnergyPredictor) Forecast(c model.CustomerInfo, horizon, _ int) model.EnergyVector {
	out := make(model.EnergyVector, horizon)
	prof, ok := p.Profiles[c.Name]
	if !ok || len(prof) == 0 {
		return out
	}
	for i := range out {
		out[i] = prof[i%len(prof)]
	}
	return out
}

// FixedMarket returns constant market statistics.
type FixedMarket struct {
	Mean   float64
	Stddev float64
	// Forecast overrides the flat forecast when non-nil.
	Forecast []float64
}

func (m FixedMarket) MeanPrice() float64   { return m.Mean }
func (m FixedMarket) StddevPrice() float64 { return m.Stddev }

// PriceForecast returns the configured forecast as is, or horizon copies of
// the mean price.
func (m FixedMarket) PriceForecast(horizon int) []float64 {
	if m.Forecast != nil {
		return append([]float64(nil), m.Forecast...)
	}
	out := make([]float64, horizon)
	for i := range out {
		out[i] = m.Mean
	}
	return out
}

// FlatCostCurve prices every kWh at a constant signed unit cost.
type FlatCostCurve struct {
	UnitCost float64
	Fudge    float64
}

func (c FlatCostCurve) PredictUnitCost(_, _ int, _, _ float64) float64 { return c.UnitCost }
func (c FlatCostCurve) CompetitorDemand(_, _ int) float64             { return 0 }
func (c FlatCostCurve) FudgeFactor(_ int) float64                     { return c.Fudge }
