package optimizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/kilianp07/tariffbroker/core/model"
)

// TariffUtilityEstimate maps offset vectors to time-of-use tariffs and
// evaluates them. Entry h of a point is the offset added to the seed rate at
// hour h. Points are keyed by content, so copies of a vector resolve to the
// same spec.
type TariffUtilityEstimate struct {
	seed     *model.TariffSpec
	seedRate float64
	evaluate func(*model.TariffSpec) float64

	specs     map[string]*model.TariffSpec
	utilities map[string]float64
	ranking   *model.Ranking
}

// NewTariffUtilityEstimate returns an estimate around seed. evaluate is
// called once per distinct point.
func NewTariffUtilityEstimate(seed *model.TariffSpec, evaluate func(*model.TariffSpec) float64) *TariffUtilityEstimate {
	return &TariffUtilityEstimate{
		seed:     seed,
		seedRate: seed.MeanRate(),
		evaluate: evaluate,
		specs:     make(map[string]*model.TariffSpec),
		utilities: make(map[string]float64),
		ranking:   model.NewRanking(),
	}
}

// pointKey rounds offsets to 1e-9 so that numerically equal points share a
// key.
func pointKey(x []float64) string {
	var sb strings.Builder
	for i, v := range x {
		if i > 0 {
			sb.WriteByte(',')
		}
		r := math.Round(v*1e9) / 1e9
		if r == 0 {
			r = 0 // drop the sign of negative zero
		}
		sb.WriteString(strconv.FormatFloat(r, 'f', 9, 64))
	}
	return sb.String()
}

// ConvertPointToSpec returns the tariff encoded by x, creating it on first
// use.
func (e *TariffUtilityEstimate) ConvertPointToSpec(x []float64) *model.TariffSpec {
	key := pointKey(x)
	if spec, ok := e.specs[key]; ok {
		return spec
	}
	spec := e.seed.Clone()
	spec.Rates = make([]model.Rate, 0, len(x))
	for h, off := range x {
		spec.Rates = append(spec.Rates, model.HourlyRate(h%model.HoursPerDay, e.seedRate+off))
	}
	e.specs[key] = spec
	return spec
}

// CorrespondingSpec returns the tariff previously created for x.
func (e *TariffUtilityEstimate) CorrespondingSpec(x []float64) (*model.TariffSpec, bool) {
	spec, ok := e.specs[pointKey(x)]
	return spec, ok
}

// Utility evaluates x and records it in the ranking. Points already
// evaluated are not evaluated again.
func (e *TariffUtilityEstimate) Utility(x []float64) float64 {
	key := pointKey(x)
	if u, ok := e.utilities[key]; ok {
		return u
	}
	spec := e.ConvertPointToSpec(x)
	u := e.evaluate(spec)
	e.utilities[key] = u
	e.ranking.Put(u, model.PublishAction(spec))
	return u
}

// Ranking returns every evaluated tariff.
func (e *TariffUtilityEstimate) Ranking() *model.Ranking { return e.ranking }

// Evaluations returns how many distinct points were evaluated.
func (e *TariffUtilityEstimate) Evaluations() int { return len(e.utilities) }
