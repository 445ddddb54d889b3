package simulator

import (
	"math"
	"sort"

	"github.com/kilianp07/tariffbroker/core/model"
)

// LogitMigration predicts subscriptions with a multinomial logit choice.
// A fraction Inertia of every population stays on its tariff; the others
// choose among the usable tariffs with probability proportional to
// exp(Rationality * evaluation).
type LogitMigration struct {
	customers   []model.CustomerInfo
	rationality float64
	inertia     float64
}

// NewLogitMigration returns a migration model over the given customers.
func NewLogitMigration(customers []model.CustomerInfo, def MigrationDef) *LogitMigration {
	return &LogitMigration{customers: customers, rationality: def.Rationality, inertia: def.Inertia}
}

// Predict implements prediction.MigrationPredictor.
func (m *LogitMigration) Predict(candidate *model.TariffSpec, charges model.Charges, current model.Subscriptions, competitors []*model.TariffSpec, _ int) model.Subscriptions {
	own := ownIDs(current)
	if candidate != nil {
		own = append(own, candidate.ID)
	}
	return m.redistribute(own, charges, current, competitors)
}

// PredictRevoke implements prediction.MigrationPredictor. The revoked
// tariff keeps nobody, so all its subscribers choose again.
func (m *LogitMigration) PredictRevoke(revoked *model.TariffSpec, charges model.Charges, current model.Subscriptions, competitors []*model.TariffSpec, _ int) model.Subscriptions {
	var own []string
	for _, id := range ownIDs(current) {
		if revoked == nil || id != revoked.ID {
			own = append(own, id)
		}
	}
	return m.redistribute(own, charges, current, competitors)
}

func (m *LogitMigration) redistribute(own []string, charges model.Charges, current model.Subscriptions, competitors []*model.TariffSpec) model.Subscriptions {
	out := make(model.Subscriptions, len(own))
	ownSet := make(map[string]bool, len(own))
	for _, id := range own {
		ownSet[id] = true
	}
	options := append([]string(nil), own...)
	for _, t := range competitors {
		options = append(options, t.ID)
	}
	for _, c := range m.customers {
		ids, shares := m.shares(c.Name, options, charges)
		if len(ids) == 0 {
			for _, id := range own {
				if n := current.Count(id, c.Name); n > 0 {
					out.Set(id, c.Name, n)
				}
			}
			continue
		}
		kept := 0.0
		for _, id := range own {
			n := current.Count(id, c.Name)
			kept += n
			if stay := m.inertia * n; stay > 0 {
				out.Set(id, c.Name, stay)
			}
		}
		// subscribers of a revoked tariff all move
		dropped := current.CustomerTotal(c.Name) - kept
		movers := float64(c.Population) - m.inertia*(float64(c.Population)-dropped)
		if movers <= 0 {
			continue
		}
		for i, id := range ids {
			if ownSet[id] {
				out.Set(id, c.Name, out.Count(id, c.Name)+movers*shares[i])
			}
		}
	}
	return out
}

// shares returns the usable options for a customer and their logit shares.
func (m *LogitMigration) shares(customer string, options []string, charges model.Charges) ([]string, []float64) {
	var (
		ids   []string
		evals []float64
	)
	for _, id := range options {
		if est, ok := charges.Get(customer, id); ok {
			ids = append(ids, id)
			evals = append(evals, est.Evaluation)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	best := math.Inf(-1)
	for _, e := range evals {
		best = math.Max(best, e)
	}
	var sum float64
	w := make([]float64, len(evals))
	for i, e := range evals {
		w[i] = math.Exp(m.rationality * (e - best))
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return ids, w
}

func ownIDs(current model.Subscriptions) []string {
	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
