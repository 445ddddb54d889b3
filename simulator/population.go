package simulator

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// PopulationDef generates customer populations in bulk.
type PopulationDef struct {
	Count int `yaml:"count" json:"count"`
	// Members is the mean population of each generated customer.
	Members int `yaml:"members" json:"members"`
	// ProductionPct is the share of generated customers that produce.
	ProductionPct float64   `yaml:"production_pct" json:"production_pct"`
	Usage         float64   `yaml:"usage" json:"usage"`
	OwnShare      float64   `yaml:"own_share" json:"own_share"`
	Profile       []float64 `yaml:"profile,omitempty" json:"profile,omitempty"`
}

// GenerateCustomers creates Count customers named cust0001..custNNNN. The
// same seed yields the same populations.
func GenerateCustomers(def PopulationDef, seed int64) []CustomerDef {
	if def.Count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	members := def.Members
	if members <= 0 {
		members = 100
	}
	usage := def.Usage
	if usage <= 0 {
		usage = 1
	}
	out := make([]CustomerDef, def.Count)
	for i := range out {
		pt := "CONSUMPTION"
		if def.ProductionPct > 0 && rng.Float64() < def.ProductionPct {
			pt = "PRODUCTION"
		}
		pop := members/2 + rng.Intn(members+1)
		if pop < 1 {
			pop = 1
		}
		out[i] = CustomerDef{
			Name:       fmt.Sprintf("cust%04d", i+1),
			Population: pop,
			PowerType:  pt,
			Usage:      usage * (0.5 + rng.Float64()),
			Profile:    def.Profile,
			OwnShare:   def.OwnShare,
		}
	}
	return out
}

// LoadProfile reads an hourly profile from a JSON object keyed by hour.
// Missing hours default to 1.
func LoadProfile(data []byte) ([]float64, error) {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	prof := make([]float64, 24)
	for i := range prof {
		prof[i] = 1
	}
	for h, v := range m {
		var hour int
		if _, err := fmt.Sscanf(h, "%d", &hour); err != nil {
			continue
		}
		if hour >= 0 && hour < 24 {
			prof[hour] = v
		}
	}
	return prof, nil
}
