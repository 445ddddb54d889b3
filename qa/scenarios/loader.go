package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tariffbroker/core/factory"
	"github.com/kilianp07/tariffbroker/simulator"
)

// Expected bounds the outcome of a scenario run. Nil bounds are not checked.
type Expected struct {
	MinPublishes   int      `yaml:"min_publishes"`
	MaxPublishes   *int     `yaml:"max_publishes,omitempty"`
	MaxRevokes     *int     `yaml:"max_revokes,omitempty"`
	MinSubscribers *float64 `yaml:"min_subscribers,omitempty"`
}

// Scenario is a synthetic market and the broker settings to run against it.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Timeslots   int    `yaml:"timeslots"`
	// Strategy overrides the configured strategy tree when set.
	Strategy   *factory.ModuleConfig `yaml:"strategy,omitempty"`
	Revocation bool                  `yaml:"revocation,omitempty"`
	Market     simulator.Config      `yaml:"market"`
	Expected   Expected              `yaml:"expected"`
}

// Load reads a scenario file. A missing name defaults to the file name and a
// missing length to one day.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if sc.Timeslots == 0 {
		sc.Timeslots = 24
	}
	if sc.Timeslots < 0 {
		return nil, fmt.Errorf("%s: timeslots must be positive", path)
	}
	return &sc, nil
}
