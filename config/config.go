package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/tariffbroker/core/candidates"
	"github.com/kilianp07/tariffbroker/core/decision"
	"github.com/kilianp07/tariffbroker/core/journal"
	"github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/optimizer"
	"github.com/kilianp07/tariffbroker/core/utility"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
)

type Config struct {
	Broker     BrokerConfig      `json:"broker"`
	Optimizer  optimizer.Config  `json:"optimizer"`
	Candidates candidates.Config `json:"candidates"`
	Utility    utility.Config    `json:"utility"`
	Decision   decision.Config   `json:"decision"`
	Shifting   ShiftingConfig    `json:"shifting"`
	Logging    LoggingConfig     `json:"logging"`
	Metrics    metrics.Config    `json:"metrics"`
	Journal    journal.Config    `json:"journal"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Sentry     SentryConfig      `json:"sentry"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides, then
// completes and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: K_SECTION__KEY sets section.key.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults completes every section.
func (c *Config) SetDefaults() {
	c.Broker.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Candidates.SetDefaults()
	c.Utility.SetDefaults()
	c.Decision.SetDefaults()
	c.Shifting.SetDefaults()
	c.Logging.SetDefaults()
	c.Journal.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section and names the one that failed.
func (c Config) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"broker", c.Broker.Validate},
		{"optimizer", c.Optimizer.Validate},
		{"candidates", c.Candidates.Validate},
		{"utility", c.Utility.Validate},
		{"decision", c.Decision.Validate},
		{"shifting", c.Shifting.Validate},
		{"logging", c.Logging.Validate},
		{"journal", c.Journal.Validate},
		{"mqtt", c.MQTT.Validate},
		{"sentry", c.Sentry.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("%s: %w", ch.name, err)
		}
	}
	return nil
}
