package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tariffbroker/core/model"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `broker:
  name: "alice"
  power_type: "production"
optimizer:
  strategy:
    type: "first-time-different"
    conf:
      first:
        type: "one-shot"
      then:
        type: "incremental"
        conf:
          method:
            type: "powell"
  max_evaluations: 50
  withdraw_fees: true
candidates:
  num_tariffs: 20
utility:
  wholesale_mode: "flat"
  horizon: 48
decision:
  warmup_timeslots: 12
  revocation_enabled: true
  hour_offset: 6
shifting:
  mode: "heuristic"
logging:
  level: "debug"
metrics:
  sinks:
    - type: "nop"
  prometheus_port: ":2112"
journal:
  backend: "sqlite"
mqtt:
  broker: "tcp://localhost:1883"
  qos: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Broker.Name)
	assert.Equal(t, model.Production, cfg.Broker.Type())
	assert.Equal(t, "first-time-different", cfg.Optimizer.Strategy.Type)
	assert.Contains(t, cfg.Optimizer.Strategy.Conf, "then")
	assert.Equal(t, 50, cfg.Optimizer.MaxEvaluations)
	assert.Equal(t, 7*24*time.Hour, cfg.Optimizer.MinDuration)
	assert.Equal(t, 24, cfg.Optimizer.NumRates)
	assert.Equal(t, 20, cfg.Candidates.NumTariffs)
	assert.Equal(t, 0.7, cfg.Candidates.StddevFactor)
	assert.Equal(t, "flat", cfg.Utility.WholesaleMode)
	assert.Equal(t, 48, cfg.Utility.Horizon)
	assert.Zero(t, cfg.Utility.BalancingUnitCost)
	assert.Equal(t, 12, cfg.Decision.WarmupTimeslots)
	assert.True(t, cfg.Decision.RevocationEnabled)
	assert.Equal(t, 6, cfg.Decision.HourOffset)
	assert.Equal(t, ShiftingHeuristic, cfg.Shifting.Mode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusPort)
	assert.Equal(t, "sqlite", cfg.Journal.Backend)
	assert.Equal(t, "decisions.db", cfg.Journal.Path)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.json", `{"broker":{"name":"bob"},"candidates":{"num_tariffs":10}}`)
	t.Setenv("K_CANDIDATES__NUM_TARIFFS", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.Broker.Name)
	assert.Equal(t, 30, cfg.Candidates.NumTariffs)
	assert.Equal(t, "CONSUMPTION", cfg.Broker.PowerType)
	assert.Equal(t, "incremental", cfg.Optimizer.Strategy.Type)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"shifting":  "shifting:\n  mode: magic\n",
		"journal":   "journal:\n  backend: postgres\n",
		"mqtt":      "mqtt:\n  qos: 3\n",
		"broker":    "broker:\n  power_type: plasma\n",
		"logging":   "logging:\n  level: loud\n",
		"decision":  "decision:\n  hour_offset: 30\n",
		"optimizer": "optimizer:\n  num_rates: 30\n",
		"sentry":    "sentry:\n  traces_sample_rate: 1.5\n",
	}
	for section, data := range cases {
		t.Run(section, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), section)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tariffbroker", cfg.Broker.Name)
	assert.Equal(t, ShiftingIdentity, cfg.Shifting.Mode)
	assert.Equal(t, "none", cfg.Journal.Backend)
	assert.False(t, cfg.MQTT.Enabled())
}
