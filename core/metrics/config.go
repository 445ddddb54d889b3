package metrics

import "github.com/kilianp07/tariffbroker/core/factory"

// Config defines settings for decision sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort exposes /metrics when non-empty.
	PrometheusPort string `json:"prometheus_port"`
}
