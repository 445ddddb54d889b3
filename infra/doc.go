// Package infra holds the adapters behind core contracts: the zerolog
// logger, Prometheus and InfluxDB decision sinks, the MQTT decision feed and
// Sentry error reporting. Core packages never import infra.
package infra
