// Package metrics defines the sink contracts used to observe the broker's
// decisions. Sinks such as PromSink and InfluxSink live in infra/metrics and
// register themselves by name; NewSink builds one or a MultiSink from config.
package metrics
