package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/model"
)

// PromSink records decisions in Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	utility   *prometheus.GaugeVec
	margin    prometheus.Gauge
	rate      *prometheus.GaugeVec
	warmup    prometheus.Counter
	strategy  *prometheus.CounterVec
}

// NewPromSink registers decision metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_decisions_total",
			Help: "Decisions taken per action kind and strategy",
		}, []string{"kind", "strategy", "warmup_override"}),
		utility: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broker_decision_utility",
			Help: "Utility of the selected action and of doing nothing",
		}, []string{"which"}),
		margin: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broker_decision_margin",
			Help: "Selected utility minus no-op utility",
		}),
		rate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "broker_published_mean_rate",
			Help: "Mean rate of the last published tariff per power type",
		}, []string{"power_type"}),
		warmup: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broker_warmup_overrides_total",
			Help: "No-op decisions replaced during warm-up",
		}),
		strategy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_strategy_events_total",
			Help: "Strategy delegations and degradations",
		}, []string{"strategy", "action"}),
	}
	var err error
	if s.decisions, err = register(reg, s.decisions); err != nil {
		return nil, err
	}
	if s.utility, err = register(reg, s.utility); err != nil {
		return nil, err
	}
	if s.margin, err = register(reg, s.margin); err != nil {
		return nil, err
	}
	if s.rate, err = register(reg, s.rate); err != nil {
		return nil, err
	}
	if s.warmup, err = register(reg, s.warmup); err != nil {
		return nil, err
	}
	if s.strategy, err = register(reg, s.strategy); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDecision updates counters and gauges for one decision.
func (s *PromSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	s.decisions.WithLabelValues(rec.Kind.String(), rec.Strategy, strconv.FormatBool(rec.WarmupOverride)).Inc()
	s.utility.WithLabelValues("selected").Set(rec.Utility)
	s.utility.WithLabelValues("noop").Set(rec.NoOpUtility)
	s.margin.Set(rec.Utility - rec.NoOpUtility)
	if rec.WarmupOverride {
		s.warmup.Inc()
	}
	if rec.TariffID != "" && rec.Kind == model.Publish {
		s.rate.WithLabelValues(rec.PowerType).Set(rec.MeanRate)
	}
	return nil
}

// RecordStrategyEvent counts strategy events.
func (s *PromSink) RecordStrategyEvent(rec coremetrics.StrategyRecord) error {
	s.strategy.WithLabelValues(rec.Strategy, rec.Action).Inc()
	return nil
}
