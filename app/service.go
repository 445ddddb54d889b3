package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/tariffbroker/config"
	"github.com/kilianp07/tariffbroker/core/journal"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/core/model"
	"github.com/kilianp07/tariffbroker/core/monitoring"
	"github.com/kilianp07/tariffbroker/infra/logger"
	"github.com/kilianp07/tariffbroker/infra/metrics"
	inframon "github.com/kilianp07/tariffbroker/infra/monitoring"
	"github.com/kilianp07/tariffbroker/infra/mqtt"
	"github.com/kilianp07/tariffbroker/internal/eventbus"
)

// Market is the environment the broker trades in. Observe reports the state
// at the start of the current timeslot; Apply executes the broker's actions
// and advances to the next one.
type Market interface {
	Observe() Observation
	Apply(actions []model.Action) error
}

// Service wires a Broker to its outputs and drives it against a Market.
type Service struct {
	Broker *Broker

	journal   journal.Store
	sink      coremetrics.DecisionSink
	bus       *eventbus.Bus
	publisher mqtt.Publisher
	monitor   monitoring.Monitor
	log       logger.Logger
	promPort  string
}

// New creates a Service from the configuration.
func New(cfg *config.Config, preds Predictors) (*Service, error) {
	log := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry, cfg.Broker.Name)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	pub, err := mqtt.New(cfg.MQTT, cfg.Broker.Name)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	bus := eventbus.New()
	broker, err := NewBroker(cfg, preds, Options{
		Journal:   store,
		Sink:      sink,
		Bus:       bus,
		Publisher: pub,
		Log:       logger.New("broker"),
	})
	if err != nil {
		_ = store.Close()
		_ = pub.Close()
		return nil, err
	}
	return &Service{
		Broker:    broker,
		journal:   store,
		sink:      sink,
		bus:       bus,
		publisher: pub,
		monitor:   mon,
		log:       log,
		promPort:  cfg.Metrics.PrometheusPort,
	}, nil
}

// SetMonitor replaces the error monitor.
func (s *Service) SetMonitor(m monitoring.Monitor) {
	if m == nil {
		m = monitoring.NopMonitor{}
	}
	s.monitor = m
}

// Step runs one decision against the market. Failures are reported to the
// monitor before being returned.
func (s *Service) Step(ctx context.Context, m Market) (Decision, error) {
	obs := m.Observe()
	d, err := s.Broker.Decide(ctx, obs)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.monitor.CaptureException(err, monitoring.Tags(s.Broker.Name(), obs.Timeslot))
		}
		return d, err
	}
	if err := m.Apply(d.Actions); err != nil {
		err = fmt.Errorf("apply ts %d: %w", d.Event.Timeslot, err)
		s.monitor.CaptureException(err, monitoring.Tags(s.Broker.Name(), obs.Timeslot))
		return d, err
	}
	return d, nil
}

// Run decides once per interval until the context is cancelled or maxSteps
// decisions were made. maxSteps <= 0 means no limit and a non-positive
// interval runs the steps back to back.
func (s *Service) Run(ctx context.Context, m Market, interval time.Duration, maxSteps int) error {
	defer s.monitor.Recover()
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort, prometheus.DefaultGatherer); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	defer func() {
		s.bus.Close()
		<-collected
	}()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for n := 0; maxSteps <= 0 || n < maxSteps; n++ {
		if _, err := s.Step(ctx, m); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if tick == nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.monitor.Flush(2 * time.Second)
	var errs []error
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("mqtt: %w", err))
	}
	if err := s.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
