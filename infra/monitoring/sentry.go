// Package monitoring reports decision loop failures to Sentry.
package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/tariffbroker/config"
	coremon "github.com/kilianp07/tariffbroker/core/monitoring"
)

const panicFlushTimeout = 2 * time.Second

// SentryMonitor sends captured errors through its own hub so that several
// brokers in one process keep separate scopes.
type SentryMonitor struct {
	hub *sentry.Hub
}

// NewSentryMonitor returns a NopMonitor when no DSN is configured. Every
// report carries the broker name as a tag.
func NewSentryMonitor(cfg config.SentryConfig, broker string) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
		ServerName:       broker,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	scope := sentry.NewScope()
	scope.SetTag("broker", broker)
	return &SentryMonitor{hub: sentry.NewHub(client, scope)}, nil
}

func (s *SentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *SentryMonitor) Recover() {
	r := recover()
	if r == nil {
		return
	}
	s.hub.Recover(r)
	s.hub.Flush(panicFlushTimeout)
	panic(r)
}

func (s *SentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
