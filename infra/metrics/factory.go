package metrics

import (
	"errors"

	"github.com/kilianp07/tariffbroker/core/factory"
	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
)

// InfluxConfig is the conf block of an "influx" decision sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c InfluxConfig) Validate() error {
	if c.URL == "" {
		return errors.New("influx sink: url is required")
	}
	if c.Bucket == "" {
		return errors.New("influx sink: bucket is required")
	}
	return nil
}

func newInflux(conf map[string]any) (coremetrics.DecisionSink, error) {
	var c InfluxConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
}

func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.DecisionSink, error) {
		return coremetrics.NopSink{}, nil
	})
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.DecisionSink, error) {
		return NewPromSink()
	})
	_ = coremetrics.RegisterSink("influx", newInflux)
}
