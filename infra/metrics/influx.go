package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/tariffbroker/core/metrics"
	"github.com/kilianp07/tariffbroker/infra/logger"
)

// InfluxSink writes decisions to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.DecisionSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// DecisionPoint builds the line-protocol point written for a decision.
func DecisionPoint(rec coremetrics.DecisionRecord) *write.Point {
	p := write.NewPointWithMeasurement("broker_decision").
		AddTag("broker", rec.Broker).
		AddTag("strategy", rec.Strategy).
		AddTag("kind", rec.Kind.String()).
		AddTag("warmup_override", strconv.FormatBool(rec.WarmupOverride))
	if rec.TariffID != "" {
		p = p.AddTag("tariff_id", rec.TariffID).
			AddTag("power_type", rec.PowerType).
			AddField("mean_rate", round6(rec.MeanRate))
	}
	return p.AddField("timeslot", rec.Timeslot).
		AddField("utility", round3(rec.Utility)).
		AddField("noop_utility", round3(rec.NoOpUtility)).
		AddField("candidates", rec.Candidates).
		SetTime(rec.Time)
}

// RecordDecision writes one point per decision.
func (s *InfluxSink) RecordDecision(rec coremetrics.DecisionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, DecisionPoint(rec))
}

// RecordStrategyEvent writes a strategy delegation or degradation.
func (s *InfluxSink) RecordStrategyEvent(rec coremetrics.StrategyRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("strategy_event").
		AddTag("strategy", rec.Strategy).
		AddTag("action", rec.Action).
		AddField("timeslot", rec.Timeslot)
	if rec.Error != "" {
		p = p.AddField("error", rec.Error)
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(rec.Time))
}

// RecordRanking writes the leading candidates, one point per rank.
func (s *InfluxSink) RecordRanking(snap coremetrics.RankingSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(snap.Entries))
	for i, e := range snap.Entries {
		p := write.NewPointWithMeasurement("ranking_entry").
			AddTag("rank", strconv.Itoa(i)).
			AddTag("kind", e.Action.Kind.String()).
			AddField("timeslot", snap.Timeslot).
			AddField("utility", round3(e.Utility))
		if e.Action.Tariff != nil {
			p = p.AddField("mean_rate", round6(e.Action.Tariff.MeanRate()))
		}
		points = append(points, p.SetTime(snap.Time))
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
