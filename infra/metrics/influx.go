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

	coremetrics "github.com/shanchengnb/fire-egine-dispatch/core/metrics"
	"github.com/shanchengnb/fire-egine-dispatch/infra/logger"
)

// InfluxSink writes simulation outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
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

// RecordStep writes the step outcome as a point.
func (s *InfluxSink) RecordStep(res coremetrics.StepResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_step").
		AddTag("risk_level", res.RiskLevel).
		AddTag("lost", strconv.FormatBool(res.Lost)).
		AddTag("component", "episode_runner").
		AddField("step", res.Step).
		AddField("incident_id", res.IncidentID).
		AddField("reward", round3(res.Reward)).
		AddField("dispatched", res.Dispatched).
		AddField("sim_clock", res.Clock).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordResponseTimes writes one point per dispatched vehicle.
func (s *InfluxSink) RecordResponseTimes(times []coremetrics.ResponseTime) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, rt := range times {
		p := write.NewPointWithMeasurement("dispatch_response_time").
			AddTag("vehicle_id", strconv.Itoa(rt.VehicleID)).
			AddTag("station", rt.Station).
			AddTag("risk_level", rt.RiskLevel).
			AddField("seconds", round3(rt.Seconds)).
			SetTime(time.Now())
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
