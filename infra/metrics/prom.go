package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/shanchengnb/fire-egine-dispatch/core/metrics"
)

// PromSink records simulation outcomes in Prometheus metrics.
type PromSink struct {
	steps    *prometheus.CounterVec
	reward   prometheus.Summary
	response *prometheus.HistogramVec
	pending  prometheus.Gauge
	fleet    prometheus.Gauge
}

// NewPromSink registers dispatch metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_steps_total",
		Help: "Total number of simulation steps",
	}, []string{"risk_level", "lost"})
	reward := prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "dispatch_step_reward",
		Help: "Reward returned by each simulation step",
	})
	response := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_response_time_seconds",
		Help:    "Realized travel time per dispatched vehicle",
		Buckets: []float64{60, 120, 180, 300, 600, 1200, 3600},
	}, []string{"station"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_pending_incidents",
		Help: "Number of incidents still queued",
	})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_fleet_vehicles_total",
		Help: "Number of vehicles in the fleet",
	})

	if err := reg.Register(steps); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			steps = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(reward); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			reward = are.ExistingCollector.(prometheus.Summary)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(response); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			response = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(pending); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			pending = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{steps: steps, reward: reward, response: response, pending: pending, fleet: fleet}, nil
}

// RecordStep increments the step counter and observes the reward.
func (s *PromSink) RecordStep(res coremetrics.StepResult) error {
	s.steps.WithLabelValues(res.RiskLevel, strconv.FormatBool(res.Lost)).Inc()
	s.reward.Observe(res.Reward)
	return nil
}

// RecordResponseTimes observes realized travel times per station.
func (s *PromSink) RecordResponseTimes(times []coremetrics.ResponseTime) error {
	for _, rt := range times {
		s.response.WithLabelValues(rt.Station).Observe(rt.Seconds)
	}
	return nil
}

// RecordPendingIncidents updates the queue depth gauge.
func (s *PromSink) RecordPendingIncidents(n int) error {
	s.pending.Set(float64(n))
	return nil
}

// RecordFleetSize updates the fleet size gauge.
func (s *PromSink) RecordFleetSize(n int) error {
	s.fleet.Set(float64(n))
	return nil
}
