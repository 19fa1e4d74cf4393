// Package metrics defines the observability contracts for the dispatch
// simulation. Concrete sinks live in infra/metrics.
package metrics

// StepResult represents the outcome of one simulation step to be recorded.
type StepResult struct {
	Step       int
	IncidentID int
	RiskLevel  string
	Reward     float64
	Dispatched int
	Lost       bool
	Clock      int64
}

// ResponseTime is one realized vehicle-to-incident travel time.
type ResponseTime struct {
	VehicleID int
	Station   string
	RiskLevel string
	Seconds   float64
}

// MetricsSink records simulation outcomes for observability purposes.
type MetricsSink interface {
	RecordStep(res StepResult) error
	RecordResponseTimes(times []ResponseTime) error
}

// PendingRecorder is implemented by sinks able to track queue depth.
type PendingRecorder interface {
	RecordPendingIncidents(n int) error
}

// FleetSizeRecorder is implemented by sinks able to track the fleet size.
type FleetSizeRecorder interface {
	RecordFleetSize(n int) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepResult) error              { return nil }
func (NopSink) RecordResponseTimes([]ResponseTime) error { return nil }
func (NopSink) RecordPendingIncidents(int) error         { return nil }
func (NopSink) RecordFleetSize(int) error                { return nil }

// Config declares which sinks are enabled.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
