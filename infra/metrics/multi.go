package metrics

import coremetrics "github.com/shanchengnb/fire-egine-dispatch/core/metrics"

// MultiSink fans simulation outcomes out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the result to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordStep(res coremetrics.StepResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordResponseTimes forwards the realized travel times.
func (m *MultiSink) RecordResponseTimes(times []coremetrics.ResponseTime) error {
	for _, s := range m.Sinks {
		if err := s.RecordResponseTimes(times); err != nil {
			return err
		}
	}
	return nil
}

// RecordPendingIncidents forwards the queue depth to capable sinks.
func (m *MultiSink) RecordPendingIncidents(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PendingRecorder); ok {
			if err := rec.RecordPendingIncidents(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards the fleet size to capable sinks.
func (m *MultiSink) RecordFleetSize(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := rec.RecordFleetSize(n); err != nil {
				return err
			}
		}
	}
	return nil
}
