package metrics

import (
	"testing"

	coremetrics "github.com/shanchengnb/fire-egine-dispatch/core/metrics"
)

type recordSink struct {
	steps int
	times int
}

func (r *recordSink) RecordStep(coremetrics.StepResult) error { r.steps++; return nil }

func (r *recordSink) RecordResponseTimes([]coremetrics.ResponseTime) error {
	r.times++
	return nil
}

func TestMultiSinkForwards(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordStep(coremetrics.StepResult{}); err != nil {
		t.Fatalf("record step: %v", err)
	}
	if err := m.RecordResponseTimes(nil); err != nil {
		t.Fatalf("record times: %v", err)
	}
	if s1.steps != 1 || s2.steps != 1 || s1.times != 1 || s2.times != 1 {
		t.Fatalf("results not forwarded")
	}
	// Sinks without the optional recorders are skipped, not errors.
	if err := m.RecordPendingIncidents(4); err != nil {
		t.Fatalf("record pending: %v", err)
	}
	if err := m.RecordFleetSize(2); err != nil {
		t.Fatalf("record fleet: %v", err)
	}
}
