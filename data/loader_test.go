package data

import (
	"strings"
	"testing"

	"github.com/shanchengnb/fire-egine-dispatch/core/logger"
)

const incidentCSV = `incident_number,call_time,easting,northing,incident_profile_label,reaction_seconds,on_scene_seconds,dispatched_vehicle_count
INC-001,2009-01-01 00:10:00,200000,100000,High risk,120,1800,0
INC-002,2009-01-01 01:00:00,150000,250000,Low,60,900,3
INC-003,not-a-time,100000,100000,Medium,30,600,0
`

func TestReadIncidents(t *testing.T) {
	incidents, err := ReadIncidents(strings.NewReader(incidentCSV), logger.NopLogger{})
	if err != nil {
		t.Fatalf("read incidents: %v", err)
	}
	if len(incidents) != 3 {
		t.Fatalf("expected 3 incidents, got %d", len(incidents))
	}

	first := incidents[0]
	if first.ID != 0 || first.Index != "INC-001" {
		t.Fatalf("unexpected identity: id=%d index=%q", first.ID, first.Index)
	}
	if first.Timestamp != 600 {
		t.Fatalf("expected timestamp 600, got %d", first.Timestamp)
	}
	if first.Location.X != 200000 || first.Location.Y != 100000 {
		t.Fatalf("unexpected location: %+v", first.Location)
	}
	if !first.HighRisk() {
		t.Fatalf("expected high-risk flag for %q", first.RiskLevel)
	}
	if first.ReactionSeconds != 120 || first.OnSceneSeconds != 1800 {
		t.Fatalf("unexpected durations: %v/%v", first.ReactionSeconds, first.OnSceneSeconds)
	}

	if incidents[1].RequiredCount != 3 {
		t.Fatalf("expected count override 3, got %d", incidents[1].RequiredCount)
	}
	if incidents[1].Timestamp != 3600 {
		t.Fatalf("expected timestamp 3600, got %d", incidents[1].Timestamp)
	}
}

func TestReadIncidentsBadCallTime(t *testing.T) {
	incidents, err := ReadIncidents(strings.NewReader(incidentCSV), logger.NopLogger{})
	if err != nil {
		t.Fatalf("read incidents: %v", err)
	}
	if incidents[2].Timestamp != 0 {
		t.Fatalf("expected unparseable call time to default to 0, got %d", incidents[2].Timestamp)
	}
}

func TestReadIncidentsNumericCallTime(t *testing.T) {
	csv := "incident_number,call_time\nA,7200\n"
	incidents, err := ReadIncidents(strings.NewReader(csv), logger.NopLogger{})
	if err != nil {
		t.Fatalf("read incidents: %v", err)
	}
	if incidents[0].Timestamp != 7200 {
		t.Fatalf("expected numeric call time 7200, got %d", incidents[0].Timestamp)
	}
}

func TestReadIncidentsMissingIndex(t *testing.T) {
	csv := "call_time,easting\n100,5\n200,6\n"
	incidents, err := ReadIncidents(strings.NewReader(csv), logger.NopLogger{})
	if err != nil {
		t.Fatalf("read incidents: %v", err)
	}
	if incidents[0].Index != "0" || incidents[1].Index != "1" {
		t.Fatalf("expected positional indexes, got %q and %q", incidents[0].Index, incidents[1].Index)
	}
}

func TestReadTravelTimes(t *testing.T) {
	csv := `incident,Station A,Station B
INC-001,50.5,120
INC-002,200,80.25
`
	m, err := ReadTravelTimes(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read travel times: %v", err)
	}
	v, ok := m.TravelSeconds("INC-001", "Station A")
	if !ok || v != 50.5 {
		t.Fatalf("expected 50.5, got %v (ok=%v)", v, ok)
	}
	v, ok = m.TravelSeconds("INC-002", "Station B")
	if !ok || v != 80.25 {
		t.Fatalf("expected 80.25, got %v (ok=%v)", v, ok)
	}
	if _, ok := m.TravelSeconds("INC-003", "Station A"); ok {
		t.Fatalf("expected missing incident row to miss")
	}
}

func TestReadTravelTimesSkipsBadCells(t *testing.T) {
	csv := "incident,A,B\nI1,n/a,42\n"
	m, err := ReadTravelTimes(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("read travel times: %v", err)
	}
	if _, ok := m.TravelSeconds("I1", "A"); ok {
		t.Fatalf("expected unparseable cell to be skipped")
	}
	if v, ok := m.TravelSeconds("I1", "B"); !ok || v != 42 {
		t.Fatalf("expected 42, got %v (ok=%v)", v, ok)
	}
}

func TestReadTravelTimesRejectsNoStations(t *testing.T) {
	if _, err := ReadTravelTimes(strings.NewReader("incident\nI1\n")); err == nil {
		t.Fatalf("expected error for matrix without station columns")
	}
}
