package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shanchengnb/fire-egine-dispatch/config"
	simlog "github.com/shanchengnb/fire-egine-dispatch/core/sim/logging"
	"github.com/shanchengnb/fire-egine-dispatch/data"
)

func writeFixtures(t *testing.T, dir string) (string, string) {
	t.Helper()
	incidents := filepath.Join(dir, "incidents.csv")
	travel := filepath.Join(dir, "travel.csv")
	incCSV := `incident_number,call_time,easting,northing,incident_profile_label,reaction_seconds,on_scene_seconds
I1,100,200000,100000,Low,30,300
I2,700,150000,250000,Medium,30,300
I3,1300,100000,100000,Low,30,300
`
	trvCSV := `incident,Station A,Station B
I1,50,120
I2,200,80
I3,90,60
`
	if err := os.WriteFile(incidents, []byte(incCSV), 0o644); err != nil {
		t.Fatalf("write incidents: %v", err)
	}
	if err := os.WriteFile(travel, []byte(trvCSV), 0o644); err != nil {
		t.Fatalf("write travel: %v", err)
	}
	return incidents, travel
}

func testServiceConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	incidents, travel := writeFixtures(t, dir)
	cfg := &config.Config{
		Data: config.DataConfig{IncidentsPath: incidents, TravelTimesPath: travel},
		Sim: config.SimConfig{
			Stations: []config.StationConfig{
				{Name: "Station A", Count: 1},
				{Name: "Station B", Count: 1},
			},
		},
		DispatchLog: config.DispatchLogConfig{Backend: "jsonl", Path: filepath.Join(dir, "dispatch.log")},
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestServiceRunWritesDispatchLog(t *testing.T) {
	cfg := testServiceConfig(t)
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := simlog.NewJSONLStore(cfg.DispatchLog.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	recs, err := store.Query(context.Background(), simlog.LogQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Failed() {
			t.Fatalf("unexpected failed record: %+v", rec)
		}
	}
}

func TestServiceLongEpisodeKeepsEveryRecord(t *testing.T) {
	dir := t.TempDir()
	incidents := filepath.Join(dir, "incidents.csv")
	travel := filepath.Join(dir, "travel.csv")

	// Far more records than any in-process buffer holds.
	var inc, trv strings.Builder
	inc.WriteString("incident_number,call_time,easting,northing,incident_profile_label,reaction_seconds,on_scene_seconds\n")
	trv.WriteString("incident,Station A,Station B\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&inc, "I%d,%d,100000,100000,Low,30,300\n", i, i*1000)
		fmt.Fprintf(&trv, "I%d,50,120\n", i)
	}
	if err := os.WriteFile(incidents, []byte(inc.String()), 0o644); err != nil {
		t.Fatalf("write incidents: %v", err)
	}
	if err := os.WriteFile(travel, []byte(trv.String()), 0o644); err != nil {
		t.Fatalf("write travel: %v", err)
	}

	cfg := &config.Config{
		Data: config.DataConfig{IncidentsPath: incidents, TravelTimesPath: travel},
		Sim: config.SimConfig{
			Stations: []config.StationConfig{
				{Name: "Station A", Count: 1},
				{Name: "Station B", Count: 1},
			},
		},
		DispatchLog: config.DispatchLogConfig{Backend: "jsonl", Path: filepath.Join(dir, "dispatch.log")},
	}
	cfg.SetDefaults()

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := simlog.NewJSONLStore(cfg.DispatchLog.Path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	recs, err := store.Query(context.Background(), simlog.LogQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 80 {
		t.Fatalf("expected all 80 records persisted, got %d", len(recs))
	}
}

func TestServiceRunMultipleEpisodes(t *testing.T) {
	cfg := testServiceConfig(t)
	cfg.Run.Episodes = 2
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	engine := svc.env.Engine()
	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// The second episode must start from a fresh incident set.
	if got := len(engine.Finished()); got != 3 {
		t.Fatalf("expected 3 finished incidents in last episode, got %d", got)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestServiceRunCancelled(t *testing.T) {
	cfg := testServiceConfig(t)
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := svc.env.Engine().StepCount(); got != 0 {
		t.Fatalf("expected no steps on a cancelled context, got %d", got)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCloneIncidentsResetsResponseFields(t *testing.T) {
	path, _ := writeFixtures(t, t.TempDir())
	incidents, err := data.LoadIncidents(path, nil)
	if err != nil {
		t.Fatalf("load incidents: %v", err)
	}
	incidents[0].Assigned = true
	incidents[0].ResponderID = 7
	incidents[0].ResponseTime = 42

	clones := cloneIncidents(incidents)
	if clones[0] == incidents[0] {
		t.Fatalf("expected a copy, got the same pointer")
	}
	if clones[0].Assigned || clones[0].ResponderID != 0 || clones[0].ResponseTime != 0 {
		t.Fatalf("expected response fields cleared: %+v", clones[0])
	}
	if clones[0].Index != incidents[0].Index || clones[0].Timestamp != incidents[0].Timestamp {
		t.Fatalf("expected identity fields preserved")
	}
}
