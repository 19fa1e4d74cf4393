// Package data loads incident tables and the travel-time matrix from CSV
// files. Loading happens once at startup; the simulation core only sees
// the resulting in-memory values.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shanchengnb/fire-egine-dispatch/core/logger"
	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/traveltime"
)

// Origin anchors call timestamps: all incident times are stored as seconds
// since this moment.
var Origin = time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04",
	"2006-01-02",
}

// LoadIncidents reads an incident table. Recognized columns (by header):
// incident_number, call_time, easting, northing, incident_profile_label,
// reaction_seconds, on_scene_seconds, driving_seconds,
// dispatched_vehicle_count. Missing optional columns fall back to zero
// values and are resolved by the engine's defaults.
func LoadIncidents(path string, log logger.Logger) ([]*model.Incident, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open incidents: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadIncidents(f, log)
}

// ReadIncidents parses the incident table from r.
func ReadIncidents(r io.Reader, log logger.Logger) ([]*model.Incident, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var incidents []*model.Incident
	id := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", id+1, err)
		}

		in := &model.Incident{
			ID:        id,
			Index:     field(row, "incident_number"),
			RiskLevel: field(row, "incident_profile_label"),
		}
		if in.Index == "" {
			in.Index = strconv.Itoa(id)
		}

		in.Timestamp = parseCallTime(field(row, "call_time"), id, log)
		in.Location.X = parseFloat(field(row, "easting"))
		in.Location.Y = parseFloat(field(row, "northing"))
		in.ReactionSeconds = parseFloat(field(row, "reaction_seconds"))
		in.OnSceneSeconds = parseFloat(field(row, "on_scene_seconds"))
		in.DrivingSeconds = parseFloat(field(row, "driving_seconds"))
		in.RequiredCount = int(parseFloat(field(row, "dispatched_vehicle_count")))

		incidents = append(incidents, in)
		id++
	}
	return incidents, nil
}

// LoadTravelTimes reads the travel-time matrix: the header row names the
// stations, each following row starts with the incident index.
func LoadTravelTimes(path string) (*traveltime.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open travel times: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadTravelTimes(f)
}

// ReadTravelTimes parses the travel-time matrix from r.
func ReadTravelTimes(r io.Reader) (*traveltime.Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("travel-time matrix needs at least one station column")
	}
	stations := make([]string, len(header)-1)
	for i, name := range header[1:] {
		stations[i] = strings.TrimSpace(name)
	}

	m := traveltime.NewMatrix()
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		idx := strings.TrimSpace(row[0])
		for i, st := range stations {
			if i+1 >= len(row) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				continue
			}
			m.Set(idx, st, v)
		}
		line++
	}
	return m, nil
}

func parseCallTime(raw string, id int, log logger.Logger) int64 {
	if raw == "" {
		return 0
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return int64(t.Sub(Origin).Seconds())
		}
	}
	// Plain numbers are taken as seconds since the origin directly.
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(secs)
	}
	log.Warnf("incident %d: unparseable call time %q, defaulting to 0", id, raw)
	return 0
}

func parseFloat(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
