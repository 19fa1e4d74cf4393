package model

// ErrNoEnginesDispatched marks a dispatch record (and step info) for an
// incident that received no vehicle at all.
const ErrNoEnginesDispatched = "no_engines_dispatched"

// DispatchRecord is one append-only log entry per vehicle-to-incident
// assignment, or per failed assignment attempt. Records are never mutated
// once appended.
type DispatchRecord struct {
	IncidentID    int    `json:"incident_id"`
	IncidentIndex string `json:"incident_index"`

	// VehicleID, Station and ResponseTime are nil on a failed attempt.
	VehicleID    *int     `json:"vehicle_id"`
	Station      *string  `json:"station"`
	ResponseTime *float64 `json:"response_time"`

	RiskLevel string `json:"risk_level"`
	Timestamp int64  `json:"timestamp"`

	// DispatchedCount carries the incident's required vehicle count on the
	// first record of a dispatch batch only.
	DispatchedCount int `json:"dispatched_vehicle_count,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the record describes a failed dispatch attempt.
func (r DispatchRecord) Failed() bool { return r.Error != "" }
