package model

import "strings"

// highRiskLabels is the closed set of risk classifications that demand a
// two-vehicle response. Matching is case and whitespace insensitive.
var highRiskLabels = map[string]struct{}{
	"high risk": {},
	"secondary fires that attract a 20 minute-response time": {},
}

// Incident describes one emergency call waiting for dispatch.
//
// The response fields (Assigned, ResponderID, ResponseTime) are written by
// MarkResponded. When several vehicles respond to the same incident the
// call happens once per vehicle and only the last call's values survive;
// the per-vehicle board of record is the dispatch log.
type Incident struct {
	ID       int
	Index    string // key into the travel-time table
	Location Location

	// Timestamp is the call time in seconds since the data set origin.
	Timestamp int64

	RiskLevel       string
	ReactionSeconds float64
	OnSceneSeconds  float64

	// DrivingSeconds is the estimated response time carried by the input
	// data; it is overwritten with the realized value on response.
	DrivingSeconds float64

	// RequiredCount is an explicit dispatch-count override from the input
	// data. Zero means derive from the risk classification.
	RequiredCount int

	Assigned     bool
	ResponderID  int
	ResponseTime float64
}

// HighRisk reports whether the incident's classification belongs to the
// high-risk set.
func (in *Incident) HighRisk() bool {
	_, ok := highRiskLabels[strings.ToLower(strings.TrimSpace(in.RiskLevel))]
	return ok
}

// RequiredDispatchCount returns how many vehicles the incident demands:
// the explicit override when present, two for high-risk classifications,
// otherwise the configured default.
func (in *Incident) RequiredDispatchCount(defaultCount int) int {
	if in.RequiredCount > 0 {
		return in.RequiredCount
	}
	if in.HighRisk() {
		return 2
	}
	return defaultCount
}

// MarkResponded records a responding vehicle on the incident and replaces
// the driving-time estimate with the realized travel time.
func (in *Incident) MarkResponded(vehicleID int, responseTime float64) {
	in.Assigned = true
	in.ResponderID = vehicleID
	in.ResponseTime = responseTime
	in.DrivingSeconds = responseTime
}
