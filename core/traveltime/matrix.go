package traveltime

// Matrix is an in-memory travel-time table keyed by incident index and
// station name. It is built once at load time and read-only afterwards.
type Matrix struct {
	rows map[string]map[string]float64
}

// NewMatrix returns an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{rows: make(map[string]map[string]float64)}
}

// Set stores the travel time for one (incident, station) pair.
func (m *Matrix) Set(incidentIndex, station string, seconds float64) {
	row, ok := m.rows[incidentIndex]
	if !ok {
		row = make(map[string]float64)
		m.rows[incidentIndex] = row
	}
	row[station] = seconds
}

// TravelSeconds implements Oracle.
func (m *Matrix) TravelSeconds(incidentIndex, station string) (float64, bool) {
	row, ok := m.rows[incidentIndex]
	if !ok {
		return 0, false
	}
	t, ok := row[station]
	return t, ok
}

// Len returns the number of incident rows in the table.
func (m *Matrix) Len() int { return len(m.rows) }
