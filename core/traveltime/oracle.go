// Package traveltime exposes the precomputed incident/station travel-time
// table consumed by the dispatch engine. The engine treats it as a pure
// lookup; a missing entry is not an error but degrades to Fallback.
package traveltime

// Fallback is the travel time in seconds assumed when the table has no
// entry for an (incident, station) pair.
const Fallback = 3600.0

// Oracle maps an (incident index, station name) pair to a driving time in
// seconds. The boolean is false when no entry exists.
type Oracle interface {
	TravelSeconds(incidentIndex, station string) (float64, bool)
}
