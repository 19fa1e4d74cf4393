package model

import "fmt"

// VehicleStatus describes where a vehicle is in its dispatch cycle.
type VehicleStatus int

const (
	StatusAvailable VehicleStatus = iota
	StatusDriving
	StatusCooling
)

// String returns a human-readable representation of the status.
func (s VehicleStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusDriving:
		return "driving"
	case StatusCooling:
		return "cooling"
	default:
		return "unknown"
	}
}

// Location is a planar coordinate on the dispatch map.
type Location struct {
	X float64
	Y float64
}

// Vehicle models a single dispatchable unit cycling through
// available -> driving -> cooling -> available. The remaining-time counter
// is zero exactly when the vehicle is available. A vehicle is owned by one
// engine instance and mutated only through Assign, Advance and Reset.
type Vehicle struct {
	ID      int
	Station string
	Home    Location
	Current Location

	Status          VehicleStatus
	RemainingTime   float64
	CooldownSeconds float64

	DispatchCount    int
	TotalDrivingTime float64
}

// NewVehicle creates an available vehicle parked at its home station.
func NewVehicle(id int, station string, home Location, cooldownSeconds float64) *Vehicle {
	return &Vehicle{
		ID:              id,
		Station:         station,
		Home:            home,
		Current:         home,
		Status:          StatusAvailable,
		CooldownSeconds: cooldownSeconds,
	}
}

// Validate checks that the vehicle configuration is sound.
func (v *Vehicle) Validate() error {
	if v.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	return nil
}

// Assign sends the vehicle to an incident. The busy time charges the
// reaction delay, both driving legs and the on-scene work; the cooldown
// starts only once the vehicle returns.
func (v *Vehicle) Assign(at Location, drivingSeconds, reactionSeconds, onSceneSeconds float64) {
	totalActive := reactionSeconds + drivingSeconds + onSceneSeconds + drivingSeconds

	v.Status = StatusDriving
	v.RemainingTime = totalActive
	v.Current = at
	v.DispatchCount++
	v.TotalDrivingTime += drivingSeconds
}

// Advance moves the vehicle's internal clock forward by the given number of
// seconds. A single call may carry the vehicle through several state
// transitions when the delta exceeds the remaining time of the current
// state. Advancing is additive: Advance(a) followed by Advance(b) ends in
// the same state as Advance(a+b).
func (v *Vehicle) Advance(seconds float64) {
	left := seconds
	for left > 0 && v.Status != StatusAvailable {
		if v.RemainingTime >= left {
			v.RemainingTime -= left
			if v.RemainingTime == 0 {
				v.transition()
			}
			return
		}
		left -= v.RemainingTime
		v.transition()
	}
}

func (v *Vehicle) transition() {
	switch v.Status {
	case StatusDriving:
		v.Status = StatusCooling
		v.RemainingTime = v.CooldownSeconds
	case StatusCooling:
		v.Status = StatusAvailable
		v.RemainingTime = 0
		v.Current = v.Home
	}
}

// Available reports whether the vehicle can be dispatched.
func (v *Vehicle) Available() bool { return v.Status == StatusAvailable }

// AverageResponseTime returns the mean driving time per dispatch.
func (v *Vehicle) AverageResponseTime() float64 {
	if v.DispatchCount == 0 {
		return 0
	}
	return v.TotalDrivingTime / float64(v.DispatchCount)
}

// Reset forces the vehicle back to its home station, available, with all
// lifetime counters cleared.
func (v *Vehicle) Reset() {
	v.Status = StatusAvailable
	v.RemainingTime = 0
	v.Current = v.Home
	v.DispatchCount = 0
	v.TotalDrivingTime = 0
}
