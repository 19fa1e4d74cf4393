package sim

import (
	"fmt"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
)

// StationConfig declares one fire station: how many vehicles it hosts and
// where they park. A nil Home falls back to the map origin.
type StationConfig struct {
	Name  string
	Count int
	Home  *model.Location
}

// Config holds the simulation parameters of one engine instance.
type Config struct {
	CooldownSeconds      float64
	MaxSteps             int
	ReactionSeconds      float64
	OnSceneSeconds       float64
	DefaultDispatchCount int
	// MaxDispatchPerEvent caps the number of vehicles any single incident
	// can request, including CSV overrides.
	MaxDispatchPerEvent int
	Stations            []StationConfig
}

// SetDefaults applies the documented defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.CooldownSeconds == 0 {
		c.CooldownSeconds = 180
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 100000
	}
	if c.ReactionSeconds == 0 {
		c.ReactionSeconds = 30
	}
	if c.OnSceneSeconds == 0 {
		c.OnSceneSeconds = 300
	}
	if c.DefaultDispatchCount == 0 {
		c.DefaultDispatchCount = 1
	}
	if c.MaxDispatchPerEvent == 0 {
		c.MaxDispatchPerEvent = 4
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive")
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	for _, s := range c.Stations {
		if s.Name == "" {
			return fmt.Errorf("station name is required")
		}
		if s.Count < 0 {
			return fmt.Errorf("station %s: vehicle count must not be negative", s.Name)
		}
	}
	return nil
}
