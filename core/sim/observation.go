package sim

import (
	"strings"

	"github.com/shanchengnb/fire-egine-dispatch/core/traveltime"
)

// DefaultRiskMap returns the default five-category risk vocabulary mapping
// classification labels to one-hot indices.
func DefaultRiskMap() map[string]int {
	return map[string]int{
		"false alarms": 0,
		"secondary fires that attract a 20 minute-response time": 1,
		"low risk":    2,
		"medium risk": 3,
		"high risk":   4,
	}
}

// ObservationConfig controls the shape and normalization of the feature
// vector handed to the external agent.
type ObservationConfig struct {
	// MapWidth and MapHeight normalize incident coordinates.
	MapWidth  float64
	MapHeight float64
	// RiskMap maps classification labels to one-hot slots; unseen labels
	// map to the last slot.
	RiskMap map[string]int
	// Dim is the exact output length: the raw vector is truncated or
	// zero-padded to fit.
	Dim int
	// EngineCount is the number of per-vehicle blocks.
	EngineCount int
	// MaxEngines is the divisor normalizing vehicle ids.
	MaxEngines int
}

// SetDefaults applies the documented defaults for unset fields.
func (c *ObservationConfig) SetDefaults() {
	if c.MapWidth == 0 {
		c.MapWidth = 400000
	}
	if c.MapHeight == 0 {
		c.MapHeight = 400000
	}
	if c.RiskMap == nil {
		c.RiskMap = DefaultRiskMap()
	}
	if c.Dim == 0 {
		c.Dim = 96
	}
	if c.EngineCount == 0 {
		c.EngineCount = 10
	}
	if c.MaxEngines == 0 {
		c.MaxEngines = 40
	}
}

// Encoder renders engine state into a fixed-length numeric vector. It reads
// the engine but never mutates it.
type Encoder struct {
	cfg ObservationConfig
}

// NewEncoder returns an encoder with defaults applied.
func NewEncoder(cfg ObservationConfig) *Encoder {
	cfg.SetDefaults()
	return &Encoder{cfg: cfg}
}

// Encode builds the observation vector for the engine's current state. The
// result always has exactly cfg.Dim entries.
func (enc *Encoder) Encode(e *Engine) []float64 {
	cfg := enc.cfg
	obs := make([]float64, 0, cfg.Dim)

	head := e.Head()
	if head != nil {
		obs = append(obs, head.Location.X/cfg.MapWidth, head.Location.Y/cfg.MapHeight)
		obs = append(obs, enc.riskOneHot(head.RiskLevel)...)
		wait := clip(float64(e.Clock()-head.Timestamp)/300.0, 0, 1)
		obs = append(obs, wait)
	} else {
		obs = append(obs, make([]float64, 2+len(cfg.RiskMap)+1)...)
	}

	sorted := e.RankAvailable(head)
	fleet := e.Fleet()
	for idx := 0; idx < cfg.EngineCount; idx++ {
		// Prefer the idx-th ranked vehicle, fall back to the raw fleet
		// slot. The fallback may repeat a vehicle already emitted in an
		// earlier ranked block; duplication is accepted.
		var slot = -1
		if idx < len(sorted) {
			slot = sorted[idx]
		} else if idx < len(fleet) {
			slot = idx
		}
		if slot < 0 {
			obs = append(obs, make([]float64, 8)...)
			continue
		}
		v := fleet[slot]

		status := make([]float64, 3)
		status[int(v.Status)] = 1
		obs = append(obs, status...)

		travel := traveltime.Fallback
		if head != nil {
			if t, ok := e.Oracle().TravelSeconds(head.Index, v.Station); ok {
				travel = t
			}
		}
		dist := clip(travel, 0, traveltime.Fallback) / traveltime.Fallback
		rank := float64(idx) / float64(cfg.EngineCount)
		usage := clip(float64(v.DispatchCount)/10.0, 0, 1)
		remain := 0.0
		if !v.Available() {
			remain = clip(v.RemainingTime/600.0, 0, 1)
		}
		idNorm := float64(v.ID) / float64(cfg.MaxEngines)

		obs = append(obs, dist, rank, usage, remain, idNorm)
	}

	timeOfDay := float64(e.Clock()%86400) / 86400.0
	progress := float64(e.StepCount()) / float64(e.MaxSteps())
	obs = append(obs, timeOfDay, progress)

	if len(obs) > cfg.Dim {
		return obs[:cfg.Dim]
	}
	for len(obs) < cfg.Dim {
		obs = append(obs, 0)
	}
	return obs
}

func (enc *Encoder) riskOneHot(label string) []float64 {
	vec := make([]float64, len(enc.cfg.RiskMap))
	idx, ok := enc.cfg.RiskMap[strings.ToLower(label)]
	if !ok || idx < 0 || idx >= len(vec) {
		idx = len(vec) - 1
	}
	vec[idx] = 1
	return vec
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
