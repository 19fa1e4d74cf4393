package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/shanchengnb/fire-egine-dispatch/core/metrics"
	"github.com/shanchengnb/fire-egine-dispatch/core/model"
	"github.com/shanchengnb/fire-egine-dispatch/core/sim"
	"github.com/shanchengnb/fire-egine-dispatch/infra/mqtt"
)

type Config struct {
	Data        DataConfig        `json:"data"`
	Sim         SimConfig         `json:"sim"`
	Observation ObservationConfig `json:"observation"`
	Action      ActionConfig      `json:"action"`
	Run         RunConfig         `json:"run"`
	DispatchLog DispatchLogConfig `json:"dispatch_log"`
	Metrics     metrics.Config    `json:"metrics"`
	Logging     LoggingConfig     `json:"logging"`
	MQTT        mqtt.Config       `json:"mqtt"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Run.SetDefaults()
	c.Action.SetDefaults()
	c.DispatchLog.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
}

func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := c.Action.Validate(); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := c.DispatchLog.Validate(); err != nil {
		return fmt.Errorf("dispatch_log: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// DataConfig points at the CSV inputs.
type DataConfig struct {
	IncidentsPath   string `json:"incidents_path"`
	TravelTimesPath string `json:"travel_times_path"`
}

func (c DataConfig) Validate() error {
	if c.IncidentsPath == "" {
		return fmt.Errorf("incidents_path is required")
	}
	if c.TravelTimesPath == "" {
		return fmt.Errorf("travel_times_path is required")
	}
	return nil
}

// StationConfig declares a station and its engine allotment.
type StationConfig struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	HomeX *float64 `json:"home_x"`
	HomeY *float64 `json:"home_y"`
}

// SimConfig mirrors the engine configuration.
type SimConfig struct {
	CooldownSeconds      float64         `json:"cooldown_seconds"`
	MaxSteps             int             `json:"max_steps"`
	ReactionSeconds      float64         `json:"reaction_seconds"`
	OnSceneSeconds       float64         `json:"on_scene_seconds"`
	DefaultDispatchCount int             `json:"default_dispatch_count"`
	MaxDispatchPerEvent  int             `json:"max_dispatch_per_event"`
	Stations             []StationConfig `json:"stations"`
}

// EngineConfig converts to the simulation core's representation.
func (c SimConfig) EngineConfig() sim.Config {
	cfg := sim.Config{
		CooldownSeconds:      c.CooldownSeconds,
		MaxSteps:             c.MaxSteps,
		ReactionSeconds:      c.ReactionSeconds,
		OnSceneSeconds:       c.OnSceneSeconds,
		DefaultDispatchCount: c.DefaultDispatchCount,
		MaxDispatchPerEvent:  c.MaxDispatchPerEvent,
	}
	for _, st := range c.Stations {
		sc := sim.StationConfig{Name: st.Name, Count: st.Count}
		if st.HomeX != nil && st.HomeY != nil {
			sc.Home = &model.Location{X: *st.HomeX, Y: *st.HomeY}
		}
		cfg.Stations = append(cfg.Stations, sc)
	}
	cfg.SetDefaults()
	return cfg
}

// ObservationConfig mirrors the feature encoder settings.
type ObservationConfig struct {
	MapWidth    float64        `json:"map_width"`
	MapHeight   float64        `json:"map_height"`
	RiskMap     map[string]int `json:"risk_map"`
	Dim         int            `json:"dim"`
	EngineCount int            `json:"engine_count"`
	MaxEngines  int            `json:"max_engines"`
}

// EncoderConfig converts to the simulation core's representation.
func (c ObservationConfig) EncoderConfig() sim.ObservationConfig {
	cfg := sim.ObservationConfig{
		MapWidth:    c.MapWidth,
		MapHeight:   c.MapHeight,
		RiskMap:     c.RiskMap,
		Dim:         c.Dim,
		EngineCount: c.EngineCount,
		MaxEngines:  c.MaxEngines,
	}
	cfg.SetDefaults()
	return cfg
}

// ActionConfig selects how raw policy actions map to ranked candidates.
type ActionConfig struct {
	// Kind is one of "discrete", "multidiscrete" or "continuous".
	Kind string `json:"kind"`
	// Strict rejects out-of-range indexes instead of falling back to rank 0.
	Strict bool `json:"strict"`
	// MaxCandidates bounds the continuous score vector width.
	MaxCandidates int `json:"max_candidates"`
}

func (c *ActionConfig) SetDefaults() {
	if c.Kind == "" {
		c.Kind = "discrete"
	}
}

func (c ActionConfig) Validate() error {
	switch c.Kind {
	case "discrete", "multidiscrete", "continuous":
		return nil
	default:
		return fmt.Errorf("unknown action kind %s", c.Kind)
	}
}

// RunConfig controls the episode loop.
type RunConfig struct {
	Episodes int `json:"episodes"`
	// Policy is one of "nearest" or "random".
	Policy string `json:"policy"`
	Seed   int64  `json:"seed"`
}

func (c *RunConfig) SetDefaults() {
	if c.Episodes == 0 {
		c.Episodes = 1
	}
	if c.Policy == "" {
		c.Policy = "nearest"
	}
}

func (c RunConfig) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be positive")
	}
	switch c.Policy {
	case "nearest", "random":
		return nil
	default:
		return fmt.Errorf("unknown policy %s", c.Policy)
	}
}

// DispatchLogConfig defines settings for dispatch record storage.
type DispatchLogConfig struct {
	// Backend selects the log store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
}

func (c *DispatchLogConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "dispatch.log"
	}
}

func (c DispatchLogConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// LoggingConfig controls application log output.
type LoggingConfig struct {
	// Level is a zerolog level name, default "info".
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
		return nil
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
}
