// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all application configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Sampler   SamplerConfig   `yaml:"sampler"`
	Field     FieldConfig     `yaml:"field"`
	Touch     TouchConfig     `yaml:"touch"`
	Animation AnimationConfig `yaml:"animation"`
	Input     InputConfig     `yaml:"input"`
	Audio     AudioConfig     `yaml:"audio"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Samples   []string        `yaml:"samples"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// CameraConfig holds the perspective camera parameters.
type CameraConfig struct {
	FOV  float64 `yaml:"fov"` // Vertical field of view in degrees
	Z    float64 `yaml:"z"`   // Distance from the field plane
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// SamplerConfig holds pixel sampling parameters.
type SamplerConfig struct {
	Threshold int `yaml:"threshold"` // Red channel cutoff, pixels with red > threshold are visible
}

// FieldConfig holds instance set parameters.
type FieldConfig struct {
	SparseTarget    int     `yaml:"sparse_target"`    // Max instances in the interactive set
	SparseStride    int     `yaml:"sparse_stride"`    // Visible pixels skipped between interactive picks (0 = auto)
	ProximityRadius float64 `yaml:"proximity_radius"` // Activation radius in field pixels
	Seed            int64   `yaml:"seed"`             // Angle RNG seed (0 = time-based)
}

// TouchConfig holds displacement texture parameters.
type TouchConfig struct {
	Size     int     `yaml:"size"`      // Texture resolution (square)
	Radius   float64 `yaml:"radius"`    // Stamp radius as a fraction of the texture
	Decay    float64 `yaml:"decay"`     // Multiplicative decay per frame (<1)
	MinForce float64 `yaml:"min_force"` // Floor for speed-scaled stamp intensity
}

// AnimationConfig holds entrance/exit durations in seconds.
type AnimationConfig struct {
	Show float64 `yaml:"show"`
	Hide float64 `yaml:"hide"`
}

// InputConfig holds pointer device settings.
type InputConfig struct {
	Device string `yaml:"device"` // auto, mouse or touch
}

// AudioConfig holds activation cue settings.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"`      // Linear gain in [0,1]
	Voices     int     `yaml:"voices"`      // Activation index is taken modulo this
	BaseFreq   float64 `yaml:"base_freq"`   // Hz of voice 0
	DurationMS int     `yaml:"duration_ms"` // Length of a cue
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per aggregation window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32   float32 // Screen.Width as float32
	ScreenH32   float32 // Screen.Height as float32
	FOVRadians  float32 // Camera.FOV in radians
	Threshold8  uint8   // Sampler.Threshold clamped to [0,255]
	TouchRadius float32
	TouchDecay  float32
	ShowSec     float32
	HideSec     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Parse(nil)
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Parse builds a config from the embedded defaults overlaid with data.
// A nil overlay yields the defaults.
func Parse(overlay []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(overlay) > 0 {
		if err := yaml.Unmarshal(overlay, cfg); err != nil {
			return nil, fmt.Errorf("parsing config overlay: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Touch.Size <= 0 {
		return fmt.Errorf("touch.size must be positive, got %d", c.Touch.Size)
	}
	if c.Touch.Decay <= 0 || c.Touch.Decay >= 1 {
		return fmt.Errorf("touch.decay must be in (0,1), got %g", c.Touch.Decay)
	}
	if c.Field.SparseTarget <= 0 {
		return fmt.Errorf("field.sparse_target must be positive, got %d", c.Field.SparseTarget)
	}
	if c.Field.SparseStride < 0 {
		return fmt.Errorf("field.sparse_stride must not be negative, got %d", c.Field.SparseStride)
	}
	switch strings.ToLower(c.Input.Device) {
	case "auto", "mouse", "touch":
	default:
		return fmt.Errorf("input.device must be auto, mouse or touch, got %q", c.Input.Device)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.FOVRadians = float32(c.Camera.FOV * math.Pi / 180)

	t := c.Sampler.Threshold
	if t < 0 {
		t = 0
	}
	if t > 255 {
		t = 255
	}
	c.Derived.Threshold8 = uint8(t)

	c.Derived.TouchRadius = float32(c.Touch.Radius)
	c.Derived.TouchDecay = float32(c.Touch.Decay)
	c.Derived.ShowSec = float32(c.Animation.Show)
	c.Derived.HideSec = float32(c.Animation.Hide)

	if c.Audio.Voices <= 0 {
		c.Audio.Voices = 1
	}
}

// SparseStride returns the stride to use for a field of the given size.
// An explicit field.sparse_stride wins; otherwise the visible count is spread
// evenly across the sparse target.
func (c *Config) SparseStride(visible int) int {
	if c.Field.SparseStride > 0 {
		return c.Field.SparseStride
	}
	if c.Field.SparseTarget <= 0 || visible <= c.Field.SparseTarget {
		return 0
	}
	return visible/c.Field.SparseTarget - 1
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
