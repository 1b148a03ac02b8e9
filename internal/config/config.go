// Package config loads the mudra configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/shape"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete host configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Tray shows the system tray icon; disable for headless runs.
	Tray bool `yaml:"tray"`
	// Enabled starts tracking immediately instead of waiting for the tray toggle.
	Enabled bool `yaml:"enabled"`

	Server   ServerConfig    `yaml:"server"`
	Camera   capture.Config  `yaml:"camera"`
	Tracking detector.Config `yaml:"tracking"`
	Render   RenderConfig    `yaml:"render"`

	// MetricsPreset seeds Metrics from a named preset before the file's
	// own metrics section is applied: default, smooth or responsive.
	MetricsPreset string         `yaml:"metrics_preset"`
	Metrics       metrics.Config `yaml:"metrics"`
	Field         field.Config   `yaml:"field"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// RenderConfig configures the render loop and the initial selection.
type RenderConfig struct {
	// FPS is the simulation rate.
	FPS int `yaml:"fps"`
	// StreamFPS is the rate field frames are published to subscribers.
	StreamFPS int `yaml:"stream_fps"`
	// Shape and Color are the initial selection.
	Shape string      `yaml:"shape"`
	Color field.Color `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Tray:     true,

		Server: ServerConfig{
			Addr:      "localhost:8080",
			StaticDir: "web",
		},
		Camera:   capture.DefaultConfig(),
		Tracking: detector.DefaultConfig(),
		Render: RenderConfig{
			FPS:       60,
			StreamFPS: 30,
			Shape:     string(shape.Sphere),
			Color:     field.DefaultColor,
		},

		MetricsPreset: "default",
		Metrics:       metrics.DefaultConfig(),
		Field:         field.DefaultConfig(),
	}
}

// Load reads path and applies it over Default. A missing file is an error;
// callers wanting defaults should not call Load.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	// First pass only picks the preset so the metrics section overrides it.
	var head struct {
		MetricsPreset string `yaml:"metrics_preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}
	if head.MetricsPreset != "" {
		preset, err := MetricsPreset(head.MetricsPreset)
		if err != nil {
			return Config{}, err
		}
		cfg.Metrics = preset
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MetricsPreset returns the named extractor preset.
func MetricsPreset(name string) (metrics.Config, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return metrics.DefaultConfig(), nil
	case "smooth":
		return metrics.SmoothConfig(), nil
	case "responsive":
		return metrics.ResponsiveConfig(), nil
	}
	return metrics.Config{}, fmt.Errorf("%w: unknown metrics preset %q", ErrInvalid, name)
}

// Validate checks the ranges the numeric core relies on.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Server.Addr == "" {
		fail("server.addr is empty")
	}
	if c.Camera.FPS <= 0 {
		fail("camera.fps must be positive, got %d", c.Camera.FPS)
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 100 {
		fail("camera.motion_threshold must be a percentage, got %f", c.Camera.MotionThreshold)
	}
	if c.Render.FPS <= 0 {
		fail("render.fps must be positive, got %d", c.Render.FPS)
	}
	if c.Render.StreamFPS <= 0 || c.Render.StreamFPS > c.Render.FPS {
		fail("render.stream_fps must be in (0, render.fps], got %d", c.Render.StreamFPS)
	}
	if _, err := shape.ParseKind(c.Render.Shape); err != nil {
		fail("render.shape: %v", err)
	}
	for i, ch := range c.Render.Color {
		if ch < 0 || ch > 1 {
			fail("render.color[%d] must be in [0,1], got %f", i, ch)
		}
	}

	m := c.Metrics
	for name, alpha := range map[string]float64{
		"fast_alpha":    m.FastAlpha,
		"default_alpha": m.DefaultAlpha,
		"slow_alpha":    m.SlowAlpha,
	} {
		if !(alpha > 0 && alpha <= 1) {
			fail("metrics.%s must be in (0,1], got %f", name, alpha)
		}
	}
	if !(m.EnergyDecay > 0 && m.EnergyDecay < 1) {
		fail("metrics.energy_decay must be in (0,1), got %f", m.EnergyDecay)
	}
	if m.EnergyTick <= 0 {
		fail("metrics.energy_tick must be positive")
	}
	if m.PinchFar <= m.PinchNear {
		fail("metrics.pinch_far must exceed pinch_near")
	}
	if m.SpreadMax <= m.SpreadMin {
		fail("metrics.spread_max must exceed spread_min")
	}
	if m.ReferenceHandSize <= 0 {
		fail("metrics.reference_hand_size must be positive")
	}

	f := c.Field
	if f.Particles <= 0 {
		fail("field.particles must be positive, got %d", f.Particles)
	}
	if f.Radius <= 0 {
		fail("field.radius must be positive")
	}
	if f.Spring.MaxDamping >= 1 || f.Spring.AbsentDamping >= 1 {
		fail("field.spring damping must stay below 1")
	}
	if f.Spring.MinDamping <= 0 || f.Spring.MinDamping > f.Spring.MaxDamping {
		fail("field.spring.min_damping must be in (0, max_damping]")
	}
	if f.Spring.TransitionLerp+f.Spring.ExpressiveLerp > 1 || f.Spring.AbsentLerp <= 0 || f.Spring.PresentLerp <= 0 {
		fail("field.spring lerp factors must be in (0,1]")
	}
	if f.Transition.Duration <= 0 {
		fail("field.transition.duration must be positive")
	}

	return errors.Join(errs...)
}
