package metrics

import (
	"time"

	"github.com/ayusman/mudra/internal/smooth"
)

// Config holds every tunable constant of the extractor. The defaults were
// tuned against MediaPipe's noise profile; re-tune them for other trackers.
type Config struct {
	// Smoothing coefficients (higher = more weight on the new sample)
	FastAlpha    float64 `yaml:"fast_alpha"`
	DefaultAlpha float64 `yaml:"default_alpha"`
	SlowAlpha    float64 `yaml:"slow_alpha"`

	// NominalTick is the elapsed time assumed when the caller has none.
	NominalTick time.Duration `yaml:"nominal_tick"`

	// MirrorX flips x so the output reads like a mirror (selfie view).
	MirrorX bool `yaml:"mirror_x"`

	// Energy accumulator: multiplied by EnergyDecay and incremented by
	// speed×EnergyGain once per EnergyTick of elapsed time.
	EnergyDecay float64       `yaml:"energy_decay"`
	EnergyGain  float64       `yaml:"energy_gain"`
	EnergyTick  time.Duration `yaml:"energy_tick"`

	// Depth from apparent hand size (wrist to middle base, image units)
	ReferenceHandSize float64 `yaml:"reference_hand_size"`
	DepthScale        float64 `yaml:"depth_scale"`

	// SpeedScale divides planar velocity (display units/sec) into [0,1] speed.
	SpeedScale float64 `yaml:"speed_scale"`
	// MaxVelocity bounds each velocity component (display units/sec).
	MaxVelocity float64 `yaml:"max_velocity"`

	// Finger curl: a tip closer to the wrist than CurlExtendedRatio × the
	// base distance starts curling, reaching 1 after CurlRange more.
	CurlExtendedRatio float64 `yaml:"curl_extended_ratio"`
	CurlRange         float64 `yaml:"curl_range"`
	FoldPenalty       float64 `yaml:"fold_penalty"`

	// Thumb curl from thumb-tip to index-base distance over hand size
	ThumbOpenRatio   float64 `yaml:"thumb_open_ratio"`
	ThumbClosedRatio float64 `yaml:"thumb_closed_ratio"`

	// Pinch band: distance at which pinch is 1 and 0 (tracking units)
	PinchNear float64 `yaml:"pinch_near"`
	PinchFar  float64 `yaml:"pinch_far"`

	// Spread band: mean adjacent tip distance mapped to 0 and 1
	SpreadMin float64 `yaml:"spread_min"`
	SpreadMax float64 `yaml:"spread_max"`

	// RelaxedOpenness is the assumed neutral openness of an idle hand.
	RelaxedOpenness float64 `yaml:"relaxed_openness"`
}

// DefaultConfig returns the tuned extractor configuration.
func DefaultConfig() Config {
	return Config{
		FastAlpha:    smooth.FastAlpha,
		DefaultAlpha: smooth.DefaultAlpha,
		SlowAlpha:    smooth.SlowAlpha,

		NominalTick: time.Second / 30,
		MirrorX:     true,

		EnergyDecay: 0.95,
		EnergyGain:  0.2,
		EnergyTick:  time.Second / 60,

		ReferenceHandSize: 0.12,
		DepthScale:        0.5,

		SpeedScale:  10,
		MaxVelocity: 20,

		CurlExtendedRatio: 1.3,
		CurlRange:         0.8,
		FoldPenalty:       0.3,

		ThumbOpenRatio:   1.0,
		ThumbClosedRatio: 0.3,

		PinchNear: 0.02,
		PinchFar:  0.14,

		SpreadMin: 0.02,
		SpreadMax: 0.10,

		RelaxedOpenness: 0.6,
	}
}

// SmoothConfig favors stability over latency, for noisy trackers.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.FastAlpha = 0.45
	cfg.DefaultAlpha = 0.25
	cfg.SlowAlpha = 0.1
	return cfg
}

// ResponsiveConfig favors latency over stability.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.FastAlpha = 0.8
	cfg.DefaultAlpha = 0.5
	cfg.SlowAlpha = 0.25
	return cfg
}
