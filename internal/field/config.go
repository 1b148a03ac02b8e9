package field

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the simulator constants. Distances are scene units, rates
// are per frame unless the field name says otherwise.
type Config struct {
	// Particles is the particle budget, fixed for the simulator's lifetime.
	Particles int `yaml:"particles"`
	// Radius is the radius of the target shapes.
	Radius float64 `yaml:"radius"`
	// Seed drives initial positions, phases and seeds.
	Seed int64 `yaml:"seed"`
	// FrameRate is the nominal render rate used by the global easing springs.
	FrameRate int `yaml:"frame_rate"`

	// HandScale maps display-space hand coordinates into the scene.
	HandScale r3.Vec `yaml:"hand_scale"`
	// MaxHandVelocity bounds the hand velocity (display units/sec) fed to forces.
	MaxHandVelocity float64 `yaml:"max_hand_velocity"`

	Transition TransitionConfig `yaml:"transition"`
	Forces     ForceConfig      `yaml:"forces"`
	Spring     SpringConfig     `yaml:"spring"`
	Globals    GlobalsConfig    `yaml:"globals"`

	// Breathing is the always-on idle perturbation of the targets.
	BreathingAmplitude float64 `yaml:"breathing_amplitude"`
	BreathingRate      float64 `yaml:"breathing_rate"` // rad/sec
}

// TransitionConfig shapes the morph between two target sets.
type TransitionConfig struct {
	Duration time.Duration `yaml:"duration"`
	// Flash decays independently over FlashDuration; it only drives light.
	FlashDuration time.Duration `yaml:"flash_duration"`
	// EjectionWindow is how long the radial ejection impulse lasts.
	EjectionWindow time.Duration `yaml:"ejection_window"`
	EjectionMin    float64       `yaml:"ejection_min"`
	EjectionMax    float64       `yaml:"ejection_max"`
	Swirl          float64       `yaml:"swirl"`
	SwirlRate      float64       `yaml:"swirl_rate"` // rad/sec
	Wobble         float64       `yaml:"wobble"`     // rad/sec of extra spin at the start of a morph
}

// ForceConfig holds thresholds and magnitudes of the force pipeline.
type ForceConfig struct {
	ExpansionBase float64 `yaml:"expansion_base"`
	ExpansionGain float64 `yaml:"expansion_gain"`

	PinchThreshold   float64 `yaml:"pinch_threshold"`
	PinchPull        float64 `yaml:"pinch_pull"`
	PinchMinDistance float64 `yaml:"pinch_min_distance"`
	PinchMaxMix      float64 `yaml:"pinch_max_mix"`
	SpiralRadius     float64 `yaml:"spiral_radius"`
	SpiralPinch      float64 `yaml:"spiral_pinch"`
	SpiralScale      float64 `yaml:"spiral_scale"`
	SpiralRate       float64 `yaml:"spiral_rate"`

	VortexThreshold float64 `yaml:"vortex_threshold"`
	VortexRadius    float64 `yaml:"vortex_radius"`
	VortexRate      float64 `yaml:"vortex_rate"`
	VortexLift      float64 `yaml:"vortex_lift"`

	TurbulenceThreshold float64 `yaml:"turbulence_threshold"`
	TurbulenceScale     float64 `yaml:"turbulence_scale"`

	DriftThreshold float64 `yaml:"drift_threshold"`
	DriftScale     float64 `yaml:"drift_scale"`

	BeamThreshold float64 `yaml:"beam_threshold"`
	BeamRadius    float64 `yaml:"beam_radius"`
	BeamLength    float64 `yaml:"beam_length"`
	BeamMix       float64 `yaml:"beam_mix"`

	WaveThreshold float64 `yaml:"wave_threshold"`
	WaveAmplitude float64 `yaml:"wave_amplitude"`

	TrailThreshold   float64 `yaml:"trail_threshold"`
	TrailRadius      float64 `yaml:"trail_radius"`
	TrailGain        float64 `yaml:"trail_gain"`
	TrailMinDistance float64 `yaml:"trail_min_distance"`

	JitterThreshold float64 `yaml:"jitter_threshold"`
	JitterScale     float64 `yaml:"jitter_scale"`
}

// SpringConfig controls the per-particle damped spring.
type SpringConfig struct {
	PresentLerp    float64 `yaml:"present_lerp"`
	AbsentLerp     float64 `yaml:"absent_lerp"`
	TransitionLerp float64 `yaml:"transition_lerp"`
	ExpressiveLerp float64 `yaml:"expressive_lerp"`

	BaseDamping   float64 `yaml:"base_damping"`
	OpenDamping   float64 `yaml:"open_damping"`
	GripDamping   float64 `yaml:"grip_damping"`
	EnergyDamping float64 `yaml:"energy_damping"`
	AbsentDamping float64 `yaml:"absent_damping"`
	MinDamping    float64 `yaml:"min_damping"`
	MaxDamping    float64 `yaml:"max_damping"`
}

// GlobalsConfig controls the per-frame global side effects.
type GlobalsConfig struct {
	BaseSpin float64 `yaml:"base_spin"` // rad/sec
	GripSpin float64 `yaml:"grip_spin"` // rad/sec at full grip

	PointSize       float64 `yaml:"point_size"`
	PointSizeEnergy float64 `yaml:"point_size_energy"`
	PointSizeOpen   float64 `yaml:"point_size_open"`
	PointSizeFlash  float64 `yaml:"point_size_flash"`

	Opacity       float64 `yaml:"opacity"`
	OpacityEnergy float64 `yaml:"opacity_energy"`
	OpacityFlash  float64 `yaml:"opacity_flash"`

	LightFlash float64 `yaml:"light_flash"`
	TintFlash  float64 `yaml:"tint_flash"`

	// Easing spring for point size and opacity
	EaseFrequency float64 `yaml:"ease_frequency"`
	EaseDamping   float64 `yaml:"ease_damping"`
}

// DefaultConfig returns the tuned simulator configuration.
func DefaultConfig() Config {
	return Config{
		Particles: 20000,
		Radius:    5,
		Seed:      1,
		FrameRate: 60,

		HandScale:       r3.Vec{X: 8, Y: 5, Z: 3},
		MaxHandVelocity: 5,

		Transition: TransitionConfig{
			Duration:       1500 * time.Millisecond,
			FlashDuration:  300 * time.Millisecond,
			EjectionWindow: 500 * time.Millisecond,
			EjectionMin:    2,
			EjectionMax:    5,
			Swirl:          0.5,
			SwirlRate:      3,
			Wobble:         1.5,
		},

		Forces: ForceConfig{
			ExpansionBase: 0.3,
			ExpansionGain: 1.2,

			PinchThreshold:   0.2,
			PinchPull:        3,
			PinchMinDistance: 0.5,
			PinchMaxMix:      0.3,
			SpiralRadius:     2,
			SpiralPinch:      0.5,
			SpiralScale:      0.3,
			SpiralRate:       4,

			VortexThreshold: 0.1,
			VortexRadius:    8,
			VortexRate:      1,
			VortexLift:      0.5,

			TurbulenceThreshold: 0.1,
			TurbulenceScale:     1,

			DriftThreshold: 0.01,
			DriftScale:     2,

			BeamThreshold: 0.3,
			BeamRadius:    3,
			BeamLength:    10,
			BeamMix:       0.8,

			WaveThreshold: 0.01,
			WaveAmplitude: 1,

			TrailThreshold:   0.1,
			TrailRadius:      5,
			TrailGain:        0.05,
			TrailMinDistance: 0.5,

			JitterThreshold: 0.5,
			JitterScale:     0.3,
		},

		Spring: SpringConfig{
			PresentLerp:    0.06,
			AbsentLerp:     0.03,
			TransitionLerp: 0.08,
			ExpressiveLerp: 0.03,

			BaseDamping:   0.9,
			OpenDamping:   0.05,
			GripDamping:   0.08,
			EnergyDamping: 0.05,
			AbsentDamping: 0.92,
			MinDamping:    0.5,
			MaxDamping:    0.98,
		},

		Globals: GlobalsConfig{
			BaseSpin: 0.05,
			GripSpin: 0.5,

			PointSize:       0.05,
			PointSizeEnergy: 0.5,
			PointSizeOpen:   0.3,
			PointSizeFlash:  1,

			Opacity:       0.6,
			OpacityEnergy: 0.3,
			OpacityFlash:  0.1,

			LightFlash: 3,
			TintFlash:  0.5,

			EaseFrequency: 6,
			EaseDamping:   1,
		},

		BreathingAmplitude: 0.08,
		BreathingRate:      0.6,
	}
}
