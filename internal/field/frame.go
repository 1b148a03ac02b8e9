package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/metrics"
)

// Frame is the per-frame input shared by every force: the sanitized
// metrics plus the hand mapped into scene space.
type Frame struct {
	Metrics metrics.Metrics

	Hand     r3.Vec // hand position
	Pinch    r3.Vec // pinch point
	Velocity r3.Vec // hand velocity, scene units/sec
	Pointing r3.Vec // unit pointing direction
	Time     float64
	Tick     uint64
}

// Particle is the immutable identity of one particle as seen by forces.
type Particle struct {
	Index int
	Phase float64
	Seed  r3.Vec
}

// newFrame sanitizes m and maps the hand into the scene.
func newFrame(m metrics.Metrics, cfg Config, now float64, tick uint64) Frame {
	m = Sanitize(m, cfg.MaxHandVelocity)
	return Frame{
		Metrics:  m,
		Hand:     toScene(m.Position, cfg.HandScale),
		Pinch:    toScene(m.PinchPosition, cfg.HandScale),
		Velocity: toScene(m.Velocity, cfg.HandScale),
		Pointing: unitOr(r3.Vec{X: m.PointDirection.X, Y: m.PointDirection.Y, Z: -m.PointDirection.Z}, r3.Vec{Y: 1}),
		Time:     now,
		Tick:     tick,
	}
}

// toScene maps display space to the scene: scaled per axis, with z flipped
// so a hand closer to the camera (negative depth) comes toward the viewer.
func toScene(v, scale r3.Vec) r3.Vec {
	return r3.Vec{X: v.X * scale.X, Y: v.Y * scale.Y, Z: -v.Z * scale.Z}
}

// Sanitize clamps every metric to its declared range and replaces
// non-finite values, so a corrupt snapshot cannot destabilize the field.
func Sanitize(m metrics.Metrics, maxVelocity float64) metrics.Metrics {
	m.Confidence = clamp01(m.Confidence)
	m.Speed = clamp01(m.Speed)
	m.Openness = clamp01(m.Openness)
	m.PinchStrength = clamp01(m.PinchStrength)
	m.FingerSpread = clamp01(m.FingerSpread)
	m.PointStrength = clamp01(m.PointStrength)
	m.GripStrength = clamp01(m.GripStrength)
	m.Energy = clamp01(m.Energy)
	m.Tension = clamp01(m.Tension)
	m.Expressiveness = clamp01(m.Expressiveness)
	m.Curl.Thumb = clamp01(m.Curl.Thumb)
	m.Curl.Index = clamp01(m.Curl.Index)
	m.Curl.Middle = clamp01(m.Curl.Middle)
	m.Curl.Ring = clamp01(m.Curl.Ring)
	m.Curl.Pinky = clamp01(m.Curl.Pinky)

	m.PalmTilt = clamp(m.PalmTilt, -1, 1)
	m.Depth = clamp(m.Depth, -1, 1)
	if m.PalmFacingCamera < 0 {
		m.PalmFacingCamera = -1
	} else {
		m.PalmFacingCamera = 1
	}

	m.Position = clampVec(m.Position, 1)
	m.PinchPosition = clampVec(m.PinchPosition, 1)
	m.Velocity = clampVec(m.Velocity, maxVelocity)
	m.PalmNormal = unitOr(clampVec(m.PalmNormal, 1), r3.Vec{Z: -1})
	m.PointDirection = unitOr(clampVec(m.PointDirection, 1), r3.Vec{Y: 1})
	return m
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

// clampVec bounds each component to [-limit, limit], zeroing NaN.
func clampVec(v r3.Vec, limit float64) r3.Vec {
	c := func(x float64) float64 {
		if math.IsNaN(x) {
			return 0
		}
		return clamp(x, -limit, limit)
	}
	return r3.Vec{X: c(v.X), Y: c(v.Y), Z: c(v.Z)}
}

func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-9 || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return r3.Scale(1/n, v)
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

func finite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
