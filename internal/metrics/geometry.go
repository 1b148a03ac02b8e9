package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

// epsilon floors every geometric denominator.
const epsilon = 1e-6

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// band maps v linearly so that from→0 and to→1, clamped to [0,1].
// from may be greater than to for a falling band.
func band(v, from, to float64) float64 {
	span := to - from
	if math.Abs(span) < epsilon {
		if (span >= 0 && v >= to) || (span < 0 && v <= to) {
			return 1
		}
		return 0
	}
	return clamp01((v - from) / span)
}

func dist3(a, b detector.Point3D) float64 {
	return r3.Norm(r3.Sub(a.Vec(), b.Vec()))
}

func dist2(a, b detector.Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// unitOr normalizes v, returning fallback for near-zero vectors.
func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return r3.Scale(1/n, v)
}

// clampVec bounds each component to [-limit, limit].
func clampVec(v r3.Vec, limit float64) r3.Vec {
	return r3.Vec{
		X: clamp(v.X, -limit, limit),
		Y: clamp(v.Y, -limit, limit),
		Z: clamp(v.Z, -limit, limit),
	}
}

// mean returns the arithmetic mean of vs.
func mean(vs ...float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
