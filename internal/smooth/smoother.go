// Package smooth provides exponential moving average smoothing over a
// closed set of named channels.
//
// A Smoother only carries its decay coefficient. Channel history lives in
// Scalar and Vector slots owned by the caller, typically as named struct
// fields, so every signal has exactly one slot and one smoothing policy
// fixed at compile time.
package smooth

import "gonum.org/v1/gonum/spatial/r3"

// Common decay coefficients.
const (
	// FastAlpha is for signals that must feel immediate (pinch, point strength).
	FastAlpha = 0.6
	// DefaultAlpha is for general per-frame metrics.
	DefaultAlpha = 0.35
	// SlowAlpha is for signals that must not flicker (openness, tension, facing sign).
	SlowAlpha = 0.15
)

// Scalar is the history of one scalar channel.
type Scalar struct {
	value  float64
	primed bool
}

// Value returns the last emitted value and whether the channel has been observed.
func (s *Scalar) Value() (float64, bool) {
	return s.value, s.primed
}

// Reset forgets the channel history.
func (s *Scalar) Reset() {
	*s = Scalar{}
}

// Vector is the history of one 3-vector channel.
type Vector struct {
	value  r3.Vec
	primed bool
}

// Value returns the last emitted vector and whether the channel has been observed.
func (v *Vector) Value() (r3.Vec, bool) {
	return v.value, v.primed
}

// Reset forgets the channel history.
func (v *Vector) Reset() {
	*v = Vector{}
}

// Smoother applies smoothed = α·raw + (1-α)·previous.
// The first observation of a channel passes through unchanged.
type Smoother struct {
	alpha float64
}

// New creates a Smoother with the given decay coefficient.
// Alpha is clamped to (0,1]; non-positive values fall back to DefaultAlpha.
func New(alpha float64) Smoother {
	if alpha <= 0 || alpha != alpha {
		alpha = DefaultAlpha
	}
	if alpha > 1 {
		alpha = 1
	}
	return Smoother{alpha: alpha}
}

// Alpha returns the decay coefficient.
func (s Smoother) Alpha() float64 {
	return s.alpha
}

// Scalar smooths raw into channel ch and returns the new value.
func (s Smoother) Scalar(ch *Scalar, raw float64) float64 {
	if !ch.primed {
		ch.value = raw
		ch.primed = true
		return raw
	}
	ch.value = s.alpha*raw + (1-s.alpha)*ch.value
	return ch.value
}

// Vector smooths raw into channel ch and returns the new value.
func (s Smoother) Vector(ch *Vector, raw r3.Vec) r3.Vec {
	if !ch.primed {
		ch.value = raw
		ch.primed = true
		return raw
	}
	ch.value = r3.Add(r3.Scale(s.alpha, raw), r3.Scale(1-s.alpha, ch.value))
	return ch.value
}

// TicksToSettle returns how many constant-input ticks it takes for the
// remaining error to fall below tolerance (as a fraction of the initial gap).
func (s Smoother) TicksToSettle(tolerance float64) int {
	if tolerance <= 0 {
		return -1
	}
	if s.alpha >= 1 {
		return 1
	}
	n := 0
	remaining := 1.0
	for remaining > tolerance {
		remaining *= 1 - s.alpha
		n++
	}
	return n
}
