package field

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// transition is the morph state: either idle or *morph.
type transition interface {
	progress() float64
}

// idle means the targets are the current shape's samples.
type idle struct{}

func (idle) progress() float64 { return 1 }

// morph blends from a snapshot of the previous targets to the new ones.
type morph struct {
	elapsed  time.Duration
	duration time.Duration
	previous []r3.Vec // targets in effect when the morph started
	impulse  []r3.Vec // radial ejection per particle
}

func (m *morph) progress() float64 {
	if m.duration <= 0 || m.elapsed >= m.duration {
		return 1
	}
	return float64(m.elapsed) / float64(m.duration)
}

// done reports whether the morph has run its full duration. Durations
// within a microsecond of the end count as done so frame rounding
// cannot leave a morph stuck just short of 1.
func (m *morph) done() bool {
	return m.elapsed >= m.duration-time.Microsecond
}

// newMorph snapshots previous and draws a fresh radial ejection impulse
// per particle with magnitude in [lo, hi].
func newMorph(previous []r3.Vec, duration time.Duration, rng *rand.Rand, lo, hi float64) *morph {
	m := &morph{
		duration: duration,
		previous: append([]r3.Vec(nil), previous...),
		impulse:  make([]r3.Vec, len(previous)),
	}
	for i := range m.impulse {
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*rng.Float64() - 1)
		mag := lo + rng.Float64()*(hi-lo)
		m.impulse[i] = r3.Vec{
			X: mag * math.Sin(phi) * math.Cos(theta),
			Y: mag * math.Cos(phi),
			Z: mag * math.Sin(phi) * math.Sin(theta),
		}
	}
	return m
}

// easeInOutQuart eases t in [0,1].
func easeInOutQuart(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u*u/2
}

// ejectionDecay peaks early in the window and reaches 0 at its end.
func ejectionDecay(elapsed, window time.Duration) float64 {
	if window <= 0 || elapsed >= window || elapsed < 0 {
		return 0
	}
	x := float64(elapsed) / float64(window)
	return (1 - x) * (1 - math.Exp(-8*x))
}

// flashIntensity decays linearly from 1 to 0 over the flash window.
func flashIntensity(elapsed, window time.Duration) float64 {
	if window <= 0 || elapsed >= window {
		return 0
	}
	return 1 - float64(elapsed)/float64(window)
}
