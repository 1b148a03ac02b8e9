// Package metrics converts raw hand landmark frames into a vector of
// continuous, smoothed control signals.
package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

// NeutralOpenness is the openness reported while no hand is present.
const NeutralOpenness = 0.5

// Curls holds the per-finger curl, 0 = straight, 1 = fully closed.
type Curls struct {
	Thumb  float64 `json:"thumb"`
	Index  float64 `json:"index"`
	Middle float64 `json:"middle"`
	Ring   float64 `json:"ring"`
	Pinky  float64 `json:"pinky"`
}

// Get returns the curl of one finger.
func (c Curls) Get(f detector.Finger) float64 {
	switch f {
	case detector.Thumb:
		return c.Thumb
	case detector.Index:
		return c.Index
	case detector.Middle:
		return c.Middle
	case detector.Ring:
		return c.Ring
	case detector.Pinky:
		return c.Pinky
	}
	return 0
}

// FourFingerMean is the mean curl of index, middle, ring and pinky.
func (c Curls) FourFingerMean() float64 {
	return (c.Index + c.Middle + c.Ring + c.Pinky) / 4
}

// Metrics is one snapshot of continuous hand signals (ContinuousHandMetrics).
//
// Display space: x and y in [-1,1] with y up, z is the depth estimate
// (0 at the reference distance, negative closer to the camera).
// A Metrics value is immutable once published; consumers must not modify it.
type Metrics struct {
	IsPresent  bool    `json:"isPresent"`
	Confidence float64 `json:"confidence"`

	Position r3.Vec  `json:"position"`
	Velocity r3.Vec  `json:"velocity"`
	Speed    float64 `json:"speed"`

	Openness      float64 `json:"openness"`
	PinchStrength float64 `json:"pinchStrength"`
	PinchPosition r3.Vec  `json:"pinchPosition"`
	FingerSpread  float64 `json:"fingerSpread"`

	PalmNormal       r3.Vec  `json:"palmNormal"`
	PalmFacingCamera float64 `json:"palmFacingCamera"`
	PalmTilt         float64 `json:"palmTilt"`

	Curl Curls `json:"curl"`

	PointDirection r3.Vec  `json:"pointDirection"`
	PointStrength  float64 `json:"pointStrength"`
	GripStrength   float64 `json:"gripStrength"`

	Energy         float64 `json:"energy"`
	Tension        float64 `json:"tension"`
	Expressiveness float64 `json:"expressiveness"`

	Depth    float64 `json:"depth"`
	HandSize float64 `json:"handSize"`

	Landmarks []r3.Vec `json:"landmarks"`
}

// Empty returns the canonical metrics for "no hand", carrying the given
// energy so a briefly lost hand does not reset the accumulator.
// The palm normal points at the camera so unit-vector consumers stay valid.
func Empty(energy float64) Metrics {
	return Metrics{
		Openness:         NeutralOpenness,
		PalmNormal:       r3.Vec{Z: -1},
		PalmFacingCamera: 1,
		Energy:           clamp01(energy),
		Landmarks:        []r3.Vec{},
	}
}
