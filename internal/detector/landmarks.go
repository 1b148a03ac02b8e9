// Package detector provides hand landmark types and the tracking-source
// interface that feeds the metrics extractor.
package detector

import "gonum.org/v1/gonum/spatial/r3"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger identifies one of the five digits.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// Joints returns the base, middle and tip landmark indices of a finger.
// For the thumb the base is the MCP joint and the middle joint is the IP.
func (f Finger) Joints() (base, middle, tip int) {
	if f == Thumb {
		return ThumbMCP, ThumbIP, ThumbTip
	}
	base = IndexMCP + 4*(int(f)-1)
	return base, base + 1, base + 3
}

// Point3D represents a landmark in normalized tracking space.
// X and Y are in [0,1] image coordinates (Y grows downward); Z is depth
// relative to the wrist, smaller values being closer to the camera.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts the point to a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// HandLandmarks is one tracked hand for a single tracking tick.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Valid reports whether the hand carries exactly NumLandmarks points.
// Anything else is treated as a missing hand downstream.
func (h *HandLandmarks) Valid() bool {
	return h != nil && len(h.Points) == NumLandmarks
}

// Clone returns a deep copy of the hand.
func (h *HandLandmarks) Clone() *HandLandmarks {
	if h == nil {
		return nil
	}
	c := *h
	c.Points = append([]Point3D(nil), h.Points...)
	return &c
}

// Dominant picks the valid hand with the highest score.
// Returns nil if no hand in the slice is valid.
func Dominant(hands []HandLandmarks) *HandLandmarks {
	var best *HandLandmarks
	for i := range hands {
		h := &hands[i]
		if !h.Valid() {
			continue
		}
		if best == nil || h.Score > best.Score {
			best = h
		}
	}
	return best
}
