package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.hands == nil {
		return nil, nil
	}

	out := make([]HandLandmarks, len(m.hands))
	for i := range m.hands {
		out[i] = *m.hands[i].Clone()
	}
	return out, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

func newRightHand() HandLandmarks {
	return HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
}

// curledFingers folds middle, ring and pinky toward the palm with the
// tips dropping below their middle joints.
func curledFingers(lm *HandLandmarks) {
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	lm.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	lm.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.71, Z: -0.02}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	lm.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	lm.Points[RingDIP] = Point3D{X: 0.43, Y: 0.70, Z: -0.04}
	lm.Points[RingTip] = Point3D{X: 0.44, Y: 0.73, Z: -0.02}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	lm.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	lm.Points[PinkyDIP] = Point3D{X: 0.39, Y: 0.72, Z: -0.04}
	lm.Points[PinkyTip] = Point3D{X: 0.41, Y: 0.75, Z: -0.02}
}

// curledIndex folds the index finger the same way.
func curledIndex(lm *HandLandmarks) {
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	lm.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.70, Z: -0.04}
	lm.Points[IndexTip] = Point3D{X: 0.53, Y: 0.73, Z: -0.02}
}

// tuckedThumb lays the thumb tip against the index base.
func tuckedThumb(lm *HandLandmarks) {
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.74, Z: -0.01}
	lm.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.71, Z: -0.02}
	lm.Points[ThumbTip] = Point3D{X: 0.54, Y: 0.69, Z: -0.03}
}

// ThumbsUpLandmarks returns a preset hand with the thumb extended upward
// while the other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	lm := newRightHand()
	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	lm.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	curledIndex(&lm)
	curledFingers(&lm)
	return lm
}

// OpenPalmLandmarks returns a preset flat hand facing the camera with all
// five fingers extended and spread.
func OpenPalmLandmarks() HandLandmarks {
	lm := newRightHand()
	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.59, Y: 0.35, Z: 0.0}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	lm.Points[RingTip] = Point3D{X: 0.41, Y: 0.35, Z: 0.0}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	lm.Points[PinkyPIP] = Point3D{X: 0.36, Y: 0.60, Z: 0.0}
	lm.Points[PinkyDIP] = Point3D{X: 0.34, Y: 0.50, Z: 0.0}
	lm.Points[PinkyTip] = Point3D{X: 0.32, Y: 0.42, Z: 0.0}

	return lm
}

// FistLandmarks returns a preset closed fist with the thumb tucked
// against the index base.
func FistLandmarks() HandLandmarks {
	lm := newRightHand()
	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	tuckedThumb(&lm)
	curledIndex(&lm)
	curledFingers(&lm)
	return lm
}

// PinchLandmarks returns a preset hand with the thumb and index tips
// 0.01 apart and the remaining fingers curled.
func PinchLandmarks() HandLandmarks {
	lm := newRightHand()
	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.0}
	lm.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.62, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.64, Y: 0.56, Z: 0.0}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.60, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.63, Y: 0.56, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.64, Y: 0.55, Z: 0.0}

	curledFingers(&lm)
	return lm
}

// PointLandmarks returns a preset hand with the index finger extended
// upward and every other finger curled.
func PointLandmarks() HandLandmarks {
	lm := newRightHand()
	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	tuckedThumb(&lm)

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.565, Y: 0.45, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.57, Y: 0.36, Z: 0.0}

	curledFingers(&lm)
	return lm
}

// Translate returns a copy of the hand shifted by (dx, dy) in image space.
func Translate(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := *h.Clone()
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}
