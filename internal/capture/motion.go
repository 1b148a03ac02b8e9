package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing constants
const (
	// GaussianBlurSize is the kernel size for the pre-difference blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel gray level change that counts as motion
	DiffThreshold = 25
)

// MotionGate decides whether a frame is worth sending to the hand detector
// while no hand is tracked. A still, empty scene keeps the gate closed;
// any motion opens it for hold frames. Once a hand is tracked the gate
// always passes frames, so a still hand is never dropped.
type MotionGate struct {
	mu        sync.Mutex
	threshold float64
	hold      int
	open      int
	prevGray  gocv.Mat
	primed    bool
}

// NewMotionGate creates a gate from cfg.MotionThreshold and cfg.MotionHold.
// A non-positive threshold yields a gate that passes every frame.
func NewMotionGate(cfg Config) *MotionGate {
	hold := cfg.MotionHold
	if hold < 1 {
		hold = 1
	}
	return &MotionGate{
		threshold: cfg.MotionThreshold,
		hold:      hold,
		prevGray:  gocv.NewMat(),
	}
}

// Enabled reports whether the gate filters frames at all.
func (g *MotionGate) Enabled() bool {
	return g.threshold > 0
}

// Pass reports whether frame should reach the detector. tracking is true
// while the previous frame had a hand.
func (g *MotionGate) Pass(frame *gocv.Mat, tracking bool) bool {
	if !g.Enabled() {
		return true
	}

	moved, _ := g.Changed(frame)

	g.mu.Lock()
	defer g.mu.Unlock()

	if moved || tracking {
		g.open = g.hold
		return true
	}
	if g.open > 0 {
		g.open--
		return true
	}
	return false
}

// Changed compares frame with the previous one and returns whether the
// share of changed pixels exceeds the threshold, along with that share in
// percent. The first frame after a reset only primes the baseline.
func (g *MotionGate) Changed(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !g.primed || blurred.Rows() != g.prevGray.Rows() || blurred.Cols() != g.prevGray.Cols() {
		blurred.CopyTo(&g.prevGray)
		g.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0

	blurred.CopyTo(&g.prevGray)
	return changed > g.threshold, changed
}

// Reset forgets the baseline frame and closes the gate.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

// Close releases the baseline frame. The gate may be reused afterwards.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
}

func (g *MotionGate) clear() {
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.primed = false
	g.open = 0
}
