package metrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/smooth"
)

// channels is the closed set of smoothed signals. Each field is smoothed by
// exactly one of the extractor's three smoothers.
type channels struct {
	depth    smooth.Scalar // slow
	position smooth.Vector // default
	velocity smooth.Vector // default

	curl     [detector.NumFingers]smooth.Scalar // default
	openness smooth.Scalar                      // slow

	pinch    smooth.Scalar // fast
	pinchPos smooth.Vector // default
	spread   smooth.Scalar // default

	normal smooth.Vector // default
	facing smooth.Scalar // slow

	pointDir smooth.Vector // default
	point    smooth.Scalar // fast
	grip     smooth.Scalar // default

	tension    smooth.Scalar // slow
	expressive smooth.Scalar // default
}

// Extractor maps one landmark frame per tracking tick to one Metrics value.
// It is not safe for concurrent use; the tracking loop owns it.
type Extractor struct {
	cfg Config

	fast smooth.Smoother
	def  smooth.Smoother
	slow smooth.Smoother

	ch      channels
	energy  float64
	prevPos r3.Vec
	hasPrev bool
}

// NewExtractor creates an Extractor with the given configuration.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		cfg:  cfg,
		fast: smooth.New(cfg.FastAlpha),
		def:  smooth.New(cfg.DefaultAlpha),
		slow: smooth.New(cfg.SlowAlpha),
	}
}

// Config returns the extractor configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// Energy returns the current value of the energy accumulator.
func (e *Extractor) Energy() float64 {
	return e.energy
}

// Reset discards all smoothing history and the energy accumulator.
// Call it whenever the tracking session restarts.
func (e *Extractor) Reset() {
	e.ch = channels{}
	e.energy = 0
	e.prevPos = r3.Vec{}
	e.hasPrev = false
}

// Update consumes one frame and returns the metrics for this tick.
// A nil or malformed hand yields Empty metrics with the decayed energy.
// elapsed is the time since the previous call; zero selects the nominal tick.
func (e *Extractor) Update(hand *detector.HandLandmarks, elapsed time.Duration) Metrics {
	dt := elapsed
	if dt <= 0 {
		dt = e.cfg.NominalTick
	}
	if dt < time.Millisecond {
		dt = time.Millisecond
	}
	seconds := dt.Seconds()

	ticks := 1.0
	if e.cfg.EnergyTick > 0 {
		ticks = float64(dt) / float64(e.cfg.EnergyTick)
	}

	// Energy fades whether or not a hand is present.
	e.energy = clamp01(e.energy * math.Pow(e.cfg.EnergyDecay, ticks))

	if !usable(hand) {
		// Drop smoothing history so reacquisition starts fresh, but keep
		// energy so a brief dropout does not spike it.
		e.ch = channels{}
		e.hasPrev = false
		return Empty(e.energy)
	}

	pts := hand.Points
	var m Metrics
	m.IsPresent = true
	m.Confidence = clamp01(hand.Score)

	// Depth from apparent hand size
	m.HandSize = dist2(pts[detector.Wrist], pts[detector.MiddleMCP])
	rawDepth := (e.cfg.ReferenceHandSize/math.Max(epsilon, m.HandSize) - 1) * e.cfg.DepthScale
	m.Depth = e.slow.Scalar(&e.ch.depth, clamp(rawDepth, -1, 1))

	// Position and velocity
	wrist := e.toDisplay(pts[detector.Wrist], m.Depth)
	wrist.X = clamp(wrist.X, -1, 1)
	wrist.Y = clamp(wrist.Y, -1, 1)
	m.Position = e.def.Vector(&e.ch.position, wrist)

	var rawVel r3.Vec
	if e.hasPrev {
		rawVel = clampVec(r3.Scale(1/seconds, r3.Sub(m.Position, e.prevPos)), e.cfg.MaxVelocity)
	}
	e.prevPos = m.Position
	e.hasPrev = true

	m.Velocity = clampVec(e.def.Vector(&e.ch.velocity, rawVel), e.cfg.MaxVelocity)
	m.Speed = clamp01(math.Hypot(m.Velocity.X, m.Velocity.Y) / math.Max(epsilon, e.cfg.SpeedScale))

	e.energy = clamp01(e.energy + m.Speed*e.cfg.EnergyGain*ticks)
	m.Energy = e.energy

	// Finger curls
	raw := e.rawCurls(pts, m.HandSize)
	m.Curl = Curls{
		Thumb:  clamp01(e.def.Scalar(&e.ch.curl[detector.Thumb], raw[detector.Thumb])),
		Index:  clamp01(e.def.Scalar(&e.ch.curl[detector.Index], raw[detector.Index])),
		Middle: clamp01(e.def.Scalar(&e.ch.curl[detector.Middle], raw[detector.Middle])),
		Ring:   clamp01(e.def.Scalar(&e.ch.curl[detector.Ring], raw[detector.Ring])),
		Pinky:  clamp01(e.def.Scalar(&e.ch.curl[detector.Pinky], raw[detector.Pinky])),
	}

	// Thumb is excluded: its curl is geometrically noisier.
	m.Openness = clamp01(e.slow.Scalar(&e.ch.openness, 1-m.Curl.FourFingerMean()))

	// Pinch
	rawPinch := band(dist3(pts[detector.ThumbTip], pts[detector.IndexTip]), e.cfg.PinchFar, e.cfg.PinchNear)
	m.PinchStrength = clamp01(e.fast.Scalar(&e.ch.pinch, rawPinch))
	mid := detector.Point3D{
		X: (pts[detector.ThumbTip].X + pts[detector.IndexTip].X) / 2,
		Y: (pts[detector.ThumbTip].Y + pts[detector.IndexTip].Y) / 2,
	}
	m.PinchPosition = e.def.Vector(&e.ch.pinchPos, e.toDisplay(mid, m.Depth))

	// Spread across adjacent fingertips
	spread := mean(
		dist3(pts[detector.IndexTip], pts[detector.MiddleTip]),
		dist3(pts[detector.MiddleTip], pts[detector.RingTip]),
		dist3(pts[detector.RingTip], pts[detector.PinkyTip]),
	)
	m.FingerSpread = clamp01(e.def.Scalar(&e.ch.spread, band(spread, e.cfg.SpreadMin, e.cfg.SpreadMax)))

	// Palm orientation
	across := r3.Sub(pts[detector.PinkyMCP].Vec(), pts[detector.IndexMCP].Vec())
	along := r3.Sub(pts[detector.Wrist].Vec(), pts[detector.MiddleMCP].Vec())
	normal := unitOr(e.directionToDisplay(r3.Cross(across, along)), r3.Vec{Z: -1})

	facing := 1.0
	if normal.Z > 0 {
		facing = -1
	}
	if e.slow.Scalar(&e.ch.facing, facing) >= 0 {
		m.PalmFacingCamera = 1
	} else {
		m.PalmFacingCamera = -1
	}
	m.PalmNormal = unitOr(e.def.Vector(&e.ch.normal, normal), normal)
	m.PalmTilt = clamp(m.PalmNormal.X, -1, 1)

	// Pointing
	dir := r3.Sub(pts[detector.IndexTip].Vec(), pts[detector.IndexMCP].Vec())
	pointDir := unitOr(e.directionToDisplay(dir), r3.Vec{Y: 1})
	m.PointDirection = unitOr(e.def.Vector(&e.ch.pointDir, pointDir), pointDir)

	rawPoint := (1 - m.Curl.Index) * mean(m.Curl.Middle, m.Curl.Ring, m.Curl.Pinky)
	m.PointStrength = clamp01(e.fast.Scalar(&e.ch.point, rawPoint))

	// Curled fingers only count as grip when not pinching.
	rawGrip := m.Curl.FourFingerMean() * (1 - 0.5*rawPinch)
	m.GripStrength = clamp01(e.def.Scalar(&e.ch.grip, rawGrip))

	rawTension := math.Max(m.PinchStrength, math.Max(m.GripStrength, 2*math.Abs(m.Openness-0.5)))
	m.Tension = clamp01(e.slow.Scalar(&e.ch.tension, clamp01(rawTension)))

	rawExpr := math.Min(1, math.Abs(m.Openness-e.cfg.RelaxedOpenness)+
		0.3*m.PinchStrength+0.3*m.PointStrength+0.4*m.Speed)
	m.Expressiveness = clamp01(e.def.Scalar(&e.ch.expressive, rawExpr))

	m.Landmarks = make([]r3.Vec, len(pts))
	for i, p := range pts {
		m.Landmarks[i] = e.toDisplay(p, m.Depth+p.Z)
	}

	return m
}

// rawCurls computes unsmoothed curls for all five fingers.
func (e *Extractor) rawCurls(pts []detector.Point3D, handSize float64) [detector.NumFingers]float64 {
	var out [detector.NumFingers]float64

	// Thumb: closer to the index base means more curled.
	thumbRatio := dist2(pts[detector.ThumbTip], pts[detector.IndexMCP]) / math.Max(epsilon, handSize)
	out[detector.Thumb] = band(thumbRatio, e.cfg.ThumbOpenRatio, e.cfg.ThumbClosedRatio)

	wrist := pts[detector.Wrist]
	for f := detector.Index; f < detector.NumFingers; f++ {
		base, middle, tip := f.Joints()
		ratio := dist3(pts[tip], wrist) / math.Max(epsilon, dist3(pts[base], wrist))

		curl := (e.cfg.CurlExtendedRatio - ratio) / math.Max(epsilon, e.cfg.CurlRange)
		if pts[tip].Y > pts[middle].Y {
			// Image y grows downward: tip below its middle joint means folded.
			curl += e.cfg.FoldPenalty
		}
		out[f] = clamp01(curl)
	}
	return out
}

// toDisplay maps an image-space point to display space with the given z.
func (e *Extractor) toDisplay(p detector.Point3D, z float64) r3.Vec {
	x := p.X*2 - 1
	if e.cfg.MirrorX {
		x = -x
	}
	return r3.Vec{X: x, Y: 1 - p.Y*2, Z: z}
}

// directionToDisplay applies the display axis flips to a direction.
func (e *Extractor) directionToDisplay(v r3.Vec) r3.Vec {
	if e.cfg.MirrorX {
		v.X = -v.X
	}
	v.Y = -v.Y
	return v
}

// usable reports whether a frame can be processed.
func usable(hand *detector.HandLandmarks) bool {
	if !hand.Valid() {
		return false
	}
	for _, p := range hand.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
