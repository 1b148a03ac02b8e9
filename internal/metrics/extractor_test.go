package metrics

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/detector"
)

const tick = time.Second / 30

// scaleHand grows or shrinks the hand around its wrist in image space.
func scaleHand(h detector.HandLandmarks, k float64) detector.HandLandmarks {
	out := *h.Clone()
	w := out.Points[detector.Wrist]
	for i := range out.Points {
		out.Points[i].X = w.X + (out.Points[i].X-w.X)*k
		out.Points[i].Y = w.Y + (out.Points[i].Y-w.Y)*k
	}
	return out
}

// mirrorHand flips the hand horizontally, turning the palm away from the camera.
func mirrorHand(h detector.HandLandmarks) detector.HandLandmarks {
	out := *h.Clone()
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	return out
}

func checkBounds(t *testing.T, m Metrics, cfg Config) {
	t.Helper()

	unit := []struct {
		name string
		v    float64
	}{
		{"confidence", m.Confidence},
		{"speed", m.Speed},
		{"openness", m.Openness},
		{"pinchStrength", m.PinchStrength},
		{"fingerSpread", m.FingerSpread},
		{"pointStrength", m.PointStrength},
		{"gripStrength", m.GripStrength},
		{"energy", m.Energy},
		{"tension", m.Tension},
		{"expressiveness", m.Expressiveness},
		{"curl.thumb", m.Curl.Thumb},
		{"curl.index", m.Curl.Index},
		{"curl.middle", m.Curl.Middle},
		{"curl.ring", m.Curl.Ring},
		{"curl.pinky", m.Curl.Pinky},
	}
	for _, u := range unit {
		if math.IsNaN(u.v) || u.v < 0 || u.v > 1 {
			t.Errorf("%s = %f, want within [0,1]", u.name, u.v)
		}
	}

	if m.PalmFacingCamera != 1 && m.PalmFacingCamera != -1 {
		t.Errorf("palmFacingCamera = %f, want ±1", m.PalmFacingCamera)
	}
	if m.PalmTilt < -1 || m.PalmTilt > 1 {
		t.Errorf("palmTilt = %f, want within [-1,1]", m.PalmTilt)
	}
	if m.Depth < -1 || m.Depth > 1 {
		t.Errorf("depth = %f, want within [-1,1]", m.Depth)
	}
	if m.Position.X < -1 || m.Position.X > 1 || m.Position.Y < -1 || m.Position.Y > 1 {
		t.Errorf("position = %v, want x,y within [-1,1]", m.Position)
	}
	for _, c := range []float64{m.Velocity.X, m.Velocity.Y, m.Velocity.Z} {
		if math.IsNaN(c) || math.Abs(c) > cfg.MaxVelocity {
			t.Errorf("velocity = %v, want components within ±%f", m.Velocity, cfg.MaxVelocity)
			break
		}
	}
	if n := r3.Norm(m.PalmNormal); math.Abs(n-1) > 1e-6 {
		t.Errorf("|palmNormal| = %f, want 1", n)
	}
	if m.IsPresent {
		if n := r3.Norm(m.PointDirection); math.Abs(n-1) > 1e-6 {
			t.Errorf("|pointDirection| = %f, want 1", n)
		}
	}
}

func TestExtractor_BoundedOnFixtures(t *testing.T) {
	cfg := DefaultConfig()
	fixtures := map[string]detector.HandLandmarks{
		"open palm": detector.OpenPalmLandmarks(),
		"fist":      detector.FistLandmarks(),
		"pinch":     detector.PinchLandmarks(),
		"point":     detector.PointLandmarks(),
		"thumbs up": detector.ThumbsUpLandmarks(),
	}

	for name, hand := range fixtures {
		t.Run(name, func(t *testing.T) {
			ex := NewExtractor(cfg)
			for i := 0; i < 60; i++ {
				h := hand
				m := ex.Update(&h, tick)
				if !m.IsPresent {
					t.Fatal("expected hand to be present")
				}
				checkBounds(t, m, cfg)
			}
		})
	}
}

func TestExtractor_BoundedOnNoise(t *testing.T) {
	cfg := DefaultConfig()
	ex := NewExtractor(cfg)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		var m Metrics
		switch rng.Intn(10) {
		case 0:
			m = ex.Update(nil, tick)
		default:
			h := detector.OpenPalmLandmarks()
			for j := range h.Points {
				h.Points[j].X = rng.Float64()*2 - 0.5
				h.Points[j].Y = rng.Float64()*2 - 0.5
				h.Points[j].Z = rng.Float64() - 0.5
			}
			h.Score = rng.Float64()*2 - 0.5
			m = ex.Update(&h, time.Duration(rng.Intn(100))*time.Millisecond)
		}
		checkBounds(t, m, cfg)
	}
}

func TestExtractor_OpenPalm(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := detector.OpenPalmLandmarks()

	var m Metrics
	for i := 0; i < 30; i++ {
		m = ex.Update(&hand, tick)
	}

	if m.Curl.FourFingerMean() > 0.05 {
		t.Errorf("expected straight fingers, got curls %+v", m.Curl)
	}
	if m.Curl.Thumb > 0.05 {
		t.Errorf("expected extended thumb, got %f", m.Curl.Thumb)
	}
	if m.Openness < 0.95 {
		t.Errorf("expected openness near 1, got %f", m.Openness)
	}
	if m.PinchStrength > 0.05 {
		t.Errorf("expected no pinch, got %f", m.PinchStrength)
	}
	if m.GripStrength > 0.05 {
		t.Errorf("expected no grip, got %f", m.GripStrength)
	}
	if m.PalmFacingCamera != 1 {
		t.Errorf("expected palm facing camera, got %f", m.PalmFacingCamera)
	}
	if m.PalmNormal.Z > -0.9 {
		t.Errorf("expected palm normal toward camera, got %v", m.PalmNormal)
	}
	if m.Confidence != hand.Score {
		t.Errorf("expected confidence %f, got %f", hand.Score, m.Confidence)
	}
	if len(m.Landmarks) != detector.NumLandmarks {
		t.Errorf("expected %d landmarks, got %d", detector.NumLandmarks, len(m.Landmarks))
	}
}

func TestExtractor_Fist(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := detector.FistLandmarks()

	var m Metrics
	for i := 0; i < 30; i++ {
		m = ex.Update(&hand, tick)
	}

	if m.Openness > 0.2 {
		t.Errorf("expected closed hand, got openness %f", m.Openness)
	}
	if m.GripStrength < 0.4 {
		t.Errorf("expected grip, got %f", m.GripStrength)
	}
	if m.Curl.Thumb < 0.9 {
		t.Errorf("expected tucked thumb to read curled, got %f", m.Curl.Thumb)
	}
}

func TestExtractor_Pinch(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := detector.PinchLandmarks()

	m := ex.Update(&hand, tick)
	if m.PinchStrength < 0.99 {
		t.Errorf("expected full pinch on first frame, got %f", m.PinchStrength)
	}
	if m.GripStrength >= 0.5 {
		t.Errorf("expected pinch to suppress grip, got %f", m.GripStrength)
	}

	// Pinch position sits between the two tips in display space.
	want := ex.toDisplay(detector.Point3D{X: 0.64, Y: 0.555}, m.Depth)
	if r3.Norm(r3.Sub(m.PinchPosition, want)) > 1e-9 {
		t.Errorf("expected pinch position %v, got %v", want, m.PinchPosition)
	}
}

func TestExtractor_Point(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := detector.PointLandmarks()

	var m Metrics
	for i := 0; i < 10; i++ {
		m = ex.Update(&hand, tick)
	}

	if m.PointStrength < 0.7 {
		t.Errorf("expected strong point, got %f", m.PointStrength)
	}
	if m.PointDirection.Y < 0.9 {
		t.Errorf("expected upward point direction, got %v", m.PointDirection)
	}
}

func TestExtractor_PalmAway(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := mirrorHand(detector.OpenPalmLandmarks())

	m := ex.Update(&hand, tick)
	if m.PalmFacingCamera != -1 {
		t.Errorf("expected palm away from camera, got %f", m.PalmFacingCamera)
	}
}

func TestExtractor_DepthSign(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  func(float64) bool
	}{
		{"closer", 1.5, func(d float64) bool { return d < 0 }},
		{"farther", 0.6, func(d float64) bool { return d > 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(DefaultConfig())
			hand := scaleHand(detector.OpenPalmLandmarks(), tt.scale)
			m := ex.Update(&hand, tick)
			if !tt.want(m.Depth) {
				t.Errorf("unexpected depth %f for scale %f", m.Depth, tt.scale)
			}
			if m.Position.Z != m.Depth {
				t.Errorf("expected position z %f to equal depth %f", m.Position.Z, m.Depth)
			}
		})
	}
}

func TestExtractor_Mirror(t *testing.T) {
	hand := detector.Translate(detector.OpenPalmLandmarks(), -0.3, 0)

	mirrored := NewExtractor(DefaultConfig()).Update(&hand, tick)
	if mirrored.Position.X <= 0 {
		t.Errorf("expected mirrored wrist on the right, got x=%f", mirrored.Position.X)
	}

	cfg := DefaultConfig()
	cfg.MirrorX = false
	plain := NewExtractor(cfg).Update(&hand, tick)
	if plain.Position.X >= 0 {
		t.Errorf("expected unmirrored wrist on the left, got x=%f", plain.Position.X)
	}
}

func TestExtractor_Absent(t *testing.T) {
	ex := NewExtractor(DefaultConfig())

	first := ex.Update(nil, tick)
	second := ex.Update(nil, tick)

	if !reflect.DeepEqual(first, Empty(0)) {
		t.Errorf("expected empty metrics, got %+v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("expected repeated absence to be idempotent")
	}
	if first.Openness != NeutralOpenness {
		t.Errorf("expected neutral openness, got %f", first.Openness)
	}
}

func TestExtractor_Malformed(t *testing.T) {
	tests := []struct {
		name string
		hand func() *detector.HandLandmarks
	}{
		{"nil", func() *detector.HandLandmarks { return nil }},
		{"short", func() *detector.HandLandmarks {
			h := detector.OpenPalmLandmarks()
			h.Points = h.Points[:20]
			return &h
		}},
		{"long", func() *detector.HandLandmarks {
			h := detector.OpenPalmLandmarks()
			h.Points = append(h.Points, detector.Point3D{})
			return &h
		}},
		{"nan", func() *detector.HandLandmarks {
			h := detector.OpenPalmLandmarks()
			h.Points[detector.IndexTip].X = math.NaN()
			return &h
		}},
		{"inf", func() *detector.HandLandmarks {
			h := detector.OpenPalmLandmarks()
			h.Points[detector.Wrist].Y = math.Inf(1)
			return &h
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(DefaultConfig())
			m := ex.Update(tt.hand(), tick)
			if m.IsPresent {
				t.Error("expected malformed frame to read as no hand")
			}
			if !reflect.DeepEqual(m, Empty(ex.Energy())) {
				t.Errorf("expected empty metrics, got %+v", m)
			}
		})
	}
}

func TestExtractor_EnergyDecay(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	base := detector.OpenPalmLandmarks()

	// Wave the hand side to side.
	for i := 0; i < 30; i++ {
		dx := 0.2
		if i%2 == 1 {
			dx = -0.2
		}
		h := detector.Translate(base, dx, 0)
		ex.Update(&h, tick)
	}
	if ex.Energy() < 0.1 {
		t.Fatalf("expected motion to build energy, got %f", ex.Energy())
	}

	// Hold still for two seconds.
	var m Metrics
	for i := 0; i < 60; i++ {
		m = ex.Update(&base, tick)
	}
	if m.Energy >= 0.01 {
		t.Errorf("expected energy below 0.01 after 2s still, got %f", m.Energy)
	}
}

func TestExtractor_EnergyDecaysWhileAbsent(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	base := detector.OpenPalmLandmarks()
	for i := 0; i < 20; i++ {
		h := detector.Translate(base, 0.05*float64(i%2), 0)
		ex.Update(&h, tick)
	}

	prev := ex.Energy()
	if prev == 0 {
		t.Fatal("expected non-zero energy after motion")
	}
	for i := 0; i < 30; i++ {
		m := ex.Update(nil, tick)
		if m.Energy > prev {
			t.Fatalf("energy rose while absent: %f -> %f", prev, m.Energy)
		}
		prev = m.Energy
	}
}

func TestExtractor_EnergyRateIndependent(t *testing.T) {
	a := NewExtractor(DefaultConfig())
	b := NewExtractor(DefaultConfig())
	a.energy, b.energy = 1, 1

	for i := 0; i < 60; i++ {
		a.Update(nil, time.Second/60)
	}
	for i := 0; i < 30; i++ {
		b.Update(nil, time.Second/30)
	}

	if math.Abs(a.Energy()-b.Energy()) > 1e-6 {
		t.Errorf("expected equal decay over one second, got %f and %f", a.Energy(), b.Energy())
	}
}

func TestExtractor_StillHandHasNoVelocity(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	hand := detector.OpenPalmLandmarks()

	for i := 0; i < 10; i++ {
		m := ex.Update(&hand, tick)
		if m.Speed != 0 || r3.Norm(m.Velocity) != 0 {
			t.Fatalf("expected zero velocity for a still hand, got %v", m.Velocity)
		}
	}
}

func TestExtractor_Converges(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	fist := detector.FistLandmarks()
	open := detector.OpenPalmLandmarks()

	ex.Update(&fist, tick)

	// Slow channels settle within 2% after 30 ticks.
	var m Metrics
	for i := 0; i < 30; i++ {
		m = ex.Update(&open, tick)
	}
	if m.Openness < 0.98 {
		t.Errorf("expected openness to settle near 1, got %f", m.Openness)
	}
	if m.GripStrength > 0.02 {
		t.Errorf("expected grip to settle near 0, got %f", m.GripStrength)
	}
}

func TestExtractor_ZeroElapsedUsesNominalTick(t *testing.T) {
	a := NewExtractor(DefaultConfig())
	b := NewExtractor(DefaultConfig())
	first := detector.OpenPalmLandmarks()
	moved := detector.Translate(first, 0.1, 0)

	a.Update(&first, 0)
	ma := a.Update(&moved, 0)
	b.Update(&first, DefaultConfig().NominalTick)
	mb := b.Update(&moved, DefaultConfig().NominalTick)

	if !reflect.DeepEqual(ma, mb) {
		t.Error("expected zero elapsed to behave like the nominal tick")
	}
}

func TestExtractor_Reset(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	fist := detector.FistLandmarks()
	for i := 0; i < 20; i++ {
		h := detector.Translate(fist, 0.02*float64(i), 0)
		ex.Update(&h, tick)
	}

	ex.Reset()
	if ex.Energy() != 0 {
		t.Errorf("expected energy 0 after reset, got %f", ex.Energy())
	}

	open := detector.OpenPalmLandmarks()
	got := ex.Update(&open, tick)
	want := NewExtractor(DefaultConfig()).Update(&open, tick)
	if !reflect.DeepEqual(got, want) {
		t.Error("expected reset extractor to match a fresh one")
	}
}

func TestExtractor_ReacquireStartsFresh(t *testing.T) {
	ex := NewExtractor(DefaultConfig())
	fist := detector.FistLandmarks()
	for i := 0; i < 20; i++ {
		ex.Update(&fist, tick)
	}
	ex.Update(nil, tick)

	open := detector.OpenPalmLandmarks()
	m := ex.Update(&open, tick)
	if m.Openness < 0.99 {
		t.Errorf("expected no stale fist history after reacquisition, got openness %f", m.Openness)
	}
	if m.Speed != 0 {
		t.Errorf("expected zero speed on reacquisition, got %f", m.Speed)
	}
}

func TestConfigPresets(t *testing.T) {
	def := DefaultConfig()
	presets := []struct {
		name     string
		cfg      Config
		steadier bool
	}{
		{"smooth", SmoothConfig(), true},
		{"responsive", ResponsiveConfig(), false},
	}

	for _, p := range presets {
		t.Run(p.name, func(t *testing.T) {
			lower := p.cfg.FastAlpha < def.FastAlpha &&
				p.cfg.DefaultAlpha < def.DefaultAlpha &&
				p.cfg.SlowAlpha < def.SlowAlpha
			if lower != p.steadier {
				t.Errorf("unexpected alphas %f/%f/%f", p.cfg.FastAlpha, p.cfg.DefaultAlpha, p.cfg.SlowAlpha)
			}
			if !(p.cfg.FastAlpha > p.cfg.DefaultAlpha && p.cfg.DefaultAlpha > p.cfg.SlowAlpha) {
				t.Error("expected fast > default > slow")
			}
		})
	}
}
