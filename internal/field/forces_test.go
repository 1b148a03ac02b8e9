package field

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/metrics"
)

func testFrame(m metrics.Metrics) Frame {
	return newFrame(m, DefaultConfig(), 1.25, 7)
}

func TestDefaultPipeline_Order(t *testing.T) {
	got := DefaultPipeline(DefaultConfig().Forces).Names()
	want := []string{"expansion", "pinch", "vortex", "turbulence", "drift", "beam", "wave", "trail", "jitter"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestPipeline_Gating(t *testing.T) {
	p := DefaultPipeline(DefaultConfig().Forces)

	tests := []struct {
		name string
		m    metrics.Metrics
		want []string
	}{
		{
			name: "relaxed open hand",
			m:    metrics.Metrics{IsPresent: true, Openness: 1},
			want: []string{"expansion"},
		},
		{
			name: "pinch only",
			m:    metrics.Metrics{IsPresent: true, Openness: 1, PinchStrength: 0.8},
			want: []string{"expansion", "pinch"},
		},
		{
			name: "fist",
			m: metrics.Metrics{
				IsPresent: true, GripStrength: 0.9,
				Curl: metrics.Curls{Index: 1, Middle: 1, Ring: 1, Pinky: 1},
			},
			want: []string{"expansion", "vortex", "wave"},
		},
		{
			name: "tense but still",
			m:    metrics.Metrics{IsPresent: true, Openness: 1, Tension: 1},
			want: []string{"expansion", "jitter"},
		},
		{
			name: "everything",
			m:    maxMetrics(),
			want: []string{"expansion", "pinch", "vortex", "turbulence", "drift", "beam", "wave", "trail", "jitter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFrame(tt.m)
			got := p.Active(&f).Names()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected active %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPipeline_FoldOrder(t *testing.T) {
	add := Force{Name: "add", Apply: func(_ *Frame, _ Particle, t r3.Vec) r3.Vec {
		return r3.Add(t, r3.Vec{X: 1})
	}}
	double := Force{Name: "double", Apply: func(_ *Frame, _ Particle, t r3.Vec) r3.Vec {
		return r3.Scale(2, t)
	}}

	f := testFrame(maxMetrics())
	start := r3.Vec{X: 1}

	if got := (Pipeline{add, double}).Fold(&f, Particle{}, start); got.X != 4 {
		t.Errorf("add then double: expected 4, got %f", got.X)
	}
	if got := (Pipeline{double, add}).Fold(&f, Particle{}, start); got.X != 3 {
		t.Errorf("double then add: expected 3, got %f", got.X)
	}
}

func TestForces_Pure(t *testing.T) {
	f := testFrame(maxMetrics())
	p := Particle{Index: 42, Phase: 1.1, Seed: r3.Vec{X: 1.2, Y: 0.7, Z: 1.4}}
	target := r3.Vec{X: 3, Y: 2, Z: -1}

	for _, force := range DefaultPipeline(DefaultConfig().Forces) {
		a := force.Apply(&f, p, target)
		b := force.Apply(&f, p, target)
		if a != b {
			t.Errorf("%s: expected identical output for identical input, got %v and %v", force.Name, a, b)
		}
		if !finite(a) {
			t.Errorf("%s: output not finite: %v", force.Name, a)
		}
	}
}

func TestExpansion(t *testing.T) {
	cfg := DefaultConfig().Forces
	force := Expansion(cfg)
	target := r3.Vec{X: 2, Y: 0, Z: 0}

	tests := []struct {
		openness float64
		want     float64
	}{
		{0, 0.6},
		{0.5, 1.8},
		{1, 3},
	}
	for _, tt := range tests {
		f := testFrame(metrics.Metrics{IsPresent: true, Openness: tt.openness})
		got := force.Apply(&f, Particle{}, target)
		if math.Abs(got.X-tt.want) > 1e-12 {
			t.Errorf("openness %f: expected x %f, got %f", tt.openness, tt.want, got.X)
		}
	}
}

func TestPinchAttraction(t *testing.T) {
	force := PinchAttraction(DefaultConfig().Forces)
	m := metrics.Metrics{IsPresent: true, PinchStrength: 0.4, PinchPosition: r3.Vec{X: 0.5}}
	f := testFrame(m)

	target := r3.Vec{X: -4, Y: 3}
	before := r3.Norm(r3.Sub(target, f.Pinch))
	after := r3.Norm(r3.Sub(force.Apply(&f, Particle{}, target), f.Pinch))

	if after >= before {
		t.Errorf("expected pinch to pull target closer: %f -> %f", before, after)
	}
	if moved := before - after; moved > before*0.3+1e-9 {
		t.Errorf("expected mix capped at 0.3, moved %f of %f", moved, before)
	}
}

func TestVortex(t *testing.T) {
	force := Vortex(DefaultConfig().Forces)
	m := metrics.Metrics{IsPresent: true, GripStrength: 1}
	f := testFrame(m)

	near := r3.Add(f.Hand, r3.Vec{X: 2, Z: 1})
	got := force.Apply(&f, Particle{}, near)

	before := math.Hypot(near.X-f.Hand.X, near.Z-f.Hand.Z)
	after := math.Hypot(got.X-f.Hand.X, got.Z-f.Hand.Z)
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("expected rotation to keep horizontal distance: %f -> %f", before, after)
	}
	if got.X == near.X && got.Z == near.Z {
		t.Error("expected nearby target to rotate")
	}

	far := r3.Add(f.Hand, r3.Vec{X: 20})
	if got := force.Apply(&f, Particle{}, far); got != far {
		t.Errorf("expected far target untouched, got %v", got)
	}
}

func TestBeam(t *testing.T) {
	force := Beam(DefaultConfig().Forces)
	m := metrics.Metrics{IsPresent: true, PointStrength: 1, PointDirection: r3.Vec{X: 1}}
	f := testFrame(m)

	far := r3.Add(f.Hand, r3.Vec{Y: 5})
	if got := force.Apply(&f, Particle{Index: 50}, far); got != far {
		t.Errorf("expected target outside the beam radius untouched, got %v", got)
	}

	// Particles at the hand are spread along the beam by index.
	a := force.Apply(&f, Particle{Index: 10}, f.Hand)
	b := force.Apply(&f, Particle{Index: 90}, f.Hand)
	if !(b.X > a.X && a.X > f.Hand.X) {
		t.Errorf("expected higher index further along +x: hand %f, a %f, b %f", f.Hand.X, a.X, b.X)
	}
}

func TestFingerWave(t *testing.T) {
	force := FingerWave(DefaultConfig().Forces)
	p := Particle{Phase: 0.3}
	target := r3.Vec{Y: 1}

	open := testFrame(metrics.Metrics{IsPresent: true, Openness: 1, Curl: metrics.Curls{Index: 1}})
	if got := force.Apply(&open, p, target); got != target {
		t.Errorf("expected open hand to hold still, got %v", got)
	}

	curled := testFrame(metrics.Metrics{IsPresent: true, Curl: metrics.Curls{Index: 1, Middle: 1, Ring: 1, Pinky: 1}})
	got := force.Apply(&curled, p, target)
	if got.X != 0 || got.Z != 0 {
		t.Errorf("expected wave on y only, got %v", got)
	}
	if math.Abs(got.Y-target.Y) > 1 {
		t.Errorf("expected wave bounded by its weights, got %f", got.Y)
	}
}

func TestTrail(t *testing.T) {
	force := Trail(DefaultConfig().Forces)
	m := metrics.Metrics{IsPresent: true, Speed: 0.5, Velocity: r3.Vec{X: 2}}
	f := testFrame(m)

	got := force.Apply(&f, Particle{}, f.Hand)
	if got.X <= f.Hand.X {
		t.Errorf("expected trail along +x, got %v", got)
	}
}

func TestJitter(t *testing.T) {
	force := Jitter(DefaultConfig().Forces)

	still := testFrame(metrics.Metrics{IsPresent: true, Tension: 1})
	target := r3.Vec{X: 1}
	if got := force.Apply(&still, Particle{Index: 3}, target); got != target {
		t.Errorf("expected no jitter without energy, got %v", got)
	}

	tense := testFrame(metrics.Metrics{IsPresent: true, Tension: 1, Energy: 1})
	got := force.Apply(&tense, Particle{Index: 3}, target)
	limit := DefaultConfig().Forces.JitterScale
	d := r3.Sub(got, target)
	for _, c := range []float64{d.X, d.Y, d.Z} {
		if math.Abs(c) > limit {
			t.Errorf("jitter %v exceeds %f", d, limit)
		}
	}
}

func TestNoise(t *testing.T) {
	seen := make(map[float64]bool)
	for i := 0; i < 1000; i++ {
		v := noise(i, 9, 1)
		if v < -1 || v >= 1 {
			t.Fatalf("noise out of range: %f", v)
		}
		seen[v] = true
	}
	if len(seen) < 990 {
		t.Errorf("expected distinct noise values, got %d unique", len(seen))
	}
	if noise(5, 1, 0) != noise(5, 1, 0) {
		t.Error("expected noise to be deterministic")
	}
}

func TestSanitize(t *testing.T) {
	m := metrics.Metrics{
		IsPresent:        true,
		Openness:         math.NaN(),
		PinchStrength:    3,
		Energy:           math.Inf(1),
		PalmTilt:         -4,
		PalmFacingCamera: 0.2,
		Position:         r3.Vec{X: 9, Y: math.NaN(), Z: -9},
		Velocity:         r3.Vec{X: 100},
		PalmNormal:       r3.Vec{},
		PointDirection:   r3.Vec{X: math.Inf(1)},
	}

	got := Sanitize(m, 5)
	if got.Openness != 0 || got.PinchStrength != 1 || got.Energy != 1 {
		t.Errorf("unexpected scalars: open %f pinch %f energy %f", got.Openness, got.PinchStrength, got.Energy)
	}
	if got.PalmTilt != -1 || got.PalmFacingCamera != 1 {
		t.Errorf("unexpected palm: tilt %f facing %f", got.PalmTilt, got.PalmFacingCamera)
	}
	if got.Position != (r3.Vec{X: 1, Y: 0, Z: -1}) {
		t.Errorf("unexpected position %v", got.Position)
	}
	if got.Velocity.X != 5 {
		t.Errorf("expected velocity clamped to 5, got %f", got.Velocity.X)
	}
	if got.PalmNormal != (r3.Vec{Z: -1}) {
		t.Errorf("expected fallback palm normal, got %v", got.PalmNormal)
	}
	if got.PointDirection != (r3.Vec{X: 1}) {
		t.Errorf("expected clamped point direction, got %v", got.PointDirection)
	}
}

func TestToScene(t *testing.T) {
	scale := r3.Vec{X: 8, Y: 5, Z: 3}
	got := toScene(r3.Vec{X: 1, Y: -1, Z: -0.5}, scale)
	if got != (r3.Vec{X: 8, Y: -5, Z: 1.5}) {
		t.Errorf("unexpected scene point %v", got)
	}
}
