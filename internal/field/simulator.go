// Package field simulates a particle field whose shape and motion are
// driven by continuous hand metrics.
//
// Each frame every particle's target comes from the active shape, is
// blended through any running shape morph, perturbed by idle breathing
// and then folded through the force pipeline when a hand is present.
// A damped spring pulls the particle toward its final target.
package field

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/shape"
)

// Simulator owns the particle arrays. It is not safe for concurrent use;
// the render loop is its only writer.
type Simulator struct {
	cfg Config
	rng *rand.Rand

	// Parallel per-particle arrays
	positions  []r3.Vec
	velocities []r3.Vec
	targets    []r3.Vec
	phases     []float64
	seeds      []r3.Vec

	shape    shape.Kind
	state    transition
	pipeline Pipeline

	clock time.Duration
	tick  uint64

	color   Color
	globals globalState
	last    Globals
}

// New allocates a simulator with cfg.Particles particles at random
// positions, targeting the given shape.
func New(cfg Config, initial shape.Kind) *Simulator {
	n := cfg.Particles
	if n < 0 {
		n = 0
	}

	s := &Simulator{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		positions:  make([]r3.Vec, n),
		velocities: make([]r3.Vec, n),
		targets:    make([]r3.Vec, n),
		phases:     make([]float64, n),
		seeds:      make([]r3.Vec, n),
		shape:      initial,
		state:      idle{},
		pipeline:   DefaultPipeline(cfg.Forces),
		color:      DefaultColor,
		globals:    newGlobalState(cfg.Globals, cfg.FrameRate),
	}

	spread := cfg.Radius * 2
	for i := 0; i < n; i++ {
		s.positions[i] = r3.Vec{
			X: (s.rng.Float64()*2 - 1) * spread,
			Y: (s.rng.Float64()*2 - 1) * spread,
			Z: (s.rng.Float64()*2 - 1) * spread,
		}
		s.phases[i] = s.rng.Float64() * 2 * math.Pi
		s.seeds[i] = r3.Vec{
			X: 0.5 + s.rng.Float64(),
			Y: 0.5 + s.rng.Float64(),
			Z: 0.5 + s.rng.Float64(),
		}
	}
	shape.Fill(s.targets, initial, cfg.Radius)

	s.last = Globals{
		PointSize: cfg.Globals.PointSize,
		Opacity:   cfg.Globals.Opacity,
		Tint:      s.color,
		Progress:  1,
	}
	return s
}

// Len returns the particle count.
func (s *Simulator) Len() int {
	return len(s.positions)
}

// Shape returns the most recently applied shape.
func (s *Simulator) Shape() shape.Kind {
	return s.shape
}

// SetPipeline replaces the force pipeline used for subsequent frames.
func (s *Simulator) SetPipeline(p Pipeline) {
	s.pipeline = p
}

// Pipeline returns the force pipeline.
func (s *Simulator) Pipeline() Pipeline {
	return s.pipeline
}

// SetColor sets the base tint. It takes effect on the next frame.
func (s *Simulator) SetColor(c Color) {
	s.color = c.Clamp()
}

// Color returns the base tint.
func (s *Simulator) Color() Color {
	return s.color
}

// SetShape starts a morph toward k. It reports false and does nothing when
// k is already the applied shape. A morph started mid-morph begins from
// the currently blended targets.
func (s *Simulator) SetShape(k shape.Kind) bool {
	if k == s.shape {
		return false
	}

	previous := s.targets
	if m, ok := s.state.(*morph); ok {
		eased := easeInOutQuart(m.progress())
		previous = make([]r3.Vec, len(s.targets))
		for i := range previous {
			previous[i] = lerp(m.previous[i], s.targets[i], eased)
		}
	}

	tc := s.cfg.Transition
	s.state = newMorph(previous, tc.Duration, s.rng, tc.EjectionMin, tc.EjectionMax)
	s.shape = k
	shape.Fill(s.targets, k, s.cfg.Radius)
	return true
}

// Transitioning reports whether a shape morph is running.
func (s *Simulator) Transitioning() bool {
	_, ok := s.state.(*morph)
	return ok
}

// Progress returns the shape-morph progress in [0,1]; 1 when idle.
func (s *Simulator) Progress() float64 {
	return s.state.progress()
}

// Globals returns the values computed by the last Step.
func (s *Simulator) Globals() Globals {
	return s.last
}

// Positions returns the particle positions. The slice is owned by the
// simulator and is overwritten by the next Step.
func (s *Simulator) Positions() []r3.Vec {
	return s.positions
}

// Velocities returns the particle velocities, owned by the simulator.
func (s *Simulator) Velocities() []r3.Vec {
	return s.velocities
}

// AppendPositions appends x,y,z of every particle to dst as float32.
func (s *Simulator) AppendPositions(dst []float32) []float32 {
	for _, p := range s.positions {
		dst = append(dst, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return dst
}

// Step advances the field by one frame. A zero dt selects the nominal
// frame time. Absent hands only breathe and rotate.
func (s *Simulator) Step(m metrics.Metrics, dt time.Duration) Globals {
	if dt <= 0 {
		dt = time.Second / time.Duration(max(1, s.cfg.FrameRate))
	}
	s.clock += dt
	s.tick++

	now := s.clock.Seconds()
	frame := newFrame(m, s.cfg, now, s.tick)
	fm := frame.Metrics
	present := fm.IsPresent

	tc := s.cfg.Transition
	var (
		mo       *morph
		eased    = 1.0
		ejection float64
		flash    float64
		wobble   float64
	)
	if current, ok := s.state.(*morph); ok {
		mo = current
		mo.elapsed += dt
		eased = easeInOutQuart(mo.progress())
		ejection = ejectionDecay(mo.elapsed, tc.EjectionWindow)
		flash = flashIntensity(mo.elapsed, tc.FlashDuration)
		wobble = tc.Wobble * (1 - eased) * math.Sin(mo.elapsed.Seconds()*6)
	}

	var forces Pipeline
	if present {
		forces = s.pipeline.Active(&frame)
	}

	rate, damping := s.springParams(fm, mo != nil)
	breath := s.cfg.BreathingAmplitude * (1 - fm.Tension)
	swirl := tc.Swirl * (1 - eased)

	for i := range s.positions {
		p := Particle{Index: i, Phase: s.phases[i], Seed: s.seeds[i]}
		t := s.targets[i]

		if mo != nil {
			t = lerp(mo.previous[i], t, eased)
			t = r3.Add(t, r3.Scale(ejection, mo.impulse[i]))
			if swirl > 0 {
				angle := p.Phase + now*tc.SwirlRate
				t.X += math.Cos(angle) * swirl * p.Seed.X
				t.Y += math.Sin(angle*0.7) * swirl * p.Seed.Y * 0.5
				t.Z += math.Sin(angle) * swirl * p.Seed.Z
			}
		}

		b := math.Sin(now*s.cfg.BreathingRate+p.Phase) * breath
		t = r3.Add(t, r3.Vec{X: b * p.Seed.X, Y: b * p.Seed.Y, Z: b * p.Seed.Z})

		if len(forces) > 0 {
			t = forces.Fold(&frame, p, t)
		}

		v := r3.Add(s.velocities[i], r3.Scale(rate, r3.Sub(t, s.positions[i])))
		v = r3.Scale(damping, v)
		s.velocities[i] = v
		s.positions[i] = r3.Add(s.positions[i], v)
	}

	g := s.globals.update(dt, fm.GripStrength, fm.Energy, fm.Openness, wobble, flash, s.color)
	if mo != nil && mo.done() {
		s.state = idle{}
	}
	g.Progress = s.state.progress()
	s.last = g
	return g
}

// springParams returns the spring rate and damping for this frame.
func (s *Simulator) springParams(m metrics.Metrics, morphing bool) (rate, damping float64) {
	sc := s.cfg.Spring

	switch {
	case morphing:
		rate = sc.TransitionLerp
	case m.IsPresent:
		rate = sc.PresentLerp
	default:
		rate = sc.AbsentLerp
	}

	if !m.IsPresent {
		return rate, clamp(sc.AbsentDamping, sc.MinDamping, sc.MaxDamping)
	}

	rate += m.Expressiveness * sc.ExpressiveLerp
	damping = sc.BaseDamping + m.Openness*sc.OpenDamping - m.GripStrength*sc.GripDamping - m.Energy*sc.EnergyDamping
	return rate, clamp(damping, sc.MinDamping, sc.MaxDamping)
}
