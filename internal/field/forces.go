package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Force is one term of the target pipeline. Gate decides once per frame
// whether the force runs at all; Apply maps the running target to a new
// one and must not retain or mutate anything.
type Force struct {
	Name  string
	Gate  func(f *Frame) bool
	Apply func(f *Frame, p Particle, target r3.Vec) r3.Vec
}

// Pipeline is an ordered list of forces, folded left to right.
type Pipeline []Force

// Active returns the forces whose gate passes for this frame, in order.
func (p Pipeline) Active(f *Frame) Pipeline {
	out := make(Pipeline, 0, len(p))
	for _, force := range p {
		if force.Gate == nil || force.Gate(f) {
			out = append(out, force)
		}
	}
	return out
}

// Fold applies every force in order to target.
func (p Pipeline) Fold(f *Frame, particle Particle, target r3.Vec) r3.Vec {
	for _, force := range p {
		target = force.Apply(f, particle, target)
	}
	return target
}

// Names returns the force names in pipeline order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, force := range p {
		names[i] = force.Name
	}
	return names
}

// DefaultPipeline returns the hand-driven forces in their canonical order.
func DefaultPipeline(cfg ForceConfig) Pipeline {
	return Pipeline{
		Expansion(cfg),
		PinchAttraction(cfg),
		Vortex(cfg),
		Turbulence(cfg),
		Drift(cfg),
		Beam(cfg),
		FingerWave(cfg),
		Trail(cfg),
		Jitter(cfg),
	}
}

// Expansion scales the target's distance from the origin with openness.
func Expansion(cfg ForceConfig) Force {
	return Force{
		Name: "expansion",
		Apply: func(f *Frame, _ Particle, t r3.Vec) r3.Vec {
			return r3.Scale(cfg.ExpansionBase+cfg.ExpansionGain*f.Metrics.Openness, t)
		},
	}
}

// PinchAttraction pulls targets toward the pinch point with an
// inverse-distance law and spirals the closest ones around it.
func PinchAttraction(cfg ForceConfig) Force {
	return Force{
		Name: "pinch",
		Gate: func(f *Frame) bool { return f.Metrics.PinchStrength > cfg.PinchThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			strength := f.Metrics.PinchStrength
			d := r3.Norm(r3.Sub(t, f.Pinch))

			mix := math.Min(cfg.PinchPull*strength/math.Max(cfg.PinchMinDistance, d), 1) * cfg.PinchMaxMix
			t = lerp(t, f.Pinch, mix)

			if d < cfg.SpiralRadius && strength > cfg.SpiralPinch {
				angle := f.Time*cfg.SpiralRate + p.Phase
				r := cfg.SpiralScale * d * strength
				t.X += math.Cos(angle) * r
				t.Z += math.Sin(angle) * r
			}
			return t
		},
	}
}

// Vortex rotates nearby targets around the hand on the horizontal plane.
func Vortex(cfg ForceConfig) Force {
	return Force{
		Name: "vortex",
		Gate: func(f *Frame) bool { return f.Metrics.GripStrength > cfg.VortexThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			rel := r3.Sub(t, f.Hand)
			d := r3.Norm(rel)
			if d >= cfg.VortexRadius {
				return t
			}

			grip := f.Metrics.GripStrength
			proximity := 1 - d/cfg.VortexRadius
			angle := grip * proximity * f.Time * cfg.VortexRate
			sin, cos := math.Sincos(angle)

			return r3.Vec{
				X: f.Hand.X + rel.X*cos - rel.Z*sin,
				Y: t.Y + math.Sin(f.Time*3+p.Phase)*proximity*grip*cfg.VortexLift,
				Z: f.Hand.Z + rel.X*sin + rel.Z*cos,
			}
		},
	}
}

func turbulence(f *Frame) float64 {
	return f.Metrics.FingerSpread*0.5 + f.Metrics.Energy*0.3
}

// Turbulence adds per-axis sinusoidal noise that speeds up with energy.
func Turbulence(cfg ForceConfig) Force {
	return Force{
		Name: "turbulence",
		Gate: func(f *Frame) bool { return turbulence(f) > cfg.TurbulenceThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			amount := turbulence(f) * cfg.TurbulenceScale
			freq := 1 + 3*f.Metrics.Energy
			phase := f.Time*freq + p.Phase
			return r3.Add(t, r3.Vec{
				X: math.Sin(phase) * p.Seed.X * amount,
				Y: math.Cos(phase*1.1+p.Phase*0.3) * p.Seed.Y * amount,
				Z: math.Sin(phase*0.9+p.Phase*0.7) * p.Seed.Z * amount,
			})
		},
	}
}

// Drift shifts every target uniformly along the palm's tilt and lift.
func Drift(cfg ForceConfig) Force {
	return Force{
		Name: "drift",
		Gate: func(f *Frame) bool { return f.Metrics.Expressiveness > cfg.DriftThreshold },
		Apply: func(f *Frame, _ Particle, t r3.Vec) r3.Vec {
			expr := f.Metrics.Expressiveness
			t.X += f.Metrics.PalmTilt * expr * cfg.DriftScale
			t.Y += f.Metrics.PalmNormal.Y * expr * cfg.DriftScale
			return t
		},
	}
}

// Beam draws targets near the hand out along the pointing direction. The
// index modulo spreads particles along the beam instead of bunching them.
func Beam(cfg ForceConfig) Force {
	return Force{
		Name: "beam",
		Gate: func(f *Frame) bool { return f.Metrics.PointStrength > cfg.BeamThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			d := r3.Norm(r3.Sub(t, f.Hand))
			if d >= cfg.BeamRadius {
				return t
			}

			strength := f.Metrics.PointStrength
			along := strength * float64(p.Index%100) / 100 * cfg.BeamLength
			beam := r3.Add(f.Hand, r3.Scale(along, f.Pointing))
			return lerp(t, beam, (1-d/cfg.BeamRadius)*strength*cfg.BeamMix)
		},
	}
}

// Finger wave weights, frequencies (rad/sec) and phase offsets for index,
// middle, ring and pinky.
var (
	waveWeights = [4]float64{0.4, 0.3, 0.2, 0.1}
	waveFreqs   = [4]float64{2, 2.5, 3, 3.5}
)

// FingerWave ripples targets vertically with one sinusoid per finger curl.
// An open hand holds still.
func FingerWave(cfg ForceConfig) Force {
	return Force{
		Name: "wave",
		Gate: func(f *Frame) bool { return 1-f.Metrics.Openness > cfg.WaveThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			c := f.Metrics.Curl
			curls := [4]float64{c.Index, c.Middle, c.Ring, c.Pinky}

			var wave float64
			for k, curl := range curls {
				wave += waveWeights[k] * curl * math.Sin(f.Time*waveFreqs[k]+p.Phase+float64(k)*math.Pi/2)
			}
			t.Y += wave * (1 - f.Metrics.Openness) * cfg.WaveAmplitude
			return t
		},
	}
}

// Trail drags targets near the hand along its velocity.
func Trail(cfg ForceConfig) Force {
	return Force{
		Name: "trail",
		Gate: func(f *Frame) bool { return f.Metrics.Speed > cfg.TrailThreshold },
		Apply: func(f *Frame, _ Particle, t r3.Vec) r3.Vec {
			d := r3.Norm(r3.Sub(t, f.Hand))
			if d >= cfg.TrailRadius {
				return t
			}
			return r3.Add(t, r3.Scale(cfg.TrailGain/math.Max(cfg.TrailMinDistance, d), f.Velocity))
		},
	}
}

// Jitter shakes targets when the hand is tense. The noise is a hash of
// particle index and frame so the force stays a pure function.
func Jitter(cfg ForceConfig) Force {
	return Force{
		Name: "jitter",
		Gate: func(f *Frame) bool { return f.Metrics.Tension > cfg.JitterThreshold },
		Apply: func(f *Frame, p Particle, t r3.Vec) r3.Vec {
			amount := (f.Metrics.Tension - 0.5) * 2 * f.Metrics.Energy * cfg.JitterScale
			if amount == 0 {
				return t
			}
			return r3.Add(t, r3.Vec{
				X: noise(p.Index, f.Tick, 0) * amount,
				Y: noise(p.Index, f.Tick, 1) * amount,
				Z: noise(p.Index, f.Tick, 2) * amount,
			})
		},
	}
}

// noise returns a uniform value in [-1,1) from a splitmix64 hash.
func noise(index int, tick uint64, axis uint64) float64 {
	x := uint64(index)*0x9E3779B97F4A7C15 ^ tick*0xBF58476D1CE4E5B9 ^ axis*0x94D049BB133111EB
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return float64(x>>11)/float64(1<<53)*2 - 1
}
