package field

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Color is an RGB triple with channels in [0,1].
type Color [3]float64

// DefaultColor is the base tint before any selection.
var DefaultColor = Color{0.4, 0.7, 1.0}

// Clamp returns c with every channel in [0,1].
func (c Color) Clamp() Color {
	for i := range c {
		c[i] = clamp01(c[i])
	}
	return c
}

// Globals are the per-frame values that apply to the whole field.
type Globals struct {
	Rotation  float64 `json:"rotation"` // radians about the vertical axis
	PointSize float64 `json:"pointSize"`
	Opacity   float64 `json:"opacity"`
	Light     float64 `json:"light"`
	Tint      Color   `json:"tint"`
	Progress  float64 `json:"progress"`
}

// globalState eases point size and opacity with critically damped springs.
type globalState struct {
	cfg GlobalsConfig

	rotation float64

	spring     harmonica.Spring
	size       float64
	sizeVel    float64
	opacity    float64
	opacityVel float64
}

func newGlobalState(cfg GlobalsConfig, fps int) globalState {
	if fps <= 0 {
		fps = 60
	}
	return globalState{
		cfg:     cfg,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), cfg.EaseFrequency, cfg.EaseDamping),
		size:    cfg.PointSize,
		opacity: cfg.Opacity,
	}
}

// update advances the globals by one frame. grip, energy and openness are
// sanitized metrics; wobble is the extra spin rate for this frame.
func (g *globalState) update(dt time.Duration, grip, energy, openness, wobble, flash float64, base Color) Globals {
	spin := g.cfg.BaseSpin + g.cfg.GripSpin*grip + wobble
	g.rotation = math.Mod(g.rotation+spin*dt.Seconds(), 2*math.Pi)

	sizeTarget := g.cfg.PointSize * (1 + g.cfg.PointSizeEnergy*energy + g.cfg.PointSizeOpen*openness + g.cfg.PointSizeFlash*flash)
	g.size, g.sizeVel = g.spring.Update(g.size, g.sizeVel, sizeTarget)
	g.size = math.Max(0, g.size)

	opacityTarget := clamp01(g.cfg.Opacity + g.cfg.OpacityEnergy*energy + g.cfg.OpacityFlash*flash)
	g.opacity, g.opacityVel = g.spring.Update(g.opacity, g.opacityVel, opacityTarget)
	g.opacity = clamp01(g.opacity)

	tint := base.Clamp()
	for i := range tint {
		tint[i] = clamp01(tint[i] + (1-tint[i])*flash*g.cfg.TintFlash)
	}

	return Globals{
		Rotation:  g.rotation,
		PointSize: g.size,
		Opacity:   g.opacity,
		Light:     flash * g.cfg.LightFlash,
		Tint:      tint,
	}
}
