package app

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/field"
	"github.com/ayusman/mudra/internal/log"
)

// FieldHeaderSize is the byte length of an encoded field frame header:
// uint32 count, then rotation, point size, opacity, light, progress and
// tint r, g, b as float32, all little-endian.
const FieldHeaderSize = 4 + 8*4

// runRender is the render loop: it steps the simulator at the render rate
// and publishes an encoded frame at the stream rate.
func (a *App) runRender(stop <-chan struct{}) {
	defer a.wg.Done()

	interval := time.Second / time.Duration(a.config.RenderFPS)
	every := a.config.RenderFPS / a.config.StreamFPS
	if every < 1 {
		every = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last  time.Time
		frame int
		buf   []byte
		pos   []float32
	)
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			var dt time.Duration
			if !last.IsZero() {
				dt = now.Sub(last)
			}
			last = now

			g := a.renderFrame(dt)

			frame++
			if frame%every != 0 || a.fieldFeed.Len() == 0 {
				continue
			}
			pos = a.sim.AppendPositions(pos[:0])
			buf = EncodeField(buf[:0], g, pos)

			// Subscribers keep the slice, so each frame gets its own copy.
			a.fieldFeed.Publish(append([]byte(nil), buf...))
		}
	}
}

// renderFrame applies the current selection and steps the simulator once
// with the latest metrics snapshot.
func (a *App) renderFrame(dt time.Duration) field.Globals {
	sel := a.Selection()
	if a.sim.SetShape(sel.Shape) {
		log.Info("shape change", "shape", sel.Shape)
	}
	a.sim.SetColor(sel.Color)

	return a.sim.Step(a.Latest().Metrics, dt)
}

// EncodeField appends a binary field frame to dst.
func EncodeField(dst []byte, g field.Globals, positions []float32) []byte {
	count := len(positions) / 3

	dst = binary.LittleEndian.AppendUint32(dst, uint32(count))
	header := []float64{g.Rotation, g.PointSize, g.Opacity, g.Light, g.Progress, g.Tint[0], g.Tint[1], g.Tint[2]}
	for _, v := range header {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	}
	for _, v := range positions[:count*3] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// DecodeField parses a frame produced by EncodeField. It reports false if
// data is truncated.
func DecodeField(data []byte) (g field.Globals, positions []float32, ok bool) {
	if len(data) < FieldHeaderSize {
		return g, nil, false
	}
	count := int(binary.LittleEndian.Uint32(data))
	if len(data) != FieldHeaderSize+count*12 {
		return g, nil, false
	}

	f := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
	}
	g.Rotation = f(4)
	g.PointSize = f(8)
	g.Opacity = f(12)
	g.Light = f(16)
	g.Progress = f(20)
	g.Tint = field.Color{f(24), f(28), f(32)}

	positions = make([]float32, count*3)
	for i := range positions {
		positions[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[FieldHeaderSize+i*4:]))
	}
	return g, positions, true
}
