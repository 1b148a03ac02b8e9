// Package shape generates deterministic target point sets for the particle
// field. Every sampler is pure: the same kind, count and scale always yield
// the same points in the same order.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownKind is returned by ParseKind for names that are not a Kind.
var ErrUnknownKind = errors.New("unknown shape")

// Kind selects a target geometry.
type Kind string

const (
	Sphere Kind = "sphere"
	Cube   Kind = "cube"
	Torus  Kind = "torus"
	Helix  Kind = "helix"
	Heart  Kind = "heart"
)

// Kinds returns every shape in menu order.
func Kinds() []Kind {
	return []Kind{Sphere, Cube, Torus, Helix, Heart}
}

// String returns the shape name.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known shape.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind resolves a case-insensitive shape name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Sample returns n points on shape k, sized so the shape fits in a sphere
// of the given radius. Unknown kinds fall back to a sphere.
func Sample(k Kind, n int, radius float64) []r3.Vec {
	out := make([]r3.Vec, n)
	Fill(out, k, radius)
	return out
}

// Fill writes len(dst) points of shape k into dst.
func Fill(dst []r3.Vec, k Kind, radius float64) {
	n := len(dst)
	if n == 0 {
		return
	}

	var at func(i, n int) r3.Vec
	switch k {
	case Cube:
		at = cube
	case Torus:
		at = torus
	case Helix:
		at = helix
	case Heart:
		at = heart
	default:
		at = sphere
	}

	for i := range dst {
		dst[i] = r3.Scale(radius, at(i, n))
	}
}

// Low-discrepancy R2 sequence constants (plastic number).
const (
	r2a1 = 0.7548776662466927
	r2a2 = 0.5698402909980532
)

// r2 returns the i-th point of the R2 sequence in [0,1)².
func r2(i int) (float64, float64) {
	u := 0.5 + r2a1*float64(i)
	v := 0.5 + r2a2*float64(i)
	return u - math.Floor(u), v - math.Floor(v)
}

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// sphere places points on a Fibonacci spiral over the unit sphere.
func sphere(i, n int) r3.Vec {
	y := 1 - 2*(float64(i)+0.5)/float64(n)
	r := math.Sqrt(math.Max(0, 1-y*y))
	theta := goldenAngle * float64(i)
	return r3.Vec{X: r * math.Cos(theta), Y: y, Z: r * math.Sin(theta)}
}

// cube spreads points over the six faces of a cube inscribed in the unit sphere.
func cube(i, n int) r3.Vec {
	const h = 0.5773502691896258 // 1/sqrt(3)
	u, v := r2(i / 6)
	a, b := (u*2-1)*h, (v*2-1)*h

	switch i % 6 {
	case 0:
		return r3.Vec{X: h, Y: a, Z: b}
	case 1:
		return r3.Vec{X: -h, Y: a, Z: b}
	case 2:
		return r3.Vec{X: a, Y: h, Z: b}
	case 3:
		return r3.Vec{X: a, Y: -h, Z: b}
	case 4:
		return r3.Vec{X: a, Y: b, Z: h}
	default:
		return r3.Vec{X: a, Y: b, Z: -h}
	}
}

// torus lies in the horizontal plane with major radius 0.7 and minor 0.3.
func torus(i, n int) r3.Vec {
	const major, minor = 0.7, 0.3
	u, v := r2(i)
	theta := u * 2 * math.Pi
	phi := v * 2 * math.Pi
	ring := major + minor*math.Cos(phi)
	return r3.Vec{
		X: ring * math.Cos(theta),
		Y: minor * math.Sin(phi),
		Z: ring * math.Sin(theta),
	}
}

// helix is a vertical double helix with three turns.
func helix(i, n int) r3.Vec {
	const (
		turns  = 3
		radius = 0.45
		tube   = 0.06
	)
	strand := float64(i % 2)
	t := (float64(i/2) + 0.5) / math.Ceil(float64(n)/2)
	angle := t*turns*2*math.Pi + strand*math.Pi

	// Small deterministic thickness around each strand.
	u, v := r2(i)
	off := tube * math.Sqrt(u)
	offAngle := v * 2 * math.Pi

	return r3.Vec{
		X: (radius+off*math.Cos(offAngle))*math.Cos(angle),
		Y: t*1.6 - 0.8,
		Z: (radius+off*math.Cos(offAngle))*math.Sin(angle) + off*math.Sin(offAngle)*0.5,
	}
}

// heart is the classic parametric heart curve filled inward and extruded in z.
func heart(i, n int) r3.Vec {
	u, v := r2(i)
	t := u * 2 * math.Pi

	x := 16 * math.Pow(math.Sin(t), 3)
	y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)

	// Most points on the outline, the rest filling the body.
	fill := 1.0
	if i%3 == 2 {
		fill = math.Sqrt(v)
	}
	depth := (v*2 - 1) * 0.2 * fill

	const s = 1.0 / 19
	return r3.Vec{X: x * s * fill, Y: (y + 2) * s * fill, Z: depth}
}
