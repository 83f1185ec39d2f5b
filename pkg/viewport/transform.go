// Package viewport implements the pan/zoom state of the story map canvas.
//
// The math lives in pure functions over Transform values. Engine owns the
// current Transform plus the transient gesture sessions and pushes every
// change to a Surface.
package viewport

import (
	"fmt"
	"math"
)

const (
	// DefaultMinScale is the smallest zoom level.
	DefaultMinScale = 0.2
	// DefaultMaxScale is the largest zoom level.
	DefaultMaxScale = 3.0
	// DefaultStep is the additive zoom step used by the zoom buttons.
	DefaultStep = 0.2
	// DefaultWheelSensitivity converts wheel deltaY into a scale factor.
	DefaultWheelSensitivity = 0.001
	// DefaultVerticalAnchor is where a focused node lands vertically, as a
	// fraction of the container height.
	DefaultVerticalAnchor = 0.5
)

// Point is a position in viewport (container-local) or diagram space.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Transform maps diagram coordinates to viewport coordinates:
// viewport = diagram*Scale + (X, Y).
type Transform struct {
	X     float64
	Y     float64
	Scale float64
}

// Identity is the transform applied right after a diagram is rendered.
var Identity = Transform{X: 0, Y: 0, Scale: 1}

// ToViewport maps a diagram point into the viewport.
func (t Transform) ToViewport(p Point) Point {
	return Point{X: p.X*t.Scale + t.X, Y: p.Y*t.Scale + t.Y}
}

// ToDiagram maps a viewport point back into diagram space.
func (t Transform) ToDiagram(p Point) Point {
	return Point{X: (p.X - t.X) / t.Scale, Y: (p.Y - t.Y) / t.Scale}
}

// CSS renders the transform as a CSS transform value.
func (t Transform) CSS() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", t.X, t.Y, t.Scale)
}

// Limits bounds the scale.
type Limits struct {
	Min float64
	Max float64
}

// DefaultLimits returns [0.2, 3.0].
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinScale, Max: DefaultMaxScale}
}

// Clamp restricts s to the limits.
func (l Limits) Clamp(s float64) float64 {
	return Clamp(s, l.Min, l.Max)
}

// Clamp restricts v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ZoomAt multiplies the scale by factor, clamped, keeping the diagram point
// under anchor fixed on screen. Wheel and pinch zoom both go through here.
func ZoomAt(t Transform, anchor Point, factor float64, lim Limits) Transform {
	cur := lim.Clamp(t.Scale)
	next := lim.Clamp(cur * factor)
	ratio := next / cur
	return Transform{
		X:     anchor.X - (anchor.X-t.X)*ratio,
		Y:     anchor.Y - (anchor.Y-t.Y)*ratio,
		Scale: next,
	}
}

// Step adds delta to the scale and clamps it. Translation is untouched.
func Step(t Transform, delta float64, lim Limits) Transform {
	t.Scale = lim.Clamp(t.Scale + delta)
	return t
}

// PanTo places the translation so that pointer - anchor holds.
func PanTo(t Transform, anchor, pointer Point) Transform {
	t.X = pointer.X - anchor.X
	t.Y = pointer.Y - anchor.Y
	return t
}

// CenterOn moves the translation so that node (diagram space) sits at the
// horizontal center of the container and at vertical*H.
func CenterOn(t Transform, container Size, node Point, vertical float64) Transform {
	t.X = container.W/2 - node.X*t.Scale
	t.Y = container.H*vertical - node.Y*t.Scale
	return t
}

// CenterDiagram centers a diagram of the given unscaled bounds. An axis on
// which the scaled diagram does not fit is aligned to 0 instead.
func CenterDiagram(t Transform, container, bounds Size) Transform {
	w := bounds.W * t.Scale
	h := bounds.H * t.Scale
	t.X = 0
	if container.W > w {
		t.X = (container.W - w) / 2
	}
	t.Y = 0
	if container.H > h {
		t.Y = (container.H - h) / 2
	}
	return t
}

// Distance is the Euclidean distance between two contacts.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
