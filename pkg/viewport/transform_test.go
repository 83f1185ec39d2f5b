package viewport

import (
	"math"
	"math/rand"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 1.5, 1.5},
		{"below", 0.01, 0.2},
		{"above", 7, 3},
		{"lower bound", 0.2, 0.2},
		{"upper bound", 3, 3},
		{"nan", math.NaN(), 0.2},
		{"negative", -4, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.in, 0.2, 3); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	lim := DefaultLimits()
	for i := 0; i < 500; i++ {
		tr := Transform{
			X:     rng.Float64()*2000 - 1000,
			Y:     rng.Float64()*2000 - 1000,
			Scale: 0.5 + rng.Float64()*1.5,
		}
		anchor := Point{X: rng.Float64() * 1200, Y: rng.Float64() * 900}
		// Keep the result away from the clamp boundary.
		factor := lim.Min/tr.Scale + rng.Float64()*(lim.Max/tr.Scale-lim.Min/tr.Scale)

		before := tr.ToDiagram(anchor)
		next := ZoomAt(tr, anchor, factor, lim)
		after := next.ToViewport(before)

		if !approxEqual(after.X, anchor.X, 1e-6) || !approxEqual(after.Y, anchor.Y, 1e-6) {
			t.Fatalf("case %d: anchor %v moved to %v (t=%+v factor=%v)", i, anchor, after, tr, factor)
		}
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	lim := DefaultLimits()
	got := ZoomAt(Identity, Point{X: 100, Y: 100}, 10, lim)
	if got.Scale != 3 {
		t.Errorf("Scale = %v, want 3", got.Scale)
	}
	// 100 - (100 - 0) * 3 = -200
	if got.X != -200 || got.Y != -200 {
		t.Errorf("translate = (%v,%v), want (-200,-200)", got.X, got.Y)
	}

	got = ZoomAt(Identity, Point{}, 0, lim)
	if got.Scale != 0.2 {
		t.Errorf("Scale = %v, want 0.2", got.Scale)
	}
}

func TestZoomAtOutOfRangeStartingScale(t *testing.T) {
	// A scale that somehow sits outside the limits is clamped before the
	// ratio is taken, so the ratio never divides by zero.
	got := ZoomAt(Transform{Scale: 0}, Point{X: 10, Y: 10}, 2, DefaultLimits())
	if math.IsNaN(got.X) || math.IsInf(got.X, 0) {
		t.Fatalf("X = %v, want finite", got.X)
	}
	if !approxEqual(got.Scale, 0.4, epsilon) {
		t.Errorf("Scale = %v, want 0.4", got.Scale)
	}
}

func TestCenterOn(t *testing.T) {
	got := CenterOn(Identity, Size{W: 800, H: 600}, Point{X: 100, Y: 50}, 0.5)
	if got.X != 300 || got.Y != 250 {
		t.Errorf("CenterOn = (%v,%v), want (300,250)", got.X, got.Y)
	}
	if got.Scale != 1 {
		t.Errorf("Scale changed to %v", got.Scale)
	}
}

func TestCenterDiagram(t *testing.T) {
	tests := []struct {
		name      string
		scale     float64
		container Size
		bounds    Size
		wantX     float64
		wantY     float64
	}{
		{"fits both axes", 1, Size{800, 600}, Size{400, 300}, 200, 150},
		{"too wide", 1, Size{800, 600}, Size{1000, 300}, 0, 150},
		{"too tall", 2, Size{800, 600}, Size{100, 400}, 300, 0},
		{"exact fit aligns to origin", 1, Size{800, 600}, Size{800, 600}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterDiagram(Transform{X: 55, Y: 66, Scale: tt.scale}, tt.container, tt.bounds)
			if got.X != tt.wantX || got.Y != tt.wantY {
				t.Errorf("got (%v,%v), want (%v,%v)", got.X, got.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDistanceAndMidpoint(t *testing.T) {
	a, b := Point{X: 100, Y: 100}, Point{X: 200, Y: 100}
	if d := Distance(a, b); d != 100 {
		t.Errorf("Distance = %v, want 100", d)
	}
	if m := Midpoint(a, b); m != (Point{X: 150, Y: 100}) {
		t.Errorf("Midpoint = %v", m)
	}
}

func TestTransformCSS(t *testing.T) {
	got := Transform{X: 12.5, Y: -3, Scale: 1.2}.CSS()
	want := "translate(12.5px, -3px) scale(1.2)"
	if got != want {
		t.Errorf("CSS() = %q, want %q", got, want)
	}
}
