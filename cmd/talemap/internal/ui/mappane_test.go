package ui

import (
	"strings"
	"testing"

	"github.com/recera/talemap/pkg/storymap"
	"github.com/recera/talemap/pkg/theme"
	"github.com/recera/talemap/pkg/viewport"
)

func twoNodeMap(startLabel string) storymap.Map {
	return storymap.Map{
		Nodes: []storymap.Node{{ID: "a", Label: startLabel}, {ID: "b", Label: "End"}},
		Edges: []storymap.Edge{{From: "a", To: "b", Label: "go"}},
	}
}

func TestMapPaneAsDiagram(t *testing.T) {
	p := NewMapPane(nil)
	if p.Ready() {
		t.Fatal("empty pane reported ready")
	}
	m := twoNodeMap("Start")
	if err := p.Render("", m); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.Ready() {
		t.Fatal("pane without a size reported ready")
	}
	p.SetSize(60, 20)
	if !p.Ready() {
		t.Fatal("pane not ready after render and resize")
	}
	if got := p.Container(); got != (viewport.Size{W: 60, H: 20}) {
		t.Errorf("Container = %+v", got)
	}

	placed, err := storymap.Layout(&m, nil)
	if err != nil {
		t.Fatal(err)
	}
	x, y, _ := placed.Offset("b")
	got, ok := p.NodeOffset("b")
	if !ok || got != (viewport.Point{X: x, Y: y}) {
		t.Errorf("NodeOffset(b) = %+v, %v; want (%g, %g)", got, ok, x, y)
	}
	if _, ok := p.NodeOffset("zzz"); ok {
		t.Error("unknown node found")
	}
	if b := p.Bounds(); b.W != placed.Width || b.H != placed.Height {
		t.Errorf("Bounds = %+v", b)
	}

	p.Clear()
	if p.Ready() {
		t.Error("cleared pane reported ready")
	}
}

func TestMapPaneRenderRejectsEmptyMap(t *testing.T) {
	if err := NewMapPane(nil).Render("", storymap.Map{}); err == nil {
		t.Fatal("expected error for empty map")
	}
}

func TestMapPaneDraw(t *testing.T) {
	pal := PaletteFor(theme.Light)
	tests := []struct {
		name  string
		label string
		t     viewport.Transform
		want  []string
	}{
		{"identity", "Start", viewport.Identity, []string{"[Start]", "[End]", "v"}},
		{"zoomed out truncates", "Start", viewport.Transform{Scale: 0.2}, []string{"[St…]"}},
		{"wide runes", "灯塔", viewport.Identity, []string{"[灯塔]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMapPane(nil)
			p.SetSize(40, 12)
			if err := p.Render("", twoNodeMap(tt.label)); err != nil {
				t.Fatal(err)
			}
			out := p.Draw(tt.t, "a", pal)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("drawing missing %q:\n%s", want, out)
				}
			}
			if rows := strings.Count(out, "\n") + 1; rows > 12 {
				t.Errorf("drawing has %d rows, pane has 12", rows)
			}
		})
	}
}

func TestMapPaneDrawOffscreen(t *testing.T) {
	p := NewMapPane(nil)
	p.SetSize(20, 5)
	p.Render("", twoNodeMap("Start"))
	out := p.Draw(viewport.Transform{X: -500, Y: -500, Scale: 1}, "a", PaletteFor(theme.Dark))
	if strings.Contains(out, "Start") {
		t.Errorf("offscreen node drawn:\n%s", out)
	}
}
