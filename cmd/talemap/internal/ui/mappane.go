package ui

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/recera/talemap/pkg/storymap"
	"github.com/recera/talemap/pkg/viewport"
)

// MapPane draws a story map on a character grid. It is the terminal's map
// renderer and the engine's view of the diagram, in cell units.
type MapPane struct {
	mu     sync.RWMutex
	opts   storymap.LayoutOptions
	placed *storymap.Placed
	size   viewport.Size
}

// NewMapPane creates an empty pane. opts may be nil.
func NewMapPane(opts *storymap.LayoutOptions) *MapPane {
	p := &MapPane{}
	if opts != nil {
		p.opts = *opts
	}
	return p
}

// SetSize sets the visible grid size in cells.
func (p *MapPane) SetSize(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = viewport.Size{W: float64(max(w, 0)), H: float64(max(h, 0))}
}

// Clear forgets the current map.
func (p *MapPane) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = nil
}

// Render lays out m. The definition is not needed on a terminal.
func (p *MapPane) Render(_ string, m storymap.Map) error {
	placed, err := storymap.Layout(&m, &p.opts)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.placed = placed
	p.mu.Unlock()
	return nil
}

// Ready implements viewport.Diagram.
func (p *MapPane) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.placed != nil && p.size.W > 0 && p.size.H > 0
}

// Container implements viewport.Diagram.
func (p *MapPane) Container() viewport.Size {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// NodeOffset implements viewport.Diagram.
func (p *MapPane) NodeOffset(id string) (viewport.Point, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	x, y, ok := p.placed.Offset(id)
	return viewport.Point{X: x, Y: y}, ok
}

// Bounds implements viewport.Diagram.
func (p *MapPane) Bounds() viewport.Size {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.placed == nil {
		return viewport.Size{}
	}
	return viewport.Size{W: p.placed.Width, H: p.placed.Height}
}

type cellKind uint8

const (
	cellBlank cellKind = iota
	cellEdge
	cellNode
	cellCurrent
)

type cell struct {
	r    rune
	kind cellKind
	// cont marks the second column of a wide rune.
	cont bool
}

// Draw renders the map under transform t. current is highlighted.
func (p *MapPane) Draw(t viewport.Transform, current string, pal Palette) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	w, h := int(p.size.W), int(p.size.H)
	if w <= 0 || h <= 0 {
		return ""
	}
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	put := func(x, y int, r rune, k cellKind) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		row := grid[y]
		if row[x].cont && x > 0 {
			row[x-1] = cell{r: ' ', kind: row[x-1].kind}
		}
		if x+1 < w && row[x+1].cont {
			row[x+1] = cell{r: ' ', kind: row[x+1].kind}
		}
		row[x] = cell{r: r, kind: k}
	}
	project := func(x, y float64) (int, int) {
		vx, vy := x*t.Scale+t.X, y*t.Scale+t.Y
		return int(math.Round(vx)), int(math.Round(vy))
	}

	if p.placed == nil {
		return strings.TrimRight(flatten(grid, pal), "\n")
	}

	for _, e := range p.placed.Edges {
		from, ok1 := p.placed.Node(e.From)
		to, ok2 := p.placed.Node(e.To)
		if !ok1 || !ok2 {
			continue
		}
		x0, y0 := project(from.X, from.Y+from.H/2)
		x1, y1 := project(to.X, to.Y-to.H/2)
		steps := max(abs(x1-x0), abs(y1-y0))
		for i := 0; i <= steps; i++ {
			x, y := x0, y0
			if steps > 0 {
				x = x0 + (x1-x0)*i/steps
				y = y0 + (y1-y0)*i/steps
			}
			if y >= 0 && y < h && x >= 0 && x < w && grid[y][x].kind == cellBlank {
				put(x, y, '·', cellEdge)
			}
		}
		head := 'v'
		if y1 < y0 {
			head = '^'
		}
		put(x1, y1, head, cellEdge)
	}

	for _, n := range p.placed.Nodes {
		kind := cellNode
		if n.ID == current {
			kind = cellCurrent
		}
		cx, cy := project(n.X, n.Y)
		boxW := max(int(math.Round(n.W*t.Scale)), 3)
		text := "[" + runewidth.Truncate(n.Label, boxW-2, "…") + "]"
		x := cx - runewidth.StringWidth(text)/2
		for _, r := range text {
			rw := runewidth.RuneWidth(r)
			if rw == 0 {
				continue
			}
			switch {
			case rw == 1:
				put(x, cy, r, kind)
			case x >= 0 && x+1 < w && cy >= 0 && cy < h:
				put(x, cy, r, kind)
				put(x+1, cy, ' ', kind)
				grid[cy][x+1].cont = true
			default:
				put(x, cy, ' ', kind)
				put(x+1, cy, ' ', kind)
			}
			x += rw
		}
	}
	return strings.TrimRight(flatten(grid, pal), "\n")
}

func flatten(grid [][]cell, pal Palette) string {
	styleFor := func(k cellKind) *lipgloss.Style {
		switch k {
		case cellEdge:
			return &pal.Edge
		case cellNode:
			return &pal.Node
		case cellCurrent:
			return &pal.Current
		}
		return nil
	}

	var b strings.Builder
	for _, row := range grid {
		var run strings.Builder
		kind := cellBlank
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if s := styleFor(kind); s != nil {
				b.WriteString(s.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for _, c := range row {
			if c.cont {
				continue
			}
			if c.kind != kind {
				flush()
				kind = c.kind
			}
			run.WriteRune(c.r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
