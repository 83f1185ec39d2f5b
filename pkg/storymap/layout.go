package storymap

// LayoutOptions sizes the boxes and gaps of a layered layout. Units are up
// to the caller (pixels for the browser, cells for the terminal).
type LayoutOptions struct {
	NodeWidth  float64 // default 24
	NodeHeight float64 // default 3
	ColumnGap  float64 // default 4
	RowGap     float64 // default 2
}

func (o *LayoutOptions) withDefaults() LayoutOptions {
	d := LayoutOptions{NodeWidth: 24, NodeHeight: 3, ColumnGap: 4, RowGap: 2}
	if o == nil {
		return d
	}
	if o.NodeWidth > 0 {
		d.NodeWidth = o.NodeWidth
	}
	if o.NodeHeight > 0 {
		d.NodeHeight = o.NodeHeight
	}
	if o.ColumnGap > 0 {
		d.ColumnGap = o.ColumnGap
	}
	if o.RowGap > 0 {
		d.RowGap = o.RowGap
	}
	return d
}

// PlacedNode is a node with its box. X, Y is the box center.
type PlacedNode struct {
	Node
	Layer int
	X, Y  float64
	W, H  float64
}

// Left returns the x of the box's left edge.
func (p PlacedNode) Left() float64 { return p.X - p.W/2 }

// Top returns the y of the box's top edge.
func (p PlacedNode) Top() float64 { return p.Y - p.H/2 }

// Placed is a laid out map.
type Placed struct {
	Nodes  []PlacedNode
	Edges  []Edge
	Width  float64
	Height float64

	index map[string]int
}

// Offset returns the center of node id.
func (p *Placed) Offset(id string) (x, y float64, ok bool) {
	if p == nil {
		return 0, 0, false
	}
	i, ok := p.index[id]
	if !ok {
		return 0, 0, false
	}
	n := p.Nodes[i]
	return n.X, n.Y, true
}

// Node returns the placed node id.
func (p *Placed) Node(id string) (PlacedNode, bool) {
	if p == nil {
		return PlacedNode{}, false
	}
	i, ok := p.index[id]
	if !ok {
		return PlacedNode{}, false
	}
	return p.Nodes[i], true
}

// Layout arranges the map top-down: a node's layer is its breadth-first
// depth from the roots (nodes without incoming edges). Nodes that cannot be
// reached are appended as a final layer. Within a layer nodes keep payload
// order, and every layer is centered on the widest one.
func Layout(m *Map, opts *LayoutOptions) (*Placed, error) {
	if m == nil || len(m.Nodes) == 0 {
		return nil, ErrEmptyMap
	}
	o := opts.withDefaults()

	order := make(map[string]int, len(m.Nodes))
	for i, n := range m.Nodes {
		if _, dup := order[n.ID]; !dup {
			order[n.ID] = i
		}
	}

	out := make(map[string][]string)
	incoming := make(map[string]int)
	for _, e := range m.Edges {
		if _, ok := order[e.From]; !ok {
			continue
		}
		if _, ok := order[e.To]; !ok {
			continue
		}
		out[e.From] = append(out[e.From], e.To)
		incoming[e.To]++
	}

	depth := make(map[string]int, len(order))
	var queue []string
	for _, n := range m.Nodes {
		if _, seen := depth[n.ID]; seen {
			continue
		}
		if incoming[n.ID] == 0 {
			depth[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 {
		// Every node sits on a cycle; start from the first one.
		depth[m.Nodes[0].ID] = 0
		queue = append(queue, m.Nodes[0].ID)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range out[id] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[id] + 1
			queue = append(queue, next)
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	var layers [][]Node
	seen := make(map[string]bool, len(order))
	for _, n := range m.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		d, ok := depth[n.ID]
		if !ok {
			d = maxDepth + 1
		}
		for len(layers) <= d {
			layers = append(layers, nil)
		}
		layers[d] = append(layers[d], n)
	}

	widest := 0
	for _, l := range layers {
		if len(l) > widest {
			widest = len(l)
		}
	}
	layerWidth := func(n int) float64 {
		if n == 0 {
			return 0
		}
		return float64(n)*o.NodeWidth + float64(n-1)*o.ColumnGap
	}

	p := &Placed{
		Edges: m.Edges,
		index: make(map[string]int, len(order)),
	}
	p.Width = layerWidth(widest)
	y := 0.0
	for li, l := range layers {
		if len(l) == 0 {
			continue
		}
		x := (p.Width - layerWidth(len(l))) / 2
		for _, n := range l {
			p.index[n.ID] = len(p.Nodes)
			p.Nodes = append(p.Nodes, PlacedNode{
				Node:  n,
				Layer: li,
				X:     x + o.NodeWidth/2,
				Y:     y + o.NodeHeight/2,
				W:     o.NodeWidth,
				H:     o.NodeHeight,
			})
			x += o.NodeWidth + o.ColumnGap
		}
		y += o.NodeHeight + o.RowGap
	}
	p.Height = y - o.RowGap
	return p, nil
}
