//go:build js && wasm

package dom

import (
	"fmt"
	"strconv"
	"syscall/js"

	"github.com/recera/talemap/pkg/storymap"
	"github.com/recera/talemap/pkg/viewport"
)

func byID(id string) (js.Value, error) {
	el := js.Global().Get("document").Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return js.Value{}, fmt.Errorf("element #%s not found", id)
	}
	return el, nil
}

// Surface writes transforms to the pan target's inline style.
type Surface struct {
	el js.Value
}

// NewSurface binds to #zoom-pan-container.
func NewSurface() (*Surface, error) {
	el, err := byID(PanID)
	if err != nil {
		return nil, err
	}
	return &Surface{el: el}, nil
}

// Apply implements viewport.Surface.
func (s *Surface) Apply(t viewport.Transform) {
	s.el.Get("style").Set("transform", t.CSS())
}

// Diagram reads geometry from the page and the Mermaid SVG.
type Diagram struct {
	container js.Value
	pan       js.Value
}

// NewDiagram binds to the story map container and pan target.
func NewDiagram() (*Diagram, error) {
	container, err := byID(ContainerID)
	if err != nil {
		return nil, err
	}
	pan, err := byID(PanID)
	if err != nil {
		return nil, err
	}
	return &Diagram{container: container, pan: pan}, nil
}

func (d *Diagram) svg() js.Value {
	return d.pan.Call("querySelector", "svg")
}

// Ready implements viewport.Diagram.
func (d *Diagram) Ready() bool {
	return d.svg().Truthy()
}

// Container implements viewport.Diagram. The bounding rect is used because
// it reports the laid out size on mobile browsers.
func (d *Diagram) Container() viewport.Size {
	r := d.container.Call("getBoundingClientRect")
	return viewport.Size{W: r.Get("width").Float(), H: r.Get("height").Float()}
}

// NodeOffset implements viewport.Diagram using the translate() Mermaid puts
// on each node group.
func (d *Diagram) NodeOffset(id string) (viewport.Point, bool) {
	svg := d.svg()
	if !svg.Truthy() {
		return viewport.Point{}, false
	}
	el := svg.Call("querySelector", "[data-id="+strconv.Quote(id)+"]")
	if !el.Truthy() {
		return viewport.Point{}, false
	}
	attr := el.Call("getAttribute", "transform")
	if !attr.Truthy() {
		return viewport.Point{}, false
	}
	x, y, ok := storymap.ParseTranslate(attr.String())
	if !ok {
		return viewport.Point{}, false
	}
	return viewport.Point{X: x, Y: y}, true
}

// Bounds implements viewport.Diagram.
func (d *Diagram) Bounds() viewport.Size {
	svg := d.svg()
	if !svg.Truthy() {
		return viewport.Size{}
	}
	box := svg.Call("getBBox")
	return viewport.Size{W: box.Get("width").Float(), H: box.Get("height").Float()}
}

// Local converts client coordinates to container-local ones.
func (d *Diagram) Local(clientX, clientY float64) viewport.Point {
	r := d.container.Call("getBoundingClientRect")
	return viewport.Point{X: clientX - r.Get("left").Float(), Y: clientY - r.Get("top").Float()}
}
