//go:build js && wasm

package dom

import (
	"syscall/js"

	"github.com/recera/talemap/pkg/viewport"
)

// Bindings holds the listeners attached by Bind.
type Bindings struct {
	release []func()
}

// Release removes every listener.
func (b *Bindings) Release() {
	for _, fn := range b.release {
		fn()
	}
	b.release = nil
}

func (b *Bindings) on(target js.Value, event string, opts map[string]interface{}, h func(ev js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) > 0 {
			h(args[0])
		}
		return nil
	})
	if opts != nil {
		target.Call("addEventListener", event, fn, opts)
	} else {
		target.Call("addEventListener", event, fn)
	}
	b.release = append(b.release, func() {
		target.Call("removeEventListener", event, fn)
		fn.Release()
	})
}

func touches(d *Diagram, ev js.Value) []viewport.Point {
	list := ev.Get("touches")
	n := list.Length()
	pts := make([]viewport.Point, 0, n)
	for i := 0; i < n; i++ {
		t := list.Index(i)
		pts = append(pts, d.Local(t.Get("clientX").Float(), t.Get("clientY").Float()))
	}
	return pts
}

// Bind wires the zoom buttons, mouse pan, wheel zoom, touch gestures and
// window resize to e. Listeners that call preventDefault are registered
// non-passive.
func Bind(e *viewport.Engine, d *Diagram) (*Bindings, error) {
	b := &Bindings{}
	buttons := []struct {
		id string
		fn func()
	}{
		{ZoomInID, e.ZoomIn},
		{ZoomOutID, e.ZoomOut},
		{ZoomResetID, e.ZoomReset},
	}
	for _, btn := range buttons {
		el, err := byID(btn.id)
		if err != nil {
			b.Release()
			return nil, err
		}
		fn := btn.fn
		b.on(el, "click", nil, func(ev js.Value) {
			ev.Call("stopPropagation")
			fn()
		})
	}

	container := d.container
	classes := container.Get("classList")
	nonPassive := map[string]interface{}{"passive": false}
	endPan := func(js.Value) {
		e.EndPointerPan()
		classes.Call("remove", GrabbingClass)
	}

	b.on(container, "mousedown", nil, func(ev js.Value) {
		if ev.Get("button").Int() != 0 {
			return
		}
		if e.BeginPointerPan(d.Local(ev.Get("clientX").Float(), ev.Get("clientY").Float())) {
			classes.Call("add", GrabbingClass)
		}
		ev.Call("preventDefault")
	})
	b.on(container, "mousemove", nil, func(ev js.Value) {
		if !e.Panning() {
			return
		}
		e.UpdatePointerPan(d.Local(ev.Get("clientX").Float(), ev.Get("clientY").Float()))
	})
	b.on(container, "mouseup", nil, endPan)
	b.on(container, "mouseleave", nil, endPan)

	b.on(container, "wheel", nonPassive, func(ev js.Value) {
		ev.Call("preventDefault")
		e.WheelZoom(d.Local(ev.Get("clientX").Float(), ev.Get("clientY").Float()), ev.Get("deltaY").Float())
	})

	b.on(container, "touchstart", nonPassive, func(ev js.Value) {
		pts := touches(d, ev)
		if len(pts) > 0 {
			ev.Call("preventDefault")
		}
		e.TouchStart(pts)
		if e.Panning() {
			classes.Call("add", GrabbingClass)
		}
	})
	b.on(container, "touchmove", nonPassive, func(ev js.Value) {
		pts := touches(d, ev)
		if len(pts) > 0 {
			ev.Call("preventDefault")
		}
		e.TouchMove(pts)
	})
	b.on(container, "touchend", nil, func(ev js.Value) {
		remaining := ev.Get("touches").Length()
		e.TouchEnd(remaining)
		if remaining < 2 {
			classes.Call("remove", GrabbingClass)
		}
	})

	b.on(js.Global().Get("window"), "resize", nil, func(js.Value) {
		e.OnResize()
	})
	return b, nil
}
