//go:build js && wasm

package view

import (
	"fmt"
	"strings"
	"syscall/js"
)

// Mounter replaces the content of DOM containers with view trees and owns
// the js.Func handlers it attached, releasing them on the next mount.
type Mounter struct {
	document js.Value
	handlers map[string][]js.Func
}

// NewMounter binds to the global document.
func NewMounter() *Mounter {
	return &Mounter{
		document: js.Global().Get("document"),
		handlers: make(map[string][]js.Func),
	}
}

// Mount renders n into the element with the given id, replacing its
// children. A nil node just clears the container.
func (m *Mounter) Mount(containerID string, n *Node) error {
	parent := m.document.Call("getElementById", containerID)
	if parent.IsNull() || parent.IsUndefined() {
		return fmt.Errorf("element #%s not found", containerID)
	}
	for _, fn := range m.handlers[containerID] {
		fn.Release()
	}
	m.handlers[containerID] = nil

	parent.Set("innerHTML", "")
	if n == nil {
		return nil
	}
	if el := m.create(containerID, n); el.Truthy() {
		parent.Call("appendChild", el)
	}
	return nil
}

func (m *Mounter) create(owner string, n *Node) js.Value {
	switch n.Kind {
	case KindText:
		return m.document.Call("createTextNode", n.Text)

	case KindElement:
		el := m.document.Call("createElement", n.Tag)
		for k, v := range n.Props {
			if isEventProp(k) {
				h, ok := v.(func())
				if !ok {
					continue
				}
				fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
					h()
					return nil
				})
				el.Call("addEventListener", strings.ToLower(k[2:]), fn)
				m.handlers[owner] = append(m.handlers[owner], fn)
				continue
			}
			switch val := v.(type) {
			case bool:
				if val {
					el.Call("setAttribute", k, "")
				}
			case nil:
			default:
				el.Call("setAttribute", k, fmt.Sprintf("%v", val))
			}
		}
		for i := range n.Kids {
			if c := m.create(owner, &n.Kids[i]); c.Truthy() {
				el.Call("appendChild", c)
			}
		}
		return el

	case KindFragment:
		frag := m.document.Call("createDocumentFragment")
		for i := range n.Kids {
			if c := m.create(owner, &n.Kids[i]); c.Truthy() {
				frag.Call("appendChild", c)
			}
		}
		return frag
	}
	return js.Undefined()
}
