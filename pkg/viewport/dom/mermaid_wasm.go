//go:build js && wasm

package dom

import (
	"errors"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/storymap"
)

// Renderer draws story maps with the page's global mermaid object.
type Renderer struct {
	// OnPainted runs once Mermaid has inserted the SVG, typically
	// Engine.Painted.
	OnPainted func()

	theme func() string
	log   logrus.FieldLogger
}

// NewRenderer creates a Renderer. theme returns the Mermaid theme name to
// render with ("light" pages use "default").
func NewRenderer(theme func() string, log logrus.FieldLogger) *Renderer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Renderer{theme: theme, log: log}
}

// Render implements app.MapRenderer. The SVG appears asynchronously; the
// engine's focus retry waits for it.
func (r *Renderer) Render(definition string, _ storymap.Map) error {
	mermaid := js.Global().Get("mermaid")
	if !mermaid.Truthy() {
		return errors.New("mermaid is not loaded")
	}
	el := js.Global().Get("document").Call("querySelector", "#"+PanID+" .mermaid")
	if !el.Truthy() {
		return errors.New("story map element not found")
	}

	if r.theme != nil {
		mermaid.Call("initialize", map[string]interface{}{"startOnLoad": false, "theme": r.theme()})
	}
	el.Set("textContent", definition)
	el.Call("removeAttribute", "data-processed")

	var done, failed js.Func
	release := func() {
		done.Release()
		failed.Release()
	}
	done = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		release()
		if r.OnPainted != nil {
			r.OnPainted()
		}
		return nil
	})
	failed = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		defer release()
		msg := "unknown error"
		if len(args) > 0 && args[0].Truthy() {
			msg = args[0].Call("toString").String()
		}
		r.log.WithField("error", msg).Error("mermaid rendering failed")
		return nil
	})
	mermaid.Call("run", map[string]interface{}{"nodes": []interface{}{el}}).Call("then", done, failed)
	return nil
}
