//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"
	"time"

	"github.com/recera/talemap/pkg/viewport"
)

// Clock schedules callbacks with window.setTimeout so they run on the page's
// event loop.
type Clock struct{}

type timeout struct {
	mu    sync.Mutex
	id    js.Value
	fn    js.Func
	fired bool
}

// AfterFunc implements viewport.Clock.
func (Clock) AfterFunc(d time.Duration, f func()) viewport.Timer {
	t := &timeout{}
	t.fn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		t.mu.Lock()
		if t.fired {
			t.mu.Unlock()
			return nil
		}
		t.fired = true
		t.mu.Unlock()
		t.fn.Release()
		f()
		return nil
	})
	t.id = js.Global().Call("setTimeout", t.fn, d.Milliseconds())
	return t
}

// Stop implements viewport.Timer.
func (t *timeout) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return false
	}
	t.fired = true
	js.Global().Call("clearTimeout", t.id)
	t.fn.Release()
	return true
}
