package viewport

import (
	"sync"
	"time"
)

// Timer is a pending deferred call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Clock schedules deferred calls. Hosts with an event loop (the browser,
// Bubble Tea) provide one that runs f on that loop.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock runs deferred calls on their own goroutine via time.AfterFunc.
type SystemClock struct{}

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer collapses bursts of Trigger calls into one call of fn, fired
// delay after the last Trigger.
type Debouncer struct {
	mu    sync.Mutex
	clock Clock
	delay time.Duration
	fn    func()
	timer Timer
	gen   uint64
}

// NewDebouncer creates a debouncer on the given clock.
func NewDebouncer(clock Clock, delay time.Duration, fn func()) *Debouncer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn}
}

// Trigger restarts the pending delay.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// fire runs fn only for the latest Trigger. A timer that had already fired
// when a newer Trigger arrived is stale and must not clear its successor.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}
