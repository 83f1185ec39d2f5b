package viewport

import (
	"sort"
	"sync"
	"time"
)

type manualTimer struct {
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due []*manualTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].seq < due[j].seq
		})
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recordingSurface struct {
	applied []Transform
}

func (s *recordingSurface) Apply(t Transform) {
	s.applied = append(s.applied, t)
}

func (s *recordingSurface) last() (Transform, bool) {
	if len(s.applied) == 0 {
		return Transform{}, false
	}
	return s.applied[len(s.applied)-1], true
}

type stubDiagram struct {
	ready     bool
	container Size
	bounds    Size
	nodes     map[string]Point
}

func (d *stubDiagram) Ready() bool     { return d.ready }
func (d *stubDiagram) Container() Size { return d.container }
func (d *stubDiagram) Bounds() Size    { return d.bounds }

func (d *stubDiagram) NodeOffset(id string) (Point, bool) {
	p, ok := d.nodes[id]
	return p, ok
}
