package viewport

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Surface receives every new transform. Implementations must not call back
// into the Engine.
type Surface interface {
	Apply(t Transform)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(t Transform)

// Apply implements Surface.
func (f SurfaceFunc) Apply(t Transform) { f(t) }

// Diagram is the rendered story map as seen by the engine.
type Diagram interface {
	// Ready reports whether the diagram has been painted and can be queried.
	Ready() bool
	// Container is the size of the viewport the diagram is shown in.
	Container() Size
	// NodeOffset returns the node's position in diagram space.
	NodeOffset(id string) (Point, bool)
	// Bounds is the unscaled size of the whole diagram.
	Bounds() Size
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	MinScale         float64
	MaxScale         float64
	Step             float64
	WheelSensitivity float64
	VerticalAnchor   float64

	ResizeDebounce  time.Duration // default 250ms
	FocusRetryDelay time.Duration // default 100ms
	FocusRetries    int           // default 10

	Clock  Clock
	Logger logrus.FieldLogger
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinScale:         DefaultMinScale,
		MaxScale:         DefaultMaxScale,
		Step:             DefaultStep,
		WheelSensitivity: DefaultWheelSensitivity,
		VerticalAnchor:   DefaultVerticalAnchor,
		ResizeDebounce:   250 * time.Millisecond,
		FocusRetryDelay:  100 * time.Millisecond,
		FocusRetries:     10,
		Clock:            SystemClock{},
		Logger:           logrus.StandardLogger(),
	}
	if o == nil {
		return d
	}
	if o.MinScale > 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		d.MaxScale = o.MaxScale
	}
	if d.MaxScale < d.MinScale {
		d.MaxScale = d.MinScale
	}
	if o.Step > 0 {
		d.Step = o.Step
	}
	if o.WheelSensitivity > 0 {
		d.WheelSensitivity = o.WheelSensitivity
	}
	if o.VerticalAnchor > 0 {
		d.VerticalAnchor = o.VerticalAnchor
	}
	if o.ResizeDebounce > 0 {
		d.ResizeDebounce = o.ResizeDebounce
	}
	if o.FocusRetryDelay > 0 {
		d.FocusRetryDelay = o.FocusRetryDelay
	}
	if o.FocusRetries > 0 {
		d.FocusRetries = o.FocusRetries
	}
	if o.Clock != nil {
		d.Clock = o.Clock
	}
	if o.Logger != nil {
		d.Logger = o.Logger
	}
	return d
}

type panSession struct {
	anchor Point
}

type pinchSession struct {
	distance float64
}

// Engine reconciles button, mouse, wheel and touch input plus focus
// requests into one Transform.
type Engine struct {
	mu      sync.Mutex
	opts    Options
	lim     Limits
	t       Transform
	surface Surface
	diagram Diagram

	pan   *panSession
	pinch *pinchSession

	// target is the last node explicitly focused; resize refocuses it.
	target string

	// waiting holds the focus request made before the diagram was ready;
	// Painted replays it.
	waiting *string

	retry  Timer
	gen    uint64
	resize *Debouncer
	log    logrus.FieldLogger
}

// New creates an engine at the identity transform. surface and diagram may
// be nil and set later.
func New(surface Surface, diagram Diagram, opts *Options) *Engine {
	o := opts.withDefaults()
	e := &Engine{
		opts:    o,
		lim:     Limits{Min: o.MinScale, Max: o.MaxScale},
		t:       Identity,
		surface: surface,
		diagram: diagram,
		log:     o.Logger.WithField("component", "viewport"),
	}
	e.resize = NewDebouncer(o.Clock, o.ResizeDebounce, e.refocus)
	return e
}

// SetSurface replaces the surface transforms are written to.
func (e *Engine) SetSurface(s Surface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.surface = s
}

// SetDiagram replaces the diagram used by Focus.
func (e *Engine) SetDiagram(d Diagram) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.diagram = d
}

// Transform returns the current transform.
func (e *Engine) Transform() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t
}

// Limits returns the scale limits in use.
func (e *Engine) Limits() Limits {
	return e.lim
}

// Panning reports whether a pointer-pan session is active.
func (e *Engine) Panning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pan != nil
}

// Pinching reports whether a pinch session is active.
func (e *Engine) Pinching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pinch != nil
}

// Target returns the node that resize events refocus.
func (e *Engine) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// SetTarget records the node resize events refocus without moving the view.
func (e *Engine) SetTarget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = id
}

// Reset returns to the identity transform and drops all gesture state and
// pending focus retries. Called whenever the diagram is rendered again.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelRetry()
	e.waiting = nil
	e.pan = nil
	e.pinch = nil
	e.t = Identity
	e.apply()
}

// ZoomIn steps the scale up.
func (e *Engine) ZoomIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.t = Step(e.t, e.opts.Step, e.lim)
	e.apply()
}

// ZoomOut steps the scale down.
func (e *Engine) ZoomOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.t = Step(e.t, -e.opts.Step, e.lim)
	e.apply()
}

// ZoomReset sets the scale to 1 and centers the whole diagram.
func (e *Engine) ZoomReset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.t.Scale = e.lim.Clamp(1)
	e.focus("", 0)
}

// WheelZoom zooms around the cursor. Positive deltaY zooms out.
func (e *Engine) WheelZoom(cursor Point, deltaY float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	factor := 1 - deltaY*e.opts.WheelSensitivity
	e.t = ZoomAt(e.t, cursor, factor, e.lim)
	e.apply()
}

// BeginPointerPan starts a drag at p. It is refused while a pinch is active.
func (e *Engine) BeginPointerPan(p Point) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pinch != nil {
		return false
	}
	e.pan = &panSession{anchor: Point{X: p.X - e.t.X, Y: p.Y - e.t.Y}}
	return true
}

// UpdatePointerPan moves the view with the pointer. No-op without a session.
func (e *Engine) UpdatePointerPan(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pan == nil {
		return
	}
	e.t = PanTo(e.t, e.pan.anchor, p)
	e.apply()
}

// EndPointerPan ends the drag. Safe to call at any time.
func (e *Engine) EndPointerPan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan = nil
}

// BeginPinch starts a two-finger zoom and cancels any pointer pan.
func (e *Engine) BeginPinch(a, b Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan = nil
	e.pinch = &pinchSession{distance: Distance(a, b)}
}

// UpdatePinch zooms by the ratio of the current contact distance to the
// previous one, anchored at the contacts' midpoint.
func (e *Engine) UpdatePinch(a, b Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pinch == nil {
		return
	}
	cur := Distance(a, b)
	prev := e.pinch.distance
	e.pinch.distance = cur
	if prev <= 0 {
		return
	}
	e.t = ZoomAt(e.t, Midpoint(a, b), cur/prev, e.lim)
	e.apply()
}

// EndPinch ends the pinch. Safe to call at any time.
func (e *Engine) EndPinch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pinch = nil
}

// TouchStart maps a touch-start with the given active contacts onto a pan
// (one contact) or a pinch (two contacts).
func (e *Engine) TouchStart(contacts []Point) {
	switch len(contacts) {
	case 1:
		e.BeginPointerPan(contacts[0])
	case 2:
		e.BeginPinch(contacts[0], contacts[1])
	}
}

// TouchMove forwards a touch-move to the active session.
func (e *Engine) TouchMove(contacts []Point) {
	switch len(contacts) {
	case 1:
		e.UpdatePointerPan(contacts[0])
	case 2:
		e.UpdatePinch(contacts[0], contacts[1])
	}
}

// TouchEnd clears both sessions once fewer than two contacts remain.
func (e *Engine) TouchEnd(remaining int) {
	if remaining >= 2 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan = nil
	e.pinch = nil
}

// OnResize refocuses the target node once resize events stop arriving.
func (e *Engine) OnResize() {
	e.resize.Trigger()
}

// Painted tells the engine the diagram has finished drawing. A focus
// request still waiting for the diagram, including one whose retries ran
// out, is served now.
func (e *Engine) Painted() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.waiting == nil {
		return
	}
	e.focus(*e.waiting, 0)
}

// Close cancels pending deferred work.
func (e *Engine) Close() {
	e.resize.Cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelRetry()
}

func (e *Engine) refocus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.target == "" {
		return
	}
	e.focus(e.target, 0)
}

func (e *Engine) apply() {
	if e.surface != nil {
		e.surface.Apply(e.t)
	}
}
