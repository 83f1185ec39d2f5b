// Package dom connects the viewport engine to the browser: a CSS transform
// surface, a Diagram backed by the Mermaid SVG, a Mermaid map renderer, a
// setTimeout clock and the pointer, wheel, touch and resize listeners.
//
// Everything except this file is built only for js/wasm.
package dom

// Element ids of the stock page.
const (
	ContainerID = "story-map-container"
	PanID       = "zoom-pan-container"
	ZoomInID    = "zoom-in-btn"
	ZoomOutID   = "zoom-out-btn"
	ZoomResetID = "zoom-reset-btn"

	// GrabbingClass is set on the container while a pan is in progress.
	GrabbingClass = "grabbing"
)
