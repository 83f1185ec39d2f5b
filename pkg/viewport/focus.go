package viewport

// Focus centers node id in the viewport, or the whole diagram when id is
// empty or unknown. A diagram that has not been painted yet is polled again
// every FocusRetryDelay, at most FocusRetries times.
func (e *Engine) Focus(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" {
		e.target = id
	}
	e.focus(id, 0)
}

// focus must be called with e.mu held.
func (e *Engine) focus(id string, attempt int) {
	e.cancelRetry()

	if e.diagram == nil || !e.diagram.Ready() {
		e.waiting = &id
		if attempt >= e.opts.FocusRetries {
			e.log.WithField("node", id).Warn("story map not ready, focusing once it is painted")
			return
		}
		gen := e.gen
		e.retry = e.opts.Clock.AfterFunc(e.opts.FocusRetryDelay, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.gen != gen {
				return
			}
			e.retry = nil
			e.focus(id, attempt+1)
		})
		return
	}

	e.waiting = nil
	container := e.diagram.Container()
	if id != "" {
		if p, ok := e.diagram.NodeOffset(id); ok {
			e.t = CenterOn(e.t, container, p, e.opts.VerticalAnchor)
			e.apply()
			return
		}
		e.log.WithField("node", id).Warn("node not found in story map, centering map instead")
	}

	e.t = CenterDiagram(e.t, container, e.diagram.Bounds())
	e.apply()
}

// cancelRetry must be called with e.mu held.
func (e *Engine) cancelRetry() {
	e.gen++
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
}
