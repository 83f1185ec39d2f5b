package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/talemap/pkg/view"
	"github.com/recera/talemap/pkg/viewport"
)

const (
	panStepX = 4
	panStepY = 2
	// wheelDelta mimics one browser wheel notch, a 10% zoom.
	wheelDelta = 100
)

// handleMenuKeys handles keyboard input on the story type menu
func (m *Model) handleMenuKeys(msg tea.KeyMsg) tea.Cmd {
	if m.busy {
		return nil
	}
	types := m.deps.StoryTypes
	switch {
	case key.Matches(msg, DefaultKeyMap.Up), key.Matches(msg, DefaultKeyMap.PanUp):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, DefaultKeyMap.Down), key.Matches(msg, DefaultKeyMap.PanDown):
		if m.selected < len(types)-1 {
			m.selected++
		}
	case key.Matches(msg, DefaultKeyMap.Pick):
		i := int(msg.Runes[0] - '1')
		if i < len(types) {
			m.selected = i
			m.busy = true
			return m.start(types[i])
		}
	case key.Matches(msg, DefaultKeyMap.Enter):
		if m.selected < len(types) {
			m.busy = true
			return m.start(types[m.selected])
		}
	}
	return nil
}

// handleGameKeys handles keyboard input on the game screen
func (m *Model) handleGameKeys(msg tea.KeyMsg) tea.Cmd {
	e := m.deps.Engine
	switch {
	case key.Matches(msg, DefaultKeyMap.ZoomIn):
		e.ZoomIn()
	case key.Matches(msg, DefaultKeyMap.ZoomOut):
		e.ZoomOut()
	case key.Matches(msg, DefaultKeyMap.ZoomZero):
		e.ZoomReset()
	case key.Matches(msg, DefaultKeyMap.Focus):
		if m.page.State != nil {
			e.Focus(m.page.State.Scene.CurrentNodeID)
		}
	case key.Matches(msg, DefaultKeyMap.PanUp):
		m.nudge(0, panStepY)
	case key.Matches(msg, DefaultKeyMap.PanDown):
		m.nudge(0, -panStepY)
	case key.Matches(msg, DefaultKeyMap.PanLeft):
		m.nudge(panStepX, 0)
	case key.Matches(msg, DefaultKeyMap.PanRight):
		m.nudge(-panStepX, 0)
	case key.Matches(msg, DefaultKeyMap.Theme):
		m.deps.Theme.Toggle()
		m.refreshHistory()
	case key.Matches(msg, DefaultKeyMap.New):
		return m.reset()
	case key.Matches(msg, DefaultKeyMap.PageUp):
		m.history.SetYOffset(m.history.YOffset - m.history.Height/2)
	case key.Matches(msg, DefaultKeyMap.PageDown):
		m.history.SetYOffset(m.history.YOffset + m.history.Height/2)
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.selected < len(choiceButtons(m.choices))-1 {
			m.selected++
		}
	case key.Matches(msg, DefaultKeyMap.Pick):
		return m.pick(int(msg.Runes[0] - '1'))
	case key.Matches(msg, DefaultKeyMap.Enter):
		return m.pick(m.selected)
	}
	return nil
}

func (m *Model) pick(i int) tea.Cmd {
	buttons := choiceButtons(m.choices)
	if m.busy || i < 0 || i >= len(buttons) || buttons[i].Disabled() {
		return nil
	}
	m.selected = i
	m.busy = true
	m.errorMessage = ""
	return m.choose(buttons[i].TextContent())
}

// nudge pans the map by one keyboard step, as a short drag from the pane
// center.
func (m *Model) nudge(dx, dy float64) {
	e := m.deps.Engine
	from := viewport.Point{X: float64(m.layout.mapW) / 2, Y: float64(m.layout.mapH) / 2}
	if !e.BeginPointerPan(from) {
		return
	}
	e.UpdatePointerPan(viewport.Point{X: from.X + dx, Y: from.Y + dy})
	e.EndPointerPan()
}

// handleMouse maps drags and the wheel inside the map pane onto the engine.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	e := m.deps.Engine
	p, inside := m.mapLocal(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if inside {
				m.dragging = e.BeginPointerPan(p)
			}
		case tea.MouseButtonWheelUp:
			if inside {
				e.WheelZoom(p, -wheelDelta)
			}
		case tea.MouseButtonWheelDown:
			if inside {
				e.WheelZoom(p, wheelDelta)
			}
		}
	case tea.MouseActionMotion:
		if m.dragging {
			e.UpdatePointerPan(p)
		}
	case tea.MouseActionRelease:
		if m.dragging {
			e.EndPointerPan()
			m.dragging = false
		}
	}
}

func (m *Model) mapLocal(x, y int) (viewport.Point, bool) {
	l := m.layout
	lx, ly := x-l.mapX, y-l.mapY
	inside := lx >= 0 && ly >= 0 && lx < l.mapW && ly < l.mapH
	return viewport.Point{X: float64(lx), Y: float64(ly)}, inside
}

func choiceButtons(n *view.Node) []*view.Node {
	if n == nil {
		return nil
	}
	return n.Find(view.ByTag("button"))
}
