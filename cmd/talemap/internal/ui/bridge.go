package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/talemap/pkg/app"
	"github.com/recera/talemap/pkg/view"
	"github.com/recera/talemap/pkg/viewport"
)

// Messages posted by the controller and the viewport engine.
type (
	menuMsg      struct{ status *view.Node }
	gameMsg      struct{ page app.Page }
	choicesMsg   struct{ choices *view.Node }
	reloadMsg    struct{}
	transformMsg struct{}
)

// Bridge turns controller and engine callbacks, which arrive on other
// goroutines, into Bubble Tea messages. It implements app.View and
// viewport.Surface.
type Bridge struct {
	ch      chan tea.Msg
	pending atomic.Bool
}

// NewBridge creates a Bridge.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 64)}
}

// Wait returns a command delivering the next posted message. The model
// re-arms it after each one.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg { return <-b.ch }
}

// ShowMenu implements app.View.
func (b *Bridge) ShowMenu(status *view.Node) { b.ch <- menuMsg{status: status} }

// ShowGame implements app.View.
func (b *Bridge) ShowGame(p app.Page) { b.ch <- gameMsg{page: p} }

// ShowChoices implements app.View.
func (b *Bridge) ShowChoices(n *view.Node) { b.ch <- choicesMsg{choices: n} }

// Reload implements app.View.
func (b *Bridge) Reload() { b.ch <- reloadMsg{} }

// Apply implements viewport.Surface. It runs under the engine's lock, so it
// never blocks: at most one redraw request is queued and the model reads
// the transform itself when drawing.
func (b *Bridge) Apply(viewport.Transform) {
	if !b.pending.CompareAndSwap(false, true) {
		return
	}
	select {
	case b.ch <- transformMsg{}:
	default:
		b.pending.Store(false)
	}
}

func (b *Bridge) drawn() { b.pending.Store(false) }
