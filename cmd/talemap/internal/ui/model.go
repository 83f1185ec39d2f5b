package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	bubbleview "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/talemap/pkg/app"
	"github.com/recera/talemap/pkg/theme"
	"github.com/recera/talemap/pkg/view"
	"github.com/recera/talemap/pkg/viewport"
)

// Screen is the page currently shown.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenMenu
	ScreenGame
)

// Deps are the collaborators a Model drives.
type Deps struct {
	Controller *app.Controller
	Engine     *viewport.Engine
	Pane       *MapPane
	Theme      *theme.Controller
	Bridge     *Bridge
	StoryTypes []string
}

// Model represents the TUI application state
type Model struct {
	ctx  context.Context
	deps Deps

	// Window dimensions
	width  int
	height int
	layout layout

	screen   Screen
	selected int

	menuStatus *view.Node
	page       app.Page
	choices    *view.Node
	busy       bool

	history bubbleview.Model
	spinner spinner.Model

	dragging bool
	showHelp bool
	quitting bool

	errorMessage string
}

// layout is the screen geometry derived from the window size.
type layout struct {
	left     int // width of the scene column
	mapX     int // map pane origin on screen
	mapY     int
	mapW     int
	mapH     int
	historyH int
}

// Messages
type bootedMsg struct{ resumed bool }
type actionDoneMsg struct{ err error }

// New creates the model.
func New(ctx context.Context, deps Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		deps:    deps,
		screen:  ScreenLoading,
		history: bubbleview.New(0, 0),
		spinner: s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.deps.Bridge.Wait(), m.boot())
}

func (m Model) boot() tea.Cmd {
	ctrl, ctx := m.deps.Controller, m.ctx
	return func() tea.Msg {
		return bootedMsg{resumed: ctrl.Boot(ctx)}
	}
}

func (m Model) start(storyType string) tea.Cmd {
	ctrl, ctx := m.deps.Controller, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: ctrl.Start(ctx, storyType)}
	}
}

func (m Model) choose(text string) tea.Cmd {
	ctrl, ctx := m.deps.Controller, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: ctrl.Choose(ctx, text)}
	}
}

func (m Model) reset() tea.Cmd {
	ctrl, ctx := m.deps.Controller, m.ctx
	return func() tea.Msg {
		ctrl.Reset(ctx)
		return actionDoneMsg{}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		m.deps.Engine.OnResize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) {
			m.quitting = true
			m.deps.Engine.Close()
			return m, tea.Quit
		}
		if key.Matches(msg, DefaultKeyMap.Help) {
			m.showHelp = !m.showHelp
			return m, nil
		}
		var cmd tea.Cmd
		switch m.screen {
		case ScreenMenu:
			cmd = m.handleMenuKeys(msg)
		case ScreenGame:
			cmd = m.handleGameKeys(msg)
		}
		return m, cmd

	case tea.MouseMsg:
		if m.screen == ScreenGame {
			m.handleMouse(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case menuMsg:
		m.screen = ScreenMenu
		m.menuStatus = msg.status
		m.busy = msg.status != nil
		return m, m.deps.Bridge.Wait()

	case gameMsg:
		m.screen = ScreenGame
		m.page = msg.page
		m.choices = msg.page.Choices
		m.busy = false
		m.selected = 0
		m.errorMessage = ""
		m.refreshHistory()
		return m, m.deps.Bridge.Wait()

	case choicesMsg:
		m.choices = msg.choices
		buttons := choiceButtons(msg.choices)
		m.busy = len(buttons) > 0 && buttons[0].Disabled()
		return m, m.deps.Bridge.Wait()

	case reloadMsg:
		m.screen = ScreenMenu
		m.menuStatus = nil
		m.page = app.Page{}
		m.choices = nil
		m.busy = false
		m.selected = 0
		m.deps.Pane.Clear()
		return m, m.deps.Bridge.Wait()

	case transformMsg:
		m.deps.Bridge.drawn()
		return m, m.deps.Bridge.Wait()

	case bootedMsg:
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
		}
		return m, nil
	}
	return m, nil
}

// Screen returns the page currently shown.
func (m Model) Screen() Screen { return m.screen }

func (m *Model) relayout() {
	const titleH, footerH = 1, 1
	l := layout{}
	l.left = max(m.width*2/5, 30)
	if l.left > m.width {
		l.left = m.width
	}
	body := max(m.height-titleH-footerH, 0)
	// The map pane is boxed: one cell of border on every side.
	l.mapX = l.left + 1 + 1
	l.mapY = titleH + 1
	l.mapW = max(m.width-l.left-1-2, 0)
	l.mapH = max(body-2, 0)
	l.historyH = max(body/3, 3)
	m.layout = l

	m.deps.Pane.SetSize(l.mapW, l.mapH)
	m.history.Width = l.left
	m.history.Height = l.historyH
	m.refreshHistory()
}
