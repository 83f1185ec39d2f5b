package ui

import (
	"context"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/app"
	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/game/mockapi"
	"github.com/recera/talemap/pkg/session"
	"github.com/recera/talemap/pkg/theme"
	"github.com/recera/talemap/pkg/viewport"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// stillClock never fires, so resize refocusing cannot race the tests.
type stillClock struct{}

type stillTimer struct{}

func (stillTimer) Stop() bool { return true }

func (stillClock) AfterFunc(time.Duration, func()) viewport.Timer { return stillTimer{} }

type testEnv struct {
	api   *mockapi.Server
	store *session.MemoryStore
	theme *theme.Controller
}

func newTestModel(t *testing.T) (Model, *testEnv) {
	t.Helper()
	api := mockapi.New(mockapi.WithLogger(quietLogger()))
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client, err := game.NewClient(srv.URL, game.WithHTTPClient(srv.Client()), game.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	store := session.NewMemoryStore()
	bridge := NewBridge()
	pane := NewMapPane(nil)
	engine := viewport.New(bridge, pane, &viewport.Options{Logger: quietLogger(), Clock: stillClock{}})
	t.Cleanup(engine.Close)
	ctrl := app.New(client, store, bridge, pane, engine, &app.Options{
		Go:     func(f func()) { f() },
		Logger: quietLogger(),
	})
	th := theme.NewController(store, theme.Light, quietLogger())
	th.OnChange(func(theme.Mode) { ctrl.Rerender() })

	m := New(context.Background(), Deps{
		Controller: ctrl,
		Engine:     engine,
		Pane:       pane,
		Theme:      th,
		Bridge:     bridge,
		StoryTypes: []string{"mystery", "horror"},
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &testEnv{api: api, store: store, theme: th}
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run delivers msg and executes the command it returns, then drains the
// bridge.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out := cmd(); out != nil {
			m = step(t, m, out)
		}
	}
	return pump(t, m)
}

func pump(t *testing.T, m Model) Model {
	t.Helper()
	for {
		select {
		case msg := <-m.deps.Bridge.ch:
			m = step(t, m, msg)
		default:
			return m
		}
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func boot(t *testing.T, m Model) Model {
	t.Helper()
	m = step(t, m, m.boot()())
	return pump(t, m)
}

func TestBootShowsMenu(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Screen() != ScreenLoading {
		t.Fatalf("screen before boot = %v", m.Screen())
	}
	m = boot(t, m)
	if m.Screen() != ScreenMenu {
		t.Fatalf("screen = %v, want menu", m.Screen())
	}
	if v := m.View(); !strings.Contains(v, "1. mystery") || !strings.Contains(v, "2. horror") {
		t.Errorf("menu view:\n%s", v)
	}
}

func TestPlayThrough(t *testing.T) {
	m, env := newTestModel(t)
	m = boot(t, m)

	m = run(t, m, keyRunes("2"))
	if m.Screen() != ScreenGame {
		t.Fatalf("screen = %v, want game", m.Screen())
	}
	if got := m.page.State.Scene.CurrentNodeID; got != "start" {
		t.Fatalf("node = %q", got)
	}
	if id, ok, _ := session.ActiveGame(env.store); !ok || id != m.page.State.GameID {
		t.Errorf("active game not saved: %q", id)
	}

	// The current node sits at the pane's focus point.
	e := m.deps.Engine
	p, _ := m.deps.Pane.NodeOffset("start")
	tr := e.Transform()
	wantX, wantY := float64(m.layout.mapW)/2, float64(m.layout.mapH)*viewport.DefaultVerticalAnchor
	if math.Abs(p.X*tr.Scale+tr.X-wantX) > 1e-9 || math.Abs(p.Y*tr.Scale+tr.Y-wantY) > 1e-9 {
		t.Errorf("start not focused: transform %+v, node %+v", tr, p)
	}

	m = run(t, m, keyRunes("1"))
	if got := m.page.State.Scene.CurrentNodeID; got != "stairs" {
		t.Fatalf("after choice node = %q", got)
	}
	if m.busy {
		t.Error("still busy after the scene arrived")
	}
	if v := m.View(); !strings.Contains(v, "Open the lamp room") {
		t.Errorf("game view missing next choice:\n%s", v)
	}

	m = run(t, m, keyRunes("+"))
	if got := e.Transform().Scale; math.Abs(got-1.2) > 1e-9 {
		t.Errorf("scale after + = %g", got)
	}
	m = run(t, m, keyRunes("0"))
	if got := e.Transform().Scale; got != 1 {
		t.Errorf("scale after 0 = %g", got)
	}

	m = run(t, m, keyRunes("n"))
	if m.Screen() != ScreenMenu {
		t.Errorf("screen after new game = %v", m.Screen())
	}
	if env.api.Len() != 0 {
		t.Errorf("game not deleted, %d left", env.api.Len())
	}
	if _, ok, _ := session.ActiveGame(env.store); ok {
		t.Error("active game survived reset")
	}
}

func TestArrowKeysPan(t *testing.T) {
	m, _ := newTestModel(t)
	m = boot(t, m)
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	before := m.deps.Engine.Transform()
	m = run(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = run(t, m, tea.KeyMsg{Type: tea.KeyUp})
	after := m.deps.Engine.Transform()
	if after.X-before.X != panStepX || after.Y-before.Y != panStepY {
		t.Errorf("pan moved by (%g, %g)", after.X-before.X, after.Y-before.Y)
	}
	if m.deps.Engine.Panning() {
		t.Error("keyboard pan left a session open")
	}
}

func TestMouseDragAndWheel(t *testing.T) {
	m, _ := newTestModel(t)
	m = boot(t, m)
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	e := m.deps.Engine

	x0, y0 := m.layout.mapX+10, m.layout.mapY+10
	before := e.Transform()
	m = step(t, m, tea.MouseMsg{X: x0, Y: y0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = step(t, m, tea.MouseMsg{X: x0 + 5, Y: y0 + 2, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = step(t, m, tea.MouseMsg{X: x0 + 5, Y: y0 + 2, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	after := e.Transform()
	if after.X-before.X != 5 || after.Y-before.Y != 2 {
		t.Errorf("drag moved by (%g, %g), want (5, 2)", after.X-before.X, after.Y-before.Y)
	}
	if e.Panning() {
		t.Error("pan still active after release")
	}

	m = step(t, m, tea.MouseMsg{X: x0, Y: y0, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if got := e.Transform().Scale; math.Abs(got-1.1) > 1e-9 {
		t.Errorf("scale after wheel up = %g, want 1.1", got)
	}

	// Presses outside the pane are ignored.
	m = step(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if e.Panning() {
		t.Error("press outside the map started a pan")
	}
}

func TestThemeToggle(t *testing.T) {
	m, env := newTestModel(t)
	m = boot(t, m)
	m = run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.deps.Engine.ZoomIn()
	m = run(t, m, keyRunes("t"))
	if env.theme.Mode() != theme.Dark {
		t.Fatalf("mode = %q", env.theme.Mode())
	}
	if v, _, _ := env.store.Get(session.KeyTheme); v != "dark" {
		t.Errorf("saved theme = %q", v)
	}
	// Re-rendering the map resets the zoom.
	if got := m.deps.Engine.Transform().Scale; got != 1 {
		t.Errorf("scale after theme change = %g", got)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
