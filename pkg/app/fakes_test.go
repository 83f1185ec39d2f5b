package app

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/storymap"
	"github.com/recera/talemap/pkg/view"
)

var errOffline = errors.New("offline")

type fakeGames struct {
	mu      sync.Mutex
	states  map[game.ID]*game.State
	next    *game.State
	fail    error
	calls   []string
	deleted []game.ID
}

func (f *fakeGames) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeGames) Create(ctx context.Context, storyType string) (*game.State, error) {
	if err := f.record("create " + storyType); err != nil {
		return nil, err
	}
	return f.next, nil
}

func (f *fakeGames) Fetch(ctx context.Context, id game.ID) (*game.State, error) {
	if err := f.record("fetch " + string(id)); err != nil {
		return nil, err
	}
	st, ok := f.states[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	return st, nil
}

func (f *fakeGames) Advance(ctx context.Context, id game.ID, text string) (*game.State, error) {
	if err := f.record("advance " + string(id) + " " + text); err != nil {
		return nil, err
	}
	return f.next, nil
}

func (f *fakeGames) Delete(ctx context.Context, id game.ID) error {
	err := f.record("delete " + string(id))
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return err
}

type fakeView struct {
	menus    []*view.Node
	games    []Page
	choices  []*view.Node
	reloaded int
}

func (v *fakeView) ShowMenu(status *view.Node) { v.menus = append(v.menus, status) }
func (v *fakeView) ShowGame(p Page)            { v.games = append(v.games, p) }
func (v *fakeView) ShowChoices(n *view.Node)   { v.choices = append(v.choices, n) }
func (v *fakeView) Reload()                    { v.reloaded++ }

func (v *fakeView) lastGame() Page {
	if len(v.games) == 0 {
		return Page{}
	}
	return v.games[len(v.games)-1]
}

type fakeMaps struct {
	defs []string
	fail error
}

func (m *fakeMaps) Render(def string, _ storymap.Map) error {
	m.defs = append(m.defs, def)
	return m.fail
}

// fakeViewport records calls in order, e.g. "reset", "focus:n1", "target:n1".
type fakeViewport struct {
	calls []string
}

func (v *fakeViewport) Reset()              { v.calls = append(v.calls, "reset") }
func (v *fakeViewport) Focus(id string)     { v.calls = append(v.calls, "focus:"+id) }
func (v *fakeViewport) SetTarget(id string) { v.calls = append(v.calls, "target:"+id) }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleState(id game.ID, node string, choices ...string) *game.State {
	st := &game.State{
		GameID: id,
		Title:  "The Lighthouse",
		Scene:  game.Scene{Content: "scene at " + node, CurrentNodeID: node},
		StoryMap: &storymap.Map{
			Nodes: []storymap.Node{{ID: "start", Label: "Start"}, {ID: node, Label: node}},
		},
		History: []game.Segment{{Role: game.RoleAssistant, Content: "scene at " + node}},
	}
	for i, c := range choices {
		st.Scene.Choices = append(st.Scene.Choices, game.Choice{ID: i + 1, Text: c})
	}
	return st
}
