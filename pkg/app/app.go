// Package app is the page controller: it resumes or starts a game, relays
// choices, and redraws the scene, history and story map after every state
// change. Front ends (browser and terminal) supply the View and MapRenderer.
package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/scene"
	"github.com/recera/talemap/pkg/session"
	"github.com/recera/talemap/pkg/storymap"
	"github.com/recera/talemap/pkg/view"
)

// Games is the game session API.
type Games interface {
	Create(ctx context.Context, storyType string) (*game.State, error)
	Fetch(ctx context.Context, id game.ID) (*game.State, error)
	Advance(ctx context.Context, id game.ID, choiceText string) (*game.State, error)
	Delete(ctx context.Context, id game.ID) error
}

// Page is everything shown for one game state.
type Page struct {
	State   *game.State
	Content *view.Node
	Choices *view.Node
	History *view.Node
}

// View is the page surface.
type View interface {
	// ShowMenu shows the story type selection. A non-nil status replaces
	// the menu body (generating, start failed).
	ShowMenu(status *view.Node)
	// ShowGame shows the game screen for p.
	ShowGame(p Page)
	// ShowChoices redraws only the choice controls.
	ShowChoices(n *view.Node)
	// Reload starts over from a clean page.
	Reload()
}

// MapRenderer draws a story map diagram from its definition. Drawing may
// complete asynchronously; the viewport engine waits for it.
type MapRenderer interface {
	Render(definition string, m storymap.Map) error
}

// Viewport is the part of the viewport engine the controller drives.
type Viewport interface {
	Reset()
	Focus(id string)
	SetTarget(id string)
}

// Options configures a Controller.
type Options struct {
	// CenterOnly centers the whole map after rendering instead of the
	// current node. Used on touch devices.
	CenterOnly bool
	// Messages overrides the user-facing copy.
	Messages *scene.Messages
	// Go runs background work; defaults to a new goroutine.
	Go     func(func())
	Logger logrus.FieldLogger
}

// Controller coordinates one page.
type Controller struct {
	mu       sync.Mutex
	games    Games
	store    session.Store
	view     View
	maps     MapRenderer
	viewport Viewport
	scenes   *scene.Renderer

	active game.ID
	state  *game.State
	busy   string

	ctx        context.Context
	centerOnly bool
	spawn      func(func())
	log        logrus.FieldLogger
}

// New creates a Controller. maps and vp may be nil for front ends without a
// story map.
func New(games Games, store session.Store, v View, maps MapRenderer, vp Viewport, opts *Options) *Controller {
	if opts == nil {
		opts = &Options{}
	}
	c := &Controller{
		games:      games,
		store:      store,
		view:       v,
		maps:       maps,
		viewport:   vp,
		ctx:        context.Background(),
		centerOnly: opts.CenterOnly,
		spawn:      opts.Go,
		log:        opts.Logger,
	}
	if c.spawn == nil {
		c.spawn = func(f func()) { go f() }
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.scenes = scene.NewRenderer(func(text string) {
		c.spawn(func() {
			c.mu.Lock()
			ctx := c.ctx
			c.mu.Unlock()
			if err := c.Choose(ctx, text); err != nil {
				c.log.WithError(err).WithField("choice", text).Warn("choice failed")
			}
		})
	})
	if opts.Messages != nil {
		c.scenes.Messages = *opts.Messages
	}
	return c
}

// Scenes exposes the scene renderer so front ends can reuse the copy.
func (c *Controller) Scenes() *scene.Renderer { return c.scenes }

// Active returns the active game id, or "" when on the menu.
func (c *Controller) Active() game.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// State returns the last game state received.
func (c *Controller) State() *game.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a choice is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy != ""
}

// Boot resumes the persisted game, or shows the menu. It reports whether a
// game was resumed. Any resume failure forgets the saved id.
func (c *Controller) Boot(ctx context.Context) bool {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	id, ok, err := session.ActiveGame(c.store)
	if err != nil {
		c.log.WithError(err).Warn("could not read active game")
	}
	if !ok {
		c.view.ShowMenu(nil)
		return false
	}

	st, err := c.games.Fetch(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("game", id).Warn("failed to resume game")
		if err := session.ClearActiveGame(c.store); err != nil {
			c.log.WithError(err).Warn("could not clear active game")
		}
		c.view.ShowMenu(nil)
		return false
	}

	c.mu.Lock()
	c.active = id
	c.mu.Unlock()
	c.show(st)
	return true
}

// Start creates a new game of the given story type.
func (c *Controller) Start(ctx context.Context, storyType string) error {
	c.view.ShowMenu(c.scenes.Generating())

	st, err := c.games.Create(ctx, storyType)
	if err != nil {
		c.log.WithError(err).WithField("story_type", storyType).Error("error starting game")
		c.view.ShowMenu(c.scenes.StartFailed())
		return err
	}

	if err := session.SetActiveGame(c.store, st.GameID); err != nil {
		c.log.WithError(err).Warn("could not save active game")
	}
	c.mu.Lock()
	c.active = st.GameID
	c.mu.Unlock()
	c.show(st)
	return nil
}

// Choose submits a choice. It does nothing without an active game or while
// another choice is in flight. On failure the controls are restored and the
// scene stays as it was.
func (c *Controller) Choose(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.active == "" || c.state == nil || c.busy != "" {
		c.mu.Unlock()
		return nil
	}
	id, current := c.active, c.state.Scene
	c.busy = text
	c.mu.Unlock()
	c.view.ShowChoices(c.scenes.Choices(current, text))

	st, err := c.games.Advance(ctx, id, text)

	c.mu.Lock()
	c.busy = ""
	c.mu.Unlock()
	if err != nil {
		c.view.ShowChoices(c.scenes.Choices(current, ""))
		return err
	}
	c.show(st)
	return nil
}

// Reset abandons the current game. The server-side delete runs in the
// background and its failure is only logged.
func (c *Controller) Reset(ctx context.Context) {
	id, ok, err := session.ActiveGame(c.store)
	if err != nil {
		c.log.WithError(err).Warn("could not read active game")
	}
	if ok {
		c.spawn(func() {
			if err := c.games.Delete(context.WithoutCancel(ctx), id); err != nil {
				c.log.WithError(err).WithField("game", id).Warn("failed to delete game on server")
			}
		})
	}
	if err := session.ClearActiveGame(c.store); err != nil {
		c.log.WithError(err).Warn("could not clear active game")
	}

	c.mu.Lock()
	c.active = ""
	c.state = nil
	c.busy = ""
	c.mu.Unlock()
	c.view.Reload()
}

// Rerender draws the last story map again, for example after a theme
// change.
func (c *Controller) Rerender() {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	if st != nil {
		c.renderMap(st)
	}
}

func (c *Controller) show(st *game.State) {
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()

	c.renderMap(st)
	c.view.ShowGame(Page{
		State:   st,
		Content: c.scenes.Content(st.Scene),
		Choices: c.scenes.Choices(st.Scene, ""),
		History: c.scenes.History(st.History),
	})
}

func (c *Controller) renderMap(st *game.State) {
	if st.StoryMap == nil || c.maps == nil {
		return
	}
	def, err := storymap.Definition(st.StoryMap)
	if err != nil {
		c.log.WithError(err).WithField("game", st.GameID).Warn("invalid story map")
		return
	}
	if c.viewport != nil {
		c.viewport.Reset()
	}
	if err := c.maps.Render(def, *st.StoryMap); err != nil {
		c.log.WithError(err).WithField("game", st.GameID).Error("story map rendering failed")
		return
	}
	if c.viewport == nil {
		return
	}
	node := st.Scene.CurrentNodeID
	if c.centerOnly {
		c.viewport.SetTarget(node)
		c.viewport.Focus("")
		return
	}
	c.viewport.Focus(node)
}
