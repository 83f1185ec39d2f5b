//go:build js && wasm

package main

import (
	"context"
	"regexp"
	"strings"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/internal/logging"
	"github.com/recera/talemap/pkg/app"
	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/session"
	"github.com/recera/talemap/pkg/theme"
	"github.com/recera/talemap/pkg/view"
	"github.com/recera/talemap/pkg/viewport"
	"github.com/recera/talemap/pkg/viewport/dom"
)

var (
	document js.Value
	window   js.Value
)

var mobileUA = regexp.MustCompile(`(?i)Mobi|Android`)

// Used when #story-type-selection carries no data-story-types attribute.
var defaultStoryTypes = []string{"奇幻", "科幻", "悬疑", "武侠"}

func main() {
	document = js.Global().Get("document")
	window = js.Global().Get("window")

	log, err := logging.Setup(logging.Options{Level: "info"})
	if err != nil {
		js.Global().Get("console").Call("error", err.Error())
		return
	}
	log.Info("talemap client starting")

	// Wait for DOM ready
	if document.Get("readyState").String() != "loading" {
		onReady(log)
	} else {
		var ready js.Func
		ready = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			ready.Release()
			onReady(log)
			return nil
		})
		document.Call("addEventListener", "DOMContentLoaded", ready)
	}

	// Keep the WASM runtime alive
	select {}
}

func onReady(log *logrus.Logger) {
	ctx := context.Background()

	store, err := session.NewLocalStore()
	if err != nil {
		log.WithError(err).Error("session storage unavailable")
		return
	}
	client, err := game.NewClient(window.Get("location").Get("origin").String(),
		game.WithLogger(logging.Component(log, "api")))
	if err != nil {
		log.WithError(err).Error("game client")
		return
	}

	surface, err := dom.NewSurface()
	if err != nil {
		log.WithError(err).Error("story map surface")
		return
	}
	diagram, err := dom.NewDiagram()
	if err != nil {
		log.WithError(err).Error("story map container")
		return
	}
	engine := viewport.New(surface, diagram, &viewport.Options{
		Clock:  dom.Clock{},
		Logger: logging.Component(log, "viewport"),
	})
	if _, err := dom.Bind(engine, diagram); err != nil {
		log.WithError(err).Error("viewport controls")
		return
	}

	th := theme.NewController(store, systemMode(), logging.Component(log, "theme"))
	maps := dom.NewRenderer(func() string {
		if th.Mode() == theme.Dark {
			return "dark"
		}
		return "default"
	}, logging.Component(log, "mermaid"))
	maps.OnPainted = engine.Painted

	p := &page{mount: view.NewMounter(), log: log}
	centerOnly := mobileUA.MatchString(window.Get("navigator").Get("userAgent").String())
	ctrl := app.New(client, store, p, maps, engine, &app.Options{
		CenterOnly: centerOnly,
		Logger:     logging.Component(log, "app"),
	})
	p.start = func(storyType string) {
		go func() {
			if err := ctrl.Start(ctx, storyType); err != nil {
				log.WithError(err).WithField("story_type", storyType).Error("start failed")
			}
		}()
	}

	applyTheme(th.Mode())
	th.OnChange(func(m theme.Mode) {
		applyTheme(m)
		ctrl.Rerender()
	})
	bindTheme(th, log)
	bindNewGame(ctrl, log)
	connectLiveReload(log)

	go ctrl.Boot(ctx)
}

// page mounts controller output into the stock page.
type page struct {
	mount *view.Mounter
	start func(storyType string)
	log   logrus.FieldLogger
}

func (p *page) ShowMenu(status *view.Node) {
	setHidden("game-wrapper", true)
	setHidden("story-type-selection", false)
	if status == nil {
		status = p.menu()
	}
	p.mountInto("story-type-selection", status)
}

func (p *page) ShowGame(pg app.Page) {
	setHidden("story-type-selection", true)
	if wrapper := document.Call("getElementById", "game-wrapper"); wrapper.Truthy() {
		wrapper.Get("classList").Call("remove", "hidden")
		wrapper.Get("classList").Call("add", "flex")
	}
	if title := document.Call("getElementById", "story-title"); title.Truthy() {
		title.Set("textContent", pg.State.Title)
	}
	p.mountInto("story-content", pg.Content)
	p.mountInto("choices-container", pg.Choices)
	p.mountInto("history-log", pg.History)
}

func (p *page) ShowChoices(n *view.Node) {
	p.mountInto("choices-container", n)
}

func (p *page) Reload() {
	window.Get("location").Call("reload")
}

func (p *page) mountInto(id string, n *view.Node) {
	if err := p.mount.Mount(id, n); err != nil {
		p.log.WithError(err).Warn("mount failed")
	}
}

// menu builds the story type buttons.
func (p *page) menu() *view.Node {
	types := defaultStoryTypes
	if el := document.Call("getElementById", "story-type-selection"); el.Truthy() {
		if attr := el.Call("getAttribute", "data-story-types"); attr.Truthy() {
			types = strings.Split(attr.String(), ",")
		}
	}
	buttons := make([]*view.Node, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		storyType := t
		buttons = append(buttons, view.El("button", view.Props{
			"type":    "button",
			"class":   "bg-accent hover:bg-accent-hover text-white font-bold py-3 px-6 rounded-lg transition duration-300",
			"onclick": func() { p.start(storyType) },
		}, view.Text(storyType)))
	}
	return view.El("div", view.Props{"class": "grid grid-cols-2 gap-4"}, buttons...)
}

func setHidden(id string, hidden bool) {
	el := document.Call("getElementById", id)
	if !el.Truthy() {
		return
	}
	el.Get("classList").Call("toggle", "hidden", hidden)
	if hidden {
		el.Get("classList").Call("remove", "flex")
	}
}

func darkQuery() js.Value {
	return window.Call("matchMedia", "(prefers-color-scheme: dark)")
}

func systemMode() theme.Mode {
	if q := darkQuery(); q.Truthy() && q.Get("matches").Bool() {
		return theme.Dark
	}
	return theme.Light
}

// applyTheme sets the html "dark" class and swaps the toggle icons.
func applyTheme(m theme.Mode) {
	dark := m == theme.Dark
	document.Get("documentElement").Get("classList").Call("toggle", "dark", dark)
	if icon := document.Call("getElementById", "theme-toggle-light-icon"); icon.Truthy() {
		icon.Get("classList").Call("toggle", "hidden", !dark)
	}
	if icon := document.Call("getElementById", "theme-toggle-dark-icon"); icon.Truthy() {
		icon.Get("classList").Call("toggle", "hidden", dark)
	}
}

func bindTheme(th *theme.Controller, log logrus.FieldLogger) {
	if btn := document.Call("getElementById", "theme-toggle"); btn.Truthy() {
		btn.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			th.Toggle()
			return nil
		}))
	} else {
		log.Debug("no theme toggle on page")
	}

	if q := darkQuery(); q.Truthy() {
		q.Call("addEventListener", "change", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			if len(args) > 0 && args[0].Get("matches").Bool() {
				th.SystemChanged(theme.Dark)
			} else {
				th.SystemChanged(theme.Light)
			}
			return nil
		}))
	}
}

func bindNewGame(ctrl *app.Controller, log logrus.FieldLogger) {
	btn := document.Call("getElementById", "new-game-btn")
	if !btn.Truthy() {
		log.Debug("no new game button on page")
		return
	}
	btn.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go ctrl.Reset(context.Background())
		return nil
	}))
}
