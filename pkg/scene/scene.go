// Package scene turns game state into view trees: the current scene text,
// its choice buttons and the history log.
package scene

import (
	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/view"
)

// Messages is the user-facing copy.
type Messages struct {
	Generating  string
	StartFailed string
	Loading     string
	StoryEnded  string
}

// DefaultMessages returns the stock copy.
func DefaultMessages() Messages {
	return Messages{
		Generating:  "正在为您生成专属故事，请稍候...",
		StartFailed: "游戏启动失败，请刷新页面重试。",
		Loading:     "加载中...",
		StoryEnded:  "故事似乎已经走到了尽头。",
	}
}

// CSS classes used by the stock page.
const (
	ChoiceClass     = "bg-accent hover:bg-accent-hover text-white font-bold py-2 px-4 rounded transition duration-300 w-full"
	BusyClass       = "opacity-50 cursor-not-allowed"
	EndedClass      = "text-center text-gray-400"
	ErrorClass      = "text-red-500"
	TurnClass       = "mb-4"
	PastSceneClass  = "p-3 bg-background-secondary rounded-lg"
	PastChoiceClass = "p-2 text-accent italic text-left"
)

// Renderer builds the scene views.
type Renderer struct {
	Messages Messages
	// OnChoose is attached to every choice button.
	OnChoose func(text string)
}

// NewRenderer creates a Renderer with the default copy.
func NewRenderer(onChoose func(text string)) *Renderer {
	return &Renderer{Messages: DefaultMessages(), OnChoose: onChoose}
}

// Content renders the scene text. The current node id rides along as a data
// attribute so the page can refocus it later.
func (r *Renderer) Content(s game.Scene) *view.Node {
	props := view.Props{"id": "story-content"}
	if s.CurrentNodeID != "" {
		props["data-current-node-id"] = s.CurrentNodeID
	}
	return view.El("div", props, view.Text(s.Content))
}

// Choices renders one button per choice, or the end-of-story note when there
// are none. A non-empty busy names the choice being submitted: every button
// is disabled and the pending one shows the loading label.
func (r *Renderer) Choices(s game.Scene, busy string) *view.Node {
	if len(s.Choices) == 0 {
		return view.El("p", view.Props{"class": EndedClass}, view.Text(r.Messages.StoryEnded))
	}

	buttons := make([]*view.Node, 0, len(s.Choices))
	for _, c := range s.Choices {
		text := c.Text
		props := view.Props{"type": "button", "class": ChoiceClass}
		label := view.Text(text)
		if busy != "" {
			props["disabled"] = true
			props["class"] = ChoiceClass + " " + BusyClass
			if text == busy {
				label = view.El("span", nil, view.Text(r.Messages.Loading))
			}
		} else if r.OnChoose != nil {
			props["onclick"] = func() { r.OnChoose(text) }
		}
		buttons = append(buttons, view.El("button", props, label))
	}
	return view.Fragment(buttons...)
}

// History renders every segment except the last, which is the scene on
// screen.
func (r *Renderer) History(segments []game.Segment) *view.Node {
	if len(segments) < 2 {
		return nil
	}
	past := segments[:len(segments)-1]
	turns := make([]*view.Node, 0, len(past))
	for _, seg := range past {
		var inner *view.Node
		switch seg.Role {
		case game.RoleAssistant:
			inner = view.El("div", view.Props{"class": PastSceneClass}, view.Text(seg.Content))
		case game.RoleUser:
			inner = view.El("div", view.Props{"class": PastChoiceClass}, view.Text("> "+seg.Content))
		}
		turns = append(turns, view.El("div", view.Props{"class": TurnClass}, inner))
	}
	return view.Fragment(turns...)
}

// Generating is shown while a new story is being created.
func (r *Renderer) Generating() *view.Node {
	return view.El("div", view.Props{"class": "text-center"},
		view.El("p", view.Props{"class": "text-xl"}, view.Text(r.Messages.Generating)),
		view.El("div", view.Props{"class": "loader mt-4"}),
	)
}

// StartFailed replaces the menu when a story could not be created.
func (r *Renderer) StartFailed() *view.Node {
	return view.El("p", view.Props{"class": ErrorClass}, view.Text(r.Messages.StartFailed))
}
