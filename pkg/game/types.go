// Package game is the client side of the story game HTTP API.
package game

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/recera/talemap/pkg/storymap"
)

// ID identifies a game. The API sends numbers; IDs are kept as strings so
// they can be stored and put in URLs as is.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("game id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Role says who produced a history segment.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Choice is one option offered at the end of a scene.
type Choice struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Scene is the part of the story currently on screen.
type Scene struct {
	Content       string   `json:"content"`
	Choices       []Choice `json:"choices"`
	CurrentNodeID string   `json:"current_node_id"`
}

// Segment is one entry of the story history: a scene or a choice.
type Segment struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the full game state returned by every API call.
type State struct {
	GameID   ID            `json:"game_id"`
	Title    string        `json:"title"`
	Author   string        `json:"author,omitempty"`
	Scene    Scene         `json:"scene"`
	StoryMap *storymap.Map `json:"story_map,omitempty"`
	History  []Segment     `json:"story_history"`
}

type createRequest struct {
	StoryType string `json:"story_type"`
}

type choiceRequest struct {
	ChoiceText string `json:"choice_text"`
}
