// Package mockapi serves an in-memory version of the game API with a canned
// branching story. It backs `talemap serve --mock` and the client tests.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/storymap"
)

// Beat is the scene text shown when the story reaches a node.
type Beat struct {
	Node    string
	Content string
}

// Story is the canned story every game plays through.
type Story struct {
	Title string
	Map   storymap.Map
	Beats []Beat
	Start string
}

// DefaultStory is a small story with two endings.
func DefaultStory() Story {
	return Story{
		Title: "雾中灯塔",
		Start: "start",
		Map: storymap.Map{
			Nodes: []storymap.Node{
				{ID: "start", Label: "Arrival at the lighthouse"},
				{ID: "stairs", Label: "The spiral stairs"},
				{ID: "cellar", Label: "The flooded cellar"},
				{ID: "lamp", Label: `The "eternal" lamp`},
				{ID: "tunnel", Label: "Smugglers' tunnel"},
				{ID: "end_light", Label: "Ending: Light restored"},
				{ID: "end_sea", Label: "Ending: Lost at sea"},
			},
			Edges: []storymap.Edge{
				{From: "start", To: "stairs", Label: "Climb the stairs"},
				{From: "start", To: "cellar", Label: "Search the cellar"},
				{From: "stairs", To: "lamp", Label: "Open the lamp room"},
				{From: "cellar", To: "tunnel", Label: "Follow the draft"},
				{From: "lamp", To: "end_light", Label: "Relight the lamp"},
				{From: "tunnel", To: "end_sea", Label: "Take the boat"},
				{From: "tunnel", To: "lamp", Label: "Find the hidden ladder"},
			},
		},
		Beats: []Beat{
			{Node: "start", Content: "Fog rolls over the cliffs as you reach the abandoned lighthouse."},
			{Node: "stairs", Content: "The iron stairs groan under every step."},
			{Node: "cellar", Content: "Cold water laps at your ankles. Somewhere, air is moving."},
			{Node: "lamp", Content: "The great lens is cracked, but the wick is dry."},
			{Node: "tunnel", Content: "A narrow tunnel leads toward the sound of waves."},
			{Node: "end_light", Content: "The beam cuts through the fog. Ships turn away from the rocks."},
			{Node: "end_sea", Content: "The current takes the boat far from shore."},
		},
	}
}

type session struct {
	id        game.ID
	storyType string
	node      string
	history   []game.Segment
}

// Server implements the game API routes.
type Server struct {
	mu    sync.Mutex
	story Story
	beats map[string]string
	games map[game.ID]*session
	delay time.Duration
	log   logrus.FieldLogger
	mux   *http.ServeMux
	newID func() game.ID
}

// Option configures a Server.
type Option func(*Server)

// WithDelay makes create and choice calls sleep, imitating story generation.
func WithDelay(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// WithStory replaces the canned story.
func WithStory(st Story) Option {
	return func(s *Server) { s.story = st }
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a mock API server.
func New(opts ...Option) *Server {
	s := &Server{
		story: DefaultStory(),
		games: make(map[game.ID]*session),
		log:   logrus.StandardLogger(),
		newID: func() game.ID { return game.ID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.beats = make(map[string]string, len(s.story.Beats))
	for _, b := range s.story.Beats {
		s.beats[b.Node] = b.Content
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST "+game.APIPrefix+"/game", s.handleCreate)
	s.mux.HandleFunc("GET "+game.APIPrefix+"/game/{id}", s.handleGet)
	s.mux.HandleFunc("POST "+game.APIPrefix+"/game/{id}/choice", s.handleChoice)
	s.mux.HandleFunc("DELETE "+game.APIPrefix+"/game/{id}", s.handleDelete)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Len returns the number of live games.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoryType string `json:"story_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StoryType == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "story_type is required")
		return
	}
	s.sleep(r)

	s.mu.Lock()
	sess := &session{
		id:        s.newID(),
		storyType: req.StoryType,
		node:      s.story.Start,
		history:   []game.Segment{{Role: game.RoleAssistant, Content: s.beats[s.story.Start]}},
	}
	s.games[sess.id] = sess
	st := s.state(sess)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"game": sess.id, "story_type": req.StoryType}).Info("mock game created")
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[game.ID(r.PathValue("id"))]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, s.state(sess))
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChoiceText string `json:"choice_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "choice_text is required")
		return
	}
	s.sleep(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[game.ID(r.PathValue("id"))]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	next := ""
	for _, e := range s.story.Map.Edges {
		if e.From == sess.node && e.Label == req.ChoiceText {
			next = e.To
			break
		}
	}
	if next == "" {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("choice %q is not available", req.ChoiceText))
		return
	}
	sess.node = next
	sess.history = append(sess.history,
		game.Segment{Role: game.RoleUser, Content: req.ChoiceText},
		game.Segment{Role: game.RoleAssistant, Content: s.beats[next]},
	)
	writeJSON(w, http.StatusOK, s.state(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := game.ID(r.PathValue("id"))
	if _, ok := s.games[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	delete(s.games, id)
	w.WriteHeader(http.StatusNoContent)
}

// state must be called with s.mu held.
func (s *Server) state(sess *session) game.State {
	var choices []game.Choice
	for _, e := range s.story.Map.Edges {
		if e.From == sess.node {
			choices = append(choices, game.Choice{ID: len(choices) + 1, Text: e.Label})
		}
	}
	m := s.story.Map
	history := make([]game.Segment, len(sess.history))
	copy(history, sess.history)
	return game.State{
		GameID: sess.id,
		Title:  s.story.Title,
		Author: "talemap mock",
		Scene: game.Scene{
			Content:       s.beats[sess.node],
			Choices:       choices,
			CurrentNodeID: sess.node,
		},
		StoryMap: &m,
		History:  history,
	}
}

func (s *Server) sleep(r *http.Request) {
	if s.delay <= 0 {
		return
	}
	select {
	case <-time.After(s.delay):
	case <-r.Context().Done():
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
