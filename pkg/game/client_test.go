package game_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/game/mockapi"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newClient(t *testing.T, h http.Handler) *game.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := game.NewClient(srv.URL, game.WithHTTPClient(srv.Client()), game.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientLifecycle(t *testing.T) {
	api := mockapi.New(mockapi.WithLogger(quietLogger()))
	c := newClient(t, api)
	ctx := context.Background()

	st, err := c.Create(ctx, "mystery")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.GameID == "" {
		t.Fatal("Create returned an empty game id")
	}
	if st.Scene.CurrentNodeID != "start" {
		t.Errorf("CurrentNodeID = %q, want start", st.Scene.CurrentNodeID)
	}
	if st.StoryMap == nil || !st.StoryMap.Has("start") {
		t.Fatalf("story map missing start node: %+v", st.StoryMap)
	}
	if len(st.Scene.Choices) != 2 {
		t.Fatalf("choices = %+v, want 2", st.Scene.Choices)
	}

	fetched, err := c.Fetch(ctx, st.GameID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fetched.Title != st.Title {
		t.Errorf("Fetch title = %q, want %q", fetched.Title, st.Title)
	}

	next, err := c.Advance(ctx, st.GameID, st.Scene.Choices[0].Text)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if next.Scene.CurrentNodeID != "stairs" {
		t.Errorf("after choice node = %q, want stairs", next.Scene.CurrentNodeID)
	}
	if len(next.History) != 3 || next.History[1].Role != game.RoleUser {
		t.Errorf("history = %+v", next.History)
	}

	if err := c.Delete(ctx, st.GameID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if api.Len() != 0 {
		t.Errorf("mock still holds %d games", api.Len())
	}

	_, err = c.Fetch(ctx, st.GameID)
	if !errors.Is(err, game.ErrNotFound) {
		t.Errorf("Fetch after delete: err = %v, want ErrNotFound", err)
	}
}

func TestClientStatusError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Advance(context.Background(), "7", "go left")
	var se *game.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Status != http.StatusInternalServerError || se.Body != "boom" {
		t.Errorf("StatusError = %+v", se)
	}
	if errors.Is(err, game.ErrNotFound) {
		t.Error("500 reported as not found")
	}
}

func TestClientSendsJSON(t *testing.T) {
	var gotPath, gotType string
	var gotBody map[string]string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"game_id": 42, "title": "T", "scene": {"content": "c", "choices": [], "current_node_id": "n"}, "story_history": []}`)
	}))

	st, err := c.Advance(context.Background(), "42", "open the door")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if gotPath != "/api/v1/game/42/choice" {
		t.Errorf("path = %q", gotPath)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotBody["choice_text"] != "open the door" {
		t.Errorf("body = %v", gotBody)
	}
	if st.GameID != "42" {
		t.Errorf("GameID = %q, want 42", st.GameID)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := game.NewClient(url, game.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Create(context.Background(), "x"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestClientCanceledContext(t *testing.T) {
	c := newClient(t, mockapi.New(mockapi.WithLogger(quietLogger())))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Create(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://example.com", "://"} {
		if _, err := game.NewClient(u); err == nil {
			t.Errorf("NewClient(%q) accepted", u)
		}
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want game.ID
	}{
		{`12`, "12"},
		{`"abc-1"`, "abc-1"},
		{` 7 `, "7"},
	}
	for _, tt := range tests {
		var id game.ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, id, tt.want)
		}
	}
	var id game.ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("object accepted as id")
	}
}
