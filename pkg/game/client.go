package game

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIPrefix is where the game API is mounted.
const APIPrefix = "/api/v1"

// ErrNotFound is returned when the API does not know the game, usually
// because it was deleted or expired.
var ErrNotFound = errors.New("game not found")

// StatusError is a non-success HTTP response other than 404.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: HTTP error! status: %d: %s", e.Op, e.Status, e.Body)
}

// Client talks to the game API over HTTP with JSON bodies.
type Client struct {
	base string
	http *http.Client
	log  logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (timeouts, transports, tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the API served at baseURL, for example
// "http://localhost:8000". The /api/v1 prefix is added by the client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(u.String(), "/") + APIPrefix,
		http: &http.Client{Timeout: 5 * time.Minute},
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create starts a new game of the given story type. Story generation is
// slow on the server side, so callers should allow a generous deadline.
func (c *Client) Create(ctx context.Context, storyType string) (*State, error) {
	var st State
	if err := c.do(ctx, "create game", http.MethodPost, "/game", createRequest{StoryType: storyType}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Fetch returns the current state of a game.
func (c *Client) Fetch(ctx context.Context, id ID) (*State, error) {
	var st State
	if err := c.do(ctx, "fetch game "+string(id), http.MethodGet, gamePath(id), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Advance submits the player's choice and returns the next state.
func (c *Client) Advance(ctx context.Context, id ID, choiceText string) (*State, error) {
	var st State
	if err := c.do(ctx, "advance game "+string(id), http.MethodPost, gamePath(id)+"/choice", choiceRequest{ChoiceText: choiceText}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Delete removes a game on the server.
func (c *Client) Delete(ctx context.Context, id ID) error {
	return c.do(ctx, "delete game "+string(id), http.MethodDelete, gamePath(id), nil, nil)
}

func gamePath(id ID) string {
	return "/game/" + url.PathEscape(string(id))
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("game api call")

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
