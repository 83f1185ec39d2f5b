// Package theme tracks the light/dark preference. A saved choice wins over
// the system preference; system changes only apply while nothing is saved.
package theme

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/recera/talemap/pkg/session"
)

// Mode is a colour scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode accepts "light" or "dark".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), true
	}
	return "", false
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Controller owns the current mode.
type Controller struct {
	mu       sync.Mutex
	store    session.Store
	mode     Mode
	saved    bool
	onChange []func(Mode)
	log      logrus.FieldLogger
}

// NewController picks the saved mode if there is one, otherwise system.
func NewController(store session.Store, system Mode, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Controller{store: store, mode: Light, log: log}
	if m, ok := ParseMode(string(system)); ok {
		c.mode = m
	}
	if v, ok, err := store.Get(session.KeyTheme); err != nil {
		log.WithError(err).Warn("could not read saved theme")
	} else if m, valid := ParseMode(v); ok && valid {
		c.mode = m
		c.saved = true
	}
	return c
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Saved reports whether the user has picked a mode explicitly.
func (c *Controller) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// OnChange registers fn to run after every mode change.
func (c *Controller) OnChange(fn func(Mode)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// Set applies and saves m.
func (c *Controller) Set(m Mode) {
	if err := c.store.Set(session.KeyTheme, string(m)); err != nil {
		c.log.WithError(err).Warn("could not save theme")
	}
	c.mu.Lock()
	c.saved = true
	c.mu.Unlock()
	c.apply(m)
}

// Toggle flips and saves the mode, returning the new one.
func (c *Controller) Toggle() Mode {
	next := c.Mode().Opposite()
	c.Set(next)
	return next
}

// SystemChanged follows the system preference unless a mode was saved.
func (c *Controller) SystemChanged(m Mode) {
	if c.Saved() {
		return
	}
	c.apply(m)
}

func (c *Controller) apply(m Mode) {
	c.mu.Lock()
	if c.mode == m {
		c.mu.Unlock()
		return
	}
	c.mode = m
	hooks := slices.Clone(c.onChange)
	c.mu.Unlock()

	c.log.WithField("theme", m).Debug("theme changed")
	for _, fn := range hooks {
		fn(m)
	}
}
