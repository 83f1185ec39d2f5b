// Package session persists the small amount of client state that outlives
// a page view: the active game id and the theme preference.
package session

import (
	"sync"

	"github.com/recera/talemap/pkg/game"
)

// Well-known keys.
const (
	KeyActiveGame = "activeGameId"
	KeyTheme      = "theme"
)

// Store is a durable string key/value slot store.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// ActiveGame returns the persisted active game, if any.
func ActiveGame(s Store) (game.ID, bool, error) {
	v, ok, err := s.Get(KeyActiveGame)
	if err != nil || !ok || v == "" {
		return "", false, err
	}
	return game.ID(v), true, nil
}

// SetActiveGame persists id as the active game.
func SetActiveGame(s Store, id game.ID) error {
	return s.Set(KeyActiveGame, string(id))
}

// ClearActiveGame forgets the active game.
func ClearActiveGame(s Store) error {
	return s.Delete(KeyActiveGame)
}

// MemoryStore keeps values for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
