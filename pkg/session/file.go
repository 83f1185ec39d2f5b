package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version string            `yaml:"version"`
	Updated time.Time         `yaml:"updated"`
	Values  map[string]string `yaml:"values"`
}

// FileStore keeps values in a YAML file, rewritten on every change.
type FileStore struct {
	mu   sync.RWMutex
	path string
	doc  fileDocument
}

// DefaultPath returns $XDG_STATE_HOME-like location for the state file:
// ~/.local/state/talemap/session.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "talemap-session.yaml"
	}
	return filepath.Join(home, ".local", "state", "talemap", "session.yaml")
}

// OpenFile loads the store at path. A missing or unreadable document starts
// an empty store; the file is created on the first write.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	fs := &FileStore{path: path}
	if err := fs.load(); err != nil {
		fs.doc = fileDocument{Version: "1", Values: make(map[string]string)}
	}
	return fs, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Get implements Store.
func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.doc.Values[key]
	return v, ok, nil
}

// Set implements Store.
func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.doc.Values[key]; ok && cur == value {
		return nil
	}
	f.doc.Values[key] = value
	return f.saveLocked()
}

// Delete implements Store.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.doc.Values[key]; !ok {
		return nil
	}
	delete(f.doc.Values, key)
	return f.saveLocked()
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}
	f.doc = doc
	return nil
}

// saveLocked writes the document through a temp file and rename so a crash
// never leaves a half-written file. Caller must hold f.mu.
func (f *FileStore) saveLocked() error {
	f.doc.Version = "1"
	f.doc.Updated = time.Now().UTC()
	data, err := yaml.Marshal(&f.doc)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
