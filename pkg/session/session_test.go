package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestActiveGameHelpers(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
	}
	fs, err := OpenFile(filepath.Join(t.TempDir(), "s.yaml"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	stores["file"] = fs

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := ActiveGame(s); ok || err != nil {
				t.Fatalf("fresh store: ok=%v err=%v", ok, err)
			}
			if err := SetActiveGame(s, "42"); err != nil {
				t.Fatalf("SetActiveGame: %v", err)
			}
			id, ok, err := ActiveGame(s)
			if err != nil || !ok || id != "42" {
				t.Fatalf("ActiveGame = %q, %v, %v", id, ok, err)
			}
			if err := ClearActiveGame(s); err != nil {
				t.Fatalf("ClearActiveGame: %v", err)
			}
			if _, ok, _ := ActiveGame(s); ok {
				t.Error("active game survived Clear")
			}
			// Clearing twice is fine.
			if err := ClearActiveGame(s); err != nil {
				t.Errorf("second Clear: %v", err)
			}
		})
	}
}

func TestEmptyActiveGameIsAbsent(t *testing.T) {
	s := NewMemoryStore()
	s.Set(KeyActiveGame, "")
	if _, ok, _ := ActiveGame(s); ok {
		t.Error("empty id reported as active")
	}
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	fs, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := fs.Set(KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := SetActiveGame(fs, "abc"); err != nil {
		t.Fatalf("SetActiveGame: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "activeGameId: abc") {
		t.Errorf("file contents:\n%s", data)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, _ := reopened.Get(KeyTheme); !ok || v != "dark" {
		t.Errorf("theme = %q, %v", v, ok)
	}
	if id, ok, _ := ActiveGame(reopened); !ok || id != "abc" {
		t.Errorf("active game = %q, %v", id, ok)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("left temp files behind: %v", entries)
	}
}

func TestFileStoreCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("values: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	fs, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, ok, _ := fs.Get(KeyTheme); ok {
		t.Error("corrupt file produced a value")
	}
	if err := fs.Set(KeyTheme, "light"); err != nil {
		t.Fatalf("Set after corrupt load: %v", err)
	}
}
