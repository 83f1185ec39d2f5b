package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := `
api:
  url: http://game.example:9000
  timeout: 30s
viewport:
  maxScale: 4
play:
  storyTypes: [horror]
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != "http://game.example:9000" || cfg.API.Timeout != 30*time.Second {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Viewport.MaxScale != 4 || cfg.Viewport.MinScale != 0.2 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if cfg.Serve.Port != 8080 {
		t.Errorf("Serve.Port = %d, want default 8080", cfg.Serve.Port)
	}
	if !reflect.DeepEqual(cfg.Play.StoryTypes, []string{"horror"}) {
		t.Errorf("StoryTypes = %v", cfg.Play.StoryTypes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("api:\n  url: http://file\n"), 0644)
	t.Setenv("TALEMAP_API_URL", "http://env:1234")
	t.Setenv("TALEMAP_SERVE_PORT", "9999")
	t.Setenv("TALEMAP_STORY_TYPES", "a,b")
	t.Setenv("TALEMAP_CENTER_ONLY", "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != "http://env:1234" {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
	if cfg.Serve.Port != 9999 {
		t.Errorf("Serve.Port = %d", cfg.Serve.Port)
	}
	if !reflect.DeepEqual(cfg.Play.StoryTypes, []string{"a", "b"}) {
		t.Errorf("StoryTypes = %v", cfg.Play.StoryTypes)
	}
	if !cfg.Viewport.CenterOnly {
		t.Error("CenterOnly not set from env")
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("TALEMAP_SERVE_PORT", "not-an-int")
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"max below min", func(c *Config) { c.Viewport.MaxScale = 0.1 }, "maxScale"},
		{"negative min", func(c *Config) { c.Viewport.MinScale = -1 }, "minScale"},
		{"zero step", func(c *Config) { c.Viewport.Step = 0 }, "step"},
		{"port", func(c *Config) { c.Serve.Port = 70000 }, "serve.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Serve.Mock = true
	cfg.API.URL = "http://saved"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Serve.Mock || got.API.URL != "http://saved" {
		t.Errorf("round trip lost values: %+v", got)
	}
}
