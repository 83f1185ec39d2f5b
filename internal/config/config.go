// Package config loads talemap.yaml, applies defaults, and then environment
// overrides. Command-line flags are applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/recera/talemap/pkg/viewport"
)

// FileName is the config file looked up in the project directory.
const FileName = "talemap.yaml"

// Config represents talemap.yaml
type Config struct {
	API      APIConfig      `yaml:"api"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
	Serve    ServeConfig    `yaml:"serve"`
	Viewport ViewportConfig `yaml:"viewport"`
	Play     PlayConfig     `yaml:"play"`
}

// APIConfig points at the game API.
type APIConfig struct {
	URL     string        `yaml:"url" env:"TALEMAP_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TALEMAP_API_TIMEOUT"`
}

// SessionConfig controls where terminal sessions are remembered.
type SessionConfig struct {
	StateFile string `yaml:"stateFile" env:"TALEMAP_STATE_FILE"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"TALEMAP_LOG_LEVEL"`
	// Colors forces coloured output even when not writing to a terminal.
	Colors bool `yaml:"colors" env:"TALEMAP_LOG_COLORS"`
}

// ServeConfig contains development server configuration
type ServeConfig struct {
	Host      string        `yaml:"host" env:"TALEMAP_SERVE_HOST"`
	Port      int           `yaml:"port" env:"TALEMAP_SERVE_PORT"`
	Static    string        `yaml:"static" env:"TALEMAP_SERVE_STATIC"`
	Mock      bool          `yaml:"mock" env:"TALEMAP_SERVE_MOCK"`
	MockDelay time.Duration `yaml:"mockDelay" env:"TALEMAP_SERVE_MOCK_DELAY"`
	Watch     bool          `yaml:"watch" env:"TALEMAP_SERVE_WATCH"`
}

// ViewportConfig tunes the zoom and pan engine.
type ViewportConfig struct {
	MinScale         float64 `yaml:"minScale" env:"TALEMAP_MIN_SCALE"`
	MaxScale         float64 `yaml:"maxScale" env:"TALEMAP_MAX_SCALE"`
	Step             float64 `yaml:"step" env:"TALEMAP_ZOOM_STEP"`
	WheelSensitivity float64 `yaml:"wheelSensitivity" env:"TALEMAP_WHEEL_SENSITIVITY"`
	// CenterOnly centers the whole map instead of the current node.
	CenterOnly bool `yaml:"centerOnly" env:"TALEMAP_CENTER_ONLY"`
}

// PlayConfig configures the terminal client.
type PlayConfig struct {
	StoryTypes []string `yaml:"storyTypes" env:"TALEMAP_STORY_TYPES" envSeparator:","`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8000",
			Timeout: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info"},
		Serve: ServeConfig{
			Host:   "localhost",
			Port:   8080,
			Static: "static",
			Watch:  true,
		},
		Viewport: ViewportConfig{
			MinScale:         viewport.DefaultMinScale,
			MaxScale:         viewport.DefaultMaxScale,
			Step:             viewport.DefaultStep,
			WheelSensitivity: viewport.DefaultWheelSensitivity,
		},
		Play: PlayConfig{
			StoryTypes: []string{"奇幻", "科幻", "悬疑", "武侠"},
		},
	}
}

// Load reads talemap.yaml from dir (a missing file means defaults) and then
// applies environment overrides.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		applyDefaults(&fromFile)
		cfg = &fromFile
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overrides fields whose environment variables are set.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes cfg to dir/talemap.yaml.
func Save(cfg *Config, dir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

// Validate checks values that would make the viewport engine misbehave.
func (c *Config) Validate() error {
	v := c.Viewport
	if v.MinScale <= 0 {
		return fmt.Errorf("viewport.minScale must be positive, got %g", v.MinScale)
	}
	if v.MaxScale < v.MinScale {
		return fmt.Errorf("viewport.maxScale (%g) is below minScale (%g)", v.MaxScale, v.MinScale)
	}
	if v.Step <= 0 {
		return fmt.Errorf("viewport.step must be positive, got %g", v.Step)
	}
	if v.WheelSensitivity <= 0 {
		return fmt.Errorf("viewport.wheelSensitivity must be positive, got %g", v.WheelSensitivity)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	return nil
}

// ViewportOptions converts the viewport section for viewport.New.
func (c *Config) ViewportOptions() *viewport.Options {
	return &viewport.Options{
		MinScale:         c.Viewport.MinScale,
		MaxScale:         c.Viewport.MaxScale,
		Step:             c.Viewport.Step,
		WheelSensitivity: c.Viewport.WheelSensitivity,
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.API.URL == "" {
		cfg.API.URL = defaults.API.URL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = defaults.API.Timeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	if cfg.Serve.Host == "" {
		cfg.Serve.Host = defaults.Serve.Host
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = defaults.Serve.Port
	}
	if cfg.Serve.Static == "" {
		cfg.Serve.Static = defaults.Serve.Static
	}

	if cfg.Viewport.MinScale == 0 {
		cfg.Viewport.MinScale = defaults.Viewport.MinScale
	}
	if cfg.Viewport.MaxScale == 0 {
		cfg.Viewport.MaxScale = defaults.Viewport.MaxScale
	}
	if cfg.Viewport.Step == 0 {
		cfg.Viewport.Step = defaults.Viewport.Step
	}
	if cfg.Viewport.WheelSensitivity == 0 {
		cfg.Viewport.WheelSensitivity = defaults.Viewport.WheelSensitivity
	}

	if len(cfg.Play.StoryTypes) == 0 {
		cfg.Play.StoryTypes = defaults.Play.StoryTypes
	}
}
