package main

import (
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/recera/talemap/internal/config"
	"github.com/recera/talemap/internal/logging"
	"github.com/recera/talemap/pkg/game"
)

// loadConfig reads the config named by the persistent flags and applies the
// flag overrides shared by every command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		cfg.API.URL = api
	}
	return cfg, nil
}

// setupLogging configures the standard logger to write to out.
func setupLogging(cfg *config.Config, out io.Writer) (*logrus.Logger, error) {
	return logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Colors: cfg.Log.Colors,
		Output: out,
	})
}

// newGameClient builds the API client with the configured request timeout.
func newGameClient(cfg *config.Config, log logrus.FieldLogger) (*game.Client, error) {
	return game.NewClient(cfg.API.URL,
		game.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		game.WithLogger(logging.Component(log, "api")),
	)
}
