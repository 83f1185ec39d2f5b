package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/talemap/cmd/talemap/internal/ui"
	"github.com/recera/talemap/internal/logging"
	"github.com/recera/talemap/pkg/app"
	"github.com/recera/talemap/pkg/session"
	"github.com/recera/talemap/pkg/theme"
	"github.com/recera/talemap/pkg/viewport"
)

func newPlayCommand() *cobra.Command {
	var (
		logFile    string
		stateFile  string
		centerOnly bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a story in the terminal",
		Long: `Play starts the interactive terminal client. The story map is drawn
next to the scene and can be panned with the arrow keys or the mouse and
zoomed with + and -. The active game is remembered between runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if stateFile != "" {
				cfg.Session.StateFile = stateFile
			}
			if cmd.Flags().Changed("center-only") {
				cfg.Viewport.CenterOnly = centerOnly
			}

			// The terminal belongs to the UI; logs go to a file or nowhere.
			var out io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				out = f
			}
			log, err := setupLogging(cfg, out)
			if err != nil {
				return err
			}

			client, err := newGameClient(cfg, log)
			if err != nil {
				return err
			}
			store, err := session.OpenFile(cfg.Session.StateFile)
			if err != nil {
				return err
			}

			bridge := ui.NewBridge()
			pane := ui.NewMapPane(nil)
			vpOpts := cfg.ViewportOptions()
			vpOpts.Logger = logging.Component(log, "viewport")
			engine := viewport.New(bridge, pane, vpOpts)
			defer engine.Close()

			ctrl := app.New(client, store, bridge, pane, engine, &app.Options{
				CenterOnly: cfg.Viewport.CenterOnly,
				Logger:     logging.Component(log, "app"),
			})
			th := theme.NewController(store, ui.SystemMode(), logging.Component(log, "theme"))
			th.OnChange(func(theme.Mode) { ctrl.Rerender() })

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			m := ui.New(ctx, ui.Deps{
				Controller: ctrl,
				Engine:     engine,
				Pane:       pane,
				Theme:      th,
				Bridge:     bridge,
				StoryTypes: cfg.Play.StoryTypes,
			})
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file while playing")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "Session state file (default ~/.local/state/talemap/session.yaml)")
	cmd.Flags().BoolVar(&centerOnly, "center-only", false, "Center the whole map instead of the current node")

	return cmd
}
