package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/talemap/pkg/game"
	"github.com/recera/talemap/pkg/storymap"
)

func newDiagramCommand() *cobra.Command {
	var gameID string

	cmd := &cobra.Command{
		Use:   "diagram [story_map.json]",
		Short: "Print a story map as a Mermaid flowchart",
		Long: `Diagram prints the Mermaid flowchart definition for a story map, read
either from a JSON file holding {"nodes": [...], "edges": [...]} or from the
game given with --game.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (gameID != "") {
				return fmt.Errorf("pass either a story map file or --game")
			}

			var m storymap.Map
			if gameID != "" {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				log, err := setupLogging(cfg, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				client, err := newGameClient(cfg, log)
				if err != nil {
					return err
				}
				st, err := client.Fetch(cmd.Context(), game.ID(gameID))
				if err != nil {
					return err
				}
				if st.StoryMap == nil {
					return fmt.Errorf("game %s has no story map", gameID)
				}
				m = *st.StoryMap
			} else {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				if err := json.Unmarshal(data, &m); err != nil {
					return fmt.Errorf("parse %s: %w", args[0], err)
				}
			}

			def, err := storymap.Definition(&m)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), def)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "Fetch the story map of this game from the API")
	return cmd
}
