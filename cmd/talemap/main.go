package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "talemap",
		Short: "Talemap - play branching stories on a zoomable story map",
		Long: `Talemap is the front end for a branching-story game service. It plays
stories in the terminal, serves the browser client during development, and
prints the story map of a game as a Mermaid diagram.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", ".", "Directory containing talemap.yaml")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("api", "", "Game API base URL")

	// Add commands
	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newDiagramCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
