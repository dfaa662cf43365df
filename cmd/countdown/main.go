package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "countdown",
		Short:        "Countdown timer server",
		Long:         "countdown serves a single HH:MM:SS countdown timer to browser and terminal clients over WebSocket and REST.",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
