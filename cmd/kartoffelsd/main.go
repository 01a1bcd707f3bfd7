package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "kartoffelsd",
	Short:   "kartoffels simulation core daemon",
	Long:    `kartoffelsd boots the kartoffels world registry, resuming persisted worlds and serving as the process entrypoint for the simulation core.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
}

// Subcommands are defined in serve.go (serveCmd) and inspect.go (inspectCmd).

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
