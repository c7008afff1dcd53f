package main

import (
	"kvk-ranker/internal/logger"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "kvk",
	Short:        "Score KvK kingdoms from their kill-stat screenshots",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func Execute() error {
	return rootCmd.Execute()
}

func cliLogger() zerolog.Logger {
	return logger.NewConsole(os.Stderr, verbose)
}
