package main

import (
	fxmodules "kvk-ranker/internal/fx"
	"kvk-ranker/internal/server"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// config.Load reads the environment, so the flag goes through it.
		if servePort != "" {
			if err := os.Setenv("SERVER_PORT", servePort); err != nil {
				return err
			}
		}
		app := fx.New(
			fxmodules.Module,
			fx.Invoke(server.Run),
		)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
