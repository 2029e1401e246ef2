package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yigit/flashclass/internal/pkg/logger"
	"github.com/yigit/flashclass/internal/server"
)

// @title Flashclass API
// @version 1.0
// @description Flashcards, folders and classes with role based access control.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Run the Flashclass HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.NewServer(configPath)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to initialize server")
				return err
			}
			if err := srv.Run(); err != nil {
				logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
				return err
			}
			logger.Info().Msg("Application finished gracefully.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the YAML config file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
