package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/stockmedia-backend/internal/app"
	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

var (
	configPath string
	log        *logger.Logger
	cfg        app.Config
)

var rootCmd = &cobra.Command{
	Use:           "stockmedia",
	Short:         "Stock clip and image catalog with semantic search and audio captioning",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		if configPath != "" {
			if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
				return err
			}
		}

		logMode := os.Getenv("LOG_MODE")
		if logMode == "" {
			logMode = "development"
		}
		l, err := logger.New(logMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l

		loaded, err := app.LoadConfig(log)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (overrides CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
