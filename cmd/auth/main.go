package main

import (
	"fmt"
	"os"

	"focus-server/internal/config"
	"focus-server/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "focus-auth"

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Authentication service for the Focus productivity app",
		// serve is the default action.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file loaded before the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and installs the global logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Service:  serviceName,
		Env:      cfg.Env,
		Level:    cfg.LogLevel,
		Encoding: cfg.LogFormat,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))
	zap.L().Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("dbDriver", cfg.DBDriver))
	return cfg, log, nil
}
