package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statuswall/internal/app"
	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API server",
	Long: `Start the HTTP server.

The server will:
  - Run a first resolution cycle, then one every STATUSWALL_REFRESH_INTERVAL
  - Serve the latest cycle on GET /api/status (?fresh=1 for a new one)
  - Accept manual refreshes on POST /api/refresh
  - Keep last known good statuses in memory, or in Redis when
    STATUSWALL_REDIS_ADDR is set

The server runs until interrupted (Ctrl+C) or receives SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	a, err := app.New(cfg, loggerClient)
	if err != nil {
		loggerClient.Error("startup failed", logger.Error(err))
		return err
	}
	return a.Run()
}
