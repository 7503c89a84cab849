package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statuswall/internal/app"
	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve every service once and print the board",
	Long: `Run a single resolution cycle with an in-memory cache and print the
result, most urgent services first.

Exit codes:
  0 - Cycle completed (whatever the statuses are)
  1 - The catalog could not be loaded

Example:
  statuswall check -f services.yaml
  statuswall check -f services.yaml --json | jq '.summary'`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringP("file", "f", "", "catalog file (default: $STATUSWALL_SERVICE_FILE)")
	checkCmd.Flags().Bool("json", false, "print the cycle as JSON")
	checkCmd.Flags().Duration("timeout", 2*time.Minute, "upper bound for the whole cycle")
	checkCmd.Flags().BoolP("verbose", "v", false, "log at STATUSWALL_LOG_LEVEL instead of errors only")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		cfg.ServiceFile = file
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := "error"
	if verbose {
		level = cfg.LogLevel
	}
	loggerClient := logger.New(level, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	agg, warnings, err := app.Check(ctx, cfg, loggerClient, nil)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load services", err.Error(), "run 'statuswall validate' for details"))
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	}

	for _, w := range warnings {
		ui.Warn(out, w)
	}
	if len(warnings) > 0 {
		fmt.Fprintln(out)
	}
	fmt.Fprint(out, ui.Board(agg, cfg.DisplayLocation))
	return nil
}
