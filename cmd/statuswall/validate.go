package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/sources/catalog"
	"github.com/MrSnakeDoc/statuswall/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a catalog file",
	Long: `Validate a catalog file without fetching anything.

Names must be present and unique, and fallbackStatus must be one of
operational, degraded, down or unknown. Sources that can never answer
(unknown type, statuspage without api, html without url) are reported as
warnings: those services resolve to their fallback status.

Exit codes:
  0 - Catalog is valid (warnings included)
  1 - Catalog is invalid

Example:
  statuswall validate -f services.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("file", "f", "", "catalog file (default: $STATUSWALL_SERVICE_FILE)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = config.Load().ServiceFile
	}
	out := cmd.OutOrStdout()

	f, err := catalog.NewLoader(path).Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to read catalog", err.Error(), "check STATUSWALL_SERVICE_FILE or --file"))
		return err
	}

	fmt.Fprintln(out, ui.Bold(fmt.Sprintf("Validating %s...", path)))

	cat, err := catalog.NewMapper().MapServices(f)
	if err != nil {
		problems := splitErrors(err)
		for _, p := range problems {
			ui.ValidationErr(out, "catalog", p.Error(), "")
		}
		fmt.Fprintf(out, "\n%d services declared, %d errors\n", len(f.Services), len(problems))
		return fmt.Errorf("%d validation errors", len(problems))
	}

	for _, svc := range cat.Services {
		ui.ValidationOK(out, svc.Name, describeSource(svc.Source.Type))
	}
	for _, w := range cat.Warnings {
		ui.Warn(out, w)
	}

	fmt.Fprintln(out)
	ui.Success(out, fmt.Sprintf("%d services valid, %d warnings", len(cat.Services), len(cat.Warnings)))
	return nil
}

// splitErrors flattens the joined errors returned by the mapper.
func splitErrors(err error) []error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			return joined.Unwrap()
		}
	}
	return []error{err}
}

func describeSource(t domain.SourceType) string {
	if t == "" {
		return "no source"
	}
	return string(t)
}
