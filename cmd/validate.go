package cmd

import (
	"errors"
	"fmt"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/picker"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <text>...",
	Short: "Validate typed instants against the date pattern and bounds",
	Long: `Parse each argument with the configured date pattern and check it
against the optional --min and --max bounds. Fields missing from the
pattern are taken from the current time.

Examples:
  superdate validate "19.03.2025 10:00"
  superdate validate --date-format yyyy-MM-dd 2025-03-19
  superdate validate --min 7d "01.01.2020 00:00"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	wr, err := newWriter(cmd.OutOrStdout(), env.cfg, env.spec)
	if err != nil {
		return err
	}

	now := env.clock.Now()
	failed := 0
	for _, text := range args {
		row := output.InstantRow{Input: text}

		t, err := picker.Validate(text, env.spec, env.bounds, now)
		if err != nil {
			failed++
			row.Error = err.Error()
			var verr *config.ValidationError
			if errors.As(err, &verr) {
				row.Kind = verr.Kind.String()
			}
			env.log.Info("input rejected", "input", text, "error", err)
		} else {
			row.Instant = t
		}

		if err := wr.WriteInstant(row); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs invalid", failed, len(args))
	}
	return nil
}
