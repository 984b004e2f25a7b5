package cmd

import (
	"strings"

	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/period"
	"github.com/bimmerbailey/superdate/internal/picker"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [flags] [name]",
	Short: "Resolve the commonly used ranges",
	Long: `Resolve the commonly used ranges of the quick select menu. With no
name every preset is printed; with a name only that one is resolved.

Presets: today, this-week, this-month, this-year, yesterday,
week-to-date, month-to-date, year-to-date. Weeks start on Monday.

Examples:
  superdate presets
  superdate presets --format table
  superdate presets "this week"`,
	RunE: runPresets,
}

func init() {
	presetsCmd.Flags().String("at", "", "anchor instant instead of now (pattern, timestamp or relative like 1h)")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	if err := env.anchorAt(cmd); err != nil {
		return err
	}

	presets := period.Presets()
	if len(args) > 0 {
		p, err := period.LookupPreset(strings.Join(args, " "))
		if err != nil {
			return err
		}
		presets = []period.Preset{p}
	}

	rows := make([]output.RangeRow, 0, len(presets))
	for _, preset := range presets {
		row, err := env.quickSelect(preset.Name, func(p *picker.Picker) error {
			return p.ApplyPreset(preset.Name)
		})
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	wr, err := newWriter(cmd.OutOrStdout(), env.cfg, env.spec)
	if err != nil {
		return err
	}
	if len(rows) == 1 {
		return wr.WriteRow(rows[0])
	}
	return wr.WriteRows(rows)
}
