package cmd

import (
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/period"
	"github.com/bimmerbailey/superdate/internal/picker"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <last|next> <n> <unit>",
	Short: "Resolve a quick selection into a concrete range",
	Long: `Turn a relative period into absolute start and end instants.

A "last" period ends now, a "next" period starts now. Months and years
are calendar aware. Units: seconds, minutes, hours, days, months, years.
The compact form -15m, 30d or +2h is accepted as a single argument.

Examples:
  superdate resolve last 30 days
  superdate resolve "next 2 hours"
  superdate resolve -15m
  superdate resolve --at "2025-03-31 12:00" last 1 month`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("at", "", "anchor instant instead of now (pattern, timestamp or relative like 1h)")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	expr := strings.Join(args, " ")

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	if err := env.anchorAt(cmd); err != nil {
		return err
	}

	spec, err := period.ParseExpression(expr)
	if err != nil {
		return err
	}

	row, err := env.quickSelect(spec.String(), func(p *picker.Picker) error {
		return p.ApplyExpression(expr)
	})
	if err != nil {
		return err
	}

	wr, err := newWriter(cmd.OutOrStdout(), env.cfg, env.spec)
	if err != nil {
		return err
	}
	return wr.WriteRow(row)
}

// anchorAt pins the clock to the --at flag when it is set.
func (env *environment) anchorAt(cmd *cobra.Command) error {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return nil
	}

	anchor, err := env.parseRef(at, env.clock.Now())
	if err != nil {
		return err
	}
	env.clock = period.ClockFunc(func() time.Time { return anchor })
	return nil
}

// quickSelect runs apply on a picker that reports at once and returns the
// reported range. The range is not clamped to the bounds; it is flagged
// invalid instead.
func (env *environment) quickSelect(label string, apply func(p *picker.Picker) error) (output.RangeRow, error) {
	opts, err := env.pickerOptions()
	if err != nil {
		return output.RangeRow{}, err
	}
	opts.Disabled = false
	opts.ShowQuickSelect = true

	row := output.RangeRow{Label: label}
	opts.OnRangeChange = func(start, end time.Time, isInvalid bool) {
		row.Start, row.End, row.Invalid = start, end, isInvalid
	}

	p := picker.New(opts)
	if err := apply(p); err != nil {
		return output.RangeRow{}, err
	}

	if row.Invalid {
		row.Message = p.Snapshot().RangeError
		if row.Message == "" {
			row.Message = "outside the allowed dates."
		}
	}
	return row, nil
}
