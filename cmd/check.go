package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/picker"
	"github.com/bimmerbailey/superdate/internal/tail"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <start> <end>",
	Short: "Check ranges for order and bounds",
	Long: `Validate both ends of a range and check that start is not after end
and that both lie within --min and --max when both are set.

With --file, every non-empty line of the given files (globs allowed) is
read as "start -> end". Lines starting with # are skipped. With --follow
the file is watched and every appended line is checked as it arrives. A
rotated file is reopened unless --no-reopen is given, which stops instead.

Examples:
  superdate check "01.03.2025 00:00" "19.03.2025 10:00"
  superdate check --min 2025-01-01 --max 2025-12-31 "01.03.2025 00:00" "19.03.2025 10:00"
  superdate check --file "ranges/*.txt" --format table
  superdate check --file ranges.txt --follow --format json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSlice("file", nil, "read ranges from files or glob patterns")
	checkCmd.Flags().Bool("follow", false, "keep checking lines appended to the file (single file only)")
	checkCmd.Flags().Bool("no-reopen", false, "with --follow, stop when the file is rotated instead of reopening it")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	patterns, _ := cmd.Flags().GetStringSlice("file")
	follow, _ := cmd.Flags().GetBool("follow")
	noReopen, _ := cmd.Flags().GetBool("no-reopen")

	if len(patterns) == 0 && len(args) != 2 {
		return fmt.Errorf("expected <start> <end> or --file")
	}
	if len(patterns) > 0 && len(args) > 0 {
		return fmt.Errorf("--file cannot be combined with positional arguments")
	}
	if follow && len(patterns) == 0 {
		return fmt.Errorf("--follow requires --file")
	}
	if noReopen && !follow {
		return fmt.Errorf("--no-reopen requires --follow")
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	var rows []output.RangeRow
	if len(patterns) == 0 {
		rows = append(rows, env.checkRange("range", args[0], args[1]))
	} else {
		files, err := config.ExpandGlobs(patterns)
		if err != nil {
			return err
		}
		if follow {
			if len(files) != 1 {
				return fmt.Errorf("--follow needs exactly one file, got %d", len(files))
			}
			return env.followFile(cmd, files[0], !noReopen)
		}

		collect := func(row output.RangeRow) error {
			rows = append(rows, row)
			return nil
		}
		for _, file := range files {
			if err := env.checkFile(context.Background(), file, false, false, collect); err != nil {
				return err
			}
		}
	}

	wr, err := newWriter(cmd.OutOrStdout(), env.cfg, env.spec)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		err = wr.WriteRow(rows[0])
	} else {
		err = wr.WriteRows(rows)
	}
	if err != nil {
		return err
	}

	invalid := 0
	for _, row := range rows {
		if row.Invalid {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d ranges invalid", invalid, len(rows))
	}
	return nil
}

func (env *environment) checkFile(ctx context.Context, path string, follow, reopen bool, onRow func(output.RangeRow) error) error {
	tailer := tail.New(tail.Options{
		FilePath:     path,
		Follow:       follow,
		FollowRotate: reopen,
		Comment:      "#",
		Logger:       env.log,
		OnLine: func(l tail.Line) error {
			return onRow(env.checkLine(fmt.Sprintf("%s:%d", path, l.Number), l.Text))
		},
	})
	if err := tailer.Run(ctx); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// checkLine checks one "start -> end" line of a range file.
func (env *environment) checkLine(label, line string) output.RangeRow {
	start, end, ok := strings.Cut(line, "->")
	if !ok {
		return output.RangeRow{Label: label, Invalid: true, Message: `expected "start -> end"`}
	}
	return env.checkRange(label, start, end)
}

// checkRange validates both ends, then the range as a whole.
func (env *environment) checkRange(label, startText, endText string) output.RangeRow {
	now := env.clock.Now()
	row := output.RangeRow{Label: label}

	start, err := picker.Validate(strings.TrimSpace(startText), env.spec, env.bounds, now)
	if err != nil {
		row.Invalid, row.Message = true, "start: "+err.Error()
		return row
	}
	end, err := picker.Validate(strings.TrimSpace(endText), env.spec, env.bounds, now)
	if err != nil {
		row.Start, row.Invalid, row.Message = start, true, "end: "+err.Error()
		return row
	}

	row.Start, row.End = start, end
	if v := picker.Check(config.Range{Start: start, End: end}, env.bounds, env.spec); !v.Valid {
		row.Invalid, row.Message = true, v.Message
	}
	return row
}

// followFile checks lines as they are appended until interrupted, or until
// the file is rotated when reopen is off.
func (env *environment) followFile(cmd *cobra.Command, path string, reopen bool) error {
	wr, err := newWriter(cmd.OutOrStdout(), env.cfg, env.spec)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- env.checkFile(ctx, path, true, reopen, wr.WriteRow)
	}()

	select {
	case <-sigChan:
		cancel()
		<-errChan
		return nil
	case err := <-errChan:
		if errors.Is(err, tail.ErrRotated) {
			env.log.Info("followed file rotated, stopping", "path", path)
			return nil
		}
		return err
	}
}
