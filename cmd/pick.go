package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/session"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pickCmd = &cobra.Command{
	Use:   "pick [flags]",
	Short: "Pick a range interactively",
	Long: `Start an interactive picker reading commands from stdin. Every
selected range is reported in the chosen output format.

With the update button shown (the default) typed and picked dates are
held until "refresh"; with --update-button=false each valid edit is
reported at once. Quick selections are always reported at once.

When a config file is in use, changes to picker.min_date and
picker.max_date are applied while the session runs.

Examples:
  superdate pick
  superdate pick --update-button=false --min 30d
  echo "last 7 days" | superdate pick --format json`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().String("update-button", "true", "update button: true, false or icon-only")
	pickCmd.Flags().String("button-style", "filled", "update button style: filled or outline")
	pickCmd.Flags().Bool("quick-select", true, "show the quick select menu")
	pickCmd.Flags().Bool("disabled", false, "render the picker read-only")
	pickCmd.Flags().String("start", "", "initial start (pattern, timestamp or relative like 1h)")
	pickCmd.Flags().String("end", "", "initial end (pattern, timestamp or relative like 1h)")

	_ = viper.BindPFlag("picker.update_button", pickCmd.Flags().Lookup("update-button"))
	_ = viper.BindPFlag("picker.update_button_style", pickCmd.Flags().Lookup("button-style"))
	_ = viper.BindPFlag("picker.show_quick_select", pickCmd.Flags().Lookup("quick-select"))
	_ = viper.BindPFlag("picker.disabled", pickCmd.Flags().Lookup("disabled"))
	_ = viper.BindPFlag("picker.initial_start", pickCmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("picker.initial_end", pickCmd.Flags().Lookup("end"))

	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	opts, err := env.pickerOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	wr, err := newWriter(out, env.cfg, env.spec)
	if err != nil {
		return err
	}

	s := session.New(opts, out, wr)
	if in, ok := cmd.InOrStdin().(*os.File); ok && output.IsTerminal(in) {
		s.WithPrompt(true)
		fmt.Fprintln(out, `type "help" for commands`)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	reloads := make(chan config.Bounds)
	env.watchBounds(ctx, reloads)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Run(ctx, cmd.InOrStdin(), reloads)
	}()

	select {
	case <-sigChan:
		cancel()
		<-errChan
		return nil
	case err := <-errChan:
		return err
	}
}

// watchBounds forwards bounds from the config file to reloads whenever the
// file changes. It does nothing when no config file was read.
func (env *environment) watchBounds(ctx context.Context, reloads chan<- config.Bounds) {
	if viper.ConfigFileUsed() == "" {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		b, err := reloadBounds(env)
		if err != nil {
			env.log.Error("config reload failed", "file", e.Name, "error", err)
			return
		}
		env.log.Info("config changed", "file", e.Name, "op", e.Op.String())

		select {
		case reloads <- b:
		case <-ctx.Done():
		}
	})
	viper.WatchConfig()
}

func reloadBounds(env *environment) (config.Bounds, error) {
	var pc config.PickerConfig
	if err := viper.UnmarshalKey("picker", &pc); err != nil {
		return config.Bounds{}, fmt.Errorf("failed to unmarshal picker config: %w", err)
	}
	return pc.Bounds(env.clock.Now())
}
