package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/datefmt"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/period"
	"github.com/bimmerbailey/superdate/internal/picker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "superdate",
	Short: "A date and time range picker for the terminal",
	Long: `Superdate selects, validates and resolves date/time ranges.

It parses typed instants against a configurable pattern, resolves quick
selections like "last 30 days", checks ranges against optional bounds and
runs an interactive picker that reports each selected range.

Examples:
  superdate validate "19.03.2025 10:00"
  superdate resolve last 30 days
  superdate presets this-week
  superdate check "01.03.2025 00:00" "19.03.2025 10:00"
  superdate pick --update-button=false`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.superdate.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("color", "auto", "color invalid results (auto, always, never)")
	rootCmd.PersistentFlags().String("date-format", datefmt.Default, "date pattern, e.g. "+strings.Join(datefmt.Presets, ", "))
	rootCmd.PersistentFlags().String("min", "", "earliest allowed instant (timestamp or relative like 7d)")
	rootCmd.PersistentFlags().String("max", "", "latest allowed instant (timestamp or relative like 7d)")
	rootCmd.PersistentFlags().String("tz", "", "IANA timezone (default is the local zone)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("picker.date_format", rootCmd.PersistentFlags().Lookup("date-format"))
	_ = viper.BindPFlag("picker.min_date", rootCmd.PersistentFlags().Lookup("min"))
	_ = viper.BindPFlag("picker.max_date", rootCmd.PersistentFlags().Lookup("max"))
	_ = viper.BindPFlag("picker.timezone", rootCmd.PersistentFlags().Lookup("tz"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".superdate")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SUPERDATE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func setDefaults() {
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("color", "auto")
	viper.SetDefault("picker.date_format", datefmt.Default)
	viper.SetDefault("picker.show_quick_select", true)
	viper.SetDefault("picker.update_button", "true")
	viper.SetDefault("picker.update_button_style", "filled")
	viper.SetDefault("picker.disabled", false)
}

// loadConfig unmarshals the merged flags, env and file settings.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newWriter builds the output writer for cmd from the format, color and
// date pattern settings.
func newWriter(w io.Writer, cfg *config.Config, spec datefmt.Spec) (*output.Writer, error) {
	mode, err := output.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}
	return output.New(w, output.ParseFormat(cfg.Format)).WithDateFormat(spec).WithColor(mode), nil
}

// environment is what every command needs: the compiled pattern, the
// clock anchored in the configured zone and the resolved bounds.
type environment struct {
	cfg    *config.Config
	spec   datefmt.Spec
	clock  period.Clock
	bounds config.Bounds
	log    *slog.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	spec, err := datefmt.Compile(cfg.Picker.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid date_format: %w", err)
	}

	loc, err := cfg.Picker.Location()
	if err != nil {
		return nil, err
	}
	clock := period.ClockFunc(func() time.Time { return time.Now().In(loc) })

	bounds, err := cfg.Picker.Bounds(clock.Now())
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.Verbose)
	log.Info("environment loaded", "date_format", spec.String(), "layout", spec.Layout(), "location", loc.String())

	return &environment{
		cfg:    cfg,
		spec:   spec,
		clock:  clock,
		bounds: bounds,
		log:    log,
	}, nil
}

// pickerOptions maps the picker section of the config to picker.Options.
func (env *environment) pickerOptions() (picker.Options, error) {
	pc := env.cfg.Picker

	button, err := picker.ParseUpdateButton(pc.UpdateButton)
	if err != nil {
		return picker.Options{}, err
	}

	opts := picker.DefaultOptions()
	opts.Bounds = env.bounds
	opts.Disabled = pc.Disabled
	opts.ShowQuickSelect = pc.ShowQuickSelect
	opts.UpdateButton = button
	opts.ButtonStyle = picker.ParseButtonStyle(pc.UpdateButtonStyle)
	opts.Format = env.spec
	opts.Clock = env.clock
	opts.Logger = env.log

	now := env.clock.Now()
	if pc.InitialStart != "" {
		if opts.InitialStart, err = env.parseRef(pc.InitialStart, now); err != nil {
			return picker.Options{}, fmt.Errorf("invalid initial_start: %w", err)
		}
	}
	if pc.InitialEnd != "" {
		if opts.InitialEnd, err = env.parseRef(pc.InitialEnd, now); err != nil {
			return picker.Options{}, fmt.Errorf("invalid initial_end: %w", err)
		}
	}
	return opts, nil
}

// parseRef reads text in the configured pattern, falling back to
// timestamps and relative references.
func (env *environment) parseRef(text string, now time.Time) (time.Time, error) {
	if t, err := env.spec.Parse(text, now); err == nil {
		return t, nil
	}
	return config.ParseTimeRef(text, now)
}
