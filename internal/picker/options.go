package picker

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/datefmt"
	"github.com/bimmerbailey/superdate/internal/period"
)

// UpdateButton controls the confirmation control and with it the dispatch policy.
type UpdateButton int

const (
	ButtonShown UpdateButton = iota
	ButtonIconOnly
	ButtonHidden
)

// String returns the config value of an UpdateButton.
func (b UpdateButton) String() string {
	switch b {
	case ButtonIconOnly:
		return "icon-only"
	case ButtonHidden:
		return "false"
	default:
		return "true"
	}
}

// ParseUpdateButton accepts "true", "false" and "icon-only". Viper's weak
// decoding turns YAML booleans into "1" and "0", which are accepted too.
func ParseUpdateButton(s string) (UpdateButton, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "1", "shown", "show":
		return ButtonShown, nil
	case "false", "0", "hidden", "hide":
		return ButtonHidden, nil
	case "icon-only", "icononly", "icon_only", "icon":
		return ButtonIconOnly, nil
	default:
		return ButtonShown, fmt.Errorf("invalid update button %q (expected true, false or icon-only)", s)
	}
}

// ButtonStyle is the visual variant of the update button.
type ButtonStyle int

const (
	StyleFilled ButtonStyle = iota
	StyleOutline
)

// String returns the string representation of a ButtonStyle.
func (s ButtonStyle) String() string {
	if s == StyleOutline {
		return "outline"
	}
	return "filled"
}

// ParseButtonStyle converts a string to a ButtonStyle, defaulting to filled.
func ParseButtonStyle(s string) ButtonStyle {
	if strings.EqualFold(strings.TrimSpace(s), "outline") {
		return StyleOutline
	}
	return StyleFilled
}

// ChangeFunc receives every dispatched range.
type ChangeFunc func(start, end time.Time, isInvalid bool)

// Options configures a Picker. Start from DefaultOptions; the zero value hides quick select.
type Options struct {
	InitialStart time.Time // default: now - 30 minutes
	InitialEnd   time.Time // default: now
	Bounds       config.Bounds

	Disabled        bool
	ShowQuickSelect bool
	UpdateButton    UpdateButton
	ButtonStyle     ButtonStyle

	Format datefmt.Spec // default: datefmt.Default
	Clock  period.Clock // default: period.SystemClock
	Logger *slog.Logger

	OnRangeChange ChangeFunc
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ShowQuickSelect: true,
		UpdateButton:    ButtonShown,
		ButtonStyle:     StyleFilled,
		Format:          datefmt.MustCompile(datefmt.Default),
		Clock:           period.SystemClock{},
	}
}

func (o Options) withDefaults() Options {
	if o.Format.IsZero() {
		o.Format = datefmt.MustCompile(datefmt.Default)
	}
	if o.Clock == nil {
		o.Clock = period.SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
