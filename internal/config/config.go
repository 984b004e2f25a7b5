// Package config provides configuration types and shared range types for superdate.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Config holds the application-wide configuration.
type Config struct {
	Format  string       `mapstructure:"format"`
	Verbose bool         `mapstructure:"verbose"`
	Color   string       `mapstructure:"color"`
	Picker  PickerConfig `mapstructure:"picker"`
}

// PickerConfig holds the options of a single picker instance.
type PickerConfig struct {
	// DateFormat is the token pattern used to render and parse instants, e.g. "dd.MM.yyyy HH:mm"
	DateFormat string `mapstructure:"date_format"`

	// Bounds and initial values accept absolute timestamps or relative refs like "30m"
	MinDate      string `mapstructure:"min_date"`
	MaxDate      string `mapstructure:"max_date"`
	InitialStart string `mapstructure:"initial_start"`
	InitialEnd   string `mapstructure:"initial_end"`

	Disabled        bool `mapstructure:"disabled"`
	ShowQuickSelect bool `mapstructure:"show_quick_select"`

	// UpdateButton is "true", "false" or "icon-only"
	UpdateButton      string `mapstructure:"update_button"`
	UpdateButtonStyle string `mapstructure:"update_button_style"` // filled or outline

	// Timezone is an IANA name; empty means the local zone
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the configured timezone.
func (pc PickerConfig) Location() (*time.Location, error) {
	if pc.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(pc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", pc.Timezone, err)
	}
	return loc, nil
}

// Bounds resolves MinDate and MaxDate relative to now.
func (pc PickerConfig) Bounds(now time.Time) (Bounds, error) {
	var b Bounds
	if pc.MinDate != "" {
		t, err := ParseTimeRef(pc.MinDate, now)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid min_date: %w", err)
		}
		b.Min = t
	}
	if pc.MaxDate != "" {
		t, err := ParseTimeRef(pc.MaxDate, now)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid max_date: %w", err)
		}
		b.Max = t
	}
	return b, nil
}

// Validate checks values that cannot be detected at unmarshal time.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Color) {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode: %s", c.Color)
	}

	switch strings.ToLower(c.Picker.UpdateButtonStyle) {
	case "", "filled", "fill", "outline":
	default:
		return fmt.Errorf("invalid update_button_style: %s", c.Picker.UpdateButtonStyle)
	}

	if _, err := c.Picker.Location(); err != nil {
		return err
	}

	return nil
}

// Range is a selected window. Start <= End is reported by the checker, never enforced.
type Range struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Bounds constrains acceptable instants. A zero Min or Max is unset.
type Bounds struct {
	Min time.Time `json:"min,omitempty" yaml:"min,omitempty"`
	Max time.Time `json:"max,omitempty" yaml:"max,omitempty"`
}

// HasMin reports whether a lower bound is set.
func (b Bounds) HasMin() bool { return !b.Min.IsZero() }

// HasMax reports whether an upper bound is set.
func (b Bounds) HasMax() bool { return !b.Max.IsZero() }

// Contains reports whether t satisfies every bound that is set.
func (b Bounds) Contains(t time.Time) bool {
	if b.HasMin() && t.Before(b.Min) {
		return false
	}
	if b.HasMax() && t.After(b.Max) {
		return false
	}
	return true
}

// MarshalJSON omits unset bounds instead of encoding the zero time.
func (b Bounds) MarshalJSON() ([]byte, error) {
	out := make(map[string]time.Time, 2)
	if b.HasMin() {
		out["min"] = b.Min
	}
	if b.HasMax() {
		out["max"] = b.Max
	}
	return json.Marshal(out)
}
