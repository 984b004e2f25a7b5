package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
)

// Clock provides the resolution anchor. Use SystemClock in production.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the actual current time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Preset is an entry of the "commonly used" menu.
type Preset struct {
	Name  string
	Label string

	start func(now time.Time) time.Time
}

// Resolve returns the preset's range; every preset ends at the anchor.
func (p Preset) Resolve(anchor time.Time) config.Range {
	return config.Range{Start: p.start(anchor), End: anchor}
}

var presets = []Preset{
	{Name: "today", Label: "Today", start: StartOfDay},
	{Name: "this-week", Label: "This week", start: StartOfWeek},
	{Name: "this-month", Label: "This month", start: StartOfMonth},
	{Name: "this-year", Label: "This year", start: StartOfYear},
	// yesterday runs up to now, not to the end of yesterday
	{Name: "yesterday", Label: "Yesterday", start: func(now time.Time) time.Time {
		return StartOfDay(now).AddDate(0, 0, -1)
	}},
	{Name: "week-to-date", Label: "Week to date", start: StartOfWeek},
	{Name: "month-to-date", Label: "Month to date", start: StartOfMonth},
	{Name: "year-to-date", Label: "Year to date", start: StartOfYear},
}

// Presets returns the catalog in menu order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// LookupPreset finds a preset by name or label, ignoring case, spaces and underscores.
func LookupPreset(name string) (Preset, error) {
	key := normalizePresetName(name)
	for _, p := range presets {
		if p.Name == key || normalizePresetName(p.Label) == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q", name)
}

func normalizePresetName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns midnight of January 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
