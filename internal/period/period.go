// Package period resolves quick-select input into concrete ranges: relative
// periods such as "last 30 days" and the named presets of the picker menu.
//
// Unit arithmetic is calendar-aware. Days move by wall-clock days, so a day
// across a DST change is not 24h. Months and years clamp to the last day of
// the target month: Jan 31 plus one month is Feb 28 (or 29).
package period

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
)

// Direction is the side of the anchor a relative period extends to.
type Direction int

const (
	Last Direction = iota
	Next
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	if d == Next {
		return "next"
	}
	return "last"
}

// ParseDirection converts "last" or "next" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "last", "past", "previous":
		return Last, nil
	case "next", "coming":
		return Next, nil
	default:
		return Last, fmt.Errorf("invalid direction %q (expected last or next)", s)
	}
}

// Unit is the step of a relative period.
type Unit int

const (
	Seconds Unit = iota
	Minutes
	Hours
	Days
	Months
	Years
)

// Units lists every supported unit in ascending order.
var Units = []Unit{Seconds, Minutes, Hours, Days, Months, Years}

func unitNames() string {
	names := make([]string, len(Units))
	for i, u := range Units {
		names[i] = u.String()
	}
	return strings.Join(names, ", ")
}

// String returns the plural unit name.
func (u Unit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	case Months:
		return "months"
	case Years:
		return "years"
	default:
		return "unknown"
	}
}

// ParseUnit accepts singular, plural and abbreviated unit names.
// A bare "m" is minutes, as in Go durations; months are "mo".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "secs", "second", "seconds":
		return Seconds, nil
	case "m", "min", "mins", "minute", "minutes":
		return Minutes, nil
	case "h", "hr", "hrs", "hour", "hours":
		return Hours, nil
	case "d", "day", "days":
		return Days, nil
	case "mo", "mon", "month", "months":
		return Months, nil
	case "y", "yr", "yrs", "year", "years":
		return Years, nil
	default:
		return Seconds, fmt.Errorf("invalid unit %q (expected one of %s)", s, unitNames())
	}
}

// Spec is a relative period. It is built from user input, resolved once, then discarded.
type Spec struct {
	Direction Direction
	Magnitude int
	Unit      Unit
}

// String renders the spec as the quick-select expression that parses back to it.
func (s Spec) String() string {
	return fmt.Sprintf("%s %d %s", s.Direction, s.Magnitude, s.Unit)
}

// ParseMagnitude reads the count field of the quick-select menu.
func ParseMagnitude(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return 0, config.NewValidationError(config.MagnitudeError, "enter a number greater than 0")
	}
	return n, nil
}

const year = 365 * 24 * time.Hour

// MaxMagnitude is the largest count of u that Resolve accepts. Every unit is
// capped at the span of a time.Duration, about 292 years.
func MaxMagnitude(u Unit) int {
	switch u {
	case Seconds:
		return int(math.MaxInt64 / int64(time.Second))
	case Minutes:
		return int(math.MaxInt64 / int64(time.Minute))
	case Hours:
		return int(math.MaxInt64 / int64(time.Hour))
	case Days:
		return int(math.MaxInt64 / int64(24*time.Hour))
	case Months:
		return 12 * int(math.MaxInt64/int64(year))
	default:
		return int(math.MaxInt64 / int64(year))
	}
}

// CheckMagnitude rejects counts that are not positive or exceed MaxMagnitude(u).
func CheckMagnitude(n int, u Unit) error {
	if n < 1 {
		return config.NewValidationError(config.MagnitudeError, "enter a number greater than 0")
	}
	if limit := MaxMagnitude(u); n > limit {
		return config.NewValidationError(config.MagnitudeError, "enter at most %d %s", limit, u)
	}
	return nil
}

// Resolve turns s into a range anchored at anchor: last ends at the anchor
// and next starts at it. A magnitude rejected by CheckMagnitude is an error.
func Resolve(s Spec, anchor time.Time) (config.Range, error) {
	if err := CheckMagnitude(s.Magnitude, s.Unit); err != nil {
		return config.Range{}, err
	}
	if s.Direction == Next {
		return config.Range{Start: anchor, End: Shift(anchor, s.Magnitude, s.Unit)}, nil
	}
	return config.Range{Start: Shift(anchor, -s.Magnitude, s.Unit), End: anchor}, nil
}

// Shift moves t by n units; n may be negative and must be within MaxMagnitude(u).
func Shift(t time.Time, n int, u Unit) time.Time {
	switch u {
	case Seconds:
		return t.Add(time.Duration(n) * time.Second)
	case Minutes:
		return t.Add(time.Duration(n) * time.Minute)
	case Hours:
		return t.Add(time.Duration(n) * time.Hour)
	case Days:
		return t.AddDate(0, 0, n)
	case Months:
		return addMonths(t, n)
	case Years:
		return addMonths(t, 12*n)
	default:
		return t
	}
}

// addMonths keeps the day of month unless the target month is shorter.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var (
	compactRe = regexp.MustCompile(`^([+-]?)(\d+)(mo|[smhdy])$`)
	wordsRe   = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\S+)$`)
)

// ParseExpression parses "<last|next> <n> <unit>" or the compact form
// "[+-]<n><unit>" where a missing sign or "-" means last and "+" means next.
func ParseExpression(expr string) (Spec, error) {
	input := strings.ToLower(strings.TrimSpace(expr))
	if input == "" {
		return Spec{}, fmt.Errorf("period expression is empty")
	}

	if m := compactRe.FindStringSubmatch(input); m != nil {
		n, err := ParseMagnitude(m[2])
		if err != nil {
			return Spec{}, err
		}
		u, err := ParseUnit(m[3])
		if err != nil {
			return Spec{}, err
		}
		if err := CheckMagnitude(n, u); err != nil {
			return Spec{}, err
		}
		dir := Last
		if m[1] == "+" {
			dir = Next
		}
		return Spec{Direction: dir, Magnitude: n, Unit: u}, nil
	}

	m := wordsRe.FindStringSubmatch(input)
	if m == nil {
		return Spec{}, fmt.Errorf("invalid period expression %q (examples: last 30 days, next 2 hours, -15m)", expr)
	}

	dir, err := ParseDirection(m[1])
	if err != nil {
		return Spec{}, err
	}
	u, err := ParseUnit(m[3])
	if err != nil {
		return Spec{}, err
	}
	n, err := ParseMagnitude(m[2])
	if err != nil {
		return Spec{}, err
	}
	if err := CheckMagnitude(n, u); err != nil {
		return Spec{}, err
	}
	return Spec{Direction: dir, Magnitude: n, Unit: u}, nil
}
