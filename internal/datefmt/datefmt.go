// Package datefmt compiles token patterns such as "dd.MM.yyyy HH:mm" into
// Go time layouts and parses or formats instants with them.
//
// Supported tokens:
//
//	yyyy yy          year
//	MMMM MMM MM M    month (name, abbreviation, padded, unpadded)
//	dd d             day of month
//	EEEE EEE         weekday name (checked for syntax only)
//	HH H             hour 0-23
//	hh h             hour 1-12, combined with a
//	mm m             minute
//	ss s             second
//	SSS              milliseconds, must follow '.' or ','
//	a                AM/PM marker
//
// Letters that are not tokens must be quoted ('T'); two single quotes
// produce a literal quote. Literals may not contain digits or sequences
// that Go would read as layout elements.
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// Default is the pattern used when a picker has no explicit format.
const Default = "dd.MM.yyyy HH:mm"

// Presets lists the patterns offered by the picker's format selector.
var Presets = []string{
	"dd.MM.yyyy HH:mm",
	"dd.MM.yyyy HH:mm:ss",
	"dd.MM.yyyy",
	"HH:mm:ss",
	"dd.MM HH:mm",
}

type field uint16

const (
	fieldYear field = 1 << iota
	fieldMonth
	fieldDay
	fieldHour
	fieldHour12
	fieldMinute
	fieldSecond
	fieldMillis
	fieldMeridiem
)

// Spec is a compiled format pattern. The zero value is not usable; see IsZero.
type Spec struct {
	pattern string
	layout  string
	fields  field
}

// Compile converts a token pattern into a Spec.
func Compile(pattern string) (Spec, error) {
	if strings.TrimSpace(pattern) == "" {
		return Spec{}, fmt.Errorf("date format is empty")
	}

	var (
		layout strings.Builder
		fields field
	)

	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			lit, next, err := readQuoted(runes, i)
			if err != nil {
				return Spec{}, fmt.Errorf("date format %q: %w", pattern, err)
			}
			if err := checkLiteral(lit); err != nil {
				return Spec{}, fmt.Errorf("date format %q: %w", pattern, err)
			}
			layout.WriteString(lit)
			i = next
			continue
		}

		if !isLetter(r) {
			if err := checkLiteral(string(r)); err != nil {
				return Spec{}, fmt.Errorf("date format %q: %w", pattern, err)
			}
			layout.WriteRune(r)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}

		elem, f, err := tokenLayout(r, n)
		if err != nil {
			return Spec{}, fmt.Errorf("date format %q: %w", pattern, err)
		}
		if f == fieldMillis {
			s := layout.String()
			if s == "" || (s[len(s)-1] != '.' && s[len(s)-1] != ',') {
				return Spec{}, fmt.Errorf("date format %q: SSS must follow '.' or ','", pattern)
			}
		}
		if fields&f != 0 {
			return Spec{}, fmt.Errorf("date format %q: duplicate token %q", pattern, strings.Repeat(string(r), n))
		}
		fields |= f
		layout.WriteString(elem)
		i += n
	}

	if fields&fieldHour12 != 0 && fields&fieldMeridiem == 0 {
		return Spec{}, fmt.Errorf("date format %q: 12-hour token requires 'a'", pattern)
	}
	if fields&fieldHour != 0 && fields&fieldHour12 != 0 {
		return Spec{}, fmt.Errorf("date format %q: both 24-hour and 12-hour tokens", pattern)
	}

	return Spec{pattern: pattern, layout: layout.String(), fields: fields}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) Spec {
	s, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the source pattern.
func (s Spec) String() string { return s.pattern }

// Layout returns the equivalent Go time layout.
func (s Spec) Layout() string { return s.layout }

// IsZero reports whether s was never compiled.
func (s Spec) IsZero() bool { return s.layout == "" }

// Format renders t with the pattern.
func (s Spec) Format(t time.Time) string {
	return t.Format(s.layout)
}

// Parse reads text with the pattern in ref's location. Date fields more
// significant than any in the pattern are taken from ref, so "HH:mm:ss"
// parses on ref's day; missing time fields are zero.
func (s Spec) Parse(text string, ref time.Time) (time.Time, error) {
	loc := ref.Location()
	input := strings.TrimSpace(text)

	parsed, err := time.ParseInLocation(s.layout, input, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q as %q: %w", input, s.pattern, err)
	}

	// Fields above the most significant one in the pattern come from ref,
	// fields below it keep the parser's minimum (January, day 1).
	year, month, day := parsed.Date()
	if s.fields&fieldYear == 0 {
		year = ref.Year()
		if s.fields&fieldMonth == 0 {
			month = ref.Month()
			if s.fields&fieldDay == 0 {
				day = ref.Day()
			}
		}
	}

	t := time.Date(year, month, day, parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), loc)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("parse %q as %q: day out of range", input, s.pattern)
	}
	return t, nil
}

// Truncate drops every component of t the pattern cannot represent, so that
// Parse(Format(t), t) equals Truncate(t).
func (s Spec) Truncate(t time.Time) time.Time {
	year, month, day := t.Date()
	if s.fields&fieldYear != 0 {
		if s.fields&fieldMonth == 0 {
			month = time.January
		}
		if s.fields&fieldDay == 0 {
			day = 1
		}
	} else if s.fields&fieldMonth != 0 && s.fields&fieldDay == 0 {
		day = 1
	}
	var hour, minute, sec, nsec int
	if s.fields&(fieldHour|fieldHour12) != 0 {
		hour = t.Hour()
	}
	if s.fields&fieldMinute != 0 {
		minute = t.Minute()
	}
	if s.fields&fieldSecond != 0 {
		sec = t.Second()
	}
	if s.fields&fieldMillis != 0 {
		nsec = t.Nanosecond() / int(time.Millisecond) * int(time.Millisecond)
	}
	return time.Date(year, month, day, hour, minute, sec, nsec, t.Location())
}

func tokenLayout(r rune, n int) (string, field, error) {
	bad := func() (string, field, error) {
		return "", 0, fmt.Errorf("unsupported token %q", strings.Repeat(string(r), n))
	}

	switch r {
	case 'y':
		switch n {
		case 4:
			return "2006", fieldYear, nil
		case 2:
			return "06", fieldYear, nil
		}
	case 'M':
		switch n {
		case 1:
			return "1", fieldMonth, nil
		case 2:
			return "01", fieldMonth, nil
		case 3:
			return "Jan", fieldMonth, nil
		case 4:
			return "January", fieldMonth, nil
		}
	case 'd':
		switch n {
		case 1:
			return "2", fieldDay, nil
		case 2:
			return "02", fieldDay, nil
		}
	case 'E':
		switch n {
		case 1, 2, 3:
			return "Mon", 0, nil
		case 4:
			return "Monday", 0, nil
		}
	case 'H':
		// Go has no unpadded 24-hour element; "15" parses one or two digits.
		if n <= 2 {
			return "15", fieldHour, nil
		}
	case 'h':
		switch n {
		case 1:
			return "3", fieldHour12, nil
		case 2:
			return "03", fieldHour12, nil
		}
	case 'm':
		switch n {
		case 1:
			return "4", fieldMinute, nil
		case 2:
			return "04", fieldMinute, nil
		}
	case 's':
		switch n {
		case 1:
			return "5", fieldSecond, nil
		case 2:
			return "05", fieldSecond, nil
		}
	case 'S':
		if n == 3 {
			return "000", fieldMillis, nil
		}
	case 'a':
		if n == 1 {
			return "PM", fieldMeridiem, nil
		}
	}
	return bad()
}

func readQuoted(runes []rune, start int) (string, int, error) {
	if start+1 < len(runes) && runes[start+1] == '\'' {
		return "'", start + 2, nil
	}

	var b strings.Builder
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != '\'' {
			b.WriteRune(runes[i])
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '\'' {
			b.WriteRune('\'')
			i++
			continue
		}
		return b.String(), i + 1, nil
	}
	return "", 0, fmt.Errorf("unterminated quoted literal")
}

// layoutWords are substrings Go reads as layout elements inside a literal.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm", "Z0", "_"}

func checkLiteral(lit string) error {
	for _, r := range lit {
		if r >= '0' && r <= '9' {
			return fmt.Errorf("literal %q contains a digit", lit)
		}
	}
	for _, w := range layoutWords {
		if strings.Contains(lit, w) {
			return fmt.Errorf("literal %q contains layout element %q", lit, w)
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
