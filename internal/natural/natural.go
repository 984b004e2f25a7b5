// Package natural reads calendar picks written in English ("yesterday at 9am",
// "next monday", "3 days ago") using olebedev/when, with the picker's own
// format as a fallback.
package natural

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/bimmerbailey/superdate/internal/datefmt"
)

var (
	parserOnce sync.Once
	parser     *when.Parser
)

func nlpParser() *when.Parser {
	parserOnce.Do(func() {
		parser = when.New(nil)
		parser.Add(en.All...)
		parser.Add(common.All...)
	})
	return parser
}

// Parse resolves text against now. "now" and "today" are handled directly;
// text matching spec is parsed with it before the language rules run, so
// "19.03.2025 10:00" is never misread as a time of day. Language results are
// truncated to what spec can show.
func Parse(text string, spec datefmt.Spec, now time.Time) (time.Time, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date expression")
	}

	switch strings.ToLower(input) {
	case "now":
		return now, nil
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}

	if !spec.IsZero() {
		if t, err := spec.Parse(input, now); err == nil {
			return t, nil
		}
	}

	result, err := nlpParser().Parse(input, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", input, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("cannot parse %q (examples: yesterday 9am, next monday, %s)", input, spec)
	}
	t := result.Time.In(now.Location())
	if !spec.IsZero() {
		t = spec.Truncate(t)
	}
	return t, nil
}
