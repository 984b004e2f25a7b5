// Package session drives a picker from line commands, standing in for the
// popover, calendar and quick-select menu of a graphical picker.
//
// The session goroutine is the only owner of the picker. Input lines and
// configuration reloads arrive on channels and are applied one at a time.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/natural"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/period"
	"github.com/bimmerbailey/superdate/internal/picker"
)

// ErrQuit is returned by Exec when the user ends the session.
var ErrQuit = errors.New("quit")

const helpText = `commands:
  start <text>            type and confirm the start field
  end <text>              type and confirm the end field
  pick <start|end> <expr> calendar pick ("yesterday 9am", "next monday", or the date format)
  now <start|end>         set a field to the current time
  last <n> <unit>         quick select, e.g. "last 30 days"
  next <n> <unit>         quick select, e.g. "next 2 hours"
  quick <expr>            quick select expression, e.g. "-15m"
  preset <name>           commonly used range (see "presets")
  presets                 list preset names
  min <time|none>         set or clear the lower bound
  max <time|none>         set or clear the upper bound
  refresh                 press the update button
  show                    print the current state
  help                    print this help
  quit                    leave the session`

// Session is an interactive picker.
type Session struct {
	p      *picker.Picker
	out    io.Writer
	wr     *output.Writer
	clock  period.Clock
	log    *slog.Logger
	prompt bool

	// prior is the state before the current edit; an immediate report
	// carries its validity.
	prior picker.State
}

// New builds the picker from opts and routes its results to wr.
func New(opts picker.Options, out io.Writer, wr *output.Writer) *Session {
	s := &Session{out: out, wr: wr}

	host := opts.OnRangeChange
	opts.OnRangeChange = func(start, end time.Time, isInvalid bool) {
		s.report(start, end, isInvalid)
		if host != nil {
			host(start, end, isInvalid)
		}
	}

	s.p = picker.New(opts)
	s.clock = s.p.Options().Clock
	s.log = s.p.Options().Logger
	return s
}

// WithPrompt prints "> " before each command read by Run.
func (s *Session) WithPrompt(on bool) *Session {
	s.prompt = on
	return s
}

// Picker returns the underlying picker.
func (s *Session) Picker() *picker.Picker {
	return s.p
}

// Run reads commands from in until quit, EOF or ctx is cancelled. Bounds
// received on reloads replace the picker's bounds between commands.
func (s *Session) Run(ctx context.Context, in io.Reader, reloads <-chan config.Bounds) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	s.showPrompt()
	for {
		select {
		case <-ctx.Done():
			return nil

		case b := <-reloads:
			s.Reload(b)

		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return <-readErr
			}
			err := s.Exec(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			s.showPrompt()
		}
	}
}

// Reload applies bounds from a changed configuration.
func (s *Session) Reload(b config.Bounds) {
	s.p.SetBounds(b)
	s.log.Info("bounds reloaded", "min", b.Min, "max", b.Max)
	fmt.Fprintf(s.out, "bounds reloaded: %s\n", s.formatBounds(b))
}

// Exec runs a single command line.
func (s *Session) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.Join(args, " ")

	s.prior = picker.State{}
	switch cmd {
	case "start", "end", "pick", "now":
		s.prior = s.p.Snapshot()
	}

	switch cmd {
	case "start", "end":
		f, _ := picker.ParseField(cmd)
		if rest == "" {
			return fmt.Errorf("usage: %s <text>", cmd)
		}
		if err := s.p.SetInput(f, rest); err != nil {
			return err
		}
		return s.p.Confirm(f)

	case "pick":
		if len(args) < 2 {
			return fmt.Errorf("usage: pick <start|end> <expr>")
		}
		f, err := picker.ParseField(args[0])
		if err != nil {
			return err
		}
		t, err := natural.Parse(strings.Join(args[1:], " "), s.p.Format(), s.clock.Now())
		if err != nil {
			return err
		}
		return s.p.Pick(f, t)

	case "now":
		if len(args) != 1 {
			return fmt.Errorf("usage: now <start|end>")
		}
		f, err := picker.ParseField(args[0])
		if err != nil {
			return err
		}
		return s.p.Now(f)

	case "last", "next":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <n> <unit>", cmd)
		}
		dir, _ := period.ParseDirection(cmd)
		unit, err := period.ParseUnit(args[1])
		if err != nil {
			return err
		}
		return s.p.ApplyRelative(dir, args[0], unit)

	case "quick":
		return s.p.ApplyExpression(rest)

	case "preset":
		return s.p.ApplyPreset(rest)

	case "presets":
		for _, p := range period.Presets() {
			fmt.Fprintf(s.out, "%-14s %s\n", p.Name, p.Label)
		}
		return nil

	case "min", "max":
		return s.setBound(cmd, rest)

	case "refresh":
		return s.p.Refresh()

	case "show":
		s.show()
		return nil

	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return nil

	case "quit", "exit", "q":
		return ErrQuit

	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *Session) setBound(which, value string) error {
	b := s.p.Snapshot().Bounds

	var t time.Time
	if value != "none" && value != "" {
		now := s.clock.Now()
		parsed, err := s.p.Format().Parse(value, now)
		if err != nil {
			parsed, err = config.ParseTimeRef(value, now)
			if err != nil {
				return err
			}
		}
		t = parsed
	}

	if which == "min" {
		b.Min = t
	} else {
		b.Max = t
	}
	s.p.SetBounds(b)
	return nil
}

func (s *Session) report(start, end time.Time, isInvalid bool) {
	row := output.RangeRow{Label: "range", Start: start, End: end, Invalid: isInvalid}
	if isInvalid {
		row.Message = invalidReason(s.p.Snapshot(), s.prior)
	}
	if err := s.wr.WriteRow(row); err != nil {
		s.log.Error("write result", "error", err)
	}
}

// invalidReason names the first error that made a report invalid, looking at
// the current state, then the state before the edit. A quick selection can be
// invalid with none stored when only one bound is set.
func invalidReason(states ...picker.State) string {
	for _, st := range states {
		switch {
		case st.RangeError != "":
			return st.RangeError
		case st.StartError != "":
			return "start: " + st.StartError
		case st.EndError != "":
			return "end: " + st.EndError
		}
	}
	return "outside the allowed dates."
}

func (s *Session) show() {
	st := s.p.Snapshot()

	fieldLine := func(name, input, errMsg string) {
		if errMsg != "" {
			fmt.Fprintf(s.out, "%-7s %s (%s)\n", name+":", input, errMsg)
			return
		}
		fmt.Fprintf(s.out, "%-7s %s\n", name+":", input)
	}
	fieldLine("start", st.StartInput, st.StartError)
	fieldLine("end", st.EndInput, st.EndError)

	fmt.Fprintf(s.out, "%-7s %s\n", "range:", s.wr.FormatRow(output.RangeRow{
		Start:   st.Start,
		End:     st.End,
		Invalid: st.RangeError != "",
		Message: st.RangeError,
	}))
	fmt.Fprintf(s.out, "%-7s %s\n", "bounds:", s.formatBounds(st.Bounds))

	mode := "immediate"
	if st.Deferred {
		opts := s.p.Options()
		mode = fmt.Sprintf("deferred (update_button: %s, style: %s)", opts.UpdateButton, opts.ButtonStyle)
	}
	fmt.Fprintf(s.out, "%-7s %s\n", "mode:", mode)
}

func (s *Session) formatBounds(b config.Bounds) string {
	spec := s.p.Format()
	lo, hi := "-", "-"
	if b.HasMin() {
		lo = spec.Format(b.Min)
	}
	if b.HasMax() {
		hi = spec.Format(b.Max)
	}
	return lo + " .. " + hi
}

func (s *Session) showPrompt() {
	if s.prompt {
		fmt.Fprint(s.out, "> ")
	}
}
