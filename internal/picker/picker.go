// Package picker holds the state of a date range picker and the rules that
// decide whether a selection is valid and when it is reported.
//
// A Picker is driven by discrete user events (confirming typed text, picking
// a date, choosing a quick-select entry, pressing the update button). Each
// mutation of start, end or bounds re-runs the consistency check and stores
// the result, so the validity flag is always current. A Picker is not safe
// for concurrent use; it is owned by the goroutine handling user events.
package picker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/datefmt"
	"github.com/bimmerbailey/superdate/internal/period"
)

var (
	ErrDisabled          = errors.New("picker is disabled")
	ErrQuickSelectHidden = errors.New("quick select is not shown")
	ErrNoUpdateButton    = errors.New("update button is hidden; changes are reported immediately")
)

// Field names one of the two ends of the range.
type Field int

const (
	Start Field = iota
	End
)

// String returns the string representation of a Field.
func (f Field) String() string {
	if f == End {
		return "end"
	}
	return "start"
}

// ParseField converts "start" or "end" to a Field.
func ParseField(s string) (Field, error) {
	switch s {
	case "start", "from":
		return Start, nil
	case "end", "to":
		return End, nil
	default:
		return Start, fmt.Errorf("invalid field %q (expected start or end)", s)
	}
}

// State is a read-only view of the picker.
type State struct {
	Start      time.Time
	End        time.Time
	StartInput string
	EndInput   string
	StartError string
	EndError   string
	RangeError string
	Bounds     config.Bounds
	Deferred   bool
}

// Invalid reports whether any field or range error is present.
func (s State) Invalid() bool {
	return s.StartError != "" || s.EndError != "" || s.RangeError != ""
}

type fieldState struct {
	value time.Time
	input string
	err   *config.ValidationError
}

// Picker is the range state of one picker instance.
type Picker struct {
	opts   Options
	log    *slog.Logger
	fields [2]fieldState
	bounds config.Bounds

	rangeErr *config.ValidationError
}

// New creates a Picker and runs the initial consistency check.
func New(opts Options) *Picker {
	opts = opts.withDefaults()

	now := opts.Clock.Now()
	start := opts.InitialStart
	if start.IsZero() {
		start = now.Add(-30 * time.Minute)
	}
	end := opts.InitialEnd
	if end.IsZero() {
		end = now
	}

	p := &Picker{
		opts:   opts,
		log:    opts.Logger,
		bounds: opts.Bounds,
	}
	p.fields[Start] = fieldState{value: start, input: opts.Format.Format(start)}
	p.fields[End] = fieldState{value: end, input: opts.Format.Format(end)}
	p.rangeMutated()
	return p
}

// Deferred reports whether results wait for Refresh.
func (p *Picker) Deferred() bool {
	return p.opts.UpdateButton != ButtonHidden
}

// Format returns the picker's date format.
func (p *Picker) Format() datefmt.Spec {
	return p.opts.Format
}

// Options returns the options the picker was built with, defaults applied.
func (p *Picker) Options() Options {
	return p.opts
}

// SetInput stores typed text without validating it.
func (p *Picker) SetInput(f Field, text string) error {
	if p.opts.Disabled {
		return ErrDisabled
	}
	p.fields[f].input = text
	return nil
}

// Confirm validates the typed text of f. On failure the field error is stored
// and returned and the instant is left unchanged.
func (p *Picker) Confirm(f Field) error {
	if p.opts.Disabled {
		return ErrDisabled
	}

	fs := &p.fields[f]
	t, err := Validate(fs.input, p.opts.Format, p.bounds, p.opts.Clock.Now())
	if err != nil {
		fs.err = err.(*config.ValidationError)
		p.log.Debug("input rejected", "field", f, "input", fs.input, "error", err)
		return err
	}

	wasInvalid := p.rangeErr != nil
	fs.err = nil
	fs.value = t
	p.rangeMutated()
	p.dispatchImmediate(wasInvalid)
	return nil
}

// Pick sets f from the calendar: the instant is taken as is, the text is
// reformatted and any field error is cleared. An immediate report still
// carries the field error the pick replaced.
func (p *Picker) Pick(f Field, t time.Time) error {
	if p.opts.Disabled {
		return ErrDisabled
	}

	wasInvalid := p.rangeErr != nil || p.fields[f].err != nil
	p.fields[f] = fieldState{value: t, input: p.opts.Format.Format(t)}
	p.rangeMutated()
	p.dispatchImmediate(wasInvalid)
	return nil
}

// Now sets f to the current time through the same path as typed input,
// so the bounds apply.
func (p *Picker) Now(f Field) error {
	if err := p.SetInput(f, p.opts.Format.Format(p.opts.Clock.Now())); err != nil {
		return err
	}
	return p.Confirm(f)
}

// SetBounds replaces min and max. Nothing is dispatched.
func (p *Picker) SetBounds(b config.Bounds) {
	p.bounds = b
	p.rangeMutated()
}

// QuickSelect stores r unclamped and reports it at once in both dispatch
// modes. The reported flag is raised when either end lies outside any bound
// that is set, or when r is reversed.
func (p *Picker) QuickSelect(r config.Range) error {
	if p.opts.Disabled {
		return ErrDisabled
	}
	if !p.opts.ShowQuickSelect {
		return ErrQuickSelectHidden
	}

	isInvalid := !p.bounds.Contains(r.Start) || !p.bounds.Contains(r.End) || r.Start.After(r.End)

	p.fields[Start] = fieldState{value: r.Start, input: p.opts.Format.Format(r.Start)}
	p.fields[End] = fieldState{value: r.End, input: p.opts.Format.Format(r.End)}
	p.rangeMutated()

	p.report(r.Start, r.End, isInvalid)
	return nil
}

// ApplyRelative resolves a "last/next N unit" entry against the current time.
// An invalid or oversized count leaves the range untouched.
func (p *Picker) ApplyRelative(dir period.Direction, magnitude string, unit period.Unit) error {
	n, err := period.ParseMagnitude(magnitude)
	if err != nil {
		return err
	}
	return p.applySpec(period.Spec{Direction: dir, Magnitude: n, Unit: unit})
}

// ApplyExpression resolves an expression such as "last 30 days" or "-15m".
func (p *Picker) ApplyExpression(expr string) error {
	spec, err := period.ParseExpression(expr)
	if err != nil {
		return err
	}
	return p.applySpec(spec)
}

func (p *Picker) applySpec(spec period.Spec) error {
	r, err := period.Resolve(spec, p.opts.Clock.Now())
	if err != nil {
		return err
	}
	return p.QuickSelect(r)
}

// ApplyPreset resolves a named preset; one anchor is shared by start and end.
func (p *Picker) ApplyPreset(name string) error {
	preset, err := period.LookupPreset(name)
	if err != nil {
		return err
	}
	return p.QuickSelect(preset.Resolve(p.opts.Clock.Now()))
}

// Refresh is the update button: it reports the current range, flagged
// invalid when any field or range error is present.
func (p *Picker) Refresh() error {
	if p.opts.Disabled {
		return ErrDisabled
	}
	if !p.Deferred() {
		return ErrNoUpdateButton
	}

	p.report(p.fields[Start].value, p.fields[End].value, p.Snapshot().Invalid())
	return nil
}

// Range returns the current selection.
func (p *Picker) Range() config.Range {
	return config.Range{Start: p.fields[Start].value, End: p.fields[End].value}
}

// Snapshot returns the current state.
func (p *Picker) Snapshot() State {
	return State{
		Start:      p.fields[Start].value,
		End:        p.fields[End].value,
		StartInput: p.fields[Start].input,
		EndInput:   p.fields[End].input,
		StartError: message(p.fields[Start].err),
		EndError:   message(p.fields[End].err),
		RangeError: message(p.rangeErr),
		Bounds:     p.bounds,
		Deferred:   p.Deferred(),
	}
}

// rangeMutated recomputes the derived range error after start, end or bounds change.
func (p *Picker) rangeMutated() {
	v := Check(p.Range(), p.bounds, p.opts.Format)
	p.rangeErr = v.Err
}

// dispatchImmediate reports a successful edit when there is no update button.
// isInvalid is the validity held when the edit was made; the range error
// recomputed for the edit shows up in the next report.
func (p *Picker) dispatchImmediate(isInvalid bool) {
	if p.Deferred() {
		return
	}
	p.report(p.fields[Start].value, p.fields[End].value, isInvalid)
}

func (p *Picker) report(start, end time.Time, isInvalid bool) {
	p.log.Debug("range dispatched", "start", start, "end", end, "invalid", isInvalid)
	if p.opts.OnRangeChange != nil {
		p.opts.OnRangeChange(start, end, isInvalid)
	}
}

func message(err *config.ValidationError) string {
	if err == nil {
		return ""
	}
	return err.Message
}
