package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bimmerbailey/superdate/internal/config"
	"github.com/bimmerbailey/superdate/internal/output"
	"github.com/bimmerbailey/superdate/internal/period"
	"github.com/bimmerbailey/superdate/internal/picker"
)

var testNow = time.Date(2025, 4, 16, 14, 30, 0, 0, time.UTC)

func newTestSession(button picker.UpdateButton) (*Session, *bytes.Buffer) {
	var buf bytes.Buffer
	opts := picker.DefaultOptions()
	opts.UpdateButton = button
	opts.Clock = period.ClockFunc(func() time.Time { return testNow })
	return New(opts, &buf, output.New(&buf, output.FormatText)), &buf
}

func TestExecImmediateReportsEachEdit(t *testing.T) {
	s, buf := newTestSession(picker.ButtonHidden)

	if err := s.Exec("start 10.04.2025 08:00"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}

	want := "range: 10.04.2025 08:00 -> 16.04.2025 14:30\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestExecImmediateReversedRange(t *testing.T) {
	s, buf := newTestSession(picker.ButtonHidden)

	// the report carries the validity held when the edit was made
	if err := s.Exec("start 17.04.2025 08:00"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	want := "range: 17.04.2025 08:00 -> 16.04.2025 14:30\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := s.Exec("end 18.04.2025 08:00"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	want = "range: 17.04.2025 08:00 -> 18.04.2025 08:00 [invalid] start must not be after end.\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := s.Exec("now end"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if strings.Contains(buf.String(), "[invalid]") {
		t.Errorf("output = %q, want valid", buf.String())
	}
}

func TestExecImmediatePickOverFieldError(t *testing.T) {
	s, buf := newTestSession(picker.ButtonHidden)

	if err := s.Exec("start garbage"); err == nil {
		t.Fatal("Exec() expected error")
	}
	if err := s.Exec("pick start 16.04.2025 09:00"); err != nil {
		t.Fatalf("Exec(pick) error = %v", err)
	}

	want := "range: 16.04.2025 09:00 -> 16.04.2025 14:30 [invalid] start: invalid format, expected dd.MM.yyyy HH:mm\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestExecDeferredWaitsForRefresh(t *testing.T) {
	s, buf := newTestSession(picker.ButtonShown)

	if err := s.Exec("start 10.04.2025 08:00"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("deferred edit produced output %q", buf.String())
	}

	if err := s.Exec("refresh"); err != nil {
		t.Fatalf("Exec(refresh) error = %v", err)
	}
	if !strings.Contains(buf.String(), "range: 10.04.2025 08:00 -> 16.04.2025 14:30") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestExecRefreshWithFieldError(t *testing.T) {
	s, buf := newTestSession(picker.ButtonShown)

	if err := s.Exec("end garbage"); err == nil {
		t.Fatal("Exec() expected error")
	}
	if err := s.Exec("refresh"); err != nil {
		t.Fatalf("Exec(refresh) error = %v", err)
	}

	want := "range: 16.04.2025 14:00 -> 16.04.2025 14:30 [invalid] end: invalid format, expected dd.MM.yyyy HH:mm\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestExecRefreshWithoutButton(t *testing.T) {
	s, _ := newTestSession(picker.ButtonHidden)

	if err := s.Exec("refresh"); !errors.Is(err, picker.ErrNoUpdateButton) {
		t.Errorf("Exec(refresh) error = %v, want ErrNoUpdateButton", err)
	}
}

func TestExecInvalidInput(t *testing.T) {
	s, buf := newTestSession(picker.ButtonHidden)

	err := s.Exec("end yesterday-ish")
	if !config.IsKind(err, config.ParseError) {
		t.Fatalf("Exec() error = %v, want parse error", err)
	}
	if buf.Len() != 0 {
		t.Errorf("rejected input produced output %q", buf.String())
	}

	buf.Reset()
	if err := s.Exec("show"); err != nil {
		t.Fatalf("Exec(show) error = %v", err)
	}
	if !strings.Contains(buf.String(), "end:    yesterday-ish (invalid format") {
		t.Errorf("show = %q", buf.String())
	}
}

func TestExecQuickSelect(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"last 30 days", "range: 17.03.2025 14:30 -> 16.04.2025 14:30"},
		{"next 2 hours", "range: 16.04.2025 14:30 -> 16.04.2025 16:30"},
		{"quick -15m", "range: 16.04.2025 14:15 -> 16.04.2025 14:30"},
		{"preset today", "range: 16.04.2025 00:00 -> 16.04.2025 14:30"},
		{"preset This week", "range: 14.04.2025 00:00 -> 16.04.2025 14:30"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			// quick select reports at once even with an update button
			s, buf := newTestSession(picker.ButtonShown)
			if err := s.Exec(tt.line); err != nil {
				t.Fatalf("Exec(%q) error = %v", tt.line, err)
			}
			if got := strings.TrimSpace(buf.String()); got != tt.want {
				t.Errorf("Exec(%q) output = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExecRejectsMagnitude(t *testing.T) {
	for _, n := range []string{"0", "-5", "abc", "200000"} {
		t.Run(n, func(t *testing.T) {
			s, buf := newTestSession(picker.ButtonHidden)
			before := s.Picker().Range()

			err := s.Exec("last " + n + " days")
			if !config.IsKind(err, config.MagnitudeError) {
				t.Fatalf("Exec() error = %v, want magnitude error", err)
			}
			if buf.Len() != 0 {
				t.Errorf("output = %q, want none", buf.String())
			}
			if s.Picker().Range() != before {
				t.Errorf("range changed after rejected count")
			}
		})
	}
}

func TestExecPickAndNow(t *testing.T) {
	s, _ := newTestSession(picker.ButtonShown)

	if err := s.Exec("pick start yesterday"); err != nil {
		t.Fatalf("Exec(pick) error = %v", err)
	}
	if got := s.Picker().Range().Start; got.Day() != 15 {
		t.Errorf("start = %v, want April 15", got)
	}

	if err := s.Exec("pick end 12.04.2025 09:00"); err != nil {
		t.Fatalf("Exec(pick) error = %v", err)
	}
	if got := s.Picker().Range().End; !got.Equal(time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", got)
	}

	if err := s.Exec("now end"); err != nil {
		t.Fatalf("Exec(now) error = %v", err)
	}
	if got := s.Picker().Range().End; !got.Equal(testNow) {
		t.Errorf("end = %v, want %v", got, testNow)
	}
}

func TestExecBounds(t *testing.T) {
	s, buf := newTestSession(picker.ButtonShown)

	for _, line := range []string{"min 01.04.2025 00:00", "max 16.04.2025 00:00", "show"} {
		if err := s.Exec(line); err != nil {
			t.Fatalf("Exec(%q) error = %v", line, err)
		}
	}
	out := buf.String()
	if !strings.Contains(out, "bounds: 01.04.2025 00:00 .. 16.04.2025 00:00") {
		t.Errorf("show = %q, want bounds", out)
	}
	if !strings.Contains(out, "[invalid]") {
		t.Errorf("show = %q, want invalid range", out)
	}

	if err := s.Exec("max none"); err != nil {
		t.Fatalf("Exec(max none) error = %v", err)
	}
	if s.Picker().Snapshot().Bounds.HasMax() {
		t.Error("max still set after clearing")
	}
	if s.Picker().Snapshot().RangeError != "" {
		t.Errorf("range error = %q after clearing max", s.Picker().Snapshot().RangeError)
	}
}

func TestExecShowMode(t *testing.T) {
	tests := []struct {
		name   string
		button picker.UpdateButton
		style  picker.ButtonStyle
		want   string
	}{
		{"immediate", picker.ButtonHidden, picker.StyleFilled, "mode:   immediate\n"},
		{"shown", picker.ButtonShown, picker.StyleFilled, "mode:   deferred (update_button: true, style: filled)\n"},
		{"icon only outline", picker.ButtonIconOnly, picker.StyleOutline, "mode:   deferred (update_button: icon-only, style: outline)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := picker.DefaultOptions()
			opts.UpdateButton = tt.button
			opts.ButtonStyle = tt.style
			opts.Clock = period.ClockFunc(func() time.Time { return testNow })
			s := New(opts, &buf, output.New(&buf, output.FormatText))

			if err := s.Exec("show"); err != nil {
				t.Fatalf("Exec(show) error = %v", err)
			}
			if !strings.HasSuffix(buf.String(), tt.want) {
				t.Errorf("show = %q, want suffix %q", buf.String(), tt.want)
			}
		})
	}
}

func TestExecMisc(t *testing.T) {
	s, buf := newTestSession(picker.ButtonShown)

	if err := s.Exec(""); err != nil {
		t.Errorf("Exec(empty) error = %v", err)
	}
	if err := s.Exec("quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("Exec(quit) error = %v, want ErrQuit", err)
	}
	if err := s.Exec("frobnicate"); err == nil {
		t.Error("Exec(unknown) expected error")
	}
	if err := s.Exec("start"); err == nil {
		t.Error("Exec(start) without text expected error")
	}
	if err := s.Exec("presets"); err != nil {
		t.Fatalf("Exec(presets) error = %v", err)
	}
	if !strings.Contains(buf.String(), "month-to-date") {
		t.Errorf("presets output = %q", buf.String())
	}
}

func TestHostCallback(t *testing.T) {
	type result struct {
		Start     time.Time
		End       time.Time
		IsInvalid bool
	}
	var got []result
	opts := picker.DefaultOptions()
	opts.UpdateButton = picker.ButtonHidden
	opts.Clock = period.ClockFunc(func() time.Time { return testNow })
	opts.OnRangeChange = func(start, end time.Time, isInvalid bool) {
		got = append(got, result{Start: start, End: end, IsInvalid: isInvalid})
	}

	var buf bytes.Buffer
	s := New(opts, &buf, output.New(&buf, output.FormatText))
	if err := s.Exec("now start"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("callback called %d times, want 1", len(got))
	}
	if !got[0].Start.Equal(testNow) || got[0].IsInvalid {
		t.Errorf("callback got %+v", got[0])
	}
}

func TestRunStopsAtQuit(t *testing.T) {
	s, buf := newTestSession(picker.ButtonHidden)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := strings.NewReader("start 10.04.2025 08:00\nbogus\nquit\nstart 11.04.2025 08:00\n")
	if err := s.Run(ctx, in, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "range: 10.04.2025 08:00") {
		t.Errorf("output = %q, want first range", out)
	}
	if !strings.Contains(out, `error: unknown command "bogus"`) {
		t.Errorf("output = %q, want error line", out)
	}
	if strings.Contains(out, "11.04.2025") {
		t.Errorf("output = %q, command after quit was run", out)
	}
}

func TestRunEOF(t *testing.T) {
	s, _ := newTestSession(picker.ButtonShown)

	if err := s.Run(context.Background(), strings.NewReader("show\n"), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRunReload(t *testing.T) {
	s, buf := newTestSession(picker.ButtonShown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan config.Bounds)
	done := make(chan error, 1)
	go func() {
		// blocks until the reload has been taken, then ends the session
		reloads <- config.Bounds{Min: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
		cancel()
	}()

	go func() { done <- s.Run(ctx, neverReader{ctx}, reloads) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
	}

	if !s.Picker().Snapshot().Bounds.HasMin() {
		t.Error("reloaded min not applied")
	}
	if !strings.Contains(buf.String(), "bounds reloaded: 01.04.2025 00:00 .. -") {
		t.Errorf("output = %q", buf.String())
	}
}

// neverReader blocks until ctx is done, like an idle terminal.
type neverReader struct{ ctx context.Context }

func (r neverReader) Read(p []byte) (int, error) {
	<-r.ctx.Done()
	return 0, r.ctx.Err()
}
