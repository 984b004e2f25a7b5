package natural

import (
	"testing"
	"time"

	"github.com/bimmerbailey/superdate/internal/datefmt"
)

var now = time.Date(2025, 4, 16, 14, 30, 0, 0, time.UTC)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func TestParseShortcuts(t *testing.T) {
	spec := datefmt.MustCompile(datefmt.Default)

	got, err := Parse("now", spec, now)
	if err != nil || !got.Equal(now) {
		t.Fatalf("Parse(now) = %v, %v", got, err)
	}

	got, err = Parse("Today", spec, now)
	if err != nil || !got.Equal(time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Parse(today) = %v, %v", got, err)
	}
}

func TestParsePrefersFormat(t *testing.T) {
	spec := datefmt.MustCompile(datefmt.Default)

	got, err := Parse("19.03.2025 10:00", spec, now)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Equal(time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("Parse() = %v", got)
	}
}

func TestParseNaturalLanguage(t *testing.T) {
	spec := datefmt.MustCompile(datefmt.Default)

	tests := []struct {
		input string
		day   time.Time
	}{
		{"yesterday", now.AddDate(0, 0, -1)},
		{"tomorrow", now.AddDate(0, 0, 1)},
		{"3 days ago", now.AddDate(0, 0, -3)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input, spec, now)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !sameDay(got, tt.day) {
				t.Errorf("Parse(%q) = %v, want day of %v", tt.input, got, tt.day)
			}
		})
	}
}

func TestParseNaturalLanguageTruncates(t *testing.T) {
	at := time.Date(2025, 4, 16, 14, 30, 45, 123000000, time.UTC)

	got, err := Parse("3 days ago", datefmt.MustCompile(datefmt.Default), at)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("Parse() = %v, want whole minutes", got)
	}

	got, err = Parse("3 days ago", datefmt.MustCompile("dd.MM.yyyy"), at)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Hour() != 0 || got.Minute() != 0 || !sameDay(got, at.AddDate(0, 0, -3)) {
		t.Errorf("Parse() = %v, want midnight three days back", got)
	}
}

func TestParseInvalid(t *testing.T) {
	spec := datefmt.MustCompile(datefmt.Default)

	for _, input := range []string{"", "   ", "qwerty zxcv"} {
		if _, err := Parse(input, spec, now); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}
