package period

import (
	"testing"
	"time"
)

func TestPresetsResolve(t *testing.T) {
	// Thursday
	anchor := time.Date(2025, 3, 20, 15, 45, 10, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
	}{
		{"today", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)},
		{"this-week", time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)},
		{"this-month", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"this-year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)},
		{"week-to-date", time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)},
		{"month-to-date", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"year-to-date", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LookupPreset(tt.name)
			if err != nil {
				t.Fatalf("LookupPreset() error = %v", err)
			}
			r := p.Resolve(anchor)
			if !r.Start.Equal(tt.start) {
				t.Errorf("start = %v, want %v", r.Start, tt.start)
			}
			if !r.End.Equal(anchor) {
				t.Errorf("end = %v, want anchor %v", r.End, anchor)
			}
		})
	}
}

func TestStartOfWeekIsMonday(t *testing.T) {
	monday := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 7; day++ {
		ts := monday.AddDate(0, 0, day).Add(13 * time.Hour)
		if got := StartOfWeek(ts); !got.Equal(monday) {
			t.Errorf("StartOfWeek(%s) = %v, want %v", ts.Weekday(), got, monday)
		}
	}

	// Sunday belongs to the week that started six days earlier
	sunday := time.Date(2025, 3, 23, 23, 59, 0, 0, time.UTC)
	if got := StartOfWeek(sunday); !got.Equal(monday) {
		t.Errorf("StartOfWeek(sunday) = %v, want %v", got, monday)
	}
}

func TestLookupPresetByLabel(t *testing.T) {
	for _, input := range []string{"This week", "this_week", "  THIS-WEEK "} {
		p, err := LookupPreset(input)
		if err != nil {
			t.Fatalf("LookupPreset(%q) error = %v", input, err)
		}
		if p.Name != "this-week" {
			t.Errorf("LookupPreset(%q) = %s, want this-week", input, p.Name)
		}
	}

	if _, err := LookupPreset("last-century"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestPresetsCatalogOrder(t *testing.T) {
	want := []string{"today", "this-week", "this-month", "this-year", "yesterday", "week-to-date", "month-to-date", "year-to-date"}

	got := Presets()
	if len(got) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Name != want[i] {
			t.Errorf("preset %d = %s, want %s", i, p.Name, want[i])
		}
	}

	got[0].Name = "mutated"
	if Presets()[0].Name != "today" {
		t.Fatal("Presets() must return a copy")
	}
}

func TestClockFunc(t *testing.T) {
	fixed := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
	var c Clock = ClockFunc(func() time.Time { return fixed })
	if !c.Now().Equal(fixed) {
		t.Fatalf("ClockFunc.Now() = %v", c.Now())
	}
}
