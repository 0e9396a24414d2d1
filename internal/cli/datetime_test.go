package cli

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local) // Tuesday

	cases := []struct {
		in   string
		want string
	}{
		{"2025-06-01", "2025-06-01"},
		{"1.7.2025", "2025-07-01"},
		{"24.12.2025", "2025-12-24"},
		{"heute", "2025-06-10"},
		{"Morgen", "2025-06-11"},
		{"übermorgen", "2025-06-12"},
		{"gestern", "2025-06-09"},
		{"tomorrow", "2025-06-11"},
	}
	for _, c := range cases {
		got, err := parseDay(c.in, now)
		if err != nil {
			t.Fatalf("parseDay(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseDay(%q) = %s, want %s", c.in, got, c.want)
		}
	}

	for _, bad := range []string{"", "31.02.2025", "quux"} {
		if got, err := parseDay(bad, now); err == nil {
			t.Fatalf("parseDay(%q) = %s, expected error", bad, got)
		}
	}
}

func TestParseMonthAndTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local)
	for in, want := range map[string]string{"": "2025-06", "2025-02": "2025-02", "15.03.2026": "2026-03"} {
		got, err := parseMonth(in, now)
		if err != nil || got != want {
			t.Fatalf("parseMonth(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := parseMonth("2025-13", now); err == nil {
		t.Fatalf("expected invalid month error")
	}

	if tod, err := parseTimeOfDay("9:05"); err != nil || tod != "09:05" {
		t.Fatalf("parseTimeOfDay = %q, %v", tod, err)
	}
	if _, err := parseTimeOfDay("25:00"); err == nil {
		t.Fatalf("expected invalid time error")
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]int{"0": 0, "3": 3, "low": 1, "Mittel": 2, "hoch": 3, "none": 0} {
		got, err := parsePriority(in)
		if err != nil || got != want {
			t.Fatalf("parsePriority(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	if _, err := parsePriority("7"); err == nil {
		t.Fatalf("expected out-of-range priority error")
	}
}
