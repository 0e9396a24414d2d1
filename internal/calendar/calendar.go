// Package calendar implements timezone-naive calendar-date arithmetic on ISO
// (YYYY-MM-DD) strings. Every value is a civil date; times of day never enter.
package calendar

import (
	"regexp"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Far is the sort key used for undated items so they order after every real date.
const Far = "9999-12-31"

var reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Parse parses an ISO date. The result is midnight UTC so that day arithmetic
// is not affected by DST transitions.
func Parse(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if !reISODate.MatchString(iso) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(isoLayout, iso, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Valid reports whether iso is a well-formed, existing calendar date.
func Valid(iso string) bool {
	_, ok := Parse(iso)
	return ok
}

// Format renders the civil date of t (in t's own location) as YYYY-MM-DD.
func Format(t time.Time) string {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(isoLayout)
}

// Today returns the local civil date of now.
func Today(now time.Time) string {
	return Format(now.Local())
}

// AddDays shifts iso by n days. Invalid input is returned unchanged.
func AddDays(iso string, n int) string {
	t, ok := Parse(iso)
	if !ok {
		return iso
	}
	return Format(t.AddDate(0, 0, n))
}

// AddMonths shifts iso by n calendar months, clamping the day to the length of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(iso string, n int) string {
	t, ok := Parse(iso)
	if !ok {
		return iso
	}
	y, m, d := t.Date()
	// Normalize the target month first, then clamp the day into it.
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	ty, tm, _ := first.Date()
	return Format(time.Date(ty, tm, clampDay(ty, tm, d), 0, 0, 0, 0, time.UTC))
}

// DaysBetween returns the number of days from start to end (end - start).
// Negative spans and invalid dates yield 0.
func DaysBetween(end, start string) int {
	te, ok1 := Parse(end)
	ts, ok2 := Parse(start)
	if !ok1 || !ok2 {
		return 0
	}
	// Whole-day Unix seconds; time.Duration overflows past ~292 years.
	n := int((te.Unix() - ts.Unix()) / 86400)
	if n < 0 {
		return 0
	}
	return n
}

// InRange reports whether start <= day <= end. ISO strings compare lexically.
func InRange(day, start, end string) bool {
	return day >= start && day <= end
}

// ISOWeek returns the ISO-8601 week number of iso (0 if invalid).
func ISOWeek(iso string) int {
	t, ok := Parse(iso)
	if !ok {
		return 0
	}
	_, w := t.ISOWeek()
	return w
}

// WeekStart returns the first day of the week containing iso. When mondayFirst
// is false weeks start on Sunday.
func WeekStart(iso string, mondayFirst bool) string {
	t, ok := Parse(iso)
	if !ok {
		return iso
	}
	wd := int(t.Weekday()) // Sunday = 0
	offset := wd
	if mondayFirst {
		offset = (wd + 6) % 7
	}
	return Format(t.AddDate(0, 0, -offset))
}

// WeekEnd returns the last day of the week containing iso.
func WeekEnd(iso string, mondayFirst bool) string {
	return AddDays(WeekStart(iso, mondayFirst), 6)
}

// MonthStart returns the first day of the month containing iso.
func MonthStart(iso string) string {
	t, ok := Parse(iso)
	if !ok {
		return iso
	}
	return Format(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// MonthEnd returns the last day of the month containing iso.
func MonthEnd(iso string) string {
	t, ok := Parse(iso)
	if !ok {
		return iso
	}
	y, m := t.Year(), t.Month()
	return Format(time.Date(y, m, daysInMonth(y, m), 0, 0, 0, 0, time.UTC))
}

// MonthGrid returns the 42 days (6 weeks) shown for the month of ym
// ("YYYY-MM" or any date within the month), starting at the week containing
// the first of the month.
func MonthGrid(ym string, mondayFirst bool) []string {
	iso := ym
	if len(strings.TrimSpace(ym)) == len("2006-01") {
		iso = strings.TrimSpace(ym) + "-01"
	}
	first := MonthStart(iso)
	if !Valid(first) {
		return nil
	}
	day := WeekStart(first, mondayFirst)
	out := make([]string, 0, 42)
	for i := 0; i < 42; i++ {
		out = append(out, day)
		day = AddDays(day, 1)
	}
	return out
}

// SameMonth reports whether a and b share year and month.
func SameMonth(a, b string) bool {
	return len(a) >= 7 && len(b) >= 7 && a[:7] == b[:7]
}

// Year returns the year of iso, or 0 when invalid.
func Year(iso string) int {
	t, ok := Parse(iso)
	if !ok {
		return 0
	}
	return t.Year()
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(y int, m time.Month, d int) int {
	if d < 1 {
		return 1
	}
	max := daysInMonth(y, m)
	if d > max {
		return max
	}
	return d
}
