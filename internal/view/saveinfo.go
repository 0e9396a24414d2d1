package view

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

var germanMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "gerade eben", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s einer Minute", DivBy: 1},
	{D: time.Hour, Format: "%s %d Minuten", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s einer Stunde", DivBy: 1},
	{D: humanize.Day, Format: "%s %d Stunden", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s einem Tag", DivBy: 1},
	{D: humanize.Week, Format: "%s %d Tagen", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s einer Woche", DivBy: 1},
	{D: humanize.Month, Format: "%s %d Wochen", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s einem Monat", DivBy: 1},
	{D: humanize.Year, Format: "%s %d Monaten", DivBy: humanize.Month},
	{D: math.MaxInt64, Format: "%s über einem Jahr", DivBy: 1},
}

// Relative renders then relative to now ("vor 3 Minuten", "3 minutes ago").
func (l Labels) Relative(then, now time.Time) string {
	if l.Locale == "en" {
		return humanize.RelTime(then, now, "ago", "from now")
	}
	return humanize.CustomRelTime(then, now, "vor", "in", germanMagnitudes)
}

// SaveInfo is the status line text for the last successful save.
func (l Labels) SaveInfo(lastSavedAt *time.Time, now time.Time) string {
	if lastSavedAt == nil || lastSavedAt.IsZero() {
		return l.savedNever
	}
	return l.savedAt + ": " + localTime(*lastSavedAt, l) + " (" + l.Relative(*lastSavedAt, now) + ")"
}
