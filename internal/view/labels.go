// Package view turns planner data into display strings: labels, the save
// status line, the month grid, the week agenda and rendered notes.
package view

import (
	"fmt"
	"strings"
	"time"

	"planner-cli/internal/calendar"
	"planner-cli/internal/model"
)

// Labels holds the user-facing wording for one locale.
type Labels struct {
	Locale string

	priority   [4]string
	status     map[model.Status]string
	repeat     map[model.Repeat]string
	kind       map[model.Kind]string
	weekdays   [7]string // Monday first
	months     [12]string
	emptyBkt   map[model.Status]string
	noDate     string
	untitled   string
	savedNever string
	savedAt    string
	emptyDay   string
	week       string
}

const dash = "—"

var de = Labels{
	Locale:   "de",
	priority: [4]string{"keine", "niedrig", "mittel", "hoch"},
	status: map[model.Status]string{
		model.StatusInProgress: "in Arbeit",
		model.StatusPlanned:    "geplant",
		model.StatusBacklog:    "backlog",
		model.StatusDone:       "erledigt",
	},
	repeat: map[model.Repeat]string{
		model.RepeatDaily:   "täglich",
		model.RepeatWeekly:  "wöchentlich",
		model.RepeatMonthly: "monatlich",
	},
	kind: map[model.Kind]string{
		model.KindTask:        "Aufgabe",
		model.KindAppointment: "Termin",
		model.KindMilestone:   "Meilenstein",
	},
	weekdays: [7]string{"Mo", "Di", "Mi", "Do", "Fr", "Sa", "So"},
	months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
		"Juli", "August", "September", "Oktober", "November", "Dezember"},
	emptyBkt: map[model.Status]string{
		model.StatusInProgress: "Nichts in Arbeit.",
		model.StatusPlanned:    "Keine geplanten Aufgaben.",
		model.StatusBacklog:    "Backlog ist leer.",
		model.StatusDone:       "Noch nichts erledigt.",
	},
	noDate:     "ohne Datum",
	untitled:   "(ohne Titel)",
	savedNever: "Noch nicht gespeichert",
	savedAt:    "Zuletzt gespeichert",
	emptyDay:   "Keine Aufgaben für diesen Tag.",
	week:       "KW",
}

var en = Labels{
	Locale:   "en",
	priority: [4]string{"none", "low", "medium", "high"},
	status: map[model.Status]string{
		model.StatusInProgress: "in progress",
		model.StatusPlanned:    "planned",
		model.StatusBacklog:    "backlog",
		model.StatusDone:       "done",
	},
	repeat: map[model.Repeat]string{
		model.RepeatDaily:   "daily",
		model.RepeatWeekly:  "weekly",
		model.RepeatMonthly: "monthly",
	},
	kind: map[model.Kind]string{
		model.KindTask:        "task",
		model.KindAppointment: "appointment",
		model.KindMilestone:   "milestone",
	},
	weekdays: [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"},
	months: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	emptyBkt: map[model.Status]string{
		model.StatusInProgress: "Nothing in progress.",
		model.StatusPlanned:    "No planned tasks.",
		model.StatusBacklog:    "Backlog is empty.",
		model.StatusDone:       "Nothing done yet.",
	},
	noDate:     "no date",
	untitled:   "(untitled)",
	savedNever: "Not saved yet",
	savedAt:    "Last saved",
	emptyDay:   "No tasks for this day.",
	week:       "W",
}

// For returns the labels for locale; anything but "en" is German.
func For(locale string) Labels {
	if strings.EqualFold(strings.TrimSpace(locale), "en") {
		return en
	}
	return de
}

func (l Labels) Priority(p int) string {
	if p < 0 || p > 3 {
		return l.priority[0]
	}
	return l.priority[p]
}

func (l Labels) Status(s model.Status) string {
	if v, ok := l.status[s]; ok {
		return v
	}
	return dash
}

func (l Labels) Repeat(r model.Repeat) string {
	if v, ok := l.repeat[r]; ok {
		return v
	}
	return dash
}

func (l Labels) Kind(k model.Kind) string {
	if v, ok := l.kind[k]; ok {
		return v
	}
	return l.kind[model.KindTask]
}

// Range renders the task's date span: "ohne Datum" for backlog items, a single
// date for one-day spans and "start → end" otherwise.
func (l Labels) Range(t model.Task) string {
	if t.IsBacklog {
		return l.noDate
	}
	if t.Start.IsZero() || t.End.IsZero() {
		return dash
	}
	if t.Start == t.End {
		return t.Start.String()
	}
	return fmt.Sprintf("%s → %s", t.Start, t.End)
}

// TimeRange renders an appointment's time of day ("09:00–10:30") or "".
func (l Labels) TimeRange(t model.Task) string {
	if t.Kind != model.KindAppointment || t.TimeStart.IsZero() {
		return ""
	}
	if t.TimeEnd.IsZero() {
		return t.TimeStart.String()
	}
	return t.TimeStart.String() + "–" + t.TimeEnd.String()
}

func (l Labels) Title(t model.Task) string {
	if strings.TrimSpace(t.Title) == "" {
		return l.untitled
	}
	return t.Title
}

// Weekdays returns the short weekday names in display order.
func (l Labels) Weekdays(mondayFirst bool) []string {
	out := append([]string(nil), l.weekdays[:]...)
	if !mondayFirst {
		out = append([]string{out[6]}, out[:6]...)
	}
	return out
}

// Weekday returns the short weekday name of an ISO day.
func (l Labels) Weekday(day string) string {
	t, ok := calendar.Parse(day)
	if !ok {
		return ""
	}
	return l.weekdays[(int(t.Weekday())+6)%7]
}

// MonthLabel renders "Mai 2025" for "2025-05".
func (l Labels) MonthLabel(ym string) string {
	t, ok := calendar.Parse(ym + "-01")
	if !ok {
		return ym
	}
	return fmt.Sprintf("%s %d", l.months[t.Month()-1], t.Year())
}

func (l Labels) EmptyBucket(s model.Status) string { return l.emptyBkt[s] }

func (l Labels) EmptyDay() string { return l.emptyDay }

func (l Labels) WeekAbbrev() string { return l.week }

// Persons joins the names of ids, skipping unknown ones.
func Persons(doc *model.Document, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := doc.FindPerson(id); ok {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

// DayNumber formats a badge count; large counts collapse to "99+".
func DayNumber(n int) string {
	if n > 99 {
		return "99+"
	}
	return fmt.Sprint(n)
}

func shortDate(day string, l Labels) string {
	t, ok := calendar.Parse(day)
	if !ok {
		return day
	}
	if l.Locale == "en" {
		return t.Format("Jan 2")
	}
	return t.Format("02.01.")
}

func localTime(t time.Time, l Labels) string {
	if l.Locale == "en" {
		return t.Local().Format("2006-01-02 15:04")
	}
	return t.Local().Format("02.01.2006, 15:04")
}
