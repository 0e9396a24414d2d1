// Package recur advances recurring tasks in place. A recurring task is a single
// series record; completing it moves it to the next occurrence until the series
// is exhausted.
package recur

import (
	"time"

	"planner-cli/internal/calendar"
	"planner-cli/internal/model"
)

// NextStart returns the start of the occurrence after start. Monthly steps clamp
// to the end of the target month.
func NextStart(start string, r model.Repeat) string {
	switch r {
	case model.RepeatDaily:
		return calendar.AddDays(start, 1)
	case model.RepeatWeekly:
		return calendar.AddDays(start, 7)
	case model.RepeatMonthly:
		return calendar.AddMonths(start, 1)
	default:
		return start
	}
}

// Advance moves t to its next occurrence and reports true, or reports false when
// the series is exhausted (the next start would fall after RepeatUntil) or t is
// not recurring. Exhaustion is detected before any field is changed, so on
// false t is untouched and the last occurrence never starts after RepeatUntil.
func Advance(t *model.Task) bool {
	if t == nil || !t.IsRecurring() {
		return false
	}
	start, _, ok := t.Range()
	if !ok {
		return false
	}
	duration := t.Duration()
	next := NextStart(start, t.Repeat)
	if t.RepeatUntil != "" && next > string(t.RepeatUntil) {
		return false
	}
	t.Start = model.Date(next)
	t.End = model.Date(calendar.AddDays(next, duration))
	t.Status = model.StatusPlanned
	t.DoneAt = nil
	return true
}

type Outcome int

const (
	// OutcomeDone means the task reached its terminal done state.
	OutcomeDone Outcome = iota
	// OutcomeAdvanced means a recurring task moved to its next occurrence.
	OutcomeAdvanced
)

func (o Outcome) String() string {
	if o == OutcomeAdvanced {
		return "advanced"
	}
	return "done"
}

// Complete marks t done. Recurring tasks advance instead; an exhausted series
// drops its recurrence and completes as a one-shot task on the same call.
func Complete(t *model.Task, now time.Time) Outcome {
	if Advance(t) {
		return OutcomeAdvanced
	}
	if t.IsRecurring() {
		t.Repeat = model.RepeatNone
		t.RepeatUntil = ""
	}
	ts := now.UTC()
	t.Status = model.StatusDone
	t.DoneAt = &ts
	return OutcomeDone
}

// Upcoming previews up to n occurrence starts after the current one, honoring
// RepeatUntil. t is not modified.
func Upcoming(t model.Task, n int) []string {
	var out []string
	cur := t
	for len(out) < n && Advance(&cur) {
		out = append(out, string(cur.Start))
	}
	return out
}
