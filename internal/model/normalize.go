package model

import (
	"strings"

	"planner-cli/internal/calendar"
)

const (
	DefaultPersonName = "Unnamed"
	DefaultTaskTitle  = "(untitled)"
)

// NormalizePerson fills absent ids/timestamps and enforces the person
// invariants: persons carry no members, groups never list themselves.
// It is idempotent and never fails.
func NormalizePerson(p Person, env Env) Person {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = env.ID()
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = DefaultPersonName
	}
	if p.Type != PersonTypeGroup {
		p.Type = PersonTypePerson
	}
	p.Role = strings.TrimSpace(p.Role)
	if p.Type == PersonTypePerson {
		p.Members = []string{}
	} else {
		p.Members = dedupeIDs(p.Members, p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = env.Time().UTC()
	}
	return p
}

// NormalizeTask enforces every task invariant. It is idempotent: once ids and
// timestamps are present, applying it again yields the same record.
func NormalizeTask(t Task, env Env) Task {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		t.ID = env.ID()
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		t.Title = DefaultTaskTitle
	}
	t.Note = strings.TrimSpace(t.Note)
	t.Priority = clampPriority(t.Priority)
	if !ValidKind(t.Kind) {
		t.Kind = KindTask
	}
	if !ValidRepeat(t.Repeat) {
		t.Repeat = RepeatNone
	}
	if !ValidStatus(t.Status) {
		if t.IsBacklog {
			t.Status = StatusBacklog
		} else {
			t.Status = StatusPlanned
		}
	}

	if t.IsBacklog {
		t.Start, t.End = "", ""
		t.TimeStart, t.TimeEnd = "", ""
		t.Repeat = RepeatNone
		t.RepeatUntil = ""
		if t.Status != StatusDone {
			t.Status = StatusBacklog
		}
	} else {
		if !t.Start.Valid() {
			t.Start = Date(env.Today())
		}
		if !t.End.Valid() || t.End < t.Start || t.IsSingleDay() {
			t.End = t.Start
		}
		if !t.RepeatUntil.Valid() {
			t.RepeatUntil = ""
		}
		if t.RepeatUntil != "" && t.RepeatUntil < t.Start {
			t.RepeatUntil = t.Start
		}
		if t.Repeat == RepeatNone {
			t.RepeatUntil = ""
		}
		// Dated tasks cannot sit in the backlog bucket. This goes further than
		// coercing invalid statuses: a stored "backlog" with dates becomes planned.
		if t.Status == StatusBacklog {
			t.Status = StatusPlanned
		}
	}

	if t.Kind == KindAppointment {
		if !t.TimeStart.Valid() {
			t.TimeStart = ""
		}
		if !t.TimeEnd.Valid() {
			t.TimeEnd = ""
		}
		if t.TimeStart == "" {
			t.TimeEnd = ""
		}
		if t.TimeEnd != "" && t.TimeEnd < t.TimeStart {
			t.TimeEnd = t.TimeStart
		}
	} else {
		t.TimeStart, t.TimeEnd = "", ""
	}

	if t.Status != StatusDone {
		t.DoneAt = nil
	}
	t.Assignees = dedupeIDs(t.Assignees, "")
	if t.CreatedAt.IsZero() {
		t.CreatedAt = env.Time().UTC()
	}
	return t
}

// Range returns the task's span, or ok=false for backlog tasks.
func (t Task) Range() (start, end string, ok bool) {
	if t.IsBacklog || t.Start == "" {
		return "", "", false
	}
	end = string(t.End)
	if end == "" {
		end = string(t.Start)
	}
	return string(t.Start), end, true
}

// Duration is the number of days between start and end of the current occurrence.
func (t Task) Duration() int {
	start, end, ok := t.Range()
	if !ok {
		return 0
	}
	return calendar.DaysBetween(end, start)
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 3 {
		return 3
	}
	return p
}

// dedupeIDs trims, drops empties and the excluded id, and keeps first-seen order.
func dedupeIDs(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
