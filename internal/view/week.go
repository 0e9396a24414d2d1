package view

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"planner-cli/internal/calendar"
	"planner-cli/internal/holidays"
	"planner-cli/internal/model"
	"planner-cli/internal/query"
)

type WeekOptions struct {
	Day         string
	Today       string
	MondayFirst bool
	Engine      *query.Engine
	Root        string
	Query       string
	Holidays    holidays.Provider
	Labels      Labels
	Width       int
}

// RenderWeek lists the visible tasks of each day in the week containing o.Day.
func RenderWeek(ctx context.Context, o WeekOptions) string {
	prov := o.Holidays
	if prov == nil {
		prov = holidays.None{}
	}
	start := calendar.WeekStart(o.Day, o.MondayFirst)
	if !calendar.Valid(start) {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(colorMuted)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorAccent).
		Render(o.Labels.WeekAbbrev() + " " + strconv.Itoa(calendar.ISOWeek(start)) + " · " + start + " – " + calendar.AddDays(start, 6)))
	b.WriteString("\n")
	for i := 0; i < 7; i++ {
		d := calendar.AddDays(start, i)
		b.WriteString("\n")
		b.WriteString(DayHeader(ctx, d, o.Today, o.Labels, prov))
		b.WriteString("\n")
		tasks := o.Engine.TasksForDay(o.Root, d, o.Query)
		if len(tasks) == 0 {
			b.WriteString("  " + muted.Render(dash) + "\n")
			continue
		}
		for _, t := range tasks {
			b.WriteString("  " + TaskLine(t, o.Labels, o.Width-2) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DayHeader renders "Mo 12.05." followed by any holiday annotations.
func DayHeader(ctx context.Context, day, today string, l Labels, prov holidays.Provider) string {
	st := lipgloss.NewStyle().Bold(true)
	if day == today {
		st = st.Underline(true).Foreground(colorAccent)
	}
	out := st.Render(l.Weekday(day) + " " + shortDate(day, l))
	if name, ok := prov.HolidayName(ctx, day); ok {
		out += " " + lipgloss.NewStyle().Foreground(colorHoliday).Render("· "+name)
	}
	if r, ok := holidays.InSchoolHoliday(ctx, prov, day); ok {
		out += " " + lipgloss.NewStyle().Foreground(colorSchool).Render("· "+r.Name)
	}
	return out
}

// TaskLine is the one-line summary of a task used in agendas and lists.
func TaskLine(t model.Task, l Labels, width int) string {
	marker := priorityStyle(t.Priority).Render("●")
	parts := []string{marker}
	if tr := l.TimeRange(t); tr != "" {
		parts = append(parts, tr)
	}
	parts = append(parts, l.Title(t))
	meta := []string{l.Range(t), l.Priority(t.Priority), l.Status(t.Status)}
	if t.IsRecurring() {
		meta = append(meta, "⟳ "+l.Repeat(t.Repeat))
	}
	line := strings.Join(parts, " ") + " " + lipgloss.NewStyle().Foreground(colorMuted).Render("("+strings.Join(meta, " · ")+")")
	if width > 0 && xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "…")
	}
	return line
}

// RenderBuckets lists the visible tasks grouped by status.
func RenderBuckets(b query.Buckets, l Labels, width int) string {
	sections := []struct {
		status model.Status
		tasks  []model.Task
	}{
		{model.StatusInProgress, b.InProgress},
		{model.StatusPlanned, b.Planned},
		{model.StatusBacklog, b.Backlog},
		{model.StatusDone, b.Done},
	}
	head := lipgloss.NewStyle().Bold(true)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	var out strings.Builder
	for i, s := range sections {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(head.Render(l.Status(s.status)+" ("+strconv.Itoa(len(s.tasks))+")") + "\n")
		if len(s.tasks) == 0 {
			out.WriteString("  " + muted.Render(l.EmptyBucket(s.status)) + "\n")
			continue
		}
		for _, t := range s.tasks {
			out.WriteString("  " + TaskLine(t, l, width-2) + "\n")
		}
	}
	return strings.TrimRight(out.String(), "\n")
}
