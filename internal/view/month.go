package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"planner-cli/internal/calendar"
	"planner-cli/internal/holidays"
)

type MonthOptions struct {
	Month       string // YYYY-MM
	Today       string
	Selected    string
	MondayFirst bool
	// Load maps days to their visible task count.
	Load      map[string]int
	Holidays  holidays.Provider
	Labels    Labels
	CellWidth int
}

const defaultCellWidth = 11

// RenderMonth draws the 6x7 month grid. Each cell shows the day number, a task
// count badge and, on the second line, the holiday or school holiday name.
func RenderMonth(ctx context.Context, o MonthOptions) string {
	w := o.CellWidth
	if w < 6 {
		w = defaultCellWidth
	}
	prov := o.Holidays
	if prov == nil {
		prov = holidays.None{}
	}
	days := calendar.MonthGrid(o.Month, o.MondayFirst)
	if len(days) == 0 {
		return ""
	}
	month := o.Month
	if len(month) > 7 {
		month = month[:7]
	}

	cell := lipgloss.NewStyle().Width(w).MaxWidth(w)
	weekCol := lipgloss.NewStyle().Width(5).Foreground(colorMuted)
	muted := lipgloss.NewStyle().Foreground(colorMuted)

	var rows []string
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).
		Width(5 + 7*w).Align(lipgloss.Center).
		Render(o.Labels.MonthLabel(month))
	rows = append(rows, title)

	head := []string{weekCol.Render(o.Labels.WeekAbbrev())}
	for _, wd := range o.Labels.Weekdays(o.MondayFirst) {
		head = append(head, cell.Render(muted.Render(wd)))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for i := 0; i < len(days); i += 7 {
		week := days[i : i+7]
		line := []string{weekCol.Render(strconv.Itoa(calendar.ISOWeek(week[0])))}
		for _, d := range week {
			line = append(line, cell.Render(monthCell(ctx, d, month, w, o, prov)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func monthCell(ctx context.Context, day, month string, w int, o MonthOptions, prov holidays.Provider) string {
	num := lipgloss.NewStyle()
	switch {
	case !calendar.SameMonth(day, month):
		num = num.Foreground(colorMuted)
	case day == o.Today:
		num = num.Bold(true).Underline(true).Foreground(colorAccent)
	}
	holiday, isHoliday := prov.HolidayName(ctx, day)
	if isHoliday {
		num = num.Foreground(colorHoliday)
	}
	if day == o.Selected {
		num = num.Reverse(true)
	}

	n := strings.TrimLeft(day[8:], "0")
	top := num.Render(fmt.Sprintf("%2s", n))
	if c := o.Load[day]; c > 0 {
		badge := lipgloss.NewStyle().Foreground(colorBadge).Render("•" + DayNumber(c))
		if pad := w - 1 - xansi.StringWidth(top) - xansi.StringWidth(badge); pad > 0 {
			top += strings.Repeat(" ", pad)
		} else {
			top += " "
		}
		top += badge
	}

	bottom := ""
	switch {
	case isHoliday:
		bottom = lipgloss.NewStyle().Foreground(colorHoliday).Render(xansi.Truncate(holiday, w-1, "…"))
	default:
		if r, ok := holidays.InSchoolHoliday(ctx, prov, day); ok {
			bottom = lipgloss.NewStyle().Foreground(colorSchool).Render(xansi.Truncate(r.Name, w-1, "…"))
		}
	}
	return top + "\n" + bottom
}
