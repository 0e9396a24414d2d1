package cli

import (
	"context"

	"planner-cli/internal/calendar"
	"planner-cli/internal/holidays"
	"planner-cli/internal/model"
	"planner-cli/internal/store"
	"planner-cli/internal/view"

	"github.com/spf13/cobra"
)

type calendarDay struct {
	Day           string       `json:"day"`
	Count         int          `json:"count"`
	Holiday       string       `json:"holiday,omitempty"`
	SchoolHoliday string       `json:"schoolHoliday,omitempty"`
	Tasks         []model.Task `json:"tasks,omitempty"`
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Month and week views for the view root (with holidays)",
	}
	cmd.AddCommand(newCalendarMonthCmd(app))
	cmd.AddCommand(newCalendarWeekCmd(app))
	return cmd
}

func newCalendarMonthCmd(app *App) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Month grid with per-day task counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			month, err := parseMonth(arg, app.now())
			if err != nil {
				return writeErr(cmd, err)
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				root, err := app.viewRoot(doc)
				if err != nil {
					return err
				}
				cfg := app.config()
				grid := calendar.MonthGrid(month, cfg.MondayFirst())
				load := app.engine(doc).DayLoad(root, grid[0], grid[len(grid)-1], q)
				prov := app.holidays()

				days := []calendarDay{}
				for d := calendar.MonthStart(month + "-01"); d <= calendar.MonthEnd(month+"-01"); d = calendar.AddDays(d, 1) {
					days = append(days, annotate(ctx, prov, calendarDay{Day: d, Count: load[d]}))
				}
				text := view.RenderMonth(ctx, view.MonthOptions{
					Month:       month,
					Today:       app.today(),
					MondayFirst: cfg.MondayFirst(),
					Load:        load,
					Holidays:    prov,
					Labels:      app.labels(),
				})
				data := map[string]any{"month": month, "root": root, "days": days}
				return writeOut(cmd, app, map[string]any{"data": rendered{data: data, text: text}})
			})
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "Only count tasks matching this title/note substring")
	return cmd
}

func newCalendarWeekCmd(app *App) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "week [date]",
		Short: "Agenda of the week containing date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := app.today()
			if len(args) == 1 {
				d, err := parseDay(args[0], app.now())
				if err != nil {
					return writeErr(cmd, err)
				}
				day = d
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				root, err := app.viewRoot(doc)
				if err != nil {
					return err
				}
				cfg := app.config()
				eng := app.engine(doc)
				prov := app.holidays()

				start := calendar.WeekStart(day, cfg.MondayFirst())
				days := make([]calendarDay, 0, 7)
				for i := 0; i < 7; i++ {
					d := calendar.AddDays(start, i)
					tasks := eng.TasksForDay(root, d, q)
					days = append(days, annotate(ctx, prov, calendarDay{Day: d, Count: len(tasks), Tasks: tasks}))
				}
				text := view.RenderWeek(ctx, view.WeekOptions{
					Day:         day,
					Today:       app.today(),
					MondayFirst: cfg.MondayFirst(),
					Engine:      eng,
					Root:        root,
					Query:       q,
					Holidays:    prov,
					Labels:      app.labels(),
					Width:       termWidth(),
				})
				data := map[string]any{
					"week":  calendar.ISOWeek(start),
					"start": start,
					"end":   calendar.AddDays(start, 6),
					"root":  root,
					"days":  days,
				}
				return writeOut(cmd, app, map[string]any{"data": rendered{data: data, text: text}})
			})
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "Filter by title/note substring")
	return cmd
}

func annotate(ctx context.Context, prov holidays.Provider, d calendarDay) calendarDay {
	if name, ok := prov.HolidayName(ctx, d.Day); ok {
		d.Holiday = name
	}
	if sh, ok := holidays.InSchoolHoliday(ctx, prov, d.Day); ok {
		d.SchoolHoliday = sh.Name
	}
	return d
}
