package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"planner-cli/internal/format"
	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
	"planner-cli/internal/query"
	"planner-cli/internal/recur"
	"planner-cli/internal/store"
	"planner-cli/internal/view"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Create, edit and query tasks",
	}
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksDayCmd(app))
	cmd.AddCommand(newTaskStatusCmd(app, "start", "Start a planned task", mutate.StartTask))
	cmd.AddCommand(newTaskStatusCmd(app, "pause", "Move an in-progress task back to planned", mutate.PauseTask))
	cmd.AddCommand(newTaskStatusCmd(app, "restore", "Reopen a done task", mutate.RestoreTask))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksUpcomingCmd(app))
	return cmd
}

// taskFlags are shared by create and edit. On edit only flags that were set
// explicitly change the task.
type taskFlags struct {
	title     string
	note      string
	priority  string
	kind      string
	backlog   bool
	start     string
	end       string
	timeStart string
	timeEnd   string
	repeat    string
	until     string
	assign    []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.note, "note", "", "Note (markdown)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (0-3 or none|low|medium|high)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Kind (task|appointment|milestone)")
	cmd.Flags().BoolVar(&f.backlog, "backlog", false, "Put the task in the backlog (no dates)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD, DD.MM.YYYY, \"next friday\", ...)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (defaults to start)")
	cmd.Flags().StringVar(&f.timeStart, "time-start", "", "Start time HH:MM (appointments)")
	cmd.Flags().StringVar(&f.timeEnd, "time-end", "", "End time HH:MM (appointments)")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "Repeat (none|daily|weekly|monthly)")
	cmd.Flags().StringVar(&f.until, "until", "", "Last possible occurrence start of a repeating task")
	cmd.Flags().StringSliceVar(&f.assign, "assign", nil, "Assignee person or group (repeatable, comma-separated)")
}

// apply merges the set flags into in.
func (f *taskFlags) apply(cmd *cobra.Command, app *App, doc *model.Document, in *mutate.TaskInput) error {
	changed := cmd.Flags().Changed
	now := app.now()
	if changed("title") {
		in.Title = f.title
	}
	if changed("note") {
		in.Note = f.note
	}
	if changed("priority") {
		p, err := parsePriority(f.priority)
		if err != nil {
			return err
		}
		in.Priority = p
	}
	if changed("kind") {
		k := model.Kind(strings.ToLower(strings.TrimSpace(f.kind)))
		if !model.ValidKind(k) {
			return mutate.ValidationError{Field: "kind", Msg: fmt.Sprintf("unknown kind %q", f.kind)}
		}
		in.Kind = k
	}
	if changed("start") {
		d, err := parseOptionalDay(f.start, now)
		if err != nil {
			return err
		}
		in.Start = d
		if !changed("end") && (in.End.IsZero() || string(in.End) < string(d)) {
			in.End = d
		}
		if !changed("backlog") && !d.IsZero() {
			in.IsBacklog = false
		}
	}
	if changed("end") {
		d, err := parseOptionalDay(f.end, now)
		if err != nil {
			return err
		}
		in.End = d
	}
	if changed("backlog") {
		in.IsBacklog = f.backlog
	}
	if changed("time-start") {
		t, err := parseTimeOfDay(f.timeStart)
		if err != nil {
			return err
		}
		in.TimeStart = t
	}
	if changed("time-end") {
		t, err := parseTimeOfDay(f.timeEnd)
		if err != nil {
			return err
		}
		in.TimeEnd = t
	}
	if changed("repeat") {
		r := model.Repeat(strings.ToLower(strings.TrimSpace(f.repeat)))
		if r == "" {
			r = model.RepeatNone
		}
		if !model.ValidRepeat(r) {
			return mutate.ValidationError{Field: "repeat", Msg: fmt.Sprintf("unknown repeat %q", f.repeat)}
		}
		in.Repeat = r
	}
	if changed("until") {
		d, err := parseOptionalDay(f.until, now)
		if err != nil {
			return err
		}
		in.RepeatUntil = d
	}
	if changed("assign") {
		ids, err := resolvePeople(doc, f.assign)
		if err != nil {
			return err
		}
		in.Assignees = ids
	}
	return nil
}

func parsePriority(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 3 {
		return n, nil
	}
	switch s {
	case "", "none", "keine":
		return 0, nil
	case "low", "niedrig":
		return 1, nil
	case "medium", "mittel":
		return 2, nil
	case "high", "hoch":
		return 3, nil
	}
	return 0, mutate.ValidationError{Field: "priority", Msg: fmt.Sprintf("unknown priority %q (0-3 or none|low|medium|high)", s)}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task (dated tasks start today unless --start is given)",
		Example: strings.TrimSpace(`
  planner tasks create --title "Dentist" --kind appointment --start 2025-06-10 --time-start 09:00 --assign Anna
  planner tasks create --title "Ideas" --backlog --assign Team
  planner tasks create --title "Standup" --repeat daily --until 2025-12-19 --assign Team
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var out model.Task
				err := ws.Mutate(func(doc *model.Document) error {
					in := mutate.TaskInput{Kind: model.KindTask, Repeat: model.RepeatNone}
					if err := f.apply(cmd, app, doc, &in); err != nil {
						return err
					}
					if !in.IsBacklog && in.Start.IsZero() {
						in.Start = model.Date(app.today())
						if in.End.IsZero() {
							in.End = in.Start
						}
					}
					if len(in.Assignees) == 0 && strings.TrimSpace(app.As) != "" {
						root, err := app.viewRoot(doc)
						if err != nil {
							return err
						}
						in.Assignees = []string{root}
					}
					res, err := mutate.CreateTask(doc, in, ws.Env())
					if err != nil {
						return err
					}
					out = *res.Task
					return nil
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newTasksEditCmd(app *App) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Edit a task (only the given flags change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var out model.Task
				var changed bool
				err := ws.Mutate(func(doc *model.Document) error {
					t, err := findTask(doc, args[0])
					if err != nil {
						return err
					}
					in := mutate.InputFromTask(*t)
					if err := f.apply(cmd, app, doc, &in); err != nil {
						return err
					}
					res, err := mutate.UpdateTask(doc, t.ID, in, ws.Env())
					if err != nil {
						return err
					}
					out, changed = *res.Task, res.Changed
					return nil
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": out, "meta": map[string]any{"changed": changed}})
			})
		},
	}
	f.register(cmd)
	return cmd
}

type taskDetail struct {
	Task     model.Task `json:"task"`
	Persons  string     `json:"persons"`
	Upcoming []string   `json:"upcoming"`
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task (note rendered as markdown in table format)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				t, err := findTask(doc, args[0])
				if err != nil {
					return err
				}
				d := taskDetail{Task: *t, Persons: view.Persons(doc, t.Assignees), Upcoming: recur.Upcoming(*t, 5)}
				if d.Upcoming == nil {
					d.Upcoming = []string{}
				}
				return writeOut(cmd, app, map[string]any{"data": rendered{data: d, text: taskText(d, app.labels())}})
			})
		},
	}
}

func taskText(d taskDetail, l view.Labels) string {
	t := d.Task
	var b strings.Builder
	b.WriteString(view.TaskLine(t, l, termWidth()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s · %s\n", l.Kind(t.Kind), d.Persons)
	if len(d.Upcoming) > 0 {
		fmt.Fprintf(&b, "  ⟳ %s\n", strings.Join(d.Upcoming, ", "))
	}
	if strings.TrimSpace(t.Note) != "" {
		b.WriteString(view.RenderNote(t.Note, termWidth()))
	}
	return strings.TrimRight(b.String(), "\n")
}

func newTasksListCmd(app *App) *cobra.Command {
	var q string
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks visible to the view root, grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				root, err := app.viewRoot(doc)
				if err != nil {
					return err
				}
				b := app.engine(doc).Buckets(root, q)
				if s := strings.TrimSpace(status); s != "" {
					var tasks []model.Task
					switch model.Status(strings.ToLower(s)) {
					case model.StatusInProgress:
						tasks = b.InProgress
					case model.StatusPlanned:
						tasks = b.Planned
					case model.StatusBacklog:
						tasks = b.Backlog
					case model.StatusDone:
						tasks = b.Done
					default:
						return mutate.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", s)}
					}
					return writeOut(cmd, app, map[string]any{"data": taskList{tasks: tasks, doc: doc, labels: app.labels()}})
				}
				text := view.RenderBuckets(b, app.labels(), termWidth())
				return writeOut(cmd, app, map[string]any{"data": rendered{data: b, text: text}})
			})
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "Filter by title/note substring")
	cmd.Flags().StringVar(&status, "status", "", "Only this bucket (inprogress|planned|backlog|done)")
	return cmd
}

func newTasksDayCmd(app *App) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Tasks visible to the view root on one day (default today)",
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
				tasks := app.engine(doc).TasksForDay(root, day, q)
				meta := map[string]any{"day": day}
				if name, ok := app.holidays().HolidayName(ctx, day); ok {
					meta["holiday"] = name
				}
				return writeOut(cmd, app, map[string]any{
					"data": taskList{tasks: tasks, doc: doc, labels: app.labels()},
					"meta": meta,
				})
			})
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "Filter by title/note substring")
	return cmd
}

func newTaskStatusCmd(app *App, use, short string, op func(doc *model.Document, id string) (mutate.TaskResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var out model.Task
				var changed bool
				err := ws.Mutate(func(doc *model.Document) error {
					t, err := findTask(doc, args[0])
					if err != nil {
						return err
					}
					res, err := op(doc, t.ID)
					if err != nil {
						return err
					}
					out, changed = *res.Task, res.Changed
					return nil
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": out, "meta": map[string]any{"changed": changed}})
			})
		},
	}
}

func newTasksDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task>",
		Short: "Complete a task (repeating tasks move to their next occurrence)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var res mutate.CompleteResult
				var out model.Task
				err := ws.Mutate(func(doc *model.Document) error {
					t, err := findTask(doc, args[0])
					if err != nil {
						return err
					}
					res, err = mutate.CompleteTask(doc, t.ID, ws.Env())
					if err != nil {
						return err
					}
					out = *res.Task
					return nil
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": out,
					"meta": map[string]any{"outcome": res.Outcome.String(), "changed": res.Changed},
				})
			})
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var out model.Task
				err := ws.Mutate(func(doc *model.Document) error {
					t, err := findTask(doc, args[0])
					if err != nil {
						return err
					}
					res, err := mutate.DeleteTask(doc, t.ID)
					if err != nil {
						return err
					}
					out = res.Task
					return nil
				})
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": out, "meta": map[string]any{"deleted": true}})
			})
		},
	}
}

func newTasksUpcomingCmd(app *App) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "upcoming <task>",
		Short: "Preview the next occurrence starts of a repeating task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				t, err := findTask(ws.Doc(), args[0])
				if err != nil {
					return err
				}
				next := recur.Upcoming(*t, n)
				if next == nil {
					next = []string{}
				}
				return writeOut(cmd, app, map[string]any{"data": next, "meta": map[string]any{"task": t.ID, "repeat": t.Repeat}})
			})
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 5, "Number of occurrences")
	return cmd
}

func newCountsCmd(app *App) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Bucket counts for the view root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				root, err := app.viewRoot(doc)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": countsTable{Counts: app.engine(doc).BucketCounts(root, q), labels: app.labels()}})
			})
		},
	}
	cmd.Flags().StringVar(&q, "query", "", "Filter by title/note substring")
	return cmd
}

type countsTable struct {
	query.Counts
	labels view.Labels
}

func (c countsTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Counts)
}

func (c countsTable) Table() format.Table {
	l := c.labels
	return format.Table{
		Headers: []string{l.Status(model.StatusInProgress), l.Status(model.StatusPlanned), l.Status(model.StatusBacklog), l.Status(model.StatusDone)},
		Rows:    [][]string{{strconv.Itoa(c.InProgress), strconv.Itoa(c.Planned), strconv.Itoa(c.Backlog), strconv.Itoa(c.Done)}},
	}
}

// termWidth honors $COLUMNS and falls back to 80.
func termWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n >= 40 {
		return n
	}
	return 80
}
