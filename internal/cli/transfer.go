package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"planner-cli/internal/export"
	appLog "planner-cli/internal/log"
	"planner-cli/internal/migrate"
	"planner-cli/internal/model"
	"planner-cli/internal/store"
)

func newImportCmd(app *App) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import a planner JSON file (current or legacy format)",
		Long: strings.TrimSpace(`
Import a JSON document written by "planner export json" (or the legacy
per-person format).

--mode merge   keeps existing data; persons are matched by id, then name
--mode replace discards the current document
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := migrate.ParseMode(mode)
			if !ok {
				return writeErr(cmd, fmt.Errorf("invalid --mode %q (expected merge|replace)", mode))
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				incoming, err := migrate.Incoming(raw, ws.Env())
				if err != nil {
					appLog.Error("import failed", err, "file", args[0])
					return fmt.Errorf("import failed: %w", err)
				}
				var rep migrate.MergeReport
				var next *model.Document
				if m == migrate.ModeReplace {
					next = migrate.Replace(incoming, ws.Env())
					rep = migrate.MergeReport{PeopleAdded: len(next.People), TasksAdded: len(next.Tasks)}
				} else {
					next, rep = migrate.Merge(ws.Doc(), incoming, ws.Env())
				}
				if err := ws.Replace(ctx, next); err != nil {
					return err
				}
				appLog.Info("import done", "mode", m, "peopleAdded", rep.PeopleAdded, "tasksAdded", rep.TasksAdded, "tasksDropped", rep.TasksDropped)
				return writeOut(cmd, app, map[string]any{
					"data": rep,
					"meta": map[string]any{"mode": m, "people": len(ws.Doc().People), "tasks": len(ws.Doc().Tasks)},
				})
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "merge", "merge|replace")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newExportCmd(app *App) *cobra.Command {
	var out string
	var all bool
	cmd := &cobra.Command{
		Use:       "export <json|csv|ics>",
		Short:     "Export the document (json), or visible tasks (csv, ics)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "csv", "ics"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				var buf bytes.Buffer
				switch kind {
				case "json":
					if err := export.JSON(&buf, doc); err != nil {
						return err
					}
				case "csv", "ics":
					tasks, err := exportTasks(app, doc, all)
					if err != nil {
						return err
					}
					if kind == "csv" {
						err = export.CSV(&buf, doc, tasks, app.labels())
					} else {
						err = export.ICS(&buf, tasks, export.ICSOptions{Now: app.now(), Name: "Planner"})
					}
					if err != nil {
						return err
					}
				default:
					return fmt.Errorf("unknown export format %q (expected json|csv|ics)", args[0])
				}

				if out == "" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if out == "." && kind == "json" {
					out = export.BackupFileName(app.today())
				}
				n := buf.Len()
				if err := atomic.WriteFile(out, &buf); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": out, "format": kind, "bytes": n}})
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout (\".\" names a json backup by date)")
	cmd.Flags().BoolVar(&all, "all", false, "csv/ics: all tasks instead of those visible to the view root")
	return cmd
}

func exportTasks(app *App, doc *model.Document, all bool) ([]model.Task, error) {
	eng := app.engine(doc)
	if all || len(doc.People) == 0 {
		tasks := append([]model.Task{}, doc.Tasks...)
		eng.Sort(tasks)
		return tasks, nil
	}
	root, err := app.viewRoot(doc)
	if err != nil {
		return nil, err
	}
	tasks := eng.TasksVisibleTo(root)
	eng.Sort(tasks)
	return tasks, nil
}
