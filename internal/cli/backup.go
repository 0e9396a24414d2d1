package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"planner-cli/internal/format"
	appLog "planner-cli/internal/log"
	"planner-cli/internal/store"

	humanize "github.com/dustin/go-humanize"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Timestamped JSON backups of the document",
	}
	cmd.AddCommand(newBackupNowCmd(app))
	cmd.AddCommand(newBackupListCmd(app))
	cmd.AddCommand(newBackupScheduleCmd(app))
	return cmd
}

func (app *App) backups() store.Backups {
	cfg := app.config()
	return store.Backups{Dir: cfg.Backup.Dir, Keep: cfg.Backup.Keep}
}

func newBackupNowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Write a backup now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				path, err := app.backups().Write(ws.Doc(), app.now())
				if err != nil {
					return err
				}
				appLog.Info("backup written", "path", path)
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
			})
		},
	}
}

type backupList []store.BackupInfo

func (b backupList) Table() format.Table {
	t := format.Table{Headers: []string{"NAME", "TAKEN", "SIZE"}}
	for _, x := range b {
		t.Rows = append(t.Rows, []string{x.Name, humanize.Time(x.TakenAt), humanize.Bytes(uint64(x.Size))})
	}
	return t
}

func newBackupListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.backups().List()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": backupList(list), "meta": map[string]any{"dir": app.config().Backup.Dir}})
		},
	}
}

func newBackupScheduleCmd(app *App) *cobra.Command {
	var spec string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run backups on a cron schedule until interrupted",
		Example: strings.TrimSpace(`
  planner backup schedule                 # backup.schedule from config (default hourly)
  planner backup schedule --cron "*/15 * * * *"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(spec) == "" {
				spec = app.config().Backup.Schedule
			}
			if err := store.ValidateSchedule(spec); err != nil {
				return writeErr(cmd, err)
			}
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				sched, err := store.StartBackupScheduler(spec, ws, app.backups())
				if err != nil {
					return err
				}
				defer sched.Stop()

				if err := writeOut(cmd, app, map[string]any{"data": map[string]any{
					"schedule": spec,
					"dir":      app.config().Backup.Dir,
					"next":     sched.Next().Format(time.RFC3339),
				}}); err != nil {
					return err
				}

				// Keep the document current with writes from other processes.
				changes, err := store.Watch(ctx, ws.Paths(), 0)
				if err != nil {
					appLog.Error("backup watcher disabled", err)
					<-ctx.Done()
					return nil
				}
				for range changes {
					if _, err := ws.Reload(ctx); err != nil {
						appLog.Error("reload failed", err)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Five-field cron spec (default backup.schedule)")
	return cmd
}
