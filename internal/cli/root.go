package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"planner-cli/internal/config"
	"planner-cli/internal/format"
	"planner-cli/internal/holidays"
	appLog "planner-cli/internal/log"
	"planner-cli/internal/model"
	"planner-cli/internal/query"
	"planner-cli/internal/store"
	"planner-cli/internal/view"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigPath string
	As         string
	PrettyJSON bool
	Format     string
	NoColor    bool
	Verbose    bool

	cfg *config.Config
	// env overrides the clock and id generator (tests).
	env model.Env
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "planner",
		Short:        "Planner (local-first) CLI + TUI for people, groups and their tasks",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive day browser
  planner

  # Add a person and a task
  planner people add "Anna"
  planner tasks create --title "Quarterly report" --assign Anna --start "next friday"

  # What is on today, and how does the month look?
  planner --as Anna tasks day
  planner --as Anna --format table calendar month
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		appLog.Close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PLANNER_DIR", ""), "Path to store dir (overrides store.dir from config)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("PLANNER_CONFIG", ""), "Path to config file (default: ~/.planner/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.As, "as", envOr("PLANNER_AS", ""), "View as person or group (id or name; default: first person)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PLANNER_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Debug logging")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newPeopleCmd(app))
	cmd.AddCommand(newGroupsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCountsCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// setup resolves config and logging once per invocation.
func (app *App) setup() error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if d := strings.TrimSpace(app.Dir); d != "" {
		cfg.Store.Dir = d
		cfg.Backup.Dir = ""
		cfg.Normalize()
	}
	app.cfg = cfg

	level := cfg.Log.Level
	if app.Verbose {
		level = "debug"
	}
	appLog.SetLevel(appLog.ParseLevel(level))
	if cfg.Log.File != "" {
		appLog.SetFile(appLog.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
	}
	view.ApplyColorProfile(app.NoColor)
	return nil
}

func (app *App) config() *config.Config {
	if app.cfg == nil {
		app.cfg = config.Default()
	}
	return app.cfg
}

func (app *App) store() store.Store {
	cfg := app.config()
	b, _ := store.ParseBackend(cfg.Store.Backend)
	return store.Store{Dir: cfg.Store.Dir, Backend: b}
}

func (app *App) labels() view.Labels { return view.For(app.config().Locale) }

func (app *App) now() time.Time { return app.env.Time() }

func (app *App) today() string { return app.env.Today() }

// openWorkspace opens the store; callers must Close the workspace, which
// flushes any pending save.
func openWorkspace(ctx context.Context, app *App) (*store.Workspace, error) {
	gw, err := app.store().Open(ctx)
	if err != nil {
		return nil, err
	}
	env := app.env
	if env.Now == nil && env.NewID == nil {
		env = model.DefaultEnv()
	}
	ws, err := store.OpenWorkspace(ctx, gw, store.WorkspaceOpts{Env: env, Debounce: app.config().SaveDebounce()})
	if err != nil {
		_ = gw.Close()
		return nil, err
	}
	return ws, nil
}

// withWorkspace runs fn against an open workspace and closes it afterwards.
func withWorkspace(cmd *cobra.Command, app *App, fn func(ctx context.Context, ws *store.Workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := openWorkspace(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	runErr := fn(ctx, ws)
	if err := ws.Close(ctx); err != nil && runErr == nil {
		return writeErr(cmd, err)
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}

func (app *App) engine(doc *model.Document) *query.Engine {
	return query.New(doc, app.config().Locale)
}

// viewRoot resolves --as (or the first person) to a person or group id.
func (app *App) viewRoot(doc *model.Document) (string, error) {
	ref := strings.TrimSpace(app.As)
	if ref == "" {
		if len(doc.People) == 0 {
			return "", errNoPeople
		}
		return doc.People[0].ID, nil
	}
	p, err := findPerson(doc, ref)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (app *App) holidays() holidays.Provider {
	h := app.config().Holidays
	if len(h.Public) == 0 && len(h.School) == 0 {
		return holidays.None{}
	}
	return holidays.NewICSProvider(holidays.Options{
		Public:  h.Public,
		School:  h.School,
		Timeout: app.config().HolidayTimeout(),
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
