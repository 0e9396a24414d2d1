package cli

import (
	"context"

	"github.com/spf13/cobra"

	"planner-cli/internal/store"
	"planner-cli/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive day browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
		root := ""
		if len(ws.Doc().People) > 0 {
			r, err := app.viewRoot(ws.Doc())
			if err != nil {
				return err
			}
			root = r
		}
		cfg := app.config()
		return tui.Run(ctx, ws, tui.Options{
			Root:        root,
			Locale:      cfg.Locale,
			MondayFirst: cfg.MondayFirst(),
			Holidays:    app.holidays(),
			Now:         app.env.Now,
		})
	})
}
