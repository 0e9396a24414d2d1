package cli

import (
	"context"
	"strings"

	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
	"planner-cli/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var name string
	var role string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage (and optionally the first person)",
		RunE: func(cmd *cobra.Command, args []string) error {
			existed := app.store().Exists()
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var created *model.Person
				if n := strings.TrimSpace(name); n != "" {
					if _, ok := ws.Doc().FindPersonByName(n); !ok {
						err := ws.MutateNow(ctx, func(doc *model.Document) error {
							res, err := mutate.AddPerson(doc, n, role, model.PersonTypePerson, nil, ws.Env())
							if err != nil {
								return err
							}
							p := *res.Person
							created = &p
							return nil
						})
						if err != nil {
							return err
						}
					}
				}
				if !existed && created == nil {
					// Persist the empty document so the store exists on disk.
					if err := ws.MutateNow(ctx, func(*model.Document) error { return nil }); err != nil {
						return err
					}
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"dir":     app.config().Store.Dir,
						"backend": app.config().Store.Backend,
						"source":  ws.Source(),
						"created": !existed,
						"person":  created,
					},
				})
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Create a first person with this name")
	cmd.Flags().StringVar(&role, "role", "", "Role of the first person")
	return cmd
}
