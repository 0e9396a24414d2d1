package cli

import (
	"context"
	"strings"

	"planner-cli/internal/groups"
	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
	"planner-cli/internal/store"

	"github.com/spf13/cobra"
)

func newPeopleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "people",
		Aliases: []string{"person"},
		Short:   "List and edit persons (and groups)",
	}
	cmd.AddCommand(newPeopleListCmd(app))
	cmd.AddCommand(newPeopleAddCmd(app))
	cmd.AddCommand(newPeopleRenameCmd(app))
	cmd.AddCommand(newPeopleRoleCmd(app))
	cmd.AddCommand(newPeopleDeleteCmd(app))
	cmd.AddCommand(newPeopleShowCmd(app))
	return cmd
}

func newPeopleListCmd(app *App) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons and groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				want := model.PersonType(strings.ToLower(strings.TrimSpace(typ)))
				out := peopleList{}
				for _, p := range ws.Doc().People {
					if want != "" && p.Type != want {
						continue
					}
					out = append(out, p)
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Only list this type (person|group)")
	return cmd
}

func newPeopleAddCmd(app *App) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPerson(cmd, app, args[0], role, model.PersonTypePerson, nil)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Role (free text)")
	return cmd
}

func addPerson(cmd *cobra.Command, app *App, name, role string, typ model.PersonType, memberRefs []string) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
		var out model.Person
		err := ws.Mutate(func(doc *model.Document) error {
			members, err := resolvePeople(doc, memberRefs)
			if err != nil {
				return err
			}
			res, err := mutate.AddPerson(doc, name, role, typ, members, ws.Env())
			if err != nil {
				return err
			}
			out = *res.Person
			return nil
		})
		if err != nil {
			return err
		}
		return writeOut(cmd, app, map[string]any{"data": out})
	})
}

func newPeopleRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <person> <new-name>",
		Short: "Rename a person or group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPerson(cmd, app, args[0], func(doc *model.Document, id string) (mutate.PersonResult, error) {
				return mutate.RenamePerson(doc, id, args[1])
			})
		},
	}
}

func newPeopleRoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "role <person> <role>",
		Short: "Set (or clear with \"\") the role of a person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPerson(cmd, app, args[0], func(doc *model.Document, id string) (mutate.PersonResult, error) {
				return mutate.SetRole(doc, id, args[1])
			})
		},
	}
}

func editPerson(cmd *cobra.Command, app *App, ref string, fn func(doc *model.Document, id string) (mutate.PersonResult, error)) error {
	return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
		var out model.Person
		var changed bool
		err := ws.Mutate(func(doc *model.Document) error {
			p, err := findPerson(doc, ref)
			if err != nil {
				return err
			}
			res, err := fn(doc, p.ID)
			if err != nil {
				return err
			}
			out, changed = *res.Person, res.Changed
			return nil
		})
		if err != nil {
			return err
		}
		return writeOut(cmd, app, map[string]any{"data": out, "meta": map[string]any{"changed": changed}})
	})
}

func newPeopleDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <person>",
		Short: "Delete a person (shows what would happen unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				p, err := findPerson(ws.Doc(), args[0])
				if err != nil {
					return err
				}
				if !yes {
					preview, err := mutate.DeletePersonPreview(ws.Doc(), p.ID)
					if err != nil {
						return err
					}
					return writeOut(cmd, app, map[string]any{
						"data": preview,
						"meta": map[string]any{"deleted": false, "hint": "re-run with --yes to delete"},
					})
				}
				id := p.ID
				var res mutate.DeletePersonResult
				err = ws.Mutate(func(doc *model.Document) error {
					var err error
					res, err = mutate.DeletePerson(doc, id)
					return err
				})
				if err != nil {
					return err
				}
				removed := res.RemovedTasks
				if removed == nil {
					removed = []string{}
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"person": res.Person, "removedTasks": removed},
					"meta": map[string]any{"deleted": true},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Really delete")
	return cmd
}

type personDetail struct {
	Person     model.Person `json:"person"`
	Members    []string     `json:"members"`
	MemberOf   []string     `json:"memberOf"`
	TaskCounts any          `json:"taskCounts"`
}

func newPeopleShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <person>",
		Short: "Show a person with resolved memberships and task counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				doc := ws.Doc()
				p, err := findPerson(doc, args[0])
				if err != nil {
					return err
				}
				r := groups.NewResolver(doc)
				members := []string{}
				if p.IsGroup() {
					members = r.ResolveMembers(p.ID).Sorted()
				}
				return writeOut(cmd, app, map[string]any{"data": personDetail{
					Person:     *p,
					Members:    members,
					MemberOf:   r.ContainingGroups(p.ID).Sorted(),
					TaskCounts: app.engine(doc).BucketCounts(p.ID, ""),
				}})
			})
		},
	}
}

func newGroupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Create groups and edit their members",
	}

	var role string
	var members []string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPerson(cmd, app, args[0], role, model.PersonTypeGroup, members)
		},
	}
	add.Flags().StringVar(&role, "role", "", "Role (free text)")
	add.Flags().StringSliceVar(&members, "member", nil, "Member person or group (repeatable, comma-separated)")

	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "Edit group members",
	}
	membersCmd.AddCommand(newGroupMemberCmd(app, "add", "Add members to a group", mutate.AddMember))
	membersCmd.AddCommand(newGroupMemberCmd(app, "rm", "Remove members from a group", mutate.RemoveMember))

	cmd.AddCommand(add)
	cmd.AddCommand(membersCmd)
	return cmd
}

func newGroupMemberCmd(app *App, use, short string, op func(doc *model.Document, groupID, memberID string) (mutate.PersonResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group> <member>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, app, func(ctx context.Context, ws *store.Workspace) error {
				var out model.Person
				changed := false
				err := ws.Mutate(func(doc *model.Document) error {
					g, err := findPerson(doc, args[0])
					if err != nil {
						return err
					}
					ids, err := resolvePeople(doc, args[1:])
					if err != nil {
						return err
					}
					for _, id := range ids {
						res, err := op(doc, g.ID, id)
						if err != nil {
							return err
						}
						changed = changed || res.Changed
						out = *res.Person
					}
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
