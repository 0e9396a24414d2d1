package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	appLog "planner-cli/internal/log"
	"planner-cli/internal/store"
)

// Run starts the day browser on ws. Writes to the store by other processes are
// picked up while it runs.
func Run(ctx context.Context, ws *store.Workspace, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, err := store.Watch(ctx, ws.Paths(), 0)
	if err != nil {
		appLog.Error("live reload disabled", err)
		changes = nil
	}
	m := newAppModel(ctx, ws, opts, changes)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
