package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
	"planner-cli/internal/store"
)

var fixedNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testWorkspace(t *testing.T) *store.Workspace {
	t.Helper()
	ctx := context.Background()
	gw, err := store.OpenFileGateway(t.TempDir())
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	n := 0
	env := model.Env{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
	ws, err := store.OpenWorkspace(ctx, gw, store.WorkspaceOpts{Env: env})
	if err != nil {
		t.Fatalf("open workspace: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(ctx) })

	err = ws.MutateNow(ctx, func(doc *model.Document) error {
		// AddPerson prepends: the document order ends up Ben, Anna.
		anna, err := mutate.AddPerson(doc, "Anna", "", model.PersonTypePerson, nil, env)
		if err != nil {
			return err
		}
		annaID := anna.Person.ID
		ben, err := mutate.AddPerson(doc, "Ben", "", model.PersonTypePerson, nil, env)
		if err != nil {
			return err
		}
		benID := ben.Person.ID
		for _, in := range []mutate.TaskInput{
			{Title: "Report", Kind: model.KindTask, Repeat: model.RepeatNone, Start: "2025-06-10", End: "2025-06-10", Assignees: []string{annaID}},
			{Title: "Standup", Kind: model.KindTask, Repeat: model.RepeatDaily, Start: "2025-06-10", End: "2025-06-10", Assignees: []string{annaID}},
			{Title: "Review", Kind: model.KindTask, Repeat: model.RepeatNone, Start: "2025-06-11", End: "2025-06-11", Assignees: []string{benID}},
		} {
			if _, err := mutate.CreateTask(doc, in, env); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return ws
}

func newTestModel(t *testing.T) appModel {
	t.Helper()
	ws := testWorkspace(t)
	return newAppModel(context.Background(), ws, Options{Locale: "en", MondayFirst: true, Now: func() time.Time { return fixedNow }}, nil)
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(appModel)
	}
	return m
}

func titles(m appModel) []string {
	var out []string
	for _, it := range m.tasks.Items() {
		out = append(out, it.(taskItem).task.Title)
	}
	return out
}

func TestAppModel_DayAndRootNavigation(t *testing.T) {
	m := newTestModel(t)
	if m.day != "2025-06-10" {
		t.Fatalf("expected today, got %s", m.day)
	}
	// First person in document order is Ben, who has nothing today.
	if got := m.rootName(m.ws.Doc()); got != "Ben" {
		t.Fatalf("expected Ben as initial root, got %s", got)
	}
	if len(m.tasks.Items()) != 0 {
		t.Fatalf("expected empty day for Ben, got %v", titles(m))
	}

	m = press(t, m, "right")
	if m.day != "2025-06-11" || strings.Join(titles(m), ",") != "Review" {
		t.Fatalf("unexpected day %s tasks %v", m.day, titles(m))
	}

	m = press(t, m, "tab", "left")
	if got := m.rootName(m.ws.Doc()); got != "Anna" {
		t.Fatalf("expected Anna after tab, got %s", got)
	}
	if len(m.tasks.Items()) != 2 {
		t.Fatalf("expected Anna's two tasks on 06-10, got %v", titles(m))
	}

	m = press(t, m, "]", "t")
	if m.day != "2025-06-10" {
		t.Fatalf("expected t to jump back to today, got %s", m.day)
	}
}

func TestAppModel_StartAndComplete(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab")

	standup := -1
	for i, title := range titles(m) {
		if title == "Standup" {
			standup = i
		}
	}
	if standup < 0 {
		t.Fatalf("Standup not listed: %v", titles(m))
	}
	m.tasks.Select(standup)

	// Completing a daily task advances it out of today's list.
	m = press(t, m, "x")
	if !strings.Contains(m.flash, "2025-06-11") {
		t.Fatalf("expected next occurrence in flash, got %q", m.flash)
	}
	if strings.Join(titles(m), ",") != "Report" {
		t.Fatalf("expected only Report left today, got %v", titles(m))
	}

	m = press(t, m, "s")
	id := m.selectedID()
	task, ok := m.ws.Doc().FindTask(id)
	if !ok || task.Status != model.StatusInProgress {
		t.Fatalf("expected Report in progress, got %+v", task)
	}
	m = press(t, m, "s")
	task, _ = m.ws.Doc().FindTask(id)
	if task.Status != model.StatusPlanned {
		t.Fatalf("expected s to pause again, got %s", task.Status)
	}

	// Reopening a task that is not done reports the transition error.
	m = press(t, m, "u")
	if !strings.Contains(m.flash, "cannot move") {
		t.Fatalf("expected transition error, got %q", m.flash)
	}
}

func TestAppModel_ViewAndQuit(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "tab")
	out := xansi.Strip(m.View())
	for _, want := range []string{"Planner · Anna", "Report", "Standup"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}

	m = press(t, m, "m")
	if !m.month || !strings.Contains(xansi.Strip(m.View()), "June 2025") {
		t.Fatalf("expected month view:\n%s", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
