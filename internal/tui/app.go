package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"planner-cli/internal/calendar"
	"planner-cli/internal/holidays"
	appLog "planner-cli/internal/log"
	"planner-cli/internal/model"
	"planner-cli/internal/mutate"
	"planner-cli/internal/query"
	"planner-cli/internal/recur"
	"planner-cli/internal/store"
	"planner-cli/internal/view"
)

type Options struct {
	// Root is the person or group whose tasks are shown first.
	Root        string
	Locale      string
	MondayFirst bool
	Holidays    holidays.Provider
	// Now overrides the clock (tests).
	Now func() time.Time
}

type storeChangedMsg struct{}

type statusTickMsg struct{}

type appModel struct {
	ctx  context.Context
	ws   *store.Workspace
	opts Options

	labels view.Labels
	msgs   messages
	keys   keyMap
	help   help.Model
	tasks  list.Model

	day   string
	root  string
	month bool

	width  int
	height int

	flash   string
	changes <-chan struct{}
}

func newAppModel(ctx context.Context, ws *store.Workspace, opts Options, changes <-chan struct{}) appModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Holidays == nil {
		opts.Holidays = holidays.None{}
	}
	l := view.For(opts.Locale)

	d := list.NewDefaultDelegate()
	tasks := list.New([]list.Item{}, d, 80, 20)
	tasks.SetShowTitle(false)
	tasks.SetShowHelp(false)
	tasks.SetShowStatusBar(false)
	tasks.SetFilteringEnabled(false)
	tasks.KeyMap.Quit.SetEnabled(false)
	tasks.KeyMap.ForceQuit.SetEnabled(false)

	m := appModel{
		ctx:     ctx,
		ws:      ws,
		opts:    opts,
		labels:  l,
		msgs:    messagesFor(l.Locale),
		keys:    defaultKeys(),
		help:    help.New(),
		tasks:   tasks,
		day:     calendar.Today(opts.Now()),
		root:    opts.Root,
		changes: changes,
	}
	m.refresh()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), tickStatus())
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func tickStatus() tea.Cmd {
	return tea.Tick(15*time.Second, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - 6
		if h < 4 {
			h = 4
		}
		m.tasks.SetSize(msg.Width, h)
		return m, nil

	case statusTickMsg:
		return m, tickStatus()

	case storeChangedMsg:
		m.reload()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.PrevDay):
			m.moveDay(-1)
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.moveDay(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevWeek):
			m.moveDay(-7)
			return m, nil
		case key.Matches(msg, m.keys.NextWeek):
			m.moveDay(7)
			return m, nil
		case key.Matches(msg, m.keys.Today):
			m.day = calendar.Today(m.opts.Now())
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.NextRoot):
			m.cycleRoot(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevRoot):
			m.cycleRoot(-1)
			return m, nil
		case key.Matches(msg, m.keys.Month):
			m.month = !m.month
			return m, nil
		case key.Matches(msg, m.keys.StartStop):
			m.startStop()
			return m, nil
		case key.Matches(msg, m.keys.Done):
			m.complete()
			return m, nil
		case key.Matches(msg, m.keys.Restore):
			m.restore()
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.reload()
			return m, nil
		}
		if m.month {
			// Up/down move by week in the month grid.
			switch msg.String() {
			case "up", "k":
				m.moveDay(-7)
				return m, nil
			case "down", "j":
				m.moveDay(7)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	doc := m.ws.Doc()
	header := lipgloss.NewStyle().Bold(true).Render("Planner · "+m.rootName(doc)) +
		"  " + view.DayHeader(m.ctx, m.day, calendar.Today(m.opts.Now()), m.labels, m.opts.Holidays)

	var body string
	switch {
	case m.root == "":
		body = m.msgs.noPeople
	case m.month:
		body = m.monthView(doc)
	case len(m.tasks.Items()) == 0:
		body = lipgloss.NewStyle().Faint(true).Render(m.labels.EmptyDay())
	default:
		body = m.tasks.View()
	}

	status := m.flash
	if status == "" {
		status = m.labels.SaveInfo(m.ws.LastSavedAt(), m.opts.Now())
	}
	footer := lipgloss.NewStyle().Faint(true).Render(status) + "\n" + m.help.View(m.keys)
	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) monthView(doc *model.Document) string {
	grid := calendar.MonthGrid(m.day[:7], m.opts.MondayFirst)
	if len(grid) == 0 {
		return ""
	}
	eng := query.New(doc, m.opts.Locale)
	return view.RenderMonth(m.ctx, view.MonthOptions{
		Month:       m.day[:7],
		Today:       calendar.Today(m.opts.Now()),
		Selected:    m.day,
		MondayFirst: m.opts.MondayFirst,
		Load:        eng.DayLoad(m.root, grid[0], grid[len(grid)-1], ""),
		Holidays:    m.opts.Holidays,
		Labels:      m.labels,
	})
}

func (m appModel) rootName(doc *model.Document) string {
	if p, ok := doc.FindPerson(m.root); ok {
		return p.Name
	}
	return "-"
}

func (m *appModel) moveDay(n int) {
	m.day = calendar.AddDays(m.day, n)
	m.flash = ""
	m.refresh()
}

// cycleRoot steps through persons and groups in document order.
func (m *appModel) cycleRoot(step int) {
	people := m.ws.Doc().People
	if len(people) == 0 {
		return
	}
	idx := 0
	for i, p := range people {
		if p.ID == m.root {
			idx = (i + step + len(people)) % len(people)
			break
		}
	}
	m.root = people[idx].ID
	m.flash = ""
	m.refresh()
}

// refresh rebuilds the task list for the current day and root, keeping the
// selection on the same task when it is still listed.
func (m *appModel) refresh() {
	doc := m.ws.Doc()
	if _, ok := doc.FindPerson(m.root); !ok {
		m.root = ""
		if len(doc.People) > 0 {
			m.root = doc.People[0].ID
		}
	}
	selected := m.selectedID()

	eng := query.New(doc, m.opts.Locale)
	items := []list.Item{}
	sel := 0
	if m.root != "" {
		for i, t := range eng.TasksForDay(m.root, m.day, "") {
			if t.ID == selected {
				sel = i
			}
			items = append(items, taskItem{task: t, persons: view.Persons(doc, t.Assignees), labels: m.labels})
		}
	}
	m.tasks.SetItems(items)
	if len(items) > 0 {
		m.tasks.Select(sel)
	}
}

func (m *appModel) reload() {
	changed, err := m.ws.Reload(m.ctx)
	if err != nil {
		appLog.Error("tui reload failed", err)
		m.flash = err.Error()
		return
	}
	if changed {
		m.flash = m.msgs.reloaded
		m.refresh()
	}
}

func (m appModel) selectedID() string {
	if it, ok := m.tasks.SelectedItem().(taskItem); ok {
		return it.task.ID
	}
	return ""
}

func (m *appModel) startStop() {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.mutate(func(doc *model.Document) (string, error) {
		t, ok := doc.FindTask(id)
		if !ok {
			return "", mutate.NotFoundError{Kind: "task", ID: id}
		}
		if t.Status == model.StatusInProgress {
			_, err := mutate.PauseTask(doc, id)
			return m.labels.Status(model.StatusPlanned), err
		}
		_, err := mutate.StartTask(doc, id)
		return m.labels.Status(model.StatusInProgress), err
	})
}

func (m *appModel) complete() {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.mutate(func(doc *model.Document) (string, error) {
		res, err := mutate.CompleteTask(doc, id, m.ws.Env())
		if err != nil {
			return "", err
		}
		if res.Outcome == recur.OutcomeAdvanced {
			return m.msgs.next + " " + res.Task.Start.String(), nil
		}
		return m.labels.Status(model.StatusDone), nil
	})
}

func (m *appModel) restore() {
	id := m.selectedID()
	if id == "" {
		return
	}
	m.mutate(func(doc *model.Document) (string, error) {
		res, err := mutate.RestoreTask(doc, id)
		if err != nil {
			return "", err
		}
		return m.labels.Status(res.Task.Status), nil
	})
}

func (m *appModel) mutate(fn func(doc *model.Document) (string, error)) {
	var flash string
	err := m.ws.Mutate(func(doc *model.Document) error {
		var err error
		flash, err = fn(doc)
		return err
	})
	if err != nil {
		m.flash = err.Error()
		return
	}
	m.flash = flash
	m.refresh()
}

type taskItem struct {
	task    model.Task
	persons string
	labels  view.Labels
}

func (i taskItem) Title() string {
	t := i.task
	title := i.labels.Title(t)
	if tr := i.labels.TimeRange(t); tr != "" {
		title = tr + " " + title
	}
	return title
}

func (i taskItem) Description() string {
	t := i.task
	parts := []string{i.labels.Status(t.Status), i.labels.Priority(t.Priority), i.labels.Range(t)}
	if t.IsRecurring() {
		parts = append(parts, "⟳ "+i.labels.Repeat(t.Repeat))
	}
	if i.persons != "" {
		parts = append(parts, i.persons)
	}
	return strings.Join(parts, " · ")
}

func (i taskItem) FilterValue() string { return i.task.Title }

type messages struct {
	noPeople string
	reloaded string
	next     string
}

func messagesFor(locale string) messages {
	if locale == "en" {
		return messages{noPeople: "No people yet. Add one with `planner people add <name>`.", reloaded: "Reloaded", next: "Next:"}
	}
	return messages{noPeople: "Noch keine Personen. Mit `planner people add <name>` anlegen.", reloaded: "Neu geladen", next: "Nächster Termin:"}
}
