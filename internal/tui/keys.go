package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	Today     key.Binding
	NextRoot  key.Binding
	PrevRoot  key.Binding
	Month     key.Binding
	StartStop key.Binding
	Done      key.Binding
	Restore   key.Binding
	Reload    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		PrevDay:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		PrevWeek:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev week")),
		NextWeek:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next week")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		NextRoot:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next person")),
		PrevRoot:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev person")),
		Month:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month/day")),
		StartStop: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/pause")),
		Done:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "done")),
		Restore:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "reopen")),
		Reload:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.NextRoot, k.StartStop, k.Done, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek, k.Today},
		{k.NextRoot, k.PrevRoot, k.Month},
		{k.StartStop, k.Done, k.Restore},
		{k.Reload, k.Help, k.Quit},
	}
}
