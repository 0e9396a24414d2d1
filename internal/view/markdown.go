package view

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdMu        sync.Mutex
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderNote renders a task note as terminal markdown. Without colors, or if
// rendering fails, the trimmed note is returned as is.
func RenderNote(note string, width int) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style := "dark"
	if Plain() {
		style = "notty"
	}
	key := style + ":" + strconv.Itoa(width)

	mdMu.Lock()
	defer mdMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		// WithAutoStyle can block on terminal background queries.
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return note
		}
		mdRenderers[key] = rr
		r = rr
	}
	out, err := r.Render(note)
	if err != nil {
		return note
	}
	return strings.Trim(out, "\n")
}
