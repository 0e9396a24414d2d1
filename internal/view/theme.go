package view

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#1F5FBF", Dark: "#7AA2F7"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6B7089"}
	colorHoliday = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F7768E"}
	colorSchool  = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#9ECE6A"}
	colorBadge   = lipgloss.AdaptiveColor{Light: "#6A1B9A", Dark: "#BB9AF7"}

	priorityColors = [4]lipgloss.TerminalColor{
		colorMuted,
		lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#9ECE6A"},
		lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#E0AF68"},
		colorHoliday,
	}
)

// ApplyColorProfile selects the lipgloss color profile. noColor or a set
// NO_COLOR forces plain ASCII output.
func ApplyColorProfile(noColor bool) {
	if noColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.EnvColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}

// Plain reports whether styling is currently disabled.
func Plain() bool {
	return lipgloss.ColorProfile() == termenv.Ascii
}

func priorityStyle(p int) lipgloss.Style {
	if p < 0 || p > 3 {
		p = 0
	}
	return lipgloss.NewStyle().Foreground(priorityColors[p])
}
