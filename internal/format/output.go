package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a plain tabular rendering of a result.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Tabular results render as a table with --format table.
type Tabular interface {
	Table() Table
}

// Texter results carry their own pre-rendered text (calendar views, notes).
type Texter interface {
	Text() string
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - table
//
// For table output the "data" member of an envelope map is rendered; values
// that are neither Tabular nor Texter fall back to indented JSON.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table", "text":
		inner := v
		if m, ok := v.(map[string]any); ok {
			if d, ok := m["data"]; ok {
				inner = d
			}
		}
		switch x := inner.(type) {
		case Texter:
			_, err := fmt.Fprintln(w, x.Text())
			return err
		case Tabular:
			return WriteTable(w, x.Table())
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteTable renders t with a rounded border and a bold header row.
func WriteTable(w io.Writer, t Table) error {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	tb := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	_, err := fmt.Fprintln(w, tb.Render())
	return err
}
