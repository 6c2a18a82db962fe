// Package ui renders search results for the terminal. Styled output when
// stdout is a TTY, plain text when piped.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette. Yellow and green mirror the literal/related highlight
// classes the web client renders.
const (
	ColorWhite    = "255" // headers
	ColorGray     = "245" // secondary text
	ColorDarkGray = "238" // separators
	ColorYellow   = "220" // literal matches, warnings
	ColorGreen    = "114" // related matches
	ColorRed      = "196" // restricted markers, errors
)

// Styles holds the render styles.
type Styles struct {
	Header     lipgloss.Style
	Answer     lipgloss.Style
	Citation   lipgloss.Style
	Excerpt    lipgloss.Style
	Literal    lipgloss.Style
	Related    lipgloss.Style
	Restricted lipgloss.Style
	Warning    lipgloss.Style
	Dim        lipgloss.Style
}

// DefaultStyles returns the styled set for TTY output.
func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Answer:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Citation:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Excerpt:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Literal:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorYellow)),
		Related:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Restricted: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns pass-through styles for plain output.
func NoColorStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle(),
		Answer:     lipgloss.NewStyle(),
		Citation:   lipgloss.NewStyle(),
		Excerpt:    lipgloss.NewStyle(),
		Literal:    lipgloss.NewStyle(),
		Related:    lipgloss.NewStyle(),
		Restricted: lipgloss.NewStyle(),
		Warning:    lipgloss.NewStyle(),
		Dim:        lipgloss.NewStyle(),
	}
}

// GetStyles picks styles by color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
