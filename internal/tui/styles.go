package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.Color("#5B8DEF")
	mutedColor  = lipgloss.Color("#888888")
	borderColor = lipgloss.Color("#444444")
	errorColor  = lipgloss.Color("#FF6B6B")
	okColor     = lipgloss.Color("#6BCB77")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	successStyle = lipgloss.NewStyle().
			Foreground(okColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Width(12)

	focusedLabelStyle = labelStyle.
				Foreground(accentColor).
				Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(borderColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(accentColor).
		Bold(false)
	return s
}

func renderFieldError(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return ""
	}
	return errorStyle.Render("  " + msg)
}

// newTextInput returns an unfocused single-line input with a static cursor.
func newTextInput(placeholder string, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 120
	input.Width = width
	input.Prompt = ""
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}
