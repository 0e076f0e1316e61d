// Package notice renders failure notices as a modal that must be dismissed.
package notice

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/session"
	"github.com/nhle/mail-triage/internal/theme"
)

var dismiss = key.NewBinding(
	key.WithKeys("enter", "esc", " "),
	key.WithHelp("enter/esc", "dismiss"),
)

// IsDismiss reports whether msg dismisses a notice.
func IsDismiss(msg tea.KeyMsg) bool {
	return key.Matches(msg, dismiss)
}

// Modal renders n as a framed box at most width cells wide.
func Modal(n session.Notice, width int) string {
	boxWidth := min(max(width-8, 20), 70)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorRed).
		Render("Failed to " + lowerFirst(n.Action))

	msg := lipgloss.NewStyle().
		Width(boxWidth).
		Foreground(theme.ColorWhite).
		Render(n.Message())

	hint := theme.HelpStyle.Render("enter/esc to dismiss")

	return theme.ModalStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", msg, "", hint),
	)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}
