package emaillist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// EmailItem wraps a model.Email so it can be used in a bubbles/list.
type EmailItem struct {
	Email model.Email
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Email.Subject }

// Title returns the email subject for the list.
func (i EmailItem) Title() string { return i.Email.Subject }

// Description returns the sender and date.
func (i EmailItem) Description() string {
	return i.Email.From + " | " + FormatDate(i.Email.Date, time.Now())
}

// ItemDelegate renders an email as three lines: sender and date, subject
// and category badge, then account and body preview.
type ItemDelegate struct {
	// selectedID marks the email open in the viewer. Shared by reference
	// with the list Model so updates are visible.
	selectedID *string
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 3 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single email row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EmailItem)
	if !ok {
		return
	}
	email := ei.Email

	isCursor := index == m.Index()
	isOpen := d.selectedID != nil && *d.selectedID == email.ID

	width := m.Width() - 3
	if width < 10 {
		width = 10
	}

	marker := " "
	if isOpen {
		marker = "●"
	}

	date := FormatDate(email.Date, time.Now())
	sender := truncate(email.From, width-lipgloss.Width(date)-3)
	senderLine := fmt.Sprintf(
		"%s %s%s%s",
		marker,
		lipgloss.NewStyle().Bold(true).Render(sender),
		strings.Repeat(" ", max(width-lipgloss.Width(sender)-lipgloss.Width(date)-2, 1)),
		theme.DimmedStyle.Render(date),
	)

	badge := ""
	if email.Category.IsSet() {
		badge = theme.CategoryStyle(email.Category).Render(email.Category.String())
	}
	subject := truncate(email.Subject, width-lipgloss.Width(badge)-3)
	subjectLine := fmt.Sprintf("  %s %s", subject, badge)

	preview := strings.Join(strings.Fields(email.Body), " ")
	previewLine := "  " + theme.DimmedStyle.Render(
		truncate(email.AccountEmail+" · "+preview, width-2),
	)

	lines := []string{senderLine, subjectLine, previewLine}
	for i, line := range lines {
		if isCursor {
			lines[i] = theme.SelectedItemStyle.Render(line)
		} else {
			lines[i] = theme.ListItemStyle.Render(line)
		}
	}

	fmt.Fprint(w, strings.Join(lines, "\n"))
}

// FormatDate renders t relative to now: the time of day within the last
// 24 hours, "Yesterday" within 48, otherwise month and day.
func FormatDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	t = t.In(now.Location())
	d := now.Sub(t)
	switch {
	case d < 24*time.Hour:
		return t.Format("03:04 PM")
	case d < 48*time.Hour:
		return "Yesterday"
	default:
		return t.Format("Jan 2")
	}
}

// truncate shortens s to at most n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
