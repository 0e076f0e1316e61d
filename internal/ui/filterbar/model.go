// Package filterbar renders the active filters and owns the search input.
package filterbar

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// SearchSubmittedMsg is sent when the user submits the search input. The
// query is sent even when unchanged so the list is re-issued.
type SearchSubmittedMsg struct {
	Query string
}

// Model is the filter bar.
type Model struct {
	input         textinput.Model
	searching     bool
	filters       model.Filters
	folderEnabled bool
	width         int
}

// New creates a filter bar with no active filters.
func New(width int) Model {
	si := textinput.New()
	si.Placeholder = "search emails..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		input: si,
		width: width,
	}
}

// Update handles messages while the search input is focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.searching {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.searching = false
			m.input.Blur()
			query := strings.TrimSpace(m.input.Value())
			return m, func() tea.Msg {
				return SearchSubmittedMsg{Query: query}
			}

		case "esc":
			m.searching = false
			m.input.Blur()
			m.input.SetValue(m.filters.Search)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// StartSearch focuses the search input, prefilled with the current query.
func (m *Model) StartSearch() tea.Cmd {
	m.searching = true
	m.input.SetValue(m.filters.Search)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Searching reports whether the search input has keyboard focus.
func (m Model) Searching() bool {
	return m.searching
}

// SetFilters updates the displayed tuple. folderEnabled is false until an
// account is chosen.
func (m *Model) SetFilters(f model.Filters, folderEnabled bool) {
	m.filters = f
	m.folderEnabled = folderEnabled
	if !m.searching {
		m.input.SetValue(f.Search)
	}
}

// View renders the filter bar on a single line.
func (m Model) View() string {
	if m.searching {
		return lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Width(m.width).
			Render(m.input.View())
	}

	label := theme.LabelStyle
	value := theme.ValueStyle

	search := m.filters.Search
	if search == "" {
		search = "-"
	}

	folder := valueOrAll(m.filters.Folder)
	folderValue := value.Render(folder)
	if !m.folderEnabled {
		folderValue = theme.DimmedStyle.Render("pick an account")
	}

	category := "All"
	if m.filters.Category.IsSet() {
		category = m.filters.Category.String()
	}

	parts := []string{
		label.Render("Search ") + value.Render(search),
		label.Render("Account ") + value.Render(valueOrAll(m.filters.Account)),
		label.Render("Folder ") + folderValue,
		label.Render("Category ") + theme.CategoryStyle(m.filters.Category).UnsetPadding().Render(category),
	}
	if !m.filters.IsZero() {
		parts = append(parts, theme.HelpStyle.Render("[x] clear all filters"))
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		MaxWidth(m.width).
		Render(strings.Join(parts, "  "))
}

// SetSize updates the filter bar width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = width - 4
}

func valueOrAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}
