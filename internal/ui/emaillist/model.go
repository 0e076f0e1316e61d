// Package emaillist renders the loaded emails and reports which one the
// user opens.
package emaillist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// SelectedMsg is sent when the user opens an email.
type SelectedMsg struct {
	ID string
}

// Model is the email list pane.
type Model struct {
	list       list.Model
	spinner    spinner.Model
	keys       *keys.KeyMap
	selectedID *string
	loading    bool
	width      int
	height     int
}

// New creates an empty email list.
func New(k *keys.KeyMap, width, height int) Model {
	selectedID := new(string)
	delegate := ItemDelegate{selectedID: selectedID}

	l := list.New([]list.Item{}, delegate, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		list:       l,
		spinner:    sp,
		keys:       k,
		selectedID: selectedID,
		width:      width,
		height:     height,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the list pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Select) {
			item, ok := m.list.SelectedItem().(EmailItem)
			if !ok {
				return m, nil
			}
			id := item.Email.ID
			return m, func() tea.Msg {
				return SelectedMsg{ID: id}
			}
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list, a spinner while loading, or the empty state.
func (m Model) View() string {
	if m.loading {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(m.spinner.View() + " Loading emails...")
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no emails match.
func (m Model) renderEmptyState() string {
	title := lipgloss.NewStyle().Bold(true).Render("No emails found")
	hint := "Try adjusting your filters or search query"

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(lipgloss.JoinVertical(lipgloss.Center, title, hint))
}

// SetEmails replaces the rows. The cursor stays on the open email when it
// is still listed.
func (m *Model) SetEmails(emails []model.Email) tea.Cmd {
	items := make([]list.Item, len(emails))
	cursor := -1
	for i, e := range emails {
		items[i] = EmailItem{Email: e}
		if e.ID == *m.selectedID {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	} else if m.list.Index() >= len(items) {
		m.list.Select(0)
	}
	return cmd
}

// SetSelected marks the email open in the viewer; "" marks none.
func (m *Model) SetSelected(id string) {
	*m.selectedID = id
}

// SetLoading toggles the loading indicator.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Loading reports whether the loading indicator is shown.
func (m Model) Loading() bool {
	return m.loading
}

// Len returns the number of rows.
func (m Model) Len() int {
	return len(m.list.Items())
}

// CursorID returns the id of the email under the cursor, or "".
func (m Model) CursorID() string {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return ""
	}
	return item.Email.ID
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
