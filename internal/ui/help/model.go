package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys    *keys.KeyMap
	help    help.Model
	backend string
	width   int
	height  int
}

// New creates a new help view model. backend is the API root shown in the
// footer.
func New(keys *keys.KeyMap, backend string, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:    keys,
		help:    h,
		backend: backend,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	footer := lipgloss.NewStyle().
		MarginTop(1).
		Foreground(theme.ColorGray).
		Render("Backend: " + m.backend)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, footer)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// ShortView renders the one-line key hints for the status bar.
func (m Model) ShortView() string {
	m.help.ShowAll = false
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
