package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mail-triage/internal/theme"
)

// ErrUnknownCommand is returned by Parse for names it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command names accepted by the palette.
const (
	Reload   = "reload"
	Clear    = "clear"
	Search   = "search"
	Account  = "account"
	Folder   = "folder"
	Category = "category"
	Quit     = "quit"
)

// usage lists every command with its argument, in display order.
var usage = []string{
	"reload",
	"clear",
	"search <query>",
	"account <email|all>",
	"folder <name|all>",
	"category <name|all>",
	"quit",
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Arg  string
}

// Parse splits input into a command name and its argument. "all" as the
// argument of a filter command means no constraint and is returned as "".
func Parse(input string) (CommandMsg, error) {
	input = strings.TrimSpace(input)
	name, arg, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	switch name {
	case Reload, Clear, Quit:
		return CommandMsg{Name: name}, nil
	case "q":
		return CommandMsg{Name: Quit}, nil
	case Search:
		return CommandMsg{Name: name, Arg: arg}, nil
	case Account, Folder, Category:
		if strings.EqualFold(arg, "all") {
			arg = ""
		}
		return CommandMsg{Name: name, Arg: arg}, nil
	default:
		return CommandMsg{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			if raw == "" {
				return m, nil
			}
			parsed, err := Parse(raw)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.input.Reset()
			return m, func() tea.Msg {
				return parsed
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	lines := []string{title, input}
	if m.err != nil {
		lines = append(lines, theme.ErrorStyle.Render(m.err.Error()))
	}
	lines = append(lines, "", theme.HelpStyle.Render(strings.Join(usage, " · ")))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// Reset clears the input and any parse error.
func (m *Model) Reset() {
	m.input.Reset()
	m.err = nil
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
