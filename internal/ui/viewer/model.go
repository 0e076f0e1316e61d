// Package viewer renders the selected email and its triage actions.
package viewer

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jaytaylor/html2text"

	"github.com/nhle/mail-triage/internal/keys"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/theme"
)

// CategoryChosenMsg is sent when the user picks a category for an email.
type CategoryChosenMsg struct {
	ID       string
	Category model.Category
}

// RecategorizeRequestMsg asks for an AI recategorization of an email.
type RecategorizeRequestMsg struct {
	ID string
}

// SuggestReplyRequestMsg asks for a suggested reply to an email.
type SuggestReplyRequestMsg struct {
	ID string
}

// CopiedMsg reports the outcome of copying the suggested reply.
type CopiedMsg struct {
	Err error
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// Model is the email viewer pane.
type Model struct {
	email      *model.Email
	reply      *model.SuggestedReply
	processing bool
	generating bool
	showHTML   bool

	picker    *huh.Form
	picked    *model.Category
	pickerFor string

	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates an empty viewer.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		picked:   new(model.Category),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the viewer.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the viewer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.picker != nil {
		return m.updatePicker(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.email == nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	id := m.email.ID
	switch {
	case key.Matches(keyMsg, m.keys.SetCategory):
		if m.processing {
			return m, nil
		}
		return m, m.openPicker()

	case key.Matches(keyMsg, m.keys.Recategorize):
		if m.processing {
			return m, nil
		}
		return m, func() tea.Msg {
			return RecategorizeRequestMsg{ID: id}
		}

	case key.Matches(keyMsg, m.keys.SuggestReply):
		if m.generating {
			return m, nil
		}
		return m, func() tea.Msg {
			return SuggestReplyRequestMsg{ID: id}
		}

	case key.Matches(keyMsg, m.keys.ToggleHTML):
		if m.email.HasHTML() {
			m.showHTML = !m.showHTML
			m.refresh(false)
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.CopyReply):
		if m.reply == nil {
			return m, nil
		}
		text := m.reply.SuggestedReply
		return m, func() tea.Msg {
			return CopiedMsg{Err: writeClipboard(text)}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) openPicker() tea.Cmd {
	current := m.email.Category
	if !current.IsSet() {
		current = model.CategoryUncategorized
	}
	*m.picked = current
	m.pickerFor = m.email.ID

	opts := make([]huh.Option[model.Category], 0, len(model.Categories()))
	for _, c := range model.Categories() {
		opts = append(opts, huh.NewOption(c.String(), c))
	}

	m.picker = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Category]().
				Title("Set category").
				Description("enter to apply, esc to cancel").
				Options(opts...).
				Value(m.picked),
		),
	).WithWidth(max(m.width-4, 20)).WithShowHelp(false)

	return m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
		m.picker = nil
		return m, nil
	}

	mdl, cmd := m.picker.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.picker = f
	}

	switch m.picker.State {
	case huh.StateCompleted:
		chosen := CategoryChosenMsg{ID: m.pickerFor, Category: *m.picked}
		m.picker = nil
		return m, func() tea.Msg { return chosen }
	case huh.StateAborted:
		m.picker = nil
		return m, nil
	}

	return m, cmd
}

// PickerOpen reports whether the category picker has keyboard focus.
func (m Model) PickerOpen() bool {
	return m.picker != nil
}

// View renders the viewer.
func (m Model) View() string {
	if m.email == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Select an email to view")
	}

	if m.picker != nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Padding(1, 2).
			Render(m.picker.View())
	}

	return m.viewport.View()
}

// SetEmail shows email, or the empty state for nil. Switching to a
// different email scrolls back to the top and resets the HTML toggle.
func (m *Model) SetEmail(email *model.Email) {
	changed := (m.email == nil) != (email == nil) ||
		(m.email != nil && email != nil && m.email.ID != email.ID)

	m.email = email
	if changed {
		m.showHTML = false
		m.picker = nil
	}
	m.refresh(changed)
}

// SetReply shows the suggested reply, or hides it for nil.
func (m *Model) SetReply(reply *model.SuggestedReply) {
	m.reply = reply
	m.refresh(false)
}

// SetBusy updates the per-action in-flight flags.
func (m *Model) SetBusy(processing, generating bool) {
	m.processing = processing
	m.generating = generating
	m.refresh(false)
}

// SetSize updates the viewer dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh(false)
}

func (m *Model) refresh(top bool) {
	m.viewport.SetContent(m.renderContent())
	if top {
		m.viewport.GotoTop()
	}
}

// renderContent builds the full email content for the viewport.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}

	email := m.email
	var sections []string

	// Subject
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sections = append(sections, titleStyle.Width(max(m.width-2, 10)).Render(subject))
	sections = append(sections, "")

	// Header fields
	sections = append(sections, field("From:", email.From))
	sections = append(sections, field("To:", strings.Join(email.To, ", ")))
	if len(email.Cc) > 0 {
		sections = append(sections, field("Cc:", strings.Join(email.Cc, ", ")))
	}
	if !email.Date.IsZero() {
		sections = append(sections, field("Date:", email.Date.Local().Format("Mon, Jan 2 2006 3:04 PM")))
	}
	sections = append(sections, field("Account:", email.AccountEmail))
	if email.Folder != "" {
		sections = append(sections, field("Folder:", email.Folder))
	}
	sections = append(sections, field("Category:",
		theme.CategoryStyle(email.Category).Render(email.Category.DisplayName())))

	// Actions
	sections = append(sections, "")
	sections = append(sections, m.renderActions())

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-2, 80), 1)))

	if m.reply != nil {
		sections = append(sections, "", m.renderReply())
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, m.renderBody())

	if len(email.Attachments) > 0 {
		sections = append(sections, "", separator, "")
		sections = append(sections, lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("Attachments (%d)", len(email.Attachments)),
		))
		for _, att := range email.Attachments {
			sections = append(sections, fmt.Sprintf(
				"  %s %s",
				att.Filename,
				theme.DimmedStyle.Render("("+humanize.Bytes(uint64(max(att.Size, 0)))+")"),
			))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderActions() string {
	recategorize := "[i] AI recategorize"
	setCategory := "[m] set category"
	if m.processing {
		recategorize = "Processing..."
		setCategory = "Processing..."
	}
	suggest := "[s] suggest reply"
	if m.generating {
		suggest = "Generating..."
	}

	parts := []string{setCategory, recategorize, suggest}
	if m.email.HasHTML() {
		if m.showHTML {
			parts = append(parts, "[v] show plain text")
		} else {
			parts = append(parts, "[v] show HTML")
		}
	}
	return theme.HelpStyle.Render(strings.Join(parts, "  "))
}

func (m Model) renderReply() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGreen).Render(
		fmt.Sprintf("Suggested Reply (Confidence: %d%%)", m.reply.ConfidencePercent()),
	)
	body := lipgloss.NewStyle().Width(max(m.width-6, 10)).Render(m.reply.SuggestedReply)

	lines := []string{header, "", body}
	if len(m.reply.Context) > 0 {
		lines = append(lines, "", theme.DimmedStyle.Render("Context: "+strings.Join(m.reply.Context, ", ")))
	}
	lines = append(lines, "", theme.HelpStyle.Render("[y] copy to clipboard"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorGreen).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderBody() string {
	body := m.email.Body
	if m.showHTML && m.email.HasHTML() {
		text, err := html2text.FromString(m.email.HTML, html2text.Options{PrettyTables: true})
		if err == nil {
			body = text
		}
	}
	if strings.TrimSpace(body) == "" {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	return lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(body)
}

func field(label, value string) string {
	return fmt.Sprintf(
		"%s %s",
		theme.LabelStyle.Width(10).Render(label),
		theme.ValueStyle.Render(value),
	)
}
