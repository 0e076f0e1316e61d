package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mail-triage/internal/filter"
	"github.com/nhle/mail-triage/internal/health"
	"github.com/nhle/mail-triage/internal/logging"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/session"
	"github.com/nhle/mail-triage/internal/theme"
	"github.com/nhle/mail-triage/internal/ui"
	"github.com/nhle/mail-triage/internal/ui/command"
	"github.com/nhle/mail-triage/internal/ui/emaillist"
	"github.com/nhle/mail-triage/internal/ui/filterbar"
	helpview "github.com/nhle/mail-triage/internal/ui/help"
	"github.com/nhle/mail-triage/internal/ui/notice"
	"github.com/nhle/mail-triage/internal/ui/viewer"
)

const (
	title         = "Mail Triage"
	offlineBanner = "Backend server is offline. Please start the backend server."
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
	ViewCommand
)

// Focus names the pane that receives navigation keys.
type Focus int

const (
	FocusList Focus = iota
	FocusViewer
)

// Model is the root Bubble Tea model. It routes keys to the focused pane,
// forwards backend results to the session and mirrors session state into
// the views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	focus        Focus
	layout       ui.Layout
	keys         *KeyMap
	log          *logrus.Entry

	session *session.Session
	monitor *health.Monitor
	filters *filter.State

	emailList   emaillist.Model
	viewer      viewer.Model
	filterBar   filterbar.Model
	helpView    helpview.Model
	commandView command.Model

	// shown is the email slice last pushed into the list pane.
	shown  []model.Email
	status string
	ready  bool
}

// New creates the root model. checker is usually the same REST client as
// backend.
func New(
	backend session.Backend,
	checker health.Checker,
	cfg model.AppConfig,
	log *logrus.Entry,
) Model {
	if log == nil {
		log = logging.Discard()
	}
	keys := DefaultKeyMap()
	interval := time.Duration(cfg.Health.PollIntervalSec) * time.Second

	return Model{
		currentView: ViewMain,
		keys:        keys,
		log:         log.WithField("component", "app"),
		session:     session.New(backend, log),
		monitor:     health.New(checker, interval, log),
		filters:     filter.New(),
		emailList:   emaillist.New(keys, 40, 20),
		viewer:      viewer.New(keys, 80, 20),
		filterBar:   filterbar.New(120),
		helpView:    helpview.New(keys, cfg.API.BaseURL, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init starts health polling. Metadata and the email list load once the
// first probe reports the backend online.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.emailList.Init(),
		m.monitor.Start(),
	)
}

// Shutdown stops background work. Safe to call more than once.
func (m Model) Shutdown() {
	m.monitor.Stop()
	m.session.Close()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		return m, nil

	case health.ResultMsg:
		cmd := m.session.ApplyHealth(msg.Online)
		sync := m.syncSession()
		return m, tea.Batch(cmd, sync, m.monitor.WaitForNextResult())

	case session.EmailsLoadedMsg, session.EmailFetchedMsg,
		session.CategoryUpdatedMsg, session.RecategorizedMsg,
		session.ReplySuggestedMsg:
		cmd := m.session.Update(msg)
		return m, tea.Batch(cmd, m.syncSession())

	case session.MetadataLoadedMsg:
		cmd := m.session.Update(msg)
		if md := m.session.State().Metadata; md != nil {
			m.filters.SetMetadata(md)
		}
		return m, tea.Batch(cmd, m.syncSession())

	case emaillist.SelectedMsg:
		if err := m.session.Select(msg.ID); err != nil {
			m.log.WithError(err).WithField("id", msg.ID).Debug("select ignored")
			return m, nil
		}
		m.focus = FocusViewer
		return m, m.syncSession()

	case viewer.CategoryChosenMsg:
		cmd := m.session.UpdateCategory(msg.ID, msg.Category)
		return m, tea.Batch(cmd, m.syncSession())

	case viewer.RecategorizeRequestMsg:
		cmd := m.session.Recategorize(msg.ID)
		return m, tea.Batch(cmd, m.syncSession())

	case viewer.SuggestReplyRequestMsg:
		cmd := m.session.RequestSuggestedReply(msg.ID)
		return m, tea.Batch(cmd, m.syncSession())

	case viewer.CopiedMsg:
		if msg.Err != nil {
			m.status = "Copy failed: " + msg.Err.Error()
		} else {
			m.status = "Reply copied to clipboard"
		}
		return m, nil

	case filterbar.SearchSubmittedMsg:
		return m.applyFilter(m.filters.Set(filter.KeySearch, msg.Query))

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Anything else (spinner ticks, cursor blinks, form internals) goes to
	// the subviews that may own it.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.emailList, cmd = m.emailList.Update(msg)
	cmds = append(cmds, cmd)
	m.viewer, cmd = m.viewer.Update(msg)
	cmds = append(cmds, cmd)
	switch {
	case m.filterBar.Searching():
		m.filterBar, cmd = m.filterBar.Update(msg)
		cmds = append(cmds, cmd)
	case m.currentView == ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, even past a modal.
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// A notice swallows everything until dismissed.
	if m.session.State().Notice != nil {
		if notice.IsDismiss(msg) {
			m.session.DismissNotice()
		}
		return m, nil
	}

	if m.filterBar.Searching() {
		var cmd tea.Cmd
		m.filterBar, cmd = m.filterBar.Update(msg)
		return m, cmd
	}

	if m.viewer.PickerOpen() {
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		m.commandView.Reset()
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Search):
		return m, m.filterBar.StartSearch()

	case key.Matches(msg, m.keys.Refresh):
		m.monitor.Refresh()
		return m, tea.Batch(m.session.Reload(), m.syncSession())

	case key.Matches(msg, m.keys.NextAccount):
		return m.applyFilter(m.filters.Cycle(filter.KeyAccount, 1))
	case key.Matches(msg, m.keys.PrevAccount):
		return m.applyFilter(m.filters.Cycle(filter.KeyAccount, -1))
	case key.Matches(msg, m.keys.NextFolder):
		return m.applyFilter(m.filters.Cycle(filter.KeyFolder, 1))
	case key.Matches(msg, m.keys.PrevFolder):
		return m.applyFilter(m.filters.Cycle(filter.KeyFolder, -1))
	case key.Matches(msg, m.keys.NextCategory):
		return m.applyFilter(m.filters.Cycle(filter.KeyCategory, 1))
	case key.Matches(msg, m.keys.PrevCategory):
		return m.applyFilter(m.filters.Cycle(filter.KeyCategory, -1))

	case key.Matches(msg, m.keys.ClearFilters):
		return m.applyFilter(m.filters.Clear(), nil)

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == FocusList {
			m.focus = FocusViewer
		} else {
			m.focus = FocusList
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.focus == FocusViewer {
			m.focus = FocusList
			return m, nil
		}
		if m.session.State().Selected != nil {
			_ = m.session.Select("")
			return m, m.syncSession()
		}
		return m, nil

	case key.Matches(msg,
		m.keys.SetCategory,
		m.keys.Recategorize,
		m.keys.SuggestReply,
		m.keys.CopyReply,
		m.keys.ToggleHTML,
	):
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}

	return m.updateFocusedPane(msg)
}

func (m Model) updateFocusedPane(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case FocusViewer:
		m.viewer, cmd = m.viewer.Update(msg)
	default:
		m.emailList, cmd = m.emailList.Update(msg)
	}
	return m, cmd
}

// applyFilter hands a new filter tuple to the session. Validation errors
// leave everything as it was and show in the status bar.
func (m Model) applyFilter(f model.Filters, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	cmd := m.session.SetFilters(f)
	return m, tea.Batch(cmd, m.syncSession())
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Shutdown()
	return m, tea.Quit
}

// syncSession mirrors the session snapshot into the views. It mutates the
// subviews held by m, so callers must return m afterwards.
func (m *Model) syncSession() tea.Cmd {
	st := m.session.State()

	selectedID := ""
	if st.Selected != nil {
		selectedID = st.Selected.ID
	}

	m.emailList.SetSelected(selectedID)
	m.emailList.SetLoading(st.Loading)

	var cmd tea.Cmd
	if !sameSlice(m.shown, st.Emails) {
		m.shown = st.Emails
		cmd = m.emailList.SetEmails(st.Emails)
	}

	m.viewer.SetEmail(st.Selected)
	m.viewer.SetReply(st.Reply)
	m.viewer.SetBusy(m.session.Processing(selectedID), m.session.Generating(selectedID))

	m.filterBar.SetFilters(st.Filters, m.filters.FolderEnabled())
	return cmd
}

func sameSlice(a, b []model.Email) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (m *Model) resize() {
	listW, listH := ui.PaneInner(m.layout.ListWidth(), m.layout.ContentHeight())
	viewerW, viewerH := ui.PaneInner(m.layout.ViewerWidth(), m.layout.ContentHeight())

	m.emailList.SetSize(listW, listH)
	m.viewer.SetSize(viewerW, viewerH)
	m.filterBar.SetSize(m.layout.Width)

	overlayW := min(m.layout.Width-4, 90)
	m.helpView.SetSize(overlayW, m.layout.ContentHeight())
	m.commandView.SetSize(overlayW, m.layout.ContentHeight())
}

// executeCommand runs a command from the palette.
func (m Model) executeCommand(cmd command.CommandMsg) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case command.Reload:
		m.monitor.Refresh()
		return m, tea.Batch(m.session.Reload(), m.syncSession())
	case command.Clear:
		return m.applyFilter(m.filters.Clear(), nil)
	case command.Search:
		return m.applyFilter(m.filters.Set(filter.KeySearch, cmd.Arg))
	case command.Account:
		return m.applyFilter(m.filters.Set(filter.KeyAccount, cmd.Arg))
	case command.Folder:
		return m.applyFilter(m.filters.Set(filter.KeyFolder, cmd.Arg))
	case command.Category:
		return m.applyFilter(m.filters.Set(filter.KeyCategory, cmd.Arg))
	case command.Quit:
		return m.quit()
	}

	m.status = fmt.Sprintf("%v: %s", command.ErrUnknownCommand, cmd.Name)
	return m, nil
}

// View renders the full application UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	st := m.session.State()

	header := m.layout.RenderHeader(title, m.headerStatus(st))
	content := m.renderContent(st)
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, m.filterBar.View(), content, statusBar)
}

func (m Model) headerStatus(st session.State) string {
	parts := []string{}
	if st.Health == model.HealthOffline {
		parts = append(parts, theme.BannerStyle.Render(offlineBanner))
	}
	if st.Total > 0 {
		parts = append(parts, theme.HeaderStyle.Render(fmt.Sprintf("%d emails", st.Total)))
	}
	parts = append(parts, theme.HealthStyle(st.Health).Render("● "+st.Health.String()))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderContent(st session.State) string {
	if n := st.Notice; n != nil {
		return m.layout.RenderOverlay(notice.Modal(*n, min(m.layout.Width-4, 70)))
	}

	switch m.currentView {
	case ViewHelp:
		return m.layout.RenderOverlay(m.helpView.View())
	case ViewCommand:
		return m.layout.RenderOverlay(m.commandView.View())
	}

	return m.layout.RenderPanes(
		m.emailList.View(),
		m.viewer.View(),
		m.focus == FocusList,
	)
}

func (m Model) statusLine() string {
	if m.status != "" {
		return m.status
	}
	return m.keyHints()
}

func (m Model) keyHints() string {
	switch {
	case m.session.State().Notice != nil:
		return "enter/esc: dismiss"
	case m.filterBar.Searching():
		return "enter: search  esc: cancel"
	case m.viewer.PickerOpen():
		return "j/k: choose  enter: apply  esc: cancel"
	case m.currentView == ViewHelp:
		return "?/esc: close help"
	case m.currentView == ViewCommand:
		return "enter: run  esc: close"
	}
	return m.helpView.ShortView()
}
