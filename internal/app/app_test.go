package app

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nhle/mail-triage/internal/health"
	"github.com/nhle/mail-triage/internal/model"
	"github.com/nhle/mail-triage/internal/session"
	"github.com/nhle/mail-triage/internal/ui/command"
	"github.com/nhle/mail-triage/internal/ui/emaillist"
	"github.com/nhle/mail-triage/internal/ui/viewer"
	"github.com/nhle/mail-triage/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleEmails() []model.Email {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return []model.Email{
		{ID: "e1", AccountEmail: "a@example.com", Folder: "INBOX", From: "alice@acme.io", Subject: "Pricing question", Date: base},
		{ID: "e2", AccountEmail: "a@example.com", Folder: "Archive", From: "bob@acme.io", Subject: "Demo next week", Category: model.CategoryInterested, Date: base.Add(time.Hour)},
		{ID: "e3", AccountEmail: "b@example.com", Folder: "INBOX", From: "carol@corp.io", Subject: "Out until Monday", Category: model.CategoryOutOfOffice, Date: base.Add(2 * time.Hour)},
	}
}

func newBackend() *testutil.Backend {
	b := testutil.NewBackend(sampleEmails()...)
	b.SetMetadata(&model.Metadata{
		Accounts: []string{"a@example.com", "b@example.com"},
		Folders: map[string][]string{
			"a@example.com": {"Archive", "INBOX"},
			"b@example.com": {"INBOX"},
		},
	})
	return b
}

// newTestModel returns a sized model whose health monitor never polls;
// tests drive health by sending ResultMsg themselves.
func newTestModel(t *testing.T, backend *testutil.Backend) Model {
	t.Helper()

	cfg := model.AppConfig{API: model.APIConfig{BaseURL: "http://localhost:8000"}}
	m := New(backend, backend, cfg, nil)
	m.monitor.Stop()
	t.Cleanup(m.Shutdown)

	return send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

// send applies msg and runs every command it produces until the model
// settles.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()

	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100, "command loop did not settle")

		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := c().(type) {
		case nil, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, cmd := m.Update(msg)
			m = next.(Model)
			queue = append(queue, cmd)
		}
	}
	return m
}

func commandMsg(name, arg string) command.CommandMsg {
	return command.CommandMsg{Name: name, Arg: arg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press applies a key without running the resulting commands.
func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func onlineModel(t *testing.T, backend *testutil.Backend) Model {
	t.Helper()

	m := newTestModel(t, backend)
	m = send(t, m, health.ResultMsg{Online: true, CheckedAt: time.Now()})
	require.Equal(t, model.HealthOnline, m.session.State().Health)
	return m
}

func TestModel_ViewBeforeSize(t *testing.T) {
	backend := newBackend()
	m := New(backend, backend, model.AppConfig{}, nil)
	m.monitor.Stop()
	defer m.Shutdown()

	assert.Equal(t, "Loading...", m.View())
}

func TestModel_FirstHealthyProbeLoadsList(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	st := m.session.State()
	assert.Len(t, st.Emails, 3)
	assert.Equal(t, 3, m.emailList.Len())
	assert.Equal(t, 1, backend.Calls("ListEmails"))
	assert.Equal(t, 1, backend.Calls("Metadata"))
	assert.NotNil(t, m.filters.Metadata(), "metadata handed to filter state")

	view := m.View()
	assert.Contains(t, view, "Mail Triage")
	assert.Contains(t, view, "3 emails")
	assert.Contains(t, view, "Online")
}

func TestModel_OfflineBanner(t *testing.T) {
	backend := newBackend()
	m := newTestModel(t, backend)

	m = send(t, m, health.ResultMsg{Online: false})

	assert.Contains(t, m.View(), offlineBanner)
	assert.Zero(t, backend.Calls("ListEmails"))
}

func TestModel_SelectingEmailShowsViewer(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	m = send(t, m, emaillist.SelectedMsg{ID: "e2"})

	require.NotNil(t, m.session.State().Selected)
	assert.Equal(t, "e2", m.session.State().Selected.ID)
	assert.Equal(t, FocusViewer, m.focus)
	assert.Contains(t, m.View(), "Demo next week")
}

func TestModel_FilterKeysCycleAndReload(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	m, cmd := press(m, keyRunes("a"))
	m = drain(t, m, cmd)

	st := m.session.State()
	assert.Equal(t, "a@example.com", st.Filters.Account)
	assert.Len(t, st.Emails, 2)

	m, cmd = press(m, keyRunes("f"))
	m = drain(t, m, cmd)
	assert.Equal(t, "Archive", m.session.State().Filters.Folder)
	assert.Len(t, m.session.State().Emails, 1)

	m, cmd = press(m, keyRunes("x"))
	m = drain(t, m, cmd)
	assert.True(t, m.session.State().Filters.IsZero())
	assert.Len(t, m.session.State().Emails, 3)
	assert.Equal(t, 4, backend.Calls("ListEmails"))
}

func TestModel_ClearKeyAlwaysReloads(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)
	m = send(t, m, emaillist.SelectedMsg{ID: "e1"})

	m, cmd := press(m, keyRunes("x"))
	m = drain(t, m, cmd)

	assert.Equal(t, 2, backend.Calls("ListEmails"))
	assert.True(t, m.session.State().Filters.IsZero())
	assert.Nil(t, m.session.State().Selected)
}

func TestModel_CategoryChosenUpdatesAndReloads(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)
	m = send(t, m, emaillist.SelectedMsg{ID: "e1"})

	m = send(t, m, viewer.CategoryChosenMsg{ID: "e1", Category: model.CategorySpam})

	assert.Equal(t, 1, backend.Calls("UpdateCategory"))
	assert.Equal(t, 2, backend.Calls("ListEmails"))
	require.NotNil(t, m.session.State().Selected)
	assert.Equal(t, model.CategorySpam, m.session.State().Selected.Category)
}

func TestModel_NoticeSwallowsKeys(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)
	m = send(t, m, emaillist.SelectedMsg{ID: "e1"})

	backend.UpdateErr = errors.New("boom")
	m = send(t, m, viewer.CategoryChosenMsg{ID: "e1", Category: model.CategorySpam})

	n := m.session.State().Notice
	require.NotNil(t, n)
	assert.Contains(t, m.View(), "Failed to update category")

	m, cmd := press(m, keyRunes("a"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.session.State().Filters.Account, "filter keys ignored behind modal")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.session.State().Notice)
}

func TestModel_ReloadFailureShowsNotice(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	backend.ListErr = errors.New("connection refused")
	m, cmd := press(m, keyRunes("r"))
	m = drain(t, m, cmd)

	n := m.session.State().Notice
	require.NotNil(t, n)
	assert.Equal(t, session.ActionReload, n.Action)
	view := m.View()
	assert.Contains(t, view, "Failed to reload emails")
	assert.Contains(t, view, "connection refused")
	assert.Zero(t, m.emailList.Len(), "list fails closed")

	m, cmd = press(m, keyRunes("r"))
	assert.Nil(t, cmd, "keys swallowed until dismissed")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.session.State().Notice)
}

func TestModel_SuggestReplyFlow(t *testing.T) {
	backend := newBackend()
	backend.Reply = &model.SuggestedReply{SuggestedReply: "Thanks, Tuesday works.", Confidence: 0.9}
	m := onlineModel(t, backend)
	m = send(t, m, emaillist.SelectedMsg{ID: "e1"})

	m = send(t, m, viewer.SuggestReplyRequestMsg{ID: "e1"})

	require.NotNil(t, m.session.State().Reply)
	assert.Contains(t, m.View(), "Thanks, Tuesday works.")
}

func TestModel_CommandPalette(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	m, _ = press(m, keyRunes(":"))
	assert.Equal(t, ViewCommand, m.currentView)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewMain, m.currentView)
}

func TestModel_ExecuteCommand(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	next, cmd := m.executeCommand(commandMsg("category", "Interested"))
	m = drain(t, next.(Model), cmd)
	assert.Equal(t, model.CategoryInterested, m.session.State().Filters.Category)
	assert.Len(t, m.session.State().Emails, 1)

	next, cmd = m.executeCommand(commandMsg("folder", "Nope"))
	m = drain(t, next.(Model), cmd)
	assert.NotEmpty(t, m.status, "invalid folder reported")
	assert.Empty(t, m.session.State().Filters.Folder)

	next, cmd = m.executeCommand(commandMsg("clear", ""))
	m = drain(t, next.(Model), cmd)
	assert.True(t, m.session.State().Filters.IsZero())
}

func TestModel_HelpToggle(t *testing.T) {
	backend := newBackend()
	m := onlineModel(t, backend)

	m, _ = press(m, keyRunes("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.Contains(t, m.View(), "http://localhost:8000")

	m, _ = press(m, keyRunes("?"))
	assert.Equal(t, ViewMain, m.currentView)
}

func TestModel_QuitStopsBackgroundWork(t *testing.T) {
	backend := newBackend()
	m := New(backend, backend, model.AppConfig{}, nil)
	_ = m.Init()

	_, cmd := press(m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// The poller goroutine is gone; goleak checks the rest at exit.
	assert.Nil(t, m.monitor.Start())
}
