// Package session owns the client-side triage state: the current filter
// tuple, the loaded email list, the selection, backend health and the
// transient suggested reply. Every operation returns a tea.Cmd that talks to
// the backend; results come back as messages and are applied in Update,
// which is the only place state changes.
package session

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mail-triage/internal/health"
	"github.com/nhle/mail-triage/internal/logging"
	"github.com/nhle/mail-triage/internal/model"
)

// PageSize is the fixed number of emails requested per reload.
const PageSize = 50

var (
	// ErrNotInList is returned when selecting an email that is not part of
	// the loaded list.
	ErrNotInList = errors.New("email not in current list")

	// ErrNoSelection is raised when an action needs the given email to be
	// the selected one and it is not.
	ErrNoSelection = errors.New("email is not selected")

	// ErrInvalidCategory is raised when a category change names no
	// assignable category.
	ErrInvalidCategory = errors.New("invalid category")
)

// Action names used in notices.
const (
	ActionReload       = "Reload emails"
	ActionUpdate       = "Update category"
	ActionRecategorize = "Recategorize email"
	ActionSuggestReply = "Generate reply"
	ActionRefreshEmail = "Refresh email"
	ActionLoadMetadata = "Load accounts"
)

// Backend is the subset of the REST client the session needs.
type Backend interface {
	ListEmails(ctx context.Context, q model.SearchQuery) (*model.EmailPage, error)
	GetEmail(ctx context.Context, id string) (*model.Email, error)
	UpdateCategory(ctx context.Context, id string, category model.Category) error
	Recategorize(ctx context.Context, id string) (*model.Email, error)
	SuggestReply(ctx context.Context, id string) (*model.SuggestedReply, error)
	Metadata(ctx context.Context) (*model.Metadata, error)
}

// Notice is a user-visible failure report. A notice must be dismissed
// before anything else can be done; failures raised while one is showing
// queue up behind it.
type Notice struct {
	Action string
	Err    error
}

// Message renders the notice text, naming the failed action.
func (n Notice) Message() string {
	if n.Err == nil {
		return n.Action + " failed"
	}
	return fmt.Sprintf("%s failed: %v", n.Action, n.Err)
}

// State is a read-only snapshot of the session.
type State struct {
	Filters  model.Filters
	Emails   []model.Email
	Total    int
	Loading  bool
	Selected *model.Email
	Health   model.HealthStatus
	Metadata *model.Metadata
	Reply    *model.SuggestedReply
	Notice   *Notice
}

// Session is the list/selection orchestrator.
type Session struct {
	backend Backend
	log     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	state      State
	generation uint64

	notices []Notice

	// refreshing maps an email id to the sequence of its latest
	// reconciliation fetch. Only that fetch may replace the selection.
	refreshing map[string]uint64
	refreshSeq uint64

	processing      map[string]bool
	generating      map[string]bool
	metadataLoading bool
}

// New creates a session in the checking state with empty filters.
func New(backend Backend, log *logrus.Entry) *Session {
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		backend:    backend,
		log:        log.WithField("component", "session"),
		ctx:        ctx,
		cancel:     cancel,
		state:      State{Health: model.HealthChecking},
		refreshing: make(map[string]uint64),
		processing: make(map[string]bool),
		generating: make(map[string]bool),
	}
}

// Close cancels requests still in flight. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.cancel()
}

// State returns the current snapshot.
func (s *Session) State() State {
	st := s.state
	if len(s.notices) > 0 {
		n := s.notices[0]
		st.Notice = &n
	}
	return st
}

// Generation returns the tag of the most recently issued reload.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Processing reports whether a category change or recategorization is in
// flight for id.
func (s *Session) Processing(id string) bool {
	return s.processing[id]
}

// Generating reports whether a suggested reply is being generated for id.
func (s *Session) Generating(id string) bool {
	return s.generating[id]
}

// SetFilters adopts f, clears the selection and the suggested reply, and
// reloads.
func (s *Session) SetFilters(f model.Filters) tea.Cmd {
	s.state.Filters = f
	s.state.Selected = nil
	s.state.Reply = nil
	return s.Reload()
}

// Reload requests the first page for the current filters. It does nothing
// unless the backend is online.
func (s *Session) Reload() tea.Cmd {
	if s.state.Health != model.HealthOnline {
		s.log.WithField("health", s.state.Health.String()).Debug("reload suppressed")
		return nil
	}

	s.generation++
	s.state.Loading = true

	gen := s.generation
	q := s.state.Filters.Query(PageSize)
	backend := s.backend
	ctx := s.ctx

	s.log.WithFields(logrus.Fields{
		"generation": gen,
		"filters":    s.state.Filters.Summary(),
	}).Debug("reload issued")

	return func() tea.Msg {
		page, err := backend.ListEmails(ctx, q)
		return EmailsLoadedMsg{Generation: gen, Page: page, Err: err}
	}
}

// Select makes the email with id the selection. An empty id deselects.
// Selecting a different email discards the suggested reply.
func (s *Session) Select(id string) error {
	if id == "" {
		s.state.Selected = nil
		s.state.Reply = nil
		return nil
	}

	for i := range s.state.Emails {
		if s.state.Emails[i].ID != id {
			continue
		}
		if s.state.Selected == nil || s.state.Selected.ID != id {
			s.state.Reply = nil
		}
		email := s.state.Emails[i]
		s.state.Selected = &email
		return nil
	}

	return fmt.Errorf("selecting %s: %w", id, ErrNotInList)
}

// UpdateCategory sets the category of email id. Unset or unknown
// categories are rejected before any request.
func (s *Session) UpdateCategory(id string, category model.Category) tea.Cmd {
	if !category.IsSet() {
		s.raise(ActionUpdate, fmt.Errorf("%w: %d", ErrInvalidCategory, int(category)))
		return nil
	}
	if s.processing[id] {
		return nil
	}
	s.processing[id] = true

	backend := s.backend
	ctx := s.ctx
	return func() tea.Msg {
		err := backend.UpdateCategory(ctx, id, category)
		return CategoryUpdatedMsg{ID: id, Category: category, Err: err}
	}
}

// Recategorize asks the backend to choose a category for email id.
func (s *Session) Recategorize(id string) tea.Cmd {
	if s.processing[id] {
		return nil
	}
	s.processing[id] = true

	backend := s.backend
	ctx := s.ctx
	return func() tea.Msg {
		email, err := backend.Recategorize(ctx, id)
		return RecategorizedMsg{ID: id, Email: email, Err: err}
	}
}

// RequestSuggestedReply requests a reply for the selected email. Any
// previous suggestion is discarded.
func (s *Session) RequestSuggestedReply(id string) tea.Cmd {
	if s.state.Selected == nil || s.state.Selected.ID != id {
		s.raise(ActionSuggestReply, fmt.Errorf("%s: %w", id, ErrNoSelection))
		return nil
	}
	if s.generating[id] {
		return nil
	}
	s.generating[id] = true
	s.state.Reply = nil

	backend := s.backend
	ctx := s.ctx
	return func() tea.Msg {
		reply, err := backend.SuggestReply(ctx, id)
		return ReplySuggestedMsg{ID: id, Reply: reply, Err: err}
	}
}

// ApplyHealth feeds one probe result into the health state machine.
// Entering online from checking or offline fires exactly one reload, plus
// a metadata load if none has succeeded yet.
func (s *Session) ApplyHealth(online bool) tea.Cmd {
	prev := s.state.Health
	next, recovered := health.Next(prev, online)
	s.state.Health = next

	if prev != next {
		s.log.WithFields(logrus.Fields{
			"from": prev.String(),
			"to":   next.String(),
		}).Info("backend health changed")
	}

	if !recovered {
		return nil
	}

	cmds := []tea.Cmd{s.Reload()}
	if s.state.Metadata == nil {
		cmds = append(cmds, s.LoadMetadata())
	}
	return tea.Batch(cmds...)
}

// LoadMetadata fetches the account/folder snapshot. Concurrent calls are
// merged.
func (s *Session) LoadMetadata() tea.Cmd {
	if s.metadataLoading {
		return nil
	}
	s.metadataLoading = true

	backend := s.backend
	ctx := s.ctx
	return func() tea.Msg {
		md, err := backend.Metadata(ctx)
		return MetadataLoadedMsg{Metadata: md, Err: err}
	}
}

// DismissNotice clears the current notice, revealing the next queued one.
func (s *Session) DismissNotice() {
	if len(s.notices) > 0 {
		s.notices = s.notices[1:]
	}
}

// Update applies a result message. Messages of other types are ignored.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		return s.handleEmailsLoaded(msg)
	case EmailFetchedMsg:
		return s.handleEmailFetched(msg)
	case CategoryUpdatedMsg:
		return s.handleMutation(ActionUpdate, msg.ID, msg.Err)
	case RecategorizedMsg:
		return s.handleMutation(ActionRecategorize, msg.ID, msg.Err)
	case ReplySuggestedMsg:
		return s.handleReplySuggested(msg)
	case MetadataLoadedMsg:
		return s.handleMetadataLoaded(msg)
	}
	return nil
}

func (s *Session) handleEmailsLoaded(msg EmailsLoadedMsg) tea.Cmd {
	log := s.log.WithField("generation", msg.Generation)
	if msg.Generation != s.generation {
		log.WithField("current", s.generation).Debug("stale reload discarded")
		return nil
	}

	s.state.Loading = false

	if msg.Err != nil {
		log.WithError(msg.Err).Warn("reload failed")
		s.state.Emails = nil
		s.state.Total = 0
		s.raise(ActionReload, msg.Err)
		return nil
	}

	var emails []model.Email
	total := 0
	if msg.Page != nil {
		emails = msg.Page.Emails
		total = msg.Page.Total
	}
	s.state.Emails = emails
	s.state.Total = total

	if sel := s.state.Selected; sel != nil {
		s.reconcileSelection(sel.ID)
	}

	log.WithFields(logrus.Fields{
		"count": len(emails),
		"total": total,
	}).Debug("emails loaded")
	return nil
}

// reconcileSelection replaces the selection with the list's copy. An email
// that left the list is deselected, unless a refetch for it is still in
// flight; that refetch then settles it.
func (s *Session) reconcileSelection(id string) {
	for i := range s.state.Emails {
		if s.state.Emails[i].ID == id {
			fresh := s.state.Emails[i]
			s.state.Selected = &fresh
			return
		}
	}
	if _, pending := s.refreshing[id]; pending {
		return
	}
	s.log.WithField("email_id", id).Debug("selection left the list")
	s.state.Selected = nil
	s.state.Reply = nil
}

func (s *Session) handleEmailFetched(msg EmailFetchedMsg) tea.Cmd {
	if latest, ok := s.refreshing[msg.ID]; !ok || latest != msg.Seq {
		s.log.WithFields(logrus.Fields{
			"email_id": msg.ID,
			"seq":      msg.Seq,
		}).Debug("stale refresh discarded")
		return nil
	}
	delete(s.refreshing, msg.ID)

	if msg.Err != nil {
		s.log.WithError(msg.Err).WithField("email_id", msg.ID).Warn("refreshing selection failed")
		s.raise(ActionRefreshEmail, msg.Err)
		return nil
	}
	if s.state.Selected == nil || s.state.Selected.ID != msg.ID || msg.Email == nil {
		return nil
	}
	email := *msg.Email
	s.state.Selected = &email
	return nil
}

// handleMutation applies the reconciliation contract shared by category
// updates and recategorization.
func (s *Session) handleMutation(action, id string, err error) tea.Cmd {
	delete(s.processing, id)

	if err != nil {
		s.log.WithError(err).WithField("email_id", id).Warn(action + " failed")
		s.raise(action, err)
		return nil
	}

	cmds := []tea.Cmd{s.Reload()}
	if s.state.Selected != nil && s.state.Selected.ID == id {
		cmds = append(cmds, s.fetchEmail(id))
	}
	return tea.Batch(cmds...)
}

func (s *Session) handleReplySuggested(msg ReplySuggestedMsg) tea.Cmd {
	delete(s.generating, msg.ID)

	if msg.Err != nil {
		s.log.WithError(msg.Err).WithField("email_id", msg.ID).Warn("suggest reply failed")
		s.raise(ActionSuggestReply, msg.Err)
		return nil
	}
	if s.state.Selected == nil || s.state.Selected.ID != msg.ID {
		s.log.WithField("email_id", msg.ID).Debug("suggested reply for deselected email dropped")
		return nil
	}
	s.state.Reply = msg.Reply
	return nil
}

func (s *Session) handleMetadataLoaded(msg MetadataLoadedMsg) tea.Cmd {
	s.metadataLoading = false
	if msg.Err != nil {
		s.log.WithError(msg.Err).Warn("loading metadata failed")
		s.raise(ActionLoadMetadata, msg.Err)
		return nil
	}
	s.state.Metadata = msg.Metadata
	return nil
}

// fetchEmail refetches id. Each call supersedes any earlier fetch for the
// same email.
func (s *Session) fetchEmail(id string) tea.Cmd {
	s.refreshSeq++
	seq := s.refreshSeq
	s.refreshing[id] = seq

	backend := s.backend
	ctx := s.ctx
	return func() tea.Msg {
		email, err := backend.GetEmail(ctx, id)
		return EmailFetchedMsg{ID: id, Seq: seq, Email: email, Err: err}
	}
}

// raise queues a notice naming the failed action.
func (s *Session) raise(action string, err error) {
	s.notices = append(s.notices, Notice{Action: action, Err: err})
}
