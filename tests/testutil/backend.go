// Package testutil provides shared fakes for session and app tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nhle/mail-triage/internal/model"
)

// Backend is an in-memory triage backend. It applies category changes to
// its own email set so reloads observe them, counts every call and returns
// the configured error for an operation when one is set.
type Backend struct {
	mu sync.Mutex

	emails   []model.Email
	metadata *model.Metadata
	online   bool

	// RecategorizeTo is the category chosen by Recategorize.
	RecategorizeTo model.Category
	// Reply is returned by SuggestReply.
	Reply *model.SuggestedReply

	ListErr         error
	GetErr          error
	UpdateErr       error
	RecategorizeErr error
	ReplyErr        error
	MetadataErr     error

	queries []model.SearchQuery
	calls   map[string]int
}

// NewBackend returns an online backend serving emails.
func NewBackend(emails ...model.Email) *Backend {
	return &Backend{
		emails:         append([]model.Email(nil), emails...),
		online:         true,
		RecategorizeTo: model.CategoryInterested,
		metadata: &model.Metadata{
			Accounts: []string{},
			Folders:  map[string][]string{},
		},
		calls: make(map[string]int),
	}
}

// SetMetadata replaces the snapshot returned by Metadata.
func (b *Backend) SetMetadata(md *model.Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metadata = md
}

// SetOnline sets the answer of Healthy.
func (b *Backend) SetOnline(online bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.online = online
}

// SetEmails replaces the stored emails.
func (b *Backend) SetEmails(emails ...model.Email) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emails = append([]model.Email(nil), emails...)
}

// Email returns the stored copy of id.
func (b *Backend) Email(id string) (model.Email, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.emails {
		if e.ID == id {
			return e, true
		}
	}
	return model.Email{}, false
}

// Calls returns how many times op was invoked. Op names are the method
// names, e.g. "ListEmails".
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Queries returns every list query received, oldest first.
func (b *Backend) Queries() []model.SearchQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.SearchQuery(nil), b.queries...)
}

func (b *Backend) ListEmails(ctx context.Context, q model.SearchQuery) (*model.EmailPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["ListEmails"]++
	b.queries = append(b.queries, q)
	if b.ListErr != nil {
		return nil, b.ListErr
	}

	matched := []model.Email{}
	for _, e := range b.emails {
		if matches(e, q) {
			matched = append(matched, e)
		}
	}
	total := len(matched)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return &model.EmailPage{Emails: matched, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (b *Backend) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["GetEmail"]++
	if b.GetErr != nil {
		return nil, b.GetErr
	}
	for _, e := range b.emails {
		if e.ID == id {
			email := e
			return &email, nil
		}
	}
	return nil, fmt.Errorf("email %s not found", id)
}

func (b *Backend) UpdateCategory(ctx context.Context, id string, category model.Category) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["UpdateCategory"]++
	if b.UpdateErr != nil {
		return b.UpdateErr
	}
	return b.setCategory(id, category)
}

func (b *Backend) Recategorize(ctx context.Context, id string) (*model.Email, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Recategorize"]++
	if b.RecategorizeErr != nil {
		return nil, b.RecategorizeErr
	}
	if err := b.setCategory(id, b.RecategorizeTo); err != nil {
		return nil, err
	}
	for _, e := range b.emails {
		if e.ID == id {
			email := e
			return &email, nil
		}
	}
	return nil, fmt.Errorf("email %s not found", id)
}

func (b *Backend) SuggestReply(ctx context.Context, id string) (*model.SuggestedReply, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["SuggestReply"]++
	if b.ReplyErr != nil {
		return nil, b.ReplyErr
	}
	if b.Reply != nil {
		reply := *b.Reply
		reply.EmailID = id
		return &reply, nil
	}
	return &model.SuggestedReply{EmailID: id, SuggestedReply: "Thanks for reaching out.", Confidence: 0.8}, nil
}

func (b *Backend) Metadata(ctx context.Context) (*model.Metadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Metadata"]++
	if b.MetadataErr != nil {
		return nil, b.MetadataErr
	}
	return b.metadata, nil
}

// Healthy reports the configured liveness.
func (b *Backend) Healthy(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Healthy"]++
	return b.online
}

func (b *Backend) setCategory(id string, category model.Category) error {
	for i := range b.emails {
		if b.emails[i].ID == id {
			b.emails[i].Category = category
			return nil
		}
	}
	return fmt.Errorf("email %s not found", id)
}

func matches(e model.Email, q model.SearchQuery) bool {
	if q.Account != "" && e.AccountEmail != q.Account {
		return false
	}
	if q.Folder != "" && e.Folder != q.Folder {
		return false
	}
	if q.Category != "" && e.Category.String() != q.Category {
		return false
	}
	if q.Query != "" {
		needle := strings.ToLower(q.Query)
		haystack := strings.ToLower(e.Subject + " " + e.Body + " " + e.From)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
