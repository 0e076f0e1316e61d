package session

import "github.com/nhle/mail-triage/internal/model"

// EmailsLoadedMsg carries the result of a reload issued under Generation.
type EmailsLoadedMsg struct {
	Generation uint64
	Page       *model.EmailPage
	Err        error
}

// EmailFetchedMsg carries a fresh copy of a single email, fetched to
// reconcile the selection after a mutation. Seq orders fetches of the same
// email.
type EmailFetchedMsg struct {
	ID    string
	Seq   uint64
	Email *model.Email
	Err   error
}

// CategoryUpdatedMsg reports the outcome of a manual category change.
type CategoryUpdatedMsg struct {
	ID       string
	Category model.Category
	Err      error
}

// RecategorizedMsg reports the outcome of an AI recategorization.
type RecategorizedMsg struct {
	ID    string
	Email *model.Email
	Err   error
}

// ReplySuggestedMsg carries a suggested reply for the email it was
// requested for.
type ReplySuggestedMsg struct {
	ID    string
	Reply *model.SuggestedReply
	Err   error
}

// MetadataLoadedMsg carries the account/folder snapshot.
type MetadataLoadedMsg struct {
	Metadata *model.Metadata
	Err      error
}
