package model

import "time"

// Attachment describes a file attached to an email.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Email is a single message as returned by the triage backend. Everything
// except Category is immutable on the client; Category only changes through
// a backend round-trip.
type Email struct {
	// ID is the backend-assigned unique identifier.
	ID string `json:"id"`

	// MessageID is the RFC 5322 Message-ID header.
	MessageID string `json:"messageId"`

	// AccountEmail is the mailbox account the message was fetched from.
	AccountEmail string `json:"accountEmail"`

	// Folder is the mailbox folder within AccountEmail.
	Folder string `json:"folder"`

	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`

	// Body is the plain-text body.
	Body string `json:"body"`

	// HTML is the optional HTML body.
	HTML string `json:"html,omitempty"`

	Date        time.Time    `json:"date"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Category    Category     `json:"category,omitempty"`
	ReceivedAt  time.Time    `json:"receivedAt"`
}

// HasHTML reports whether the email carries an HTML body.
func (e Email) HasHTML() bool {
	return e.HTML != ""
}

// EmailPage is one page of a list or search response.
type EmailPage struct {
	Emails []Email
	Total  int
	Limit  int
	Offset int
}

// SearchQuery carries the query parameters for listing and searching
// emails. Empty strings and zero numbers mean "no constraint" and are never
// sent to the backend.
type SearchQuery struct {
	Query    string `json:"query,omitempty"`
	Account  string `json:"account,omitempty"`
	Folder   string `json:"folder,omitempty"`
	Category string `json:"category,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// SuggestedReply is an AI-generated reply draft for a single email. It is
// held only in view state.
type SuggestedReply struct {
	EmailID        string   `json:"emailId"`
	SuggestedReply string   `json:"suggestedReply"`
	Confidence     float64  `json:"confidence"`
	Context        []string `json:"context"`
}

// ConfidencePercent returns the confidence as a whole percentage clamped to
// [0, 100].
func (r SuggestedReply) ConfidencePercent() int {
	c := r.Confidence
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return int(c*100 + 0.5)
}
