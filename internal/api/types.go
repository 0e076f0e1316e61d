package api

import (
	"encoding/json"

	"github.com/nhle/mail-triage/internal/model"
)

// envelope is the common wrapper around every backend response. Success is
// a pointer so a missing field can be told apart from an explicit false.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// failed reports whether the backend declared the operation failed.
func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// reason returns the most specific failure text available.
func (e envelope) reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// listResponse is the response from GET /emails and POST /emails/search.
type listResponse struct {
	Success *bool         `json:"success"`
	Data    []model.Email `json:"data"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Error   string        `json:"error,omitempty"`
}

// categoryRequest is the body of PATCH /emails/{id}/category.
type categoryRequest struct {
	Category model.Category `json:"category"`
}

// healthResponse is the response from GET /health.
type healthResponse struct {
	Success bool `json:"success"`
}
