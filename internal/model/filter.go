package model

import (
	"fmt"
	"strings"
)

// Filters is the {account, folder, category, search} tuple that drives the
// email list query. Empty strings and CategoryUnset mean "all".
type Filters struct {
	Account  string
	Folder   string
	Category Category
	Search   string
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f.Account == "" &&
		f.Folder == "" &&
		f.Category == CategoryUnset &&
		f.Search == ""
}

// Query builds the list query for f. Only non-empty fields are included.
func (f Filters) Query(limit int) SearchQuery {
	return SearchQuery{
		Query:    f.Search,
		Account:  f.Account,
		Folder:   f.Folder,
		Category: f.Category.String(),
		Limit:    limit,
	}
}

// Summary returns a short human-readable description of the active
// filters, or "" when none are active.
func (f Filters) Summary() string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	if f.Account != "" {
		parts = append(parts, "account: "+f.Account)
	}
	if f.Folder != "" {
		parts = append(parts, "folder: "+f.Folder)
	}
	if f.Category != CategoryUnset {
		parts = append(parts, "category: "+f.Category.String())
	}
	return strings.Join(parts, " | ")
}

// Metadata is the read-only snapshot of accounts and their folders,
// loaded once per session.
type Metadata struct {
	Accounts []string            `json:"accounts"`
	Folders  map[string][]string `json:"folders"`
}

// FoldersFor returns the folders defined for account, or nil.
func (m *Metadata) FoldersFor(account string) []string {
	if m == nil || account == "" {
		return nil
	}
	return m.Folders[account]
}

// HasAccount reports whether account is part of the snapshot.
func (m *Metadata) HasAccount(account string) bool {
	if m == nil {
		return false
	}
	for _, a := range m.Accounts {
		if a == account {
			return true
		}
	}
	return false
}

// HasFolder reports whether folder is defined under account.
func (m *Metadata) HasFolder(account, folder string) bool {
	for _, f := range m.FoldersFor(account) {
		if f == folder {
			return true
		}
	}
	return false
}

// HealthStatus is the backend liveness as last observed by the client.
type HealthStatus int

const (
	HealthChecking HealthStatus = iota
	HealthOnline
	HealthOffline
)

// String returns the label used in the header badge.
func (h HealthStatus) String() string {
	switch h {
	case HealthOnline:
		return "Online"
	case HealthOffline:
		return "Offline"
	default:
		return "Checking..."
	}
}
