// Package filter holds the account/folder/category/search selection that
// drives the email list query.
package filter

import (
	"errors"
	"fmt"

	"github.com/nhle/mail-triage/internal/model"
)

var (
	// ErrUnknownAccount is returned when an account is not in the metadata.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrUnknownFolder is returned when a folder is not defined under the
	// current account.
	ErrUnknownFolder = errors.New("unknown folder for account")
)

// Key names one field of the filter tuple.
type Key int

const (
	KeyAccount Key = iota
	KeyFolder
	KeyCategory
	KeySearch
)

func (k Key) String() string {
	switch k {
	case KeyAccount:
		return "account"
	case KeyFolder:
		return "folder"
	case KeyCategory:
		return "category"
	case KeySearch:
		return "search"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// State holds the current filter tuple. Changing the account always clears
// the folder in the same update, so the folder never refers to a folder of
// a different account.
type State struct {
	current  model.Filters
	metadata *model.Metadata
}

// New returns an empty filter state.
func New() *State {
	return &State{}
}

// Current returns the current tuple.
func (s *State) Current() model.Filters {
	return s.current
}

// SetMetadata provides the account/folder snapshot used to validate and
// offer options.
func (s *State) SetMetadata(md *model.Metadata) {
	s.metadata = md
}

// Metadata returns the snapshot, or nil before it has loaded.
func (s *State) Metadata() *model.Metadata {
	return s.metadata
}

// Set updates one field and returns the full resulting tuple. On error the
// state is unchanged.
func (s *State) Set(key Key, value string) (model.Filters, error) {
	next := s.current

	switch key {
	case KeyAccount:
		if value != "" && s.metadata != nil && !s.metadata.HasAccount(value) {
			return s.current, fmt.Errorf("%w: %q", ErrUnknownAccount, value)
		}
		next.Account = value
		next.Folder = ""

	case KeyFolder:
		if value != "" && !s.metadata.HasFolder(next.Account, value) {
			return s.current, fmt.Errorf("%w: %q under %q", ErrUnknownFolder, value, next.Account)
		}
		next.Folder = value

	case KeyCategory:
		c, err := model.ParseCategory(value)
		if err != nil {
			return s.current, err
		}
		next.Category = c

	case KeySearch:
		next.Search = value

	default:
		return s.current, fmt.Errorf("unknown filter key %s", key)
	}

	s.current = next
	return next, nil
}

// Clear resets every field and returns the empty tuple.
func (s *State) Clear() model.Filters {
	s.current = model.Filters{}
	return s.current
}

// Options returns the values offered for key, starting with "" for "all".
// Folders are only offered once an account is chosen.
func (s *State) Options(key Key) []string {
	opts := []string{""}
	switch key {
	case KeyAccount:
		if s.metadata != nil {
			opts = append(opts, s.metadata.Accounts...)
		}
	case KeyFolder:
		if s.current.Account == "" {
			return opts
		}
		opts = append(opts, s.metadata.FoldersFor(s.current.Account)...)
	case KeyCategory:
		for _, c := range model.Categories() {
			opts = append(opts, c.String())
		}
	}
	return opts
}

// Cycle moves key to the next (step > 0) or previous (step < 0) offered
// option, wrapping around, and applies it with Set.
func (s *State) Cycle(key Key, step int) (model.Filters, error) {
	opts := s.Options(key)
	if len(opts) <= 1 {
		return s.current, nil
	}

	currentValue := s.valueOf(key)
	idx := 0
	for i, o := range opts {
		if o == currentValue {
			idx = i
			break
		}
	}

	n := len(opts)
	next := ((idx+step)%n + n) % n
	return s.Set(key, opts[next])
}

// valueOf returns the wire value of key in the current tuple.
func (s *State) valueOf(key Key) string {
	switch key {
	case KeyAccount:
		return s.current.Account
	case KeyFolder:
		return s.current.Folder
	case KeyCategory:
		return s.current.Category.String()
	case KeySearch:
		return s.current.Search
	default:
		return ""
	}
}

// FolderEnabled reports whether a folder can be chosen, which requires an
// account.
func (s *State) FolderEnabled() bool {
	return s.current.Account != ""
}
