package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a wire value does not name one of the
// known categories.
var ErrUnknownCategory = errors.New("unknown category")

// Category is the triage label assigned to an email by the backend.
// The zero value CategoryUnset means the email carries no category at all,
// which is distinct from the explicit CategoryUncategorized label.
type Category int

const (
	CategoryUnset Category = iota
	CategoryInterested
	CategoryMeetingBooked
	CategoryNotInterested
	CategorySpam
	CategoryOutOfOffice
	CategoryUncategorized
)

// categoryNames holds the wire string for each assignable category.
var categoryNames = map[Category]string{
	CategoryInterested:    "Interested",
	CategoryMeetingBooked: "Meeting Booked",
	CategoryNotInterested: "Not Interested",
	CategorySpam:          "Spam",
	CategoryOutOfOffice:   "Out of Office",
	CategoryUncategorized: "Uncategorized",
}

// Categories returns the assignable categories in display order.
func Categories() []Category {
	return []Category{
		CategoryInterested,
		CategoryMeetingBooked,
		CategoryNotInterested,
		CategorySpam,
		CategoryOutOfOffice,
		CategoryUncategorized,
	}
}

// ParseCategory maps a wire string to a Category. The empty string maps to
// CategoryUnset.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryUnset, nil
	}
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return CategoryUnset, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// String returns the wire value, or "" for CategoryUnset.
func (c Category) String() string {
	return categoryNames[c]
}

// DisplayName returns the label shown to the user. Emails without a
// category are shown as Uncategorized.
func (c Category) DisplayName() string {
	if c == CategoryUnset {
		return categoryNames[CategoryUncategorized]
	}
	return c.String()
}

// IsSet reports whether c is one of the assignable categories.
func (c Category) IsSet() bool {
	_, ok := categoryNames[c]
	return ok
}

// MarshalJSON encodes CategoryUnset as null and every other value as its
// wire string.
func (c Category) MarshalJSON() ([]byte, error) {
	if c == CategoryUnset {
		return []byte("null"), nil
	}
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return json.Marshal(name)
}

// UnmarshalJSON rejects strings outside the closed set instead of passing
// them through.
func (c *Category) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = CategoryUnset
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding category: %w", err)
	}

	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
