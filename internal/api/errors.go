package api

import (
	"errors"
	"fmt"
)

// ErrApplication is returned when a response body carries success: false.
var ErrApplication = errors.New("backend reported failure")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf(
			"unexpected status %d on %s %s: %s",
			e.StatusCode, e.Method, e.Path, e.Message,
		)
	}
	return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
}

// IsNotFound reports whether err (or any error in its chain) is a 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == 404
}
