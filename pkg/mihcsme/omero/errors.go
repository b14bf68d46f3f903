package omero

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotLoggedIn indicates a request was attempted before Login succeeded.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError carries the HTTP status of a failed server request through the
// call stack so callers can react to specific statuses without parsing
// error strings.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.URL, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
