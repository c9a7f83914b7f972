// ABOUTME: Error types for the resource client: HTTP status failures and missing records.
// ABOUTME: APIError carries request and response metadata and matches ErrNotFound on 404.
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by APIError for 404 responses and is returned
// directly when the backend answers with an empty record.
var ErrNotFound = errors.New("resource not found")

// APIError is returned for any non-2xx response. It is never retried.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports true for ErrNotFound when the status code is 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
