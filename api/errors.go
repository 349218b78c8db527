package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthExpired is returned for every HTTP 401. Stored credentials
	// have already been cleared when a caller sees it.
	ErrAuthExpired = errors.New("session expired")

	// ErrValidation marks input rejected before any request was sent.
	ErrValidation = errors.New("validation failed")
)

// LoginRedirect is where the session-expired hook sends the user.
const LoginRedirect = "/login?expired=true"

// RequestError is a non-2xx response from the backend.
type RequestError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// ValidationError lists the fields that failed client-side checks.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// errorMessage picks the human-readable message out of an error body,
// falling back to "HTTP <status>: <statusText>".
func errorMessage(status int, body map[string]any) string {
	for _, key := range []string{"message", "error"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			msgs := make([]string, 0, len(v))
			for _, m := range v {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, ", ")
			}
		}
	}
	return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
