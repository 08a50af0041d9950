package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable         = errors.New("server unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrFirstAccessRequired = errors.New("first access required")
	ErrRequestFailed       = errors.New("request failed")
)

// FirstAccessMarker is the detail value the server uses to signal that the
// account has not completed its first access yet.
const FirstAccessMarker = "first_access_required"

// APIError is a non-2xx response. It unwraps to one of the sentinel errors
// above so callers can match it with errors.Is.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: http %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.kind, e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error { return e.kind }

// isFirstAccessDetail reports whether a response detail carries the
// first-access marker, in either its machine or human spelling.
func isFirstAccessDetail(detail string) bool {
	d := strings.ToLower(detail)
	return strings.Contains(d, FirstAccessMarker) || strings.Contains(d, "first access")
}

// mapStatus classifies a non-2xx response. Only the login endpoint reports
// first access: there a 403 or a detail carrying the marker is the signal.
func mapStatus(status int, detail string, login bool) *APIError {
	e := &APIError{StatusCode: status, Detail: detail}
	switch {
	case login && (status == http.StatusForbidden || isFirstAccessDetail(detail)):
		e.kind = ErrFirstAccessRequired
	case status == http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case status == http.StatusForbidden:
		e.kind = ErrForbidden
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	case status >= http.StatusInternalServerError:
		e.kind = ErrUnavailable
	default:
		e.kind = ErrRequestFailed
	}
	return e
}
