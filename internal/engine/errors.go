package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine failure by its transport outcome. Callers
// branch on the kind, never on message text.
type Kind string

const (
	KindAuthExpired  Kind = "auth_expired"
	KindNotFound     Kind = "not_found"
	KindBadRequest   Kind = "bad_request"
	KindServerError  Kind = "server_error"
	KindNetworkError Kind = "network_error"
)

// Error is the tagged error returned by every engine call. Message
// carries the backend's error/mensaje field when the body was parseable,
// otherwise a generic "Error {status}: {statusText}" fallback.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("engine: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("engine: %s: %s", e.Kind, e.Message)
}

// KindOf returns the kind of an engine error, or KindServerError for
// anything that is not an *engine.Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

// IsNotFound reports whether err is the "no analysis exists yet" signal,
// which is a valid empty state rather than a failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthExpired
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindBadRequest
	default:
		return KindServerError
	}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetworkError, Message: err.Error()}
}
