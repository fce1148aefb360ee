package manager

import (
	"errors"
	"net/http"
)

// ErrShuttingDown is returned by Create once CloseAll has run.
var ErrShuttingDown = errors.New("shutting down")

type sessionNotFoundError struct{ id string }

func (e sessionNotFoundError) Error() string   { return "session not found: " + e.id }
func (e sessionNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrSessionNotFound returns an error for an unknown session id.
func ErrSessionNotFound(id string) error { return sessionNotFoundError{id: id} }

// IsSessionNotFound reports whether err indicates a missing session.
func IsSessionNotFound(err error) bool {
	var e sessionNotFoundError
	return errors.As(err, &e)
}
