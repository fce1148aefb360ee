package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"glbview/internal/manager"
	"glbview/internal/viewer"
	"glbview/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case manager.IsSessionNotFound(err), viewer.IsUnknownModel(err):
		return http.StatusNotFound
	case viewer.IsUnsupportedFile(err):
		return http.StatusBadRequest
	case viewer.IsTooLarge(err), errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, viewer.ErrClosed), errors.Is(err, manager.ErrShuttingDown):
		return http.StatusGone
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logError(err, "encode response")
	}
}
