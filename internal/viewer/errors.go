package viewer

import (
	"errors"
	"net/http"
)

// User-facing messages. Single locale.
const (
	MsgUnsupportedFile = "only .glb files are supported"
	MsgLoadFailed      = "failed to load model"
)

// ErrClosed is returned by operations on a torn-down controller.
var ErrClosed = errors.New("viewer closed")

// unsupportedFileError rejects uploads that are not .glb files.
type unsupportedFileError struct{ name string }

func (e unsupportedFileError) Error() string   { return MsgUnsupportedFile }
func (e unsupportedFileError) StatusCode() int { return http.StatusBadRequest }

// IsUnsupportedFile reports whether err is an upload extension rejection.
func IsUnsupportedFile(err error) bool {
	var e unsupportedFileError
	return errors.As(err, &e)
}

type unknownModelError struct{ key string }

func (e unknownModelError) Error() string   { return "model not found: " + e.key }
func (e unknownModelError) StatusCode() int { return http.StatusNotFound }

// ErrUnknownModel returns an error for a selection key absent from the catalog.
func ErrUnknownModel(key string) error { return unknownModelError{key: key} }

// IsUnknownModel reports whether err indicates a missing catalog key.
func IsUnknownModel(err error) bool {
	var e unknownModelError
	return errors.As(err, &e)
}

type tooLargeError struct{ limit int64 }

func (e tooLargeError) Error() string   { return "file too large" }
func (e tooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

// IsTooLarge reports whether an upload exceeded the blob size limit.
func IsTooLarge(err error) bool {
	var e tooLargeError
	return errors.As(err, &e)
}
