// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldErrors is implemented by validation errors that carry per-field messages.
type FieldErrors interface {
	error
	FieldMessages() map[string]string
}

// RespondError maps domain errors to JSON error responses. The fallback
// message is used for unexpected errors so internals are not leaked.
func RespondError(w http.ResponseWriter, err error, fallback string) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		JSON(w, http.StatusBadRequest, ErrorBody{Error: "Validation failed", Fields: fields.FieldMessages()})
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "Unauthorized")
	default:
		if fallback == "" {
			fallback = http.StatusText(http.StatusInternalServerError)
		}
		Error(w, http.StatusInternalServerError, fallback)
	}
}

// NotFound wraps ErrNotFound with a client facing message.
func NotFound(message string) error {
	return &notFoundError{message: message}
}

type notFoundError struct {
	message string
}

func (e *notFoundError) Error() string { return e.message }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

func notFoundMessage(err error) string {
	var nf *notFoundError
	if errors.As(err, &nf) {
		return nf.message
	}
	return "Not found"
}
