package api

import (
	"errors"
	"net/http"
)

// Domain error taxonomy. Each handler maps exactly one of these to exactly
// one HTTP status; anything unrecognized surfaces as a 500.
var (
	ErrBadRequest      = errors.New("invalid or incomplete request")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
)

// StatusForError resolves a domain error to its HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
