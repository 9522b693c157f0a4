package conversations

import (
	"errors"
	"net/http"
)

// Domain errors for conversation operations.
var (
	ErrNotFound    = errors.New("conversation not found")
	ErrDuplicate   = errors.New("conversation already exists")
	ErrInvalid     = errors.New("invalid conversation")
	ErrUnavailable = errors.New("adjudication unavailable")
)

// MapHTTPStatus maps conversation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
