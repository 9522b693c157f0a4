package issues

import (
	"errors"
	"net/http"
)

// Domain errors for issue operations.
var (
	ErrNotFound  = errors.New("issue not found")
	ErrDuplicate = errors.New("issue already exists")
	ErrInvalid   = errors.New("invalid issue")
)

// MapHTTPStatus maps issue domain errors to HTTP status codes.
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
	return http.StatusInternalServerError
}
