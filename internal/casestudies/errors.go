package casestudies

import (
	"errors"
	"net/http"
)

// Domain errors for case-study operations.
var (
	ErrNotFound  = errors.New("case study not found")
	ErrDuplicate = errors.New("case study already exists")
	ErrInvalid   = errors.New("invalid case study")
)

// MapHTTPStatus maps case-study domain errors to HTTP status codes.
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
