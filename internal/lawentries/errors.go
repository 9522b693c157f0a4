package lawentries

import (
	"errors"
	"net/http"
)

// Domain errors for law entry operations.
var (
	ErrNotFound  = errors.New("law entry not found")
	ErrDuplicate = errors.New("law entry already exists")
	ErrInvalid   = errors.New("invalid law entry")

	// ErrMissingEntries indicates a citation referenced entry ids that do not
	// exist: a data integrity failure surfaced immediately, never hidden.
	ErrMissingEntries = errors.New("cited law entries missing")
)

// MapHTTPStatus maps law entry domain errors to HTTP status codes.
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
