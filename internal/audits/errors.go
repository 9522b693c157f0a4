package audits

import (
	"errors"
	"net/http"
)

// Domain errors for audit operations.
var (
	ErrNotFound  = errors.New("audit not found")
	ErrDuplicate = errors.New("audit already exists")
	ErrInvalid   = errors.New("invalid audit")

	// ErrAlreadyRunning indicates the compare-and-set transition to
	// in_progress found the audit not pending: another run already claimed it.
	ErrAlreadyRunning = errors.New("audit already running or finished")
)

// MapHTTPStatus maps audit domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrAlreadyRunning) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
