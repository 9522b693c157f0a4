// Package handlers provides uniform JSON response helpers for API endpoints.
// Every response uses the envelope {ok, data, error} so clients never have to
// branch on response shape.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the uniform response body for all API endpoints.
type Envelope struct {
	OK    bool    `json:"ok"`
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// RespondJSON writes a success envelope with the given status and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{OK: true, Data: data})
}

// RespondError logs the error and writes a failure envelope with the given status.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)

	msg := err.Error()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{OK: false, Error: &msg})
}
