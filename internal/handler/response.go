package handler

// Response helpers: every endpoint answers with the same JSON envelope,
//
//	{"success": true,  "data": ...}            — or —
//	{"success": true,  "message": "..."}       — or —
//	{"success": false, "error": {"code": "...", "message": "..."}}
//
// so the SPA always knows what shape to expect, whatever the status code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/microblog/internal/apperror"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`    // machine-readable, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeData sends a success envelope carrying data.
// Headers and status must go out before the body — once Encode writes,
// status changes are silently ignored.
func writeData(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, envelope{Success: true, Data: data})
}

// writeMessage sends a success envelope with just a message (used where
// there is nothing to return, e.g. after a delete).
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, envelope{Success: true, Message: message})
}

// writeError maps a domain error onto the HTTP status space and sends the
// error envelope. The service layer speaks apperror sentinels; this is the
// single place they become status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		code := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			code = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			code = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			code = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			code = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			code = "conflict"
		}

		writeEnvelope(w, status, envelope{
			Success: false,
			Error:   &errorBody{Code: code, Message: appErr.Message},
		})
		return
	}

	// Unknown error — opaque 500. The raw message might contain SQL or
	// file paths; it belongs in the log, not the response.
	writeEnvelope(w, http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errorBody{Code: "internal_error", Message: "an internal error occurred"},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Headers already sent; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
