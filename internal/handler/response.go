package handler

// RESPONSE HELPERS:
// Most responses here are rendered pages or redirects. The rest fall into
// two shapes, handled below:
//   - plain text with a status (404 for a missing export, 500 for the rest)
//   - JSON, used only by the health probe
//
// statusFor is the single place where service errors become HTTP status
// codes; the services never see net/http.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/floor-tracker/internal/apperror"
)

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeText sends msg as text/plain.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

// statusFor maps a domain error to an HTTP status code.
//
// errors.Is walks the wrap chain, so an error like
//
//	fmt.Errorf("service/report: %w", apperror.NotFound("export", "alice"))
//
// still maps to 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// userMessage returns the message an AppError carries for the user, or ""
// for errors that must not be shown (they may contain SQL or file paths).
func userMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// serverError logs err and answers with a bare 500.
func serverError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// HandleHealth is a liveness probe.
//
// HTTP: GET /healthz → 200 {"status":"ok"}
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
