package handler

// Every endpoint — success, failure, even the unmatched-route fallback —
// answers with the same envelope:
//
//	{"success": bool, "data": ..., "pagination": ..., "message": "...", "error": "..."}
//
// The frontend switches on `success` and reads `message` without caring which
// endpoint it called, so the shape must never vary. writeError below is the
// single place where error identity becomes an HTTP status code; nothing
// beneath the handlers knows HTTP exists.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sakif/user-directory/internal/apperror"
	"github.com/sakif/user-directory/internal/service"
)

// Response is the uniform JSON envelope.
type Response struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Pagination *service.Pagination `json:"pagination,omitempty"`
	Message    string              `json:"message"`
	Error      string              `json:"error,omitempty"`
}

// deleteResult is the confirmation body for DELETE — a message, not the
// deleted entity.
type deleteResult struct {
	Message string `json:"message"`
}

// responder carries what every handler needs to answer: a logger for boundary
// failures and the dev flag deciding whether internal error detail leaks into
// responses. Both resource handlers embed it.
type responder struct {
	logger *slog.Logger
	dev    bool
}

func (rs responder) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already gone; logging is all that's left.
		rs.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (rs responder) fail(w http.ResponseWriter, status int, message, detail string) {
	rs.writeJSON(w, status, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// writeError maps a service error to a status code and envelope. Note the
// conflict mapping: duplicates answer 400 (not 409) because that is the
// contract the original API established and the frontend handles.
func (rs responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		detail := "Internal Server Error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			detail = "Validation error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			detail = "Not found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
			detail = "Duplicate entry"
		}

		if status != http.StatusInternalServerError {
			rs.logger.Warn("request failed",
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.String("error", appErr.Message),
			)
			rs.fail(w, status, appErr.Message, detail)
			return
		}
	}

	rs.logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	detail := "Internal Server Error"
	if rs.dev {
		// Raw error text can contain SQL fragments and file paths; only
		// development builds get to see it.
		detail = err.Error()
	}
	rs.fail(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// NotFoundHandler answers unmatched routes with the standard envelope instead
// of chi's plain-text default.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(Response{
			Success: false,
			Message: "Route not found",
		})
	}
}

// queryInt reads a query parameter as an int, returning 0 when the parameter
// is absent or not an integer — callers treat non-positive as "not provided".
func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}

// queryInt64Ptr reads a query parameter as an equality filter: nil when
// absent or unparsable, a pointer otherwise. Zero is a legitimate filter
// value and comes back as a non-nil pointer to 0.
func queryInt64Ptr(q url.Values, key string) *int64 {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
