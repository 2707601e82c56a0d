package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondError maps domain errors to HTTP statuses. Validation errors
// carry their message to the client; everything unclassified becomes a
// generic 500 with the detail kept in the server log.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, core.ErrMissingField),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, storage.ErrDuplicateBudget):
		writeError(w, http.StatusConflict, storage.ErrDuplicateBudget.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// parseYearMonth reads optional year and month query parameters,
// falling back to the month containing now.
func parseYearMonth(r *http.Request, now time.Time) (year, month int, err error) {
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, errors.New("invalid year parameter")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, errors.New("invalid month parameter")
		}
	}
	return year, month, nil
}

// parseDateParam accepts a calendar date for from/to query filters.
func parseDateParam(v string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(v))
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
