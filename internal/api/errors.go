package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/vizgate/internal/outcome"
)

// errForbidden is returned to logged-in users lacking admin clearance.
var errForbidden = outcome.New(outcome.KindAuth, "admin clearance required")

// errBadBody is returned when a request body is not valid JSON.
var errBadBody = outcome.New(outcome.KindValidation, "invalid JSON body")

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeOK writes a 200 ok envelope.
func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, outcome.OK(message, data))
}

// writeCreated writes a 201 ok envelope.
func writeCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, outcome.OK(message, data))
}

// writeError maps err to a status code and writes its envelope. Driver
// messages never reach the body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
	}
	writeJSON(w, status, outcome.FromError(err))
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, errForbidden) {
		return http.StatusForbidden
	}
	switch outcome.KindOf(err) {
	case outcome.KindValidation:
		return http.StatusBadRequest
	case outcome.KindConflict, outcome.KindState:
		return http.StatusConflict
	case outcome.KindNotFound:
		return http.StatusNotFound
	case outcome.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadBody
	}
	return nil
}
