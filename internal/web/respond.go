package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/konsinyasi/internal/domain"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON request body into v. Malformed bodies are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("body", "request body is required")
		}
		return domain.NewValidationError("body", "invalid JSON body")
	}
	return nil
}

// writeError maps domain errors onto HTTP statuses. Anything unexpected is
// logged and hidden behind a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "sign in required"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
	case errors.Is(err, domain.ErrWrongPassword):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "password salah"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrNotActive):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "attendance is no longer active"})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
