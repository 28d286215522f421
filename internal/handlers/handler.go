package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/inbox"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	inbox  *inbox.Service
	logger zerolog.Logger
}

// NewHandler creates a new Handler over the message service.
func NewHandler(svc *inbox.Service, logger zerolog.Logger) *Handler {
	return &Handler{inbox: svc, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps an inbox error onto its HTTP response. Store failures are
// logged and reported without internals.
func (h *Handler) ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *inbox.ValidationError
	switch {
	case errors.As(err, &verr):
		h.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, inbox.ErrNotFound):
		h.Error(w, http.StatusNotFound, "Message not found")
	default:
		h.logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		h.Error(w, http.StatusInternalServerError, "Server error")
	}
}
