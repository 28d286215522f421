package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/models"
)

// SuccessResponse acknowledges an admin action.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListMessages returns the active inbox.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.inbox.List(r.Context())
	if err != nil {
		h.ServiceError(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, msgs)
}

// ListArchived returns archived messages.
func (h *Handler) ListArchived(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.inbox.ListArchived(r.Context())
	if err != nil {
		h.ServiceError(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, msgs)
}

// UpdateMessage changes the status and/or read flag of an active message.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.inbox.UpdateStatus(r.Context(), id, req); err != nil {
		h.ServiceError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Message updated successfully"})
}

// ArchiveMessage moves a message into the archive.
func (h *Handler) ArchiveMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.inbox.Archive(r.Context(), id); err != nil {
		h.ServiceError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Message archived successfully"})
}
