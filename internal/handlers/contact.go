package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/models"
)

// ContactResponse is returned after a successful submission.
type ContactResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// Contact handles contact form submissions.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	msg, err := h.inbox.Create(r.Context(), req)
	if err != nil {
		h.ServiceError(w, r, err)
		return
	}

	h.JSON(w, http.StatusOK, ContactResponse{
		Success:   true,
		Message:   "Message sent successfully!",
		MessageID: msg.ID,
	})
}
