package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/inbox"
)

const version = "1.0.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass" or "fail"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Store     string           `json:"store"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the health check endpoint. It always answers 200 while the
// process is serving; a failing store only shows up under checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	st := h.inbox.Store()
	checks := make(map[string]Check)

	start := time.Now()
	if err := st.Ping(ctx); err != nil {
		checks["store"] = Check{Status: "fail", Message: "connection failed"}
	} else {
		checks["store"] = Check{Status: "pass", Latency: time.Since(start).String()}
	}

	h.JSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   version,
		Store:     st.Name(),
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(inbox.TimeFormat),
	})
}

// RootResponse represents the API info response.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// Root handles the API info endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Name:    "portfolio-contact",
		Version: version,
		Docs:    "https://github.com/HEMANTH-S-KUMAR-1/AI-HACK",
	})
}
