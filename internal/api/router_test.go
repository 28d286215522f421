package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/api/middleware"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/inbox"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/models"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/store"
)

func newTestRouter(t *testing.T, rl middleware.RateLimiterConfig) http.Handler {
	t.Helper()

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>portfolio</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "style.css"), []byte("body{}"), 0o644))

	svc := inbox.NewService(store.NewMemoryStore(), zerolog.Nop())
	return NewRouter(zerolog.Nop(), svc, Options{
		AllowedOrigins: []string{"http://localhost:3001"},
		StaticDir:      static,
		RateLimit:      rl,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestContactLifecycle(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	rec := do(t, h, http.MethodPost, "/api/contact",
		`{"name":"Al","email":"al@example.com","message":"Hello there, this is a test."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		MessageID string `json:"messageId"`
	}
	decode(t, rec, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "Message sent successfully!", created.Message)
	require.NotEmpty(t, created.MessageID)
	id := created.MessageID

	// Listed as new and unread
	rec = do(t, h, http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var active []models.Message
	decode(t, rec, &active)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)
	assert.Equal(t, models.StatusNew, active[0].Status)
	assert.False(t, active[0].Read)

	// Mark read
	rec = do(t, h, http.MethodPatch, "/api/messages/"+id, `{"read":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ack struct {
		Success bool `json:"success"`
	}
	decode(t, rec, &ack)
	assert.True(t, ack.Success)

	rec = do(t, h, http.MethodGet, "/api/messages", "")
	decode(t, rec, &active)
	require.Len(t, active, 1)
	assert.True(t, active[0].Read)

	// Archive
	rec = do(t, h, http.MethodPost, "/api/messages/"+id+"/archive", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	active = nil
	decode(t, rec, &active)
	assert.Empty(t, active)

	rec = do(t, h, http.MethodGet, "/api/messages/archived", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var archived []models.Message
	decode(t, rec, &archived)
	require.Len(t, archived, 1)
	assert.Equal(t, id, archived[0].ID)
	assert.NotEmpty(t, archived[0].ArchivedAt)
	assert.True(t, archived[0].Read)
}

func TestContact_ValidationErrors(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{ContactRequests: 100})

	tests := []struct {
		body string
		want string
	}{
		{`{"name":"","email":"al@example.com","message":"Hello there, this is a test."}`, "All fields are required"},
		{`{"name":"A","email":"al@example.com","message":"Hello there, this is a test."}`, "Name must be between 2 and 100 characters"},
		{`{"name":"Al","email":"al-at-example","message":"Hello there, this is a test."}`, "Invalid email format"},
		{`{"name":"Al","email":"al@example.com","message":"Hi"}`, "Message must be between 10 and 1000 characters"},
		{`not json`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, "/api/contact", tt.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)

		var resp map[string]string
		decode(t, rec, &resp)
		assert.Equal(t, tt.want, resp["error"])
	}

	rec := do(t, h, http.MethodGet, "/api/messages", "")
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestMessages_UnknownIDIsNotFound(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	rec := do(t, h, http.MethodPatch, "/api/messages/nope", `{"read":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/messages/nope/archive", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "Message not found", resp["error"])
}

func TestMessages_InvalidStatus(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	rec := do(t, h, http.MethodPost, "/api/contact",
		`{"name":"Al","email":"al@example.com","message":"Hello there, this is a test."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		MessageID string `json:"messageId"`
	}
	decode(t, rec, &created)

	rec = do(t, h, http.MethodPatch, "/api/messages/"+created.MessageID, `{"status":"deleted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact_RateLimited(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{ContactRequests: 2})
	body := `{"name":"Al","email":"al@example.com","message":"Hello there, this is a test."}`

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/contact", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/api/contact", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Admin listing has its own budget
	rec = do(t, h, http.MethodGet, "/api/messages", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContact_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{ContactRequests: 2})
	body := `{"name":"Al","email":"al@example.com","message":"Hello there, this is a test."}`

	var codes []int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "10.1.0."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429}, codes)
}

func TestContact_RateLimitedReplyCarriesCORSHeaders(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{ContactRequests: 1})
	body := `{"name":"Al","email":"al@example.com","message":"Hello there, this is a test."}`

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", "http://localhost:3001")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, post().Code)

	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status    string `json:"status"`
		Store     string `json:"store"`
		Timestamp string `json:"timestamp"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Store)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, resp.Timestamp)
}

func TestStaticSiteAndHeaders(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portfolio")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(t, h, http.MethodGet, "/style.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/messages", "")
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, middleware.RateLimiterConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
}
