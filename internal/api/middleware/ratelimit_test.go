package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMemoryCounter_FixedWindow(t *testing.T) {
	c := newMemoryCounter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := c.CheckAndIncrement(ctx, "k", 3, time.Minute)
		assert.True(t, allowed)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, resetAt := c.CheckAndIncrement(ctx, "k", 3, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	// Other keys are independent
	allowed, _, _ = c.CheckAndIncrement(ctx, "other", 3, time.Minute)
	assert.True(t, allowed)

	// Window rolls over
	now = now.Add(time.Minute)
	allowed, _, _ = c.CheckAndIncrement(ctx, "k", 3, time.Minute)
	assert.True(t, allowed)
}

func TestRateLimiter_ContactLimit(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{ContactRequests: 1})
	h := rl.Middleware(okHandler())

	req := func(method, path, ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, path, nil)
		r.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	rec := req(http.MethodPost, "/api/contact", "198.51.100.7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = req(http.MethodPost, "/api/contact", "198.51.100.7")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests, please try again later."}`, rec.Body.String())

	// A different client still gets through
	rec = req(http.MethodPost, "/api/contact", "198.51.100.8")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unlimited paths pass without headers
	rec = req(http.MethodGet, "/health", "198.51.100.7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiter_Whitelist(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{
		ContactRequests: 1,
		Whitelist:       []string{"10.0.0.0/8", "192.0.2.10", "not-a-cidr/99"},
	})

	assert.True(t, rl.isWhitelisted("10.1.2.3"))
	assert.True(t, rl.isWhitelisted("192.0.2.10"))
	assert.False(t, rl.isWhitelisted("192.0.2.11"))
	assert.False(t, rl.isWhitelisted("garbage"))

	h := rl.Middleware(okHandler())
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = "10.9.9.9:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_AutoBlock(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{ContactRequests: 1, AutoBlockEnabled: true})
	h := rl.Middleware(okHandler())

	var last int
	for i := 0; i < 12; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = "203.0.113.5:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		last = rec.Code
	}
	assert.Equal(t, http.StatusForbidden, last)
	require.True(t, rl.blocker.IsBlocked(context.Background(), "203.0.113.5"))
	assert.False(t, rl.blocker.IsBlocked(context.Background(), "203.0.113.6"))
}

func TestMemoryBlocker_Expires(t *testing.T) {
	b := newMemoryBlocker()
	ctx := context.Background()

	b.Block(ctx, "203.0.113.9", -time.Second, "test")
	assert.False(t, b.IsBlocked(ctx, "203.0.113.9"))

	b.Block(ctx, "203.0.113.9", time.Hour, "test")
	assert.True(t, b.IsBlocked(ctx, "203.0.113.9"))
}

func TestClientIP_IgnoresHeadersFromUntrustedPeers(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("CF-Connecting-IP", "192.0.2.4")
	r.Header.Set("X-Forwarded-For", "192.0.2.3")
	r.Header.Set("X-Real-IP", "192.0.2.2")
	assert.Equal(t, "192.0.2.1", rl.ClientIP(r))
}

func TestClientIP_TrustedProxy(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{
		TrustedProxies: []string{"10.0.0.0/8", "172.16.0.1"},
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", rl.ClientIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.2")
	assert.Equal(t, "192.0.2.2", rl.ClientIP(r))

	// Rightmost hop that is not one of ours; anything left of it is client-supplied
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 192.0.2.3, 172.16.0.1")
	assert.Equal(t, "192.0.2.3", rl.ClientIP(r))

	r.Header.Set("CF-Connecting-IP", "192.0.2.4")
	assert.Equal(t, "192.0.2.4", rl.ClientIP(r))
}

func TestRateLimiter_RotatingForwardedForDoesNotResetBucket(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{ContactRequests: 2})
	h := rl.Middleware(okHandler())

	var codes []int
	for i := 0; i < 6; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = "198.51.100.20:40000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429, 429, 429}, codes)
}

func TestRateLimiter_BucketsPerForwardedClientBehindProxy(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{
		ContactRequests: 1,
		TrustedProxies:  []string{"10.0.0.0/8"},
	})
	h := rl.Middleware(okHandler())

	post := func(client string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		r.RemoteAddr = "10.1.1.1:443"
		r.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("192.0.2.50"))
	assert.Equal(t, http.StatusTooManyRequests, post("192.0.2.50"))
	assert.Equal(t, http.StatusOK, post("192.0.2.51"))
}
