package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/ids"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Method   string // empty matches any method
	Prefix   string
	Requests int
	Window   time.Duration
	KeyFunc  func(clientIP string) string
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Whitelist        []string // IPs or CIDRs exempt from rate limiting
	TrustedProxies   []string // IPs or CIDRs whose forwarding headers are believed
	AutoBlockEnabled bool     // Enable auto-blocking after repeated violations
	ContactRequests  int
	ContactWindow    time.Duration
	AdminRequests    int
	AdminWindow      time.Duration
}

// Counter counts hits for a key within a window.
type Counter interface {
	// CheckAndIncrement records a hit and returns (allowed, remaining, resetAt).
	CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time)
	// Incr bumps a plain counter with a TTL and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) int64
}

// RateLimiter limits requests per client, with optional auto-blocking.
type RateLimiter struct {
	counter          Counter
	limits           []RateLimit
	blocker          Blocker
	logger           zerolog.Logger
	whitelist        ipSet
	trustedProxies   ipSet
	autoBlockEnabled bool
}

// NewRateLimiter creates a new rate limiter. A nil client selects the
// in-process counter and blocker.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	var (
		counter Counter
		blocker Blocker
	)
	if client != nil {
		counter = &redisCounter{client: client}
		blocker = NewIPBlocker(client)
	} else {
		counter = newMemoryCounter()
		blocker = newMemoryBlocker()
	}

	if cfg.ContactRequests <= 0 {
		cfg.ContactRequests = 5
	}
	if cfg.ContactWindow <= 0 {
		cfg.ContactWindow = 15 * time.Minute
	}
	if cfg.AdminRequests <= 0 {
		cfg.AdminRequests = 100
	}
	if cfg.AdminWindow <= 0 {
		cfg.AdminWindow = 15 * time.Minute
	}

	rl := &RateLimiter{
		counter:          counter,
		blocker:          blocker,
		logger:           logger,
		whitelist:        parseIPSet(logger, "whitelist", cfg.Whitelist),
		trustedProxies:   parseIPSet(logger, "trusted proxies", cfg.TrustedProxies),
		autoBlockEnabled: cfg.AutoBlockEnabled,
		limits: []RateLimit{
			{http.MethodPost, "/api/contact", cfg.ContactRequests, cfg.ContactWindow, contactKey},
			{"", "/api/messages", cfg.AdminRequests, cfg.AdminWindow, ipKey},
		},
	}

	if len(cfg.Whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.whitelist.ips)).
			Int("cidrs", len(rl.whitelist.nets)).
			Msg("rate limit whitelist configured")
	}

	return rl
}

// ipSet is a list of single IPs and CIDR ranges.
type ipSet struct {
	nets []*net.IPNet
	ips  map[string]bool
}

func parseIPSet(logger zerolog.Logger, name string, entries []string) ipSet {
	set := ipSet{ips: make(map[string]bool)}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			// CIDR notation
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in " + name)
				continue
			}
			set.nets = append(set.nets, ipNet)
		} else {
			// Single IP
			set.ips[entry] = true
		}
	}
	return set
}

// contains checks if an IP is in the set.
func (s ipSet) contains(ipStr string) bool {
	// Check exact IP match
	if s.ips[ipStr] {
		return true
	}

	// Check CIDR ranges
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range s.nets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// isWhitelisted checks if an IP is in the whitelist.
func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	return rl.whitelist.contains(ipStr)
}

// ipKey returns rate limit key based on client IP.
func ipKey(ip string) string {
	return "ratelimit:ip:" + ip
}

// contactKey keeps contact submissions in their own bucket per IP.
func contactKey(ip string) string {
	return "ratelimit:contact:" + ip
}

// ClientIP returns the address of the peer that opened the connection, or,
// when that peer is a trusted proxy, the client it forwarded for. Forwarding
// headers from any other peer are ignored.
func (rl *RateLimiter) ClientIP(r *http.Request) string {
	peer := remoteIP(r)
	if !rl.trustedProxies.contains(peer) {
		return peer
	}

	// Render and Cloudflare put the client address here
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	// Then X-Forwarded-For, right to left, skipping our own proxies
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(hops[i])
			if ip != "" && !rl.trustedProxies.contains(ip) {
				return ip
			}
		}
	}
	// Then X-Real-IP
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

// remoteIP is the host part of the connection's remote address.
func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Middleware returns the rate limiting middleware.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.ClientIP(r)

		// Skip rate limiting for whitelisted IPs
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		// Check IP block first
		if rl.blocker.IsBlocked(r.Context(), ip) {
			metrics.BlockedRequests.WithLabelValues("ip_blocked").Inc()
			rl.logger.Warn().
				Str("type", "security").
				Str("event", "blocked_request").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Msg("blocked IP attempted request")
			jsonError(w, http.StatusForbidden, "temporarily blocked")
			return
		}

		// Find matching limit
		limit := rl.findLimit(r)
		if limit == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := limit.KeyFunc(ip)
		allowed, remaining, resetAt := rl.counter.CheckAndIncrement(r.Context(), key, limit.Requests, limit.Window)

		// Set rate limit headers
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			metrics.RateLimitHits.WithLabelValues(limit.Prefix).Inc()

			// Track violation
			rl.trackViolation(r.Context(), ip)

			rl.logger.Warn().
				Str("type", "security").
				Str("event", "rate_limit_exceeded").
				Str("ip", ip).
				Str("endpoint", r.URL.Path).
				Str("key", key).
				Msg("rate limit exceeded")

			jsonError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// findLimit finds the first matching rate limit for a request.
func (rl *RateLimiter) findLimit(r *http.Request) *RateLimit {
	for i := range rl.limits {
		l := &rl.limits[i]
		if l.Method != "" && l.Method != r.Method {
			continue
		}
		if strings.HasPrefix(r.URL.Path, l.Prefix) {
			return l
		}
	}
	return nil
}

// trackViolation tracks rate limit violations and auto-blocks repeat offenders.
func (rl *RateLimiter) trackViolation(ctx context.Context, ip string) {
	if !rl.autoBlockEnabled {
		return
	}

	count := rl.counter.Incr(ctx, fmt.Sprintf("violations:ip:%s", ip), time.Hour)

	if count >= 10 {
		rl.blocker.Block(ctx, ip, 24*time.Hour, "repeated rate limit violations")
		rl.logger.Warn().
			Str("type", "security").
			Str("event", "ip_auto_blocked").
			Str("ip", ip).
			Int64("violations", count).
			Msg("IP auto-blocked for repeated violations")
	}
}

// redisCounter is a sliding window over a sorted set per key.
type redisCounter struct {
	client *redis.Client
}

func (c *redisCounter) CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time) {
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := c.client.Pipeline()

	// Remove old entries outside window
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart.UnixMilli()))

	// Count current entries
	countCmd := pipe.ZCard(ctx, key)

	// Add current request with unique member
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: ids.NewULID(),
	})

	// Set TTL on key
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open; the contact form must keep working if Redis hiccups.
		return true, limit, now.Add(window)
	}

	count := countCmd.Val()
	remaining := limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	return count < int64(limit), remaining, now.Add(window)
}

func (c *redisCounter) Incr(ctx context.Context, key string, ttl time.Duration) int64 {
	count, _ := c.client.Incr(ctx, key).Result()
	c.client.Expire(ctx, key, ttl)
	return count
}

// memoryCounter is a fixed window counter for single-instance deployments.
type memoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{buckets: make(map[string]*bucket), now: time.Now}
}

func (c *memoryCounter) hit(key string, window time.Duration) *bucket {
	now := c.now()
	b, ok := c.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		c.sweep(now)
		b = &bucket{resetAt: now.Add(window)}
		c.buckets[key] = b
	}
	b.count++
	return b
}

// sweep drops expired buckets so idle clients do not accumulate.
func (c *memoryCounter) sweep(now time.Time) {
	for k, b := range c.buckets {
		if !now.Before(b.resetAt) {
			delete(c.buckets, k)
		}
	}
}

func (c *memoryCounter) CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.hit(key, window)
	remaining := limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	return b.count <= limit, remaining, b.resetAt
}

func (c *memoryCounter) Incr(ctx context.Context, key string, ttl time.Duration) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return int64(c.hit(key, ttl).count)
}

// Blocker manages temporary IP blocks.
type Blocker interface {
	IsBlocked(ctx context.Context, ip string) bool
	Block(ctx context.Context, ip string, duration time.Duration, reason string)
}

// IPBlocker manages temporary IP blocks in Redis.
type IPBlocker struct {
	client *redis.Client
}

// NewIPBlocker creates a new IP blocker.
func NewIPBlocker(client *redis.Client) *IPBlocker {
	return &IPBlocker{client: client}
}

// IsBlocked checks if an IP is blocked.
func (b *IPBlocker) IsBlocked(ctx context.Context, ip string) bool {
	key := fmt.Sprintf("blocked:ip:%s", ip)
	exists, _ := b.client.Exists(ctx, key).Result()
	return exists > 0
}

// Block blocks an IP for the specified duration.
func (b *IPBlocker) Block(ctx context.Context, ip string, duration time.Duration, reason string) {
	key := fmt.Sprintf("blocked:ip:%s", ip)
	b.client.Set(ctx, key, reason, duration)
}

type memoryBlocker struct {
	mu      sync.Mutex
	blocked map[string]time.Time
}

func newMemoryBlocker() *memoryBlocker {
	return &memoryBlocker{blocked: make(map[string]time.Time)}
}

func (b *memoryBlocker) IsBlocked(ctx context.Context, ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	until, ok := b.blocked[ip]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(b.blocked, ip)
		return false
	}
	return true
}

func (b *memoryBlocker) Block(ctx context.Context, ip string, duration time.Duration, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked[ip] = time.Now().Add(duration)
}
