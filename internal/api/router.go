package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/api/middleware"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/handlers"
	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/internal/inbox"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	StaticDir      string
	RateLimit      middleware.RateLimiterConfig
	// RedisClient backs rate limiting when set; otherwise limits are kept in memory.
	RedisClient *redis.Client
}

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, svc *inbox.Service, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	// RemoteAddr is left as the socket peer; the rate limiter decides which
	// forwarding headers to believe.
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS before rate limiting so 429 and 403 replies stay readable cross-origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Rate limiting
	limiter := middleware.NewRateLimiter(opts.RedisClient, logger, opts.RateLimit)
	r.Use(limiter.Middleware)

	h := handlers.NewHandler(svc, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", h.Health)
	r.Get("/api", h.Root)

	// Public contact form
	r.Post("/api/contact", h.Contact)

	// Admin inbox. There is no caller identity check here; deployments put
	// these paths behind their own access control.
	r.Route("/api/messages", func(r chi.Router) {
		r.Get("/", h.ListMessages)
		r.Get("/archived", h.ListArchived)
		r.Patch("/{id}", h.UpdateMessage)
		r.Post("/{id}/archive", h.ArchiveMessage)
	})

	// Portfolio pages and assets
	dir := staticDir(opts.StaticDir)
	r.Get("/", serveIndex(dir))
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	return r
}

// staticDir returns the path to the portfolio's static files.
func staticDir(configured string) string {
	if configured != "" {
		return configured
	}
	// Check if running from app directory (production container)
	if _, err := os.Stat("/app/web"); err == nil {
		return "/app/web"
	}
	return "web"
}

// serveIndex serves the landing page.
func serveIndex(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
