// Package api provides the HTTP API for Guichet.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/api/handler"
	"github.com/guichethq/guichet/internal/api/middleware"
	"github.com/guichethq/guichet/internal/auth"
	"github.com/guichethq/guichet/internal/claim"
	"github.com/guichethq/guichet/internal/retention"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	BuildTime     string
	Logger        zerolog.Logger
	ServiceName   string
	Metrics       *middleware.Metrics
	JWTService    *auth.JWTService
	ClaimService  *claim.Service
	RetentionJobs *retention.Jobs
	// DB is pinged by the readiness check; may be nil in tests.
	DB handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "guichet-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	claimHandler := handler.NewClaimHandler(cfg.ClaimService)
	adminHandler := handler.NewAdminHandler(cfg.ClaimService, cfg.RetentionJobs)

	// Create auth middleware for the back office
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Rate limits: the public form gets a strict per-IP cap, the back office
	// a per-staff cap.
	submitRateLimit := middleware.RateLimitByIP(middleware.SubmitRateLimit)
	adminRateLimit := middleware.RateLimitByStaff(middleware.StandardRateLimit)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Public claim submission - multipart form, strict rate limiting
		r.With(submitRateLimit).Post("/claims/{kind}", claimHandler.Submit)

		// Back-office endpoints (authenticated)
		r.Route("/admin/claims", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminRateLimit)
			r.Use(middleware.ContentTypeJSON)

			// Retention jobs, manually triggered
			r.Post("/archive", adminHandler.RunArchive)
			r.Post("/purge", adminHandler.RunPurge)

			r.Route("/{kind}", func(r chi.Router) {
				r.Get("/", adminHandler.ListClaims)
				r.Route("/{claimId}", func(r chi.Router) {
					r.Get("/", adminHandler.GetClaim)
					r.Post("/answer", adminHandler.AnswerClaim)
					r.Delete("/", adminHandler.DeleteClaim)
				})
			})
		})
	})

	return r
}
