package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/guichethq/guichet/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// SubmitRateLimit applies to the public claim submission endpoint
	// (5 req/min per IP). The per-identity claim cap is enforced separately
	// by the claim service; this only throttles abusive clients.
	SubmitRateLimit = RateLimitConfig{
		RequestLimit: 5,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to back-office endpoints (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware using client IP address.
// Uses X-Forwarded-For header if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// RateLimitByStaff creates a rate limiter middleware keyed on the
// authenticated staff member. Falls back to IP-based rate limiting for
// unauthenticated requests.
func RateLimitByStaff(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByStaffOrIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

// keyByStaffOrIP returns the staff ID if authenticated, otherwise the client IP.
func keyByStaffOrIP(r *http.Request) (string, error) {
	// Try to get staff ID from context (set by auth middleware)
	if staffID := GetStaffID(r.Context()); staffID != "" {
		return "staff:" + staffID, nil
	}

	// Fall back to IP-based rate limiting
	return httprate.KeyByRealIP(r)
}

// rateLimitExceededHandler writes an RFC7807 Problem response when the HTTP
// rate limit is exceeded.
func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	traceID := GetRequestID(r.Context())

	problem := models.NewTooManyRequests(traceID, "Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	// httprate doesn't expose the exact reset time, so advertise the window
	w.Header().Set("Retry-After", strconv.Itoa(60))

	problem.Write(w)
}
