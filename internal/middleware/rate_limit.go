package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "walletwatch/pkg/http"
)

// RateLimitConfig holds edge rate limiting configuration. This is a coarse
// per-IP request cap in front of the handlers; the gatekeeper's DB-backed
// window and the login guard's lockout are the policy-bearing limits.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultLoginRateLimit caps credential guessing at the edge (10 requests per minute)
func DefaultLoginRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10}
}

// DefaultSubmitRateLimit caps raw submission traffic at the edge (30 requests per minute)
func DefaultSubmitRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 30}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
		}),
	)
}
