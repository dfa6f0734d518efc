package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit applies to the unauthenticated lifecycle endpoints
// (signup, activation, signin, reset).
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
	}
}

// RateLimitByIP limits requests per client IP over a sliding minute.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultAuthRateLimit().RequestsPerMinute
	}

	return httprate.Limit(
		rpm,
		time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded, try again later")
		}),
	)
}
