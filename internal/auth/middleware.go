package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// TokenRevocationChecker reports whether a session token was signed out.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationConfig holds configuration for token revocation behavior
type RevocationConfig struct {
	FailClosed bool // deny with 503 when the revocation store cannot be reached
}

// AccountFetcher loads the current account for role checks.
type AccountFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// Authenticate validates the bearer session token, rejects revoked tokens and
// injects the claims into the request context.
func Authenticate(tm *TokenManager, revocation TokenRevocationChecker, cfg RevocationConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			if revocation != nil {
				revoked, err := revocation.IsTokenRevoked(r.Context(), claims.ID)
				if err != nil && cfg.FailClosed {
					pkghttp.WriteServiceUnavailable(w, "Unable to verify token status")
					return
				}
				if revoked {
					pkghttp.WriteUnauthorized(w, "Token has been revoked")
					return
				}
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireRole admits enabled accounts holding role. The role is read from the
// store rather than the token so demotions apply immediately.
func RequireRole(accounts AccountFetcher, role models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSessionFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				switch {
				case errors.Is(err, models.ErrNotFound):
					pkghttp.WriteUnauthorized(w, "Account not found")
				case errors.Is(err, models.ErrServiceUnavailable):
					pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
				default:
					pkghttp.WriteInternalError(w, "Internal server error")
				}
				return
			}

			if account.IsDisabled() || account.Role != role {
				pkghttp.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithSession returns a copy of ctx carrying claims.
func WithSession(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}
