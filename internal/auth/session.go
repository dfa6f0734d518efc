package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionPolicy sets session token lifetimes. A zero DefaultTTL issues tokens
// without an exp claim for every session, including remember-me ones.
type SessionPolicy struct {
	DefaultTTL  time.Duration
	RememberTTL time.Duration
}

// TokenManager signs and verifies HS256 session tokens with a shared secret.
type TokenManager struct {
	secret []byte
	policy SessionPolicy
	now    func() time.Time
}

func NewTokenManager(secret string, policy SessionPolicy) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		policy: policy,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Lifetime returns the validity window for a new session, 0 meaning no expiry.
func (tm *TokenManager) Lifetime(rememberMe bool) time.Duration {
	if tm.policy.DefaultTTL <= 0 {
		return 0
	}
	if rememberMe && tm.policy.RememberTTL > tm.policy.DefaultTTL {
		return tm.policy.RememberTTL
	}
	return tm.policy.DefaultTTL
}

// Issue creates a signed session token for an activated account.
func (tm *TokenManager) Issue(account *models.Account, rememberMe bool) (string, *models.SessionClaims, error) {
	now := tm.now()

	claims := &models.SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			Subject:  account.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if account.TrackingKey != nil {
		claims.TrackingKey = *account.TrackingKey
	}
	if ttl := tm.Lifetime(rememberMe); ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, claims, nil
}

// Validate verifies signature and expiry and returns the session claims.
func (tm *TokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	if !token.Valid || claims.AccountID == "" || claims.ID == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
