package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are carried by every session token. The token ID (jti) is
// used for revocation on sign-out.
type SessionClaims struct {
	AccountID   string `json:"userId"`
	Email       string `json:"userEmail"`
	TrackingKey string `json:"userTrackingKey,omitempty"`
	Role        Role   `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt *time.Time // nil when the session policy issues non-expiring tokens
	Account   *Account
}
