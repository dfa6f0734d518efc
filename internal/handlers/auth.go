package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/BradenHooton/inkwell/internal/services"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// AccountServiceInterface defines the account lifecycle operations
type AccountServiceInterface interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.Account, error)
	Activate(ctx context.Context, token string) (*models.Account, error)
	Signin(ctx context.Context, req services.SigninRequest) (*models.Session, error)
	Signout(ctx context.Context, claims *models.SessionClaims) error
	RequestPasswordReset(ctx context.Context, req services.ResetRequest) (string, error)
	ValidateResetToken(ctx context.Context, token string) (*models.Account, error)
	RedeemPasswordReset(ctx context.Context, req services.RedeemResetRequest) error
}

// AuthHandler handles signup, activation, sign-in and password reset
type AuthHandler struct {
	service AccountServiceInterface
}

func NewAuthHandler(service AccountServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// SigninResponse carries the session token. ExpiresAt is omitted for
// sessions without expiry.
type SigninResponse struct {
	Token     string           `json:"token"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	User      *AccountResponse `json:"user"`
}

type ResetResponse struct {
	ResetURL string `json:"resetURL"`
}

// Register handles POST /signup
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			pkghttp.WriteError(w, http.StatusSeeOther, "duplicate_account", "An account with this email already exists")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, UserEnvelope{User: accountToResponse(account)})
}

// Activate handles POST /signup/{token}/activation
func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Activate(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			pkghttp.WriteError(w, http.StatusInternalServerError, "invalid_token", "Activation link is invalid or has expired")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserEnvelope{User: accountToResponse(account)})
}

// Signin handles POST /signin. Each failure kind has its own status code.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req services.SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.service.Signin(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteError(w, http.StatusUnauthorized, "account_not_found", "No account matches this email")
		case errors.Is(err, models.ErrWrongCredential):
			pkghttp.WriteError(w, http.StatusForbidden, "wrong_credential", "Wrong password")
		case errors.Is(err, models.ErrDeactivated):
			pkghttp.WriteError(w, http.StatusForbidden, "account_deactivated", "Account has been deactivated")
		case errors.Is(err, models.ErrAccountNotActive):
			pkghttp.WriteError(w, http.StatusPreconditionRequired, "account_not_active", "Activation link expired, the account was never activated")
		case errors.Is(err, models.ErrPendingValidation):
			pkghttp.WriteError(w, http.StatusUnavailableForLegalReasons, "pending_validation", "Check your email to activate the account")
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SigninResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      accountToResponse(session.Account),
	})
}

// Signout handles DELETE /signout
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.Signout(r.Context(), claims); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "signed_out", UserID: claims.AccountID})
}

// RequestPasswordReset handles POST /reset
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req services.ResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resetURL, err := h.service.RequestPasswordReset(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No account matches this email")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, ResetResponse{ResetURL: resetURL})
}

// ValidateResetToken handles GET /reset/{token}
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.ValidateResetToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			pkghttp.WriteError(w, http.StatusInternalServerError, "invalid_token", "Reset link is invalid or has expired")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserEnvelope{User: accountToResponse(account)})
}

// RedeemPasswordReset handles PUT /reset/{token}/password. The body may
// repeat the token as resetToken; it must then match the path.
func (h *AuthHandler) RedeemPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req services.RedeemResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pathToken := chi.URLParam(r, "token")
	if req.ResetToken == "" {
		req.ResetToken = pathToken
	}
	if req.ResetToken != pathToken {
		pkghttp.WriteError(w, http.StatusNotFound, "invalid_token", "Reset link is invalid or has expired")
		return
	}

	if err := h.service.RedeemPasswordReset(r.Context(), req); err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			pkghttp.WriteError(w, http.StatusNotFound, "invalid_token", "Reset link is invalid or has expired")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "password_reset", UserID: req.AccountID})
}
