package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/BradenHooton/inkwell/internal/services"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// ProfileServiceInterface is the authenticated account surface.
type ProfileServiceInterface interface {
	Me(ctx context.Context, accountID string) (*models.Account, error)
	UpdateProfile(ctx context.Context, accountID string, req services.UpdateProfileRequest) (*models.Account, error)
	ChangePassword(ctx context.Context, accountID string, req services.ChangePasswordRequest) error
}

// UserHandler serves the signed-in account's own profile.
type UserHandler struct {
	service ProfileServiceInterface
}

func NewUserHandler(service ProfileServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// AccountResponse is the public view of an account. Credentials and
// lifecycle tokens are never included.
type AccountResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	State            string     `json:"state"`
	Alias            string     `json:"alias,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	PictureURL       string     `json:"pictureUrl,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	LocationCountry  string     `json:"locationCountry,omitempty"`
	LocationProvince string     `json:"locationProvince,omitempty"`
	LocationCity     string     `json:"locationCity,omitempty"`
	LocationAddress  string     `json:"locationAddress,omitempty"`
	ActivatedAt      *time.Time `json:"activatedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func accountToResponse(a *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Email:            a.Email,
		Name:             a.Name,
		Role:             string(a.Role),
		Status:           string(a.Status),
		State:            string(a.State()),
		Alias:            a.Profile.Alias,
		Bio:              a.Profile.Bio,
		PictureURL:       a.Profile.PictureURL,
		Phone:            a.Profile.Phone,
		LocationCountry:  a.Profile.LocationCountry,
		LocationProvince: a.Profile.LocationProvince,
		LocationCity:     a.Profile.LocationCity,
		LocationAddress:  a.Profile.LocationAddress,
		ActivatedAt:      a.ActivatedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

type UserEnvelope struct {
	User *AccountResponse `json:"user"`
}

type StatusResponse struct {
	Status string `json:"status"`
	UserID string `json:"userId,omitempty"`
}

// Me handles GET /me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	account, err := h.service.Me(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, models.ErrServiceUnavailable) {
			pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to load account")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserEnvelope{User: accountToResponse(account)})
}

// UpdateProfile handles PUT /me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req services.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.service.UpdateProfile(r.Context(), claims.AccountID, req)
	if err != nil {
		switch {
		case writeValidationError(w, err):
		case errors.Is(err, models.ErrServiceUnavailable):
			pkghttp.WriteServiceUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, StatusResponse{Status: "updated", UserID: account.ID})
}

// ChangePassword handles PUT /me/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req services.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.ChangePassword(r.Context(), claims.AccountID, req)
	if err != nil {
		if errors.Is(err, models.ErrWrongCredential) {
			pkghttp.WriteError(w, http.StatusForbidden, "wrong_credential", "Current password is incorrect")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "password_changed", UserID: claims.AccountID})
}
