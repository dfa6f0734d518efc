package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// AdminServiceInterface defines account administration.
type AdminServiceInterface interface {
	SetStatus(ctx context.Context, actorID, targetID string, enabled bool) (*models.Account, error)
	DeleteAccount(ctx context.Context, actorID, targetID string, hard bool) error
	ListAccounts(ctx context.Context, term string, page, pageSize int) (*models.AccountPage, error)
}

// AdminHandler handles /admin/users requests. Routes are mounted behind
// auth.RequireRole(admin).
type AdminHandler struct {
	service AdminServiceInterface
}

func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

type SetStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

type ListAccountsResponse struct {
	Users    []*AccountResponse `json:"users"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	NextPage *int               `json:"nextPage"`
}

type DeleteAccountResponse struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
	Hard   bool   `json:"hard"`
}

// ListAccounts handles GET /admin/users?term=&page=&pageSize=
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page")
	pageSize := queryInt(r, "pageSize")

	result, err := h.service.ListAccounts(r.Context(), q.Get("term"), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	users := make([]*AccountResponse, 0, len(result.Accounts))
	for _, a := range result.Accounts {
		users = append(users, accountToResponse(a))
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListAccountsResponse{
		Users:    users,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		NextPage: result.NextPage,
	})
}

// SetStatus handles PUT /admin/users/{id}/status
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	targetID, ok := accountIDParam(w, r)
	if !ok {
		return
	}

	var req SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		pkghttp.WriteValidationError(w, "Request validation failed", []pkghttp.FieldError{
			{Field: "enabled", Message: "is required"},
		})
		return
	}

	account, err := h.service.SetStatus(r.Context(), claims.AccountID, targetID, *req.Enabled)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Account not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserEnvelope{User: accountToResponse(account)})
}

// DeleteAccount handles DELETE /admin/users/{id}?hard=true
func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	targetID, ok := accountIDParam(w, r)
	if !ok {
		return
	}
	hard, _ := strconv.ParseBool(r.URL.Query().Get("hard"))

	if err := h.service.DeleteAccount(r.Context(), claims.AccountID, targetID, hard); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Account not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DeleteAccountResponse{Status: "deleted", UserID: targetID, Hard: hard})
}

func accountIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return "", false
	}
	return id, true
}

// queryInt returns a non-negative integer query parameter, or 0 when absent or invalid.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
