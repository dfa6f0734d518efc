package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// NotificationServiceInterface defines in-app notification access for the
// signed-in account.
type NotificationServiceInterface interface {
	List(ctx context.Context, accountID string, page, pageSize int) (*models.NotificationPage, error)
	ToggleRead(ctx context.Context, accountID, id string) (*models.Notification, error)
	Remove(ctx context.Context, accountID, id string) error
}

type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type NotificationResponse struct {
	ID          string     `json:"id"`
	FromAccount *string    `json:"fromAccount,omitempty"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Details     string     `json:"details,omitempty"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Total         int                     `json:"total"`
	Page          int                     `json:"page"`
	PageSize      int                     `json:"pageSize"`
	TotalPages    int                     `json:"totalPages"`
	NextPage      *int                    `json:"nextPage"`
}

func notificationToResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:          n.ID,
		FromAccount: n.FromAccount,
		Kind:        n.Kind,
		Title:       n.Title,
		Message:     n.Message,
		Details:     n.Details,
		Read:        n.IsRead(),
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

// List handles GET /notifications?page=&pageSize=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	page, err := h.service.List(r.Context(), claims.AccountID, queryInt(r, "page"), queryInt(r, "pageSize"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]*NotificationResponse, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		items = append(items, notificationToResponse(n))
	}

	pkghttp.WriteJSON(w, http.StatusOK, NotificationListResponse{
		Notifications: items,
		Total:         page.Total,
		Page:          page.Page,
		PageSize:      page.PageSize,
		TotalPages:    page.TotalPages,
		NextPage:      page.NextPage,
	})
}

// ToggleRead handles PUT /notifications/{id}
func (h *NotificationHandler) ToggleRead(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	n, err := h.service.ToggleRead(r.Context(), claims.AccountID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]*NotificationResponse{"notification": notificationToResponse(n)})
}

// Remove handles DELETE /notifications/{id}
func (h *NotificationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.Remove(r.Context(), claims.AccountID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}
