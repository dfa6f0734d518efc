package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/inkwell/internal/handlers"
	"github.com/BradenHooton/inkwell/internal/models"
)

func TestNotificationList(t *testing.T) {
	var gotAccount string
	mock := &handlers.MockNotificationService{
		ListFunc: func(ctx context.Context, accountID string, page, pageSize int) (*models.NotificationPage, error) {
			gotAccount = accountID
			readAt := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
			return &models.NotificationPage{
				Notifications: []*models.Notification{
					{ID: "n-2", ToAccount: accountID, Kind: models.NotificationKindInfo, Title: "second"},
					{ID: "n-1", ToAccount: accountID, Kind: models.NotificationKindSuccess, Title: "Welcome", ReadAt: &readAt},
				},
				Total:      2,
				Page:       1,
				PageSize:   20,
				TotalPages: 1,
			}, nil
		},
	}

	req := handlers.WithSessionContext(httptest.NewRequest(http.MethodGet, "/notifications", nil), "acc-1", "ana@x.com")
	w := httptest.NewRecorder()
	handlers.NewNotificationHandler(mock).List(w, req)

	var resp handlers.NotificationListResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "acc-1", gotAccount)
	require.Len(t, resp.Notifications, 2)
	assert.False(t, resp.Notifications[0].Read)
	assert.True(t, resp.Notifications[1].Read)
	assert.Nil(t, resp.NextPage)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestNotificationToggleAndRemove(t *testing.T) {
	mock := &handlers.MockNotificationService{
		ToggleReadFunc: func(ctx context.Context, accountID, id string) (*models.Notification, error) {
			if id != "n-1" {
				return nil, models.ErrNotFound
			}
			now := time.Now()
			return &models.Notification{ID: id, ToAccount: accountID, Title: "Welcome", ReadAt: &now}, nil
		},
		RemoveFunc: func(ctx context.Context, accountID, id string) error {
			if id != "n-1" {
				return models.ErrNotFound
			}
			return nil
		},
	}
	handler := handlers.NewNotificationHandler(mock)

	req := handlers.WithURLParams(handlers.WithSessionContext(httptest.NewRequest(http.MethodPut, "/notifications/n-1", nil), "acc-1", "ana@x.com"), map[string]string{"id": "n-1"})
	w := httptest.NewRecorder()
	handler.ToggleRead(w, req)

	var toggled map[string]handlers.NotificationResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &toggled)
	assert.True(t, toggled["notification"].Read)

	req = handlers.WithURLParams(handlers.WithSessionContext(httptest.NewRequest(http.MethodPut, "/notifications/n-9", nil), "acc-1", "ana@x.com"), map[string]string{"id": "n-9"})
	w = httptest.NewRecorder()
	handler.ToggleRead(w, req)
	handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")

	req = handlers.WithURLParams(handlers.WithSessionContext(httptest.NewRequest(http.MethodDelete, "/notifications/n-1", nil), "acc-1", "ana@x.com"), map[string]string{"id": "n-1"})
	w = httptest.NewRecorder()
	handler.Remove(w, req)
	handlers.AssertJSONResponse(t, w, http.StatusOK, nil)

	req = handlers.WithURLParams(handlers.WithSessionContext(httptest.NewRequest(http.MethodDelete, "/notifications/n-9", nil), "acc-1", "ana@x.com"), map[string]string{"id": "n-9"})
	w = httptest.NewRecorder()
	handler.Remove(w, req)
	handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockHealthChecker{}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	handlers.AssertJSONResponse(t, w, http.StatusOK, nil)

	w = httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockHealthChecker{Err: errors.New("connection refused")}).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "service_unavailable")
}
