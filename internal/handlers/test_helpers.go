package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/BradenHooton/inkwell/internal/services"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext adds session claims to the request context for testing
// authenticated endpoints
func WithSessionContext(req *http.Request, accountID, email string) *http.Request {
	claims := &models.SessionClaims{
		AccountID: accountID,
		Email:     email,
		Role:      models.RoleReader,
	}
	claims.ID = "jti-" + accountID
	return req.WithContext(auth.WithSession(req.Context(), claims))
}

// WithURLParams attaches chi route parameters to the request
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	RegisterFunc             func(ctx context.Context, req services.RegisterRequest) (*models.Account, error)
	ActivateFunc             func(ctx context.Context, token string) (*models.Account, error)
	SigninFunc               func(ctx context.Context, req services.SigninRequest) (*models.Session, error)
	SignoutFunc              func(ctx context.Context, claims *models.SessionClaims) error
	RequestPasswordResetFunc func(ctx context.Context, req services.ResetRequest) (string, error)
	ValidateResetTokenFunc   func(ctx context.Context, token string) (*models.Account, error)
	RedeemPasswordResetFunc  func(ctx context.Context, req services.RedeemResetRequest) error
}

func (m *MockAccountService) Register(ctx context.Context, req services.RegisterRequest) (*models.Account, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, req)
}

func (m *MockAccountService) Activate(ctx context.Context, token string) (*models.Account, error) {
	if m.ActivateFunc == nil {
		return nil, models.ErrInvalidToken
	}
	return m.ActivateFunc(ctx, token)
}

func (m *MockAccountService) Signin(ctx context.Context, req services.SigninRequest) (*models.Session, error) {
	if m.SigninFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SigninFunc(ctx, req)
}

func (m *MockAccountService) Signout(ctx context.Context, claims *models.SessionClaims) error {
	if m.SignoutFunc == nil {
		return nil
	}
	return m.SignoutFunc(ctx, claims)
}

func (m *MockAccountService) RequestPasswordReset(ctx context.Context, req services.ResetRequest) (string, error) {
	if m.RequestPasswordResetFunc == nil {
		return "", models.ErrNotFound
	}
	return m.RequestPasswordResetFunc(ctx, req)
}

func (m *MockAccountService) ValidateResetToken(ctx context.Context, token string) (*models.Account, error) {
	if m.ValidateResetTokenFunc == nil {
		return nil, models.ErrInvalidToken
	}
	return m.ValidateResetTokenFunc(ctx, token)
}

func (m *MockAccountService) RedeemPasswordReset(ctx context.Context, req services.RedeemResetRequest) error {
	if m.RedeemPasswordResetFunc == nil {
		return models.ErrInvalidToken
	}
	return m.RedeemPasswordResetFunc(ctx, req)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	MeFunc             func(ctx context.Context, accountID string) (*models.Account, error)
	UpdateProfileFunc  func(ctx context.Context, accountID string, req services.UpdateProfileRequest) (*models.Account, error)
	ChangePasswordFunc func(ctx context.Context, accountID string, req services.ChangePasswordRequest) error
}

func (m *MockProfileService) Me(ctx context.Context, accountID string) (*models.Account, error) {
	if m.MeFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.MeFunc(ctx, accountID)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, accountID string, req services.UpdateProfileRequest) (*models.Account, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileFunc(ctx, accountID, req)
}

func (m *MockProfileService) ChangePassword(ctx context.Context, accountID string, req services.ChangePasswordRequest) error {
	if m.ChangePasswordFunc == nil {
		return nil
	}
	return m.ChangePasswordFunc(ctx, accountID, req)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	SetStatusFunc     func(ctx context.Context, actorID, targetID string, enabled bool) (*models.Account, error)
	DeleteAccountFunc func(ctx context.Context, actorID, targetID string, hard bool) error
	ListAccountsFunc  func(ctx context.Context, term string, page, pageSize int) (*models.AccountPage, error)
}

func (m *MockAdminService) SetStatus(ctx context.Context, actorID, targetID string, enabled bool) (*models.Account, error) {
	if m.SetStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SetStatusFunc(ctx, actorID, targetID, enabled)
}

func (m *MockAdminService) DeleteAccount(ctx context.Context, actorID, targetID string, hard bool) error {
	if m.DeleteAccountFunc == nil {
		return nil
	}
	return m.DeleteAccountFunc(ctx, actorID, targetID, hard)
}

func (m *MockAdminService) ListAccounts(ctx context.Context, term string, page, pageSize int) (*models.AccountPage, error) {
	if m.ListAccountsFunc == nil {
		return &models.AccountPage{}, nil
	}
	return m.ListAccountsFunc(ctx, term, page, pageSize)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListFunc       func(ctx context.Context, accountID string, page, pageSize int) (*models.NotificationPage, error)
	ToggleReadFunc func(ctx context.Context, accountID, id string) (*models.Notification, error)
	RemoveFunc     func(ctx context.Context, accountID, id string) error
}

func (m *MockNotificationService) List(ctx context.Context, accountID string, page, pageSize int) (*models.NotificationPage, error) {
	if m.ListFunc == nil {
		return &models.NotificationPage{}, nil
	}
	return m.ListFunc(ctx, accountID, page, pageSize)
}

func (m *MockNotificationService) ToggleRead(ctx context.Context, accountID, id string) (*models.Notification, error) {
	if m.ToggleReadFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ToggleReadFunc(ctx, accountID, id)
}

func (m *MockNotificationService) Remove(ctx context.Context, accountID, id string) error {
	if m.RemoveFunc == nil {
		return models.ErrNotFound
	}
	return m.RemoveFunc(ctx, accountID, id)
}

// MockAuditTrail implements AuditTrailInterface for testing
type MockAuditTrail struct {
	AccountTrailFunc func(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error)
}

func (m *MockAuditTrail) AccountTrail(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error) {
	if m.AccountTrailFunc == nil {
		return []*models.AuditLog{}, nil
	}
	return m.AccountTrailFunc(ctx, accountID, limit, offset)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
