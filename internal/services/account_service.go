package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/inkwell/internal/auth"
	"github.com/BradenHooton/inkwell/internal/config"
	"github.com/BradenHooton/inkwell/internal/models"
	pkgauth "github.com/BradenHooton/inkwell/pkg/auth"
	"github.com/BradenHooton/inkwell/pkg/logger"
	"github.com/google/uuid"
)

// AccountRepository is the persistence contract for the account lifecycle.
// Token redemption methods are single conditional updates and return
// models.ErrNotFound when no live token matched.
type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Activate(ctx context.Context, token, trackingKey string, now time.Time) (*models.Account, error)
	ActivateByID(ctx context.Context, id, trackingKey string, now time.Time) (*models.Account, error)
	SetResetToken(ctx context.Context, id, token string, expiresAt, now time.Time) (*models.Account, error)
	GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error)
	RedeemResetToken(ctx context.Context, id, token, passwordHash string, now time.Time) (*models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error
	UpdateProfile(ctx context.Context, id, name string, p models.Profile, now time.Time) (*models.Account, error)
	Delete(ctx context.Context, id string) error
}

// Notifier creates in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) (*models.Notification, error)
}

// TokenRevoker blacklists session token IDs until they expire.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti, accountID string, expiresAt time.Time, reason string) error
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type SigninRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RedeemResetRequest struct {
	AccountID  string `json:"userId" validate:"required"`
	ResetToken string `json:"resetToken" validate:"required"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type UpdateProfileRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Alias            string `json:"alias" validate:"max=50"`
	Bio              string `json:"bio" validate:"max=1000"`
	PictureURL       string `json:"pictureUrl" validate:"omitempty,url,max=2048"`
	Phone            string `json:"phone" validate:"max=32"`
	LocationCountry  string `json:"locationCountry" validate:"max=100"`
	LocationProvince string `json:"locationProvince" validate:"max=100"`
	LocationCity     string `json:"locationCity" validate:"max=100"`
	LocationAddress  string `json:"locationAddress" validate:"max=255"`
}

// AccountService owns the account lifecycle: signup, activation, sign-in,
// password reset and the authenticated profile.
type AccountService struct {
	repo         AccountRepository
	notifier     Notifier
	mailer       Mailer
	tokenManager *auth.TokenManager
	revoker      TokenRevoker
	audit        *AuditService
	cfg          config.LifecycleConfig
	revokeTTL    time.Duration
	logger       *slog.Logger
	now          func() time.Time
	newToken     func() (string, error)
}

func NewAccountService(
	repo AccountRepository,
	notifier Notifier,
	mailer Mailer,
	tokenManager *auth.TokenManager,
	revoker TokenRevoker,
	audit *AuditService,
	cfg config.LifecycleConfig,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		repo:         repo,
		notifier:     notifier,
		mailer:       mailer,
		tokenManager: tokenManager,
		revoker:      revoker,
		audit:        audit,
		cfg:          cfg,
		revokeTTL:    90 * 24 * time.Hour,
		logger:       logger,
		now:          time.Now,
		newToken:     pkgauth.GenerateToken,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// WithTokenSource replaces the opaque token generator. Intended for tests.
func (s *AccountService) WithTokenSource(fn func() (string, error)) *AccountService {
	s.newToken = fn
	return s
}

// WithRevocationHorizon sets how long a token without an exp claim stays
// revoked after sign-out.
func (s *AccountService) WithRevocationHorizon(d time.Duration) *AccountService {
	if d > 0 {
		s.revokeTTL = d
	}
	return s
}

// Register creates a pending account and dispatches its activation. If the
// dispatch fails the account is removed again and ErrNotificationFailed is returned.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkPasswordPolicy(req.Password, "password"); err != nil {
		return nil, err
	}

	email := pkgauth.NormalizeEmail(req.Email)
	if strings.HasPrefix(email, "@") {
		return nil, models.NewValidationError("email", "must be a valid email address")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.logger.InfoContext(ctx, "signup rejected: account exists", slog.String("email", logger.SanitizedEmail(email)))
		return nil, models.ErrDuplicateAccount
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, storeError(ctx, s.logger, "failed to look up account by email", err)
	}

	hash, err := pkgauth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.newToken()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate signup token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SignupTokenTTL)
	account, err := s.repo.Create(ctx, &models.Account{
		Email:                email,
		Name:                 req.Name,
		PasswordHash:         hash,
		Role:                 models.RoleReader,
		Status:               models.StatusEnabled,
		SignupToken:          &token,
		SignupTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrDuplicateAccount
		}
		return nil, storeError(ctx, s.logger, "failed to create account", err, slog.String("email", logger.SanitizedEmail(email)))
	}

	activated, err := s.dispatchActivation(ctx, account, token)
	if err != nil {
		s.rollbackSignup(ctx, account, err)
		return nil, fmt.Errorf("%w: %v", models.ErrNotificationFailed, err)
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventSignup,
		ActorID:   activated.ID,
		TargetID:  activated.ID,
		Success:   true,
		Metadata:  models.AuditMetadata{"activation_mode": s.cfg.ActivationMode},
	})

	return activated, nil
}

func (s *AccountService) dispatchActivation(ctx context.Context, account *models.Account, token string) (*models.Account, error) {
	if s.cfg.ActivationMode == config.ActivationModeDirect {
		activated, err := s.repo.ActivateByID(ctx, account.ID, uuid.New().String(), s.now())
		if err != nil {
			return nil, fmt.Errorf("auto-activation: %w", err)
		}
		return activated, nil
	}

	_, err := s.notifier.Notify(ctx, &models.Notification{
		ToAccount: account.ID,
		Kind:      models.NotificationKindSuccess,
		Title:     "Welcome to Inkwell",
		Message:   "Your account was created. Check your inbox to activate it.",
	})
	if err != nil {
		return nil, fmt.Errorf("welcome notification: %w", err)
	}

	msg := activationEmail(account.Email, account.Name, s.activationURL(token), s.cfg.SignupTokenTTL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("activation email: %w", err)
	}

	return account, nil
}

// rollbackSignup removes an account whose activation could not be dispatched.
// It runs detached from request cancellation and tolerates an already
// missing row.
func (s *AccountService) rollbackSignup(ctx context.Context, account *models.Account, cause error) {
	ctx = context.WithoutCancel(ctx)

	s.logger.ErrorContext(ctx, "activation dispatch failed, removing account",
		slog.String("account_id", account.ID),
		slog.Any("error", cause),
	)

	entry := AuditEntry{
		EventType: models.AuditEventCompensatingDel,
		ActorID:   account.ID,
		TargetID:  account.ID,
		Success:   true,
	}
	if err := s.repo.Delete(ctx, account.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to remove account after dispatch failure",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
		entry.Success = false
		entry.FailureReason = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// Activate redeems a signup token. Unknown, expired and already used tokens
// all yield ErrInvalidToken.
func (s *AccountService) Activate(ctx context.Context, token string) (*models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrInvalidToken
	}

	account, err := s.repo.Activate(ctx, token, uuid.New().String(), s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.Record(ctx, AuditEntry{
				EventType:     models.AuditEventActivate,
				Success:       false,
				FailureReason: "invalid_token",
			})
			return nil, models.ErrInvalidToken
		}
		return nil, storeError(ctx, s.logger, "failed to activate account", err)
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventActivate,
		ActorID:   account.ID,
		TargetID:  account.ID,
		Success:   true,
	})

	return account, nil
}

// Signin verifies credentials and issues a session token.
func (s *AccountService) Signin(ctx context.Context, req SigninRequest) (*models.Session, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	email := pkgauth.NormalizeEmail(req.Email)
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.signinFailed(ctx, "", "not_found")
			return nil, models.ErrNotFound
		}
		return nil, storeError(ctx, s.logger, "failed to look up account for signin", err)
	}

	if account.IsDisabled() {
		s.signinFailed(ctx, account.ID, "deactivated")
		return nil, models.ErrDeactivated
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, req.Password); err != nil {
		s.signinFailed(ctx, account.ID, "wrong_credential")
		return nil, models.ErrWrongCredential
	}

	if !account.IsActivated() {
		if account.SignupTokenExpired(s.now()) {
			s.signinFailed(ctx, account.ID, "not_active")
			return nil, models.ErrAccountNotActive
		}
		s.signinFailed(ctx, account.ID, "pending_validation")
		return nil, models.ErrPendingValidation
	}

	token, claims, err := s.tokenManager.Issue(account, req.RememberMe)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue session token",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
		return nil, models.ErrInternalServer
	}

	session := &models.Session{Token: token, Account: account}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		session.ExpiresAt = &exp
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventSignin,
		ActorID:   account.ID,
		TargetID:  account.ID,
		Success:   true,
		Metadata:  models.AuditMetadata{"remember_me": req.RememberMe},
	})

	return session, nil
}

func (s *AccountService) signinFailed(ctx context.Context, accountID, reason string) {
	s.audit.Record(ctx, AuditEntry{
		EventType:     models.AuditEventSignin,
		ActorID:       accountID,
		TargetID:      accountID,
		Success:       false,
		FailureReason: reason,
	})
}

// Signout revokes the presented session token.
func (s *AccountService) Signout(ctx context.Context, claims *models.SessionClaims) error {
	if claims == nil || claims.ID == "" {
		return models.ErrUnauthorized
	}

	expiresAt := s.now().Add(s.revokeTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoker.RevokeToken(ctx, claims.ID, claims.AccountID, expiresAt, "signout"); err != nil {
		return storeError(ctx, s.logger, "failed to revoke session token", err,
			slog.String("account_id", claims.AccountID))
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventSignout,
		ActorID:   claims.AccountID,
		TargetID:  claims.AccountID,
		Success:   true,
	})

	return nil
}

// RequestPasswordReset issues a reset token, overwriting any outstanding one,
// emails the reset link and returns it. When the email cannot be sent the
// token stays set and ErrNotificationFailed is returned.
func (s *AccountService) RequestPasswordReset(ctx context.Context, req ResetRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}

	email := pkgauth.NormalizeEmail(req.Email)
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		return "", storeError(ctx, s.logger, "failed to look up account for reset", err)
	}

	token, err := s.newToken()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate reset token", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	now := s.now()
	if _, err := s.repo.SetResetToken(ctx, account.ID, token, now.Add(s.cfg.ResetTokenTTL), now); err != nil {
		return "", storeError(ctx, s.logger, "failed to store reset token", err,
			slog.String("account_id", account.ID))
	}

	resetURL := s.resetURL(token)
	if err := s.mailer.Send(ctx, passwordResetEmail(account.Email, account.Name, resetURL, s.cfg.ResetTokenTTL)); err != nil {
		s.logger.ErrorContext(ctx, "failed to send reset email",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
		s.audit.Record(ctx, AuditEntry{
			EventType:     models.AuditEventResetRequest,
			ActorID:       account.ID,
			TargetID:      account.ID,
			Success:       false,
			FailureReason: "email_failed",
		})
		return "", fmt.Errorf("%w: %v", models.ErrNotificationFailed, err)
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventResetRequest,
		ActorID:   account.ID,
		TargetID:  account.ID,
		Success:   true,
	})

	return resetURL, nil
}

// ValidateResetToken returns the account owning a live reset token.
func (s *AccountService) ValidateResetToken(ctx context.Context, token string) (*models.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrInvalidToken
	}

	account, err := s.repo.GetByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, storeError(ctx, s.logger, "failed to look up reset token", err)
	}
	return account, nil
}

// RedeemPasswordReset replaces the credential of the account owning a live
// reset token and clears the token. A token redeems at most once.
func (s *AccountService) RedeemPasswordReset(ctx context.Context, req RedeemResetRequest) error {
	if err := validateStruct(req); err != nil {
		if errors.Is(err, models.ErrValidation) && (req.AccountID == "" || req.ResetToken == "") {
			return models.ErrInvalidToken
		}
		return err
	}
	if err := s.checkPasswordPolicy(req.Password, "password"); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	account, err := s.repo.RedeemResetToken(ctx, req.AccountID, req.ResetToken, hash, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.Record(ctx, AuditEntry{
				EventType:     models.AuditEventResetRedeem,
				TargetID:      req.AccountID,
				Success:       false,
				FailureReason: "invalid_token",
			})
			return models.ErrInvalidToken
		}
		return storeError(ctx, s.logger, "failed to redeem reset token", err)
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventResetRedeem,
		ActorID:   account.ID,
		TargetID:  account.ID,
		Success:   true,
	})

	return nil
}

// ChangePassword replaces the credential after verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID string, req ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if err := s.checkPasswordPolicy(req.NewPassword, "newPassword"); err != nil {
		return err
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return storeError(ctx, s.logger, "failed to load account", err, slog.String("account_id", accountID))
	}

	if err := pkgauth.ComparePassword(account.PasswordHash, req.CurrentPassword); err != nil {
		s.audit.Record(ctx, AuditEntry{
			EventType:     models.AuditEventPasswordChange,
			ActorID:       accountID,
			TargetID:      accountID,
			Success:       false,
			FailureReason: "wrong_credential",
		})
		return models.ErrWrongCredential
	}

	hash, err := pkgauth.HashPassword(req.NewPassword, s.cfg.BcryptCost)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, accountID, hash, s.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return storeError(ctx, s.logger, "failed to update password", err, slog.String("account_id", accountID))
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventPasswordChange,
		ActorID:   accountID,
		TargetID:  accountID,
		Success:   true,
	})

	return nil
}

func (s *AccountService) Me(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, storeError(ctx, s.logger, "failed to load account", err, slog.String("account_id", accountID))
	}
	return account, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*models.Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	profile := models.Profile{
		Alias:            strings.TrimSpace(req.Alias),
		Bio:              strings.TrimSpace(req.Bio),
		PictureURL:       strings.TrimSpace(req.PictureURL),
		Phone:            strings.TrimSpace(req.Phone),
		LocationCountry:  strings.TrimSpace(req.LocationCountry),
		LocationProvince: strings.TrimSpace(req.LocationProvince),
		LocationCity:     strings.TrimSpace(req.LocationCity),
		LocationAddress:  strings.TrimSpace(req.LocationAddress),
	}

	account, err := s.repo.UpdateProfile(ctx, accountID, req.Name, profile, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, storeError(ctx, s.logger, "failed to update profile", err, slog.String("account_id", accountID))
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventProfileUpdate,
		ActorID:   accountID,
		TargetID:  accountID,
		Success:   true,
	})

	return account, nil
}

func (s *AccountService) checkPasswordPolicy(password, field string) error {
	err := pkgauth.ValidatePassword(password)
	if err == nil {
		return nil
	}
	var pwErr *pkgauth.PasswordValidationError
	if errors.As(err, &pwErr) {
		return models.NewValidationError(field, strings.Join(pwErr.Errors, "; "))
	}
	return models.NewValidationError(field, err.Error())
}

func (s *AccountService) activationURL(token string) string {
	return s.cfg.UIBaseURL + "/activation/" + token
}

func (s *AccountService) resetURL(token string) string {
	return s.cfg.UIBaseURL + "/new-password/" + token
}
