package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/inkwell/internal/models"
	pkgauth "github.com/BradenHooton/inkwell/pkg/auth"
	"github.com/google/uuid"
)

// AdminAccountRepository is the persistence contract for account administration.
type AdminAccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ActivateByID(ctx context.Context, id, trackingKey string, now time.Time) (*models.Account, error)
	SetStatus(ctx context.Context, id string, status models.AccountStatus, now time.Time) (*models.Account, error)
	SoftDelete(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, term string, page models.Pagination) ([]*models.Account, int, error)
}

type AdminService struct {
	repo   AdminAccountRepository
	audit  *AuditService
	logger *slog.Logger
	now    func() time.Time
}

func NewAdminService(repo AdminAccountRepository, audit *AuditService, logger *slog.Logger) *AdminService {
	return &AdminService{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

// SetStatus deactivates or reactivates an account. Reactivating an account
// that never completed activation activates it as well.
func (s *AdminService) SetStatus(ctx context.Context, actorID, targetID string, enabled bool) (*models.Account, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("id", "cannot change the status of your own account")
	}

	status := models.StatusDisabled
	if enabled {
		status = models.StatusEnabled
	}

	now := s.now()
	account, err := s.repo.SetStatus(ctx, targetID, status, now)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, storeError(ctx, s.logger, "failed to set account status", err,
			slog.String("target_id", targetID))
	}

	if enabled && !account.IsActivated() {
		activated, err := s.repo.ActivateByID(ctx, targetID, uuid.New().String(), now)
		switch {
		case err == nil:
			account = activated
		case errors.Is(err, models.ErrNotFound):
			// activated concurrently; the status change is already committed
			account, err = s.repo.GetByID(ctx, targetID)
			if err != nil {
				return nil, storeError(ctx, s.logger, "failed to reload account", err,
					slog.String("target_id", targetID))
			}
		default:
			return nil, storeError(ctx, s.logger, "failed to activate account", err,
				slog.String("target_id", targetID))
		}
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventStatusChange,
		ActorID:   actorID,
		TargetID:  targetID,
		Success:   true,
		Metadata:  models.AuditMetadata{"status": string(status)},
	})

	return account, nil
}

// DeleteAccount removes an account. A soft delete keeps the row but frees the
// email for a new registration.
func (s *AdminService) DeleteAccount(ctx context.Context, actorID, targetID string, hard bool) error {
	if actorID == targetID {
		return models.NewValidationError("id", "cannot delete your own account")
	}

	var err error
	if hard {
		err = s.repo.Delete(ctx, targetID)
	} else {
		err = s.repo.SoftDelete(ctx, targetID, s.now())
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return storeError(ctx, s.logger, "failed to delete account", err,
			slog.String("target_id", targetID))
	}

	s.audit.Record(ctx, AuditEntry{
		EventType: models.AuditEventAccountDelete,
		ActorID:   actorID,
		TargetID:  targetID,
		Success:   true,
		Metadata:  models.AuditMetadata{"hard": hard},
	})

	return nil
}

func (s *AdminService) ListAccounts(ctx context.Context, term string, page, pageSize int) (*models.AccountPage, error) {
	p := models.NewPagination(page, pageSize)

	accounts, total, err := s.repo.List(ctx, strings.TrimSpace(term), p)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list accounts", err)
	}

	return &models.AccountPage{
		Accounts: accounts,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		NextPage: p.Next(total),
	}, nil
}

// EnsureAdmin creates an activated admin account for email when no live
// account uses it yet. An existing account is left untouched.
func (s *AdminService) EnsureAdmin(ctx context.Context, name, email, password string, bcryptCost int) (*models.Account, error) {
	email = pkgauth.NormalizeEmail(email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, storeError(ctx, s.logger, "failed to look up admin account", err)
	}

	hash, err := pkgauth.HashPassword(password, bcryptCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.Account{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Status:       models.StatusEnabled,
	})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to create admin account", err)
	}

	account, err := s.repo.ActivateByID(ctx, created.ID, uuid.New().String(), s.now())
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to activate admin account", err)
	}

	s.logger.InfoContext(ctx, "admin account bootstrapped", slog.String("account_id", account.ID))
	return account, nil
}
