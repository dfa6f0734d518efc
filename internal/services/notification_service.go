package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/inkwell/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListForAccount(ctx context.Context, accountID string, page models.Pagination) ([]*models.Notification, int, error)
	ToggleRead(ctx context.Context, accountID, id string, now time.Time) (*models.Notification, error)
	Delete(ctx context.Context, accountID, id string) error
}

// NotificationService manages in-app notifications. Every read and write is
// scoped to the owning account.
type NotificationService struct {
	repo   NotificationRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n == nil || n.ToAccount == "" {
		return nil, models.NewValidationError("toAccount", "is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return nil, models.NewValidationError("title", "is required")
	}
	if n.Kind == "" {
		n.Kind = models.NotificationKindInfo
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to create notification", err,
			slog.String("account_id", n.ToAccount))
	}
	return created, nil
}

func (s *NotificationService) List(ctx context.Context, accountID string, page, pageSize int) (*models.NotificationPage, error) {
	p := models.NewPagination(page, pageSize)

	items, total, err := s.repo.ListForAccount(ctx, accountID, p)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list notifications", err,
			slog.String("account_id", accountID))
	}

	return &models.NotificationPage{
		Notifications: items,
		Total:         total,
		Page:          p.Page,
		PageSize:      p.PageSize,
		TotalPages:    p.TotalPages(total),
		NextPage:      p.Next(total),
	}, nil
}

// ToggleRead flips the read flag of a notification owned by accountID.
func (s *NotificationService) ToggleRead(ctx context.Context, accountID, id string) (*models.Notification, error) {
	n, err := s.repo.ToggleRead(ctx, accountID, id, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, storeError(ctx, s.logger, "failed to toggle notification", err,
			slog.String("notification_id", id))
	}
	return n, nil
}

func (s *NotificationService) Remove(ctx context.Context, accountID, id string) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return storeError(ctx, s.logger, "failed to delete notification", err,
			slog.String("notification_id", id))
	}
	return nil
}
