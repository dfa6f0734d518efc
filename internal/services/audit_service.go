package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/inkwell/internal/models"
	pkghttp "github.com/BradenHooton/inkwell/pkg/http"
)

// AuditLogRepository persists audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error)
}

// AuditEntry describes one lifecycle action.
type AuditEntry struct {
	EventType     string
	ActorID       string
	TargetID      string
	Success       bool
	FailureReason string
	Metadata      models.AuditMetadata
}

// AuditService writes the account audit trail to slog and to the database.
// Persistence failures are logged and never fail the calling operation.
type AuditService struct {
	repo   AuditLogRepository
	logger *slog.Logger
}

func NewAuditService(repo AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	log := &models.AuditLog{
		EventType: entry.EventType,
		ActorID:   optional(entry.ActorID),
		TargetID:  optional(entry.TargetID),
		Success:   entry.Success,
		Metadata:  entry.Metadata,
	}
	if entry.FailureReason != "" {
		log.FailureReason = &entry.FailureReason
	}
	if meta, ok := pkghttp.ClientMetaFromContext(ctx); ok {
		log.IPAddress = optional(meta.IPAddress)
		log.UserAgent = optional(meta.UserAgent)
	}

	attrs := []any{
		slog.String("event_type", entry.EventType),
		slog.String("actor_id", entry.ActorID),
	}
	if entry.TargetID != "" {
		attrs = append(attrs, slog.String("target_id", entry.TargetID))
	}
	if len(entry.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", map[string]interface{}(entry.Metadata)))
	}

	if entry.Success {
		s.logger.InfoContext(ctx, "audit event", attrs...)
	} else {
		attrs = append(attrs, slog.String("failure_reason", entry.FailureReason))
		s.logger.WarnContext(ctx, "audit event failed", attrs...)
	}

	if s.repo == nil {
		return
	}
	if _, err := s.repo.Create(ctx, log); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("event_type", entry.EventType),
			slog.Any("error", err),
		)
	}
}

// AccountTrail returns audit entries where the account is actor or target,
// newest first.
func (s *AuditService) AccountTrail(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error) {
	if s.repo == nil {
		return []*models.AuditLog{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	logs, err := s.repo.ListForAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list audit logs", err,
			slog.String("account_id", accountID))
	}
	return logs, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
