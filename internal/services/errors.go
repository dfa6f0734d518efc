package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/inkwell/internal/models"
)

// storeError records the cause of a persistence failure and returns the kind
// callers may see: ErrServiceUnavailable for connectivity, ErrInternalServer otherwise.
func storeError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...any) error {
	attrs = append(attrs, slog.Any("error", err))

	if errors.Is(err, models.ErrServiceUnavailable) {
		logger.WarnContext(ctx, msg+": database unavailable", attrs...)
		return models.ErrServiceUnavailable
	}

	logger.ErrorContext(ctx, msg, attrs...)
	return models.ErrInternalServer
}
