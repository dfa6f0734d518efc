package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RevokedTokenCleaner purges revocation entries past their token's expiry.
type RevokedTokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// ResetTokenCleaner clears password reset tokens that can no longer be redeemed.
type ResetTokenCleaner interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// CleanupManager periodically removes expired revoked tokens and stale reset
// tokens from the database
type CleanupManager struct {
	revoked  RevokedTokenCleaner
	resets   ResetTokenCleaner
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewCleanupManager(
	revoked RevokedTokenCleaner,
	resets ResetTokenCleaner,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupManager{
		revoked:  revoked,
		resets:   resets,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a cleanup pass immediately and then once per interval until
// Stop is called or ctx is cancelled. It blocks.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			cm.RunOnce(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce performs a single cleanup pass. Failures are logged.
func (cm *CleanupManager) RunOnce(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cm.revoked != nil {
		rows, err := cm.revoked.CleanupExpiredTokens(cleanupCtx)
		if err != nil {
			cm.logger.ErrorContext(ctx, "failed to cleanup expired revoked tokens", slog.Any("error", err))
		} else if rows > 0 {
			cm.logger.InfoContext(ctx, "expired revoked tokens removed", slog.Int64("rows_deleted", rows))
		}
	}

	if cm.resets != nil {
		rows, err := cm.resets.ClearExpiredResetTokens(cleanupCtx, cm.now())
		if err != nil {
			cm.logger.ErrorContext(ctx, "failed to clear expired reset tokens", slog.Any("error", err))
		} else if rows > 0 {
			cm.logger.InfoContext(ctx, "expired reset tokens cleared", slog.Int64("rows_updated", rows))
		}
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
