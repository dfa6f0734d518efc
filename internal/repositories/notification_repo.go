package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/inkwell/internal/database"
	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{pool: db.Pool}
}

const notificationColumns = `id, to_account, from_account, kind, title, message, details, read_at, created_at`

func scanNotificationRow(scanner rowScanner) (*models.Notification, error) {
	var n models.Notification

	err := scanner.Scan(
		&n.ID, &n.ToAccount, &n.FromAccount, &n.Kind,
		&n.Title, &n.Message, &n.Details, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &n, nil
}

func scanNotificationRows(rows pgx.Rows) ([]*models.Notification, error) {
	defer rows.Close()

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		n, err := scanNotificationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", database.MapPostgresError(err))
	}

	return notifications, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if n.Kind == "" {
		n.Kind = models.NotificationKindInfo
	}

	query := `
		INSERT INTO notifications (to_account, from_account, kind, title, message, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + notificationColumns

	created, err := scanNotificationRow(r.pool.QueryRow(ctx, query,
		n.ToAccount, n.FromAccount, n.Kind, n.Title, n.Message, n.Details,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return created, nil
}

// ListForAccount returns one page of an account's notifications, newest first.
func (r *NotificationRepository) ListForAccount(ctx context.Context, accountID string, page models.Pagination) ([]*models.Notification, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE to_account = $1`, accountID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", database.MapPostgresError(err))
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE to_account = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", database.MapPostgresError(err))
	}

	notifications, err := scanNotificationRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// ToggleRead flips the read marker of a notification owned by accountID.
func (r *NotificationRepository) ToggleRead(ctx context.Context, accountID, id string, now time.Time) (*models.Notification, error) {
	query := `
		UPDATE notifications
		SET read_at = CASE WHEN read_at IS NULL THEN $3::timestamptz ELSE NULL END
		WHERE id = $1 AND to_account = $2
		RETURNING ` + notificationColumns

	return scanNotificationRow(r.pool.QueryRow(ctx, query, id, accountID, now))
}

// Delete removes a notification owned by accountID.
func (r *NotificationRepository) Delete(ctx context.Context, accountID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND to_account = $2`, id, accountID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
