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

type AccountRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db, pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both pgx.Row and pgx.Rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const accountColumns = `
	id, email, name, password_hash, role, status, tracking_key,
	signup_token, signup_token_expires_at, activated_at,
	reset_token, reset_token_expires_at,
	alias, bio, picture_url, phone,
	location_country, location_province, location_city, location_address,
	disabled_at, deleted_at, created_at, updated_at`

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var a models.Account

	err := scanner.Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.Status, &a.TrackingKey,
		&a.SignupToken, &a.SignupTokenExpiresAt, &a.ActivatedAt,
		&a.ResetToken, &a.ResetTokenExpiresAt,
		&a.Profile.Alias, &a.Profile.Bio, &a.Profile.PictureURL, &a.Profile.Phone,
		&a.Profile.LocationCountry, &a.Profile.LocationProvince, &a.Profile.LocationCity, &a.Profile.LocationAddress,
		&a.DisabledAt, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &a, nil
}

func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", database.MapPostgresError(err))
	}

	return accounts, nil
}

// Create inserts a new account. A live account with the same email yields ErrConflict.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if a.Role == "" {
		a.Role = models.RoleReader
	}
	if a.Status == "" {
		a.Status = models.StatusEnabled
	}

	query := `
		INSERT INTO accounts (
			email, name, password_hash, role, status, tracking_key,
			signup_token, signup_token_expires_at, activated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + accountColumns

	created, err := scanAccountRow(r.pool.QueryRow(ctx, query,
		a.Email, a.Name, a.PasswordHash, a.Role, a.Status, a.TrackingKey,
		a.SignupToken, a.SignupTokenExpiresAt, a.ActivatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`

	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks up a live account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 AND deleted_at IS NULL`

	return scanAccountRow(r.pool.QueryRow(ctx, query, email))
}

// Activate redeems a signup token in a single conditional update. An unknown,
// expired or already redeemed token matches no row and yields ErrNotFound.
func (r *AccountRepository) Activate(ctx context.Context, token, trackingKey string, now time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET signup_token = NULL,
		    signup_token_expires_at = NULL,
		    activated_at = $3,
		    tracking_key = $2,
		    updated_at = $3
		WHERE signup_token = $1
		  AND signup_token_expires_at > $3
		  AND activated_at IS NULL
		  AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, token, trackingKey, now))
}

// ActivateByID activates a pending account without a token, for direct
// activation mode and admin reactivation.
func (r *AccountRepository) ActivateByID(ctx context.Context, id, trackingKey string, now time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET signup_token = NULL,
		    signup_token_expires_at = NULL,
		    activated_at = $3,
		    tracking_key = $2,
		    updated_at = $3
		WHERE id = $1
		  AND activated_at IS NULL
		  AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, trackingKey, now))
}

// SetResetToken stores a reset token, replacing any outstanding one.
func (r *AccountRepository) SetResetToken(ctx context.Context, id, token string, expiresAt, now time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, token, expiresAt, now))
}

// GetByResetToken returns the account holding a live reset token.
func (r *AccountRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE reset_token = $1 AND reset_token_expires_at > $2 AND deleted_at IS NULL
	`

	return scanAccountRow(r.pool.QueryRow(ctx, query, token, now))
}

// RedeemResetToken replaces the password and clears the reset token in one
// conditional update, so only the first of two concurrent redemptions matches.
func (r *AccountRepository) RedeemResetToken(ctx context.Context, id, token, passwordHash string, now time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET password_hash = $3,
		    reset_token = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = $4
		WHERE id = $1
		  AND reset_token = $2
		  AND reset_token_expires_at > $4
		  AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, token, passwordHash, now))
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, passwordHash, now)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id, name string, p models.Profile, now time.Time) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = $2, alias = $3, bio = $4, picture_url = $5, phone = $6,
		    location_country = $7, location_province = $8, location_city = $9, location_address = $10,
		    updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, name,
		p.Alias, p.Bio, p.PictureURL, p.Phone,
		p.LocationCountry, p.LocationProvince, p.LocationCity, p.LocationAddress,
		now,
	))
}

// SetStatus enables or disables an account, stamping disabled_at on disable.
func (r *AccountRepository) SetStatus(ctx context.Context, id string, status models.AccountStatus, now time.Time) (*models.Account, error) {
	var disabledAt *time.Time
	if status == models.StatusDisabled {
		disabledAt = &now
	}

	query := `
		UPDATE accounts
		SET status = $2, disabled_at = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + accountColumns

	return scanAccountRow(r.pool.QueryRow(ctx, query, id, status, disabledAt, now))
}

// Delete removes an account row. Notifications cascade.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SoftDelete marks an account deleted, drops its outstanding tokens and
// removes its inbox. The email becomes available for a new signup.
func (r *AccountRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE accounts
			SET deleted_at = $2, signup_token = NULL, signup_token_expires_at = NULL,
			    reset_token = NULL, reset_token_expires_at = NULL, updated_at = $2
			WHERE id = $1 AND deleted_at IS NULL
		`
		tag, err := tx.Exec(ctx, query, id, now)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE to_account = $1`, id); err != nil {
			return database.MapPostgresError(err)
		}
		return nil
	})
}

// List returns live accounts whose name or email contains term, newest first.
func (r *AccountRepository) List(ctx context.Context, term string, page models.Pagination) ([]*models.Account, int, error) {
	where := `
		WHERE deleted_at IS NULL
		  AND ($1::text = '' OR name ILIKE '%' || $1::text || '%' OR email ILIKE '%' || $1::text || '%')
	`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, term).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", database.MapPostgresError(err))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts` + where + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, term, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query accounts: %w", database.MapPostgresError(err))
	}

	accounts, err := scanAccountRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// ClearExpiredResetTokens nulls reset tokens that lapsed before now.
func (r *AccountRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET reset_token = NULL, reset_token_expires_at = NULL
		WHERE reset_token IS NOT NULL AND reset_token_expires_at <= $1
	`

	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
