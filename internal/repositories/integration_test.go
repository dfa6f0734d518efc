//go:build integration

package repositories

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/inkwell/internal/database"
	"github.com/BradenHooton/inkwell/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a disposable Postgres, applies migrations and returns
// a DB wrapper. The container is terminated when the test finishes.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("inkwell"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	goose.SetLogger(log.New(io.Discard, "", 0))
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	require.NoError(t, database.MigrateUp(ctx, sqlDB))

	return database.NewFromPool(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedPending(t *testing.T, repo *AccountRepository, email, token string, expiresAt time.Time) *models.Account {
	t.Helper()

	a, err := repo.Create(context.Background(), &models.Account{
		Email:                email,
		Name:                 "Ana",
		PasswordHash:         "hash",
		SignupToken:          &token,
		SignupTokenExpiresAt: &expiresAt,
	})
	require.NoError(t, err)
	return a
}

func TestAccountRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("duplicate live email conflicts", func(t *testing.T) {
		seedPending(t, repo, "dup@x.com", "dup-token", now.Add(time.Hour))

		_, err := repo.Create(ctx, &models.Account{Email: "dup@x.com", Name: "B", PasswordHash: "h"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("activation succeeds once", func(t *testing.T) {
		seedPending(t, repo, "once@x.com", "once-token", now.Add(time.Hour))

		a, err := repo.Activate(ctx, "once-token", "track-1", now)
		require.NoError(t, err)
		assert.NotNil(t, a.ActivatedAt)
		assert.Nil(t, a.SignupToken)
		require.NotNil(t, a.TrackingKey)
		assert.Equal(t, "track-1", *a.TrackingKey)

		_, err = repo.Activate(ctx, "once-token", "track-2", now)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("expired signup token does not activate", func(t *testing.T) {
		seedPending(t, repo, "late@x.com", "late-token", now.Add(-time.Minute))

		_, err := repo.Activate(ctx, "late-token", "track", now)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("concurrent reset redemption has one winner", func(t *testing.T) {
		a := seedPending(t, repo, "race@x.com", "race-token", now.Add(time.Hour))
		_, err := repo.SetResetToken(ctx, a.ID, "reset-token", now.Add(time.Hour), now)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.RedeemResetToken(ctx, a.ID, "reset-token", "new-hash", now)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, models.ErrNotFound)
			}
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("lapsed reset tokens are cleared", func(t *testing.T) {
		a := seedPending(t, repo, "lapsed@x.com", "lapsed-token", now.Add(time.Hour))
		_, err := repo.SetResetToken(ctx, a.ID, "lapsed-reset", now.Add(-time.Minute), now.Add(-2*time.Hour))
		require.NoError(t, err)

		cleared, err := repo.ClearExpiredResetTokens(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, cleared, int64(1))

		got, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ResetToken)
	})

	t.Run("soft delete frees the email", func(t *testing.T) {
		a := seedPending(t, repo, "gone@x.com", "gone-token", now.Add(time.Hour))
		require.NoError(t, repo.SoftDelete(ctx, a.ID, now))

		_, err := repo.GetByID(ctx, a.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		seedPending(t, repo, "gone@x.com", "gone-token-2", now.Add(time.Hour))
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("list filters by term", func(t *testing.T) {
		accounts, total, err := repo.List(ctx, "once@", models.NewPagination(1, 10))
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, accounts, 1)
		assert.Equal(t, "once@x.com", accounts[0].Email)
	})
}

func TestNotificationRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	owner := seedPending(t, accounts, "owner@x.com", "t1", time.Now().Add(time.Hour))
	other := seedPending(t, accounts, "other@x.com", "t2", time.Now().Add(time.Hour))

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &models.Notification{ToAccount: owner.ID, Title: title, Message: "m"})
		require.NoError(t, err)
	}

	page, total, err := repo.ListForAccount(ctx, owner.ID, models.NewPagination(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	n := page[0]
	toggled, err := repo.ToggleRead(ctx, owner.ID, n.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, toggled.IsRead())

	_, err = repo.ToggleRead(ctx, other.ID, n.ID, time.Now())
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, n.ID), models.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, owner.ID, n.ID))
}

func TestTokenRevocationRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	accounts := NewAccountRepository(db)
	repo := NewTokenRevocationRepository(db)
	ctx := context.Background()

	a := seedPending(t, accounts, "rev@x.com", "t", time.Now().Add(time.Hour))

	require.NoError(t, repo.RevokeToken(ctx, "jti-live", a.ID, time.Now().Add(time.Hour), "signout"))
	require.NoError(t, repo.RevokeToken(ctx, "jti-live", a.ID, time.Now().Add(time.Hour), "signout"))
	require.NoError(t, repo.RevokeToken(ctx, "jti-old", a.ID, time.Now().Add(-time.Hour), "signout"))

	revoked, err := repo.IsTokenRevoked(ctx, "jti-live")
	require.NoError(t, err)
	assert.True(t, revoked)

	removed, err := repo.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
