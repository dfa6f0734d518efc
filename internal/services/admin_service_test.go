package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BradenHooton/inkwell/internal/config"
	"github.com/BradenHooton/inkwell/internal/models"
)

func newAdminFixture(t *testing.T) (*fixture, *AdminService) {
	t.Helper()
	f := newFixture(t, config.ActivationModeEmail)
	admin := NewAdminService(f.repo, NewAuditService(f.audit, testLogger()), testLogger()).WithClock(f.clock.Now)
	return f, admin
}

func TestAdminService_SetStatus(t *testing.T) {
	f, admin := newAdminFixture(t)
	ctx := context.Background()

	actor := f.registerActive(t, "Root", "root@x.com", "R00tpass")
	target := f.registerActive(t, "Ana", "ana@x.com", "Secr3t!")

	disabled, err := admin.SetStatus(ctx, actor.ID, target.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StateDeactivated, disabled.State())

	_, err = f.svc.Signin(ctx, SigninRequest{Email: "ana@x.com", Password: "Secr3t!"})
	assert.ErrorIs(t, err, models.ErrDeactivated)

	enabled, err := admin.SetStatus(ctx, actor.ID, target.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, enabled.State())

	_, err = f.svc.Signin(ctx, SigninRequest{Email: "ana@x.com", Password: "Secr3t!"})
	assert.NoError(t, err)

	_, err = admin.SetStatus(ctx, actor.ID, actor.ID, false)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = admin.SetStatus(ctx, actor.ID, "00000000-0000-0000-0000-999999999999", false)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.Contains(t, f.audit.events(), models.AuditEventStatusChange)
}

func TestAdminService_ReactivatingPendingAccountActivatesIt(t *testing.T) {
	f, admin := newAdminFixture(t)
	ctx := context.Background()

	actor := f.registerActive(t, "Root", "root@x.com", "R00tpass")
	pending, err := f.svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "bo@x.com", Password: "B0password"})
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)

	account, err := admin.SetStatus(ctx, actor.ID, pending.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, account.State())
	assert.Nil(t, account.SignupToken)
	assert.NotNil(t, account.TrackingKey)

	_, err = f.svc.Signin(ctx, SigninRequest{Email: "bo@x.com", Password: "B0password"})
	assert.NoError(t, err)
}

// racingActivationRepo activates the target between the status write and
// the admin's own activation attempt.
type racingActivationRepo struct {
	*memAccountRepo
	now time.Time
}

func (r *racingActivationRepo) SetStatus(ctx context.Context, id string, status models.AccountStatus, now time.Time) (*models.Account, error) {
	account, err := r.memAccountRepo.SetStatus(ctx, id, status, now)
	if err != nil {
		return nil, err
	}
	if _, err := r.memAccountRepo.ActivateByID(ctx, id, "winner-key", r.now); err != nil {
		return nil, err
	}
	return account, nil
}

func TestAdminService_ReactivationLosesActivationRace(t *testing.T) {
	f := newFixture(t, config.ActivationModeEmail)
	ctx := context.Background()

	actor := f.registerActive(t, "Root", "root@x.com", "R00tpass")
	pending, err := f.svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "bo@x.com", Password: "B0password"})
	require.NoError(t, err)

	repo := &racingActivationRepo{memAccountRepo: f.repo, now: f.clock.Now()}
	admin := NewAdminService(repo, NewAuditService(f.audit, testLogger()), testLogger()).WithClock(f.clock.Now)

	account, err := admin.SetStatus(ctx, actor.ID, pending.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StateActive, account.State())
	require.NotNil(t, account.TrackingKey)
	assert.Equal(t, "winner-key", *account.TrackingKey)
	assert.Contains(t, f.audit.events(), models.AuditEventStatusChange)
}

func TestAdminService_DeleteAccount(t *testing.T) {
	f, admin := newAdminFixture(t)
	ctx := context.Background()

	actor := f.registerActive(t, "Root", "root@x.com", "R00tpass")
	soft := f.registerActive(t, "Ana", "ana@x.com", "Secr3t!")
	hard := f.registerActive(t, "Bo", "bo@x.com", "B0password")

	assert.ErrorIs(t, admin.DeleteAccount(ctx, actor.ID, actor.ID, false), models.ErrValidation)

	require.NoError(t, admin.DeleteAccount(ctx, actor.ID, soft.ID, false))
	_, err := f.svc.Signin(ctx, SigninRequest{Email: "ana@x.com", Password: "Secr3t!"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	// a soft-deleted email can register again
	_, err = f.svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "Secr3t!"})
	assert.NoError(t, err)

	require.NoError(t, admin.DeleteAccount(ctx, actor.ID, hard.ID, true))
	assert.Contains(t, f.repo.deleted, hard.ID)

	assert.ErrorIs(t, admin.DeleteAccount(ctx, actor.ID, hard.ID, true), models.ErrNotFound)
}

func TestAdminService_ListAccounts(t *testing.T) {
	f, admin := newAdminFixture(t)
	ctx := context.Background()

	f.registerActive(t, "Ana", "ana@x.com", "Secr3t!")
	f.registerActive(t, "Bo", "bo@x.com", "B0password")
	f.registerActive(t, "Cy", "cy@y.com", "Cyp4ssword")

	page, err := admin.ListAccounts(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Accounts, 2)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 2, *page.NextPage)

	filtered, err := admin.ListAccounts(ctx, " x.com ", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Total)
	assert.Nil(t, filtered.NextPage)
}

func TestAdminService_EnsureAdmin(t *testing.T) {
	f, admin := newAdminFixture(t)
	ctx := context.Background()

	created, err := admin.EnsureAdmin(ctx, "Administrator", "Admin@Inkwell.dev", "Adm1nPassword", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, "admin@inkwell.dev", created.Email)
	assert.Equal(t, models.RoleAdmin, created.Role)
	assert.True(t, created.IsActivated())

	again, err := admin.EnsureAdmin(ctx, "Administrator", "admin@inkwell.dev", "ignored-password", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, f.repo.count())

	session, err := f.svc.Signin(ctx, SigninRequest{Email: "admin@inkwell.dev", Password: "Adm1nPassword"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.Account.Role)
}
