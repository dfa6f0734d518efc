package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/inkwell/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memAccountRepo is an in-memory account store with the same conditional
// update semantics as the Postgres repository. Err fields force failures.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	seq      int

	CreateErr     error
	GetByEmailErr error
	ActivateErr   error
	DeleteErr     error
	deleted       []string
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*models.Account)}
}

func clone(a *models.Account) *models.Account {
	c := *a
	return &c
}

func (r *memAccountRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	for _, existing := range r.accounts {
		if existing.DeletedAt == nil && existing.Email == a.Email {
			return nil, models.ErrConflict
		}
	}
	r.seq++
	stored := clone(a)
	stored.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	r.accounts[stored.ID] = stored
	return clone(stored), nil
}

func (r *memAccountRepo) live(id string) (*models.Account, bool) {
	a, ok := r.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, false
	}
	return a, true
}

func (r *memAccountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	return clone(a), nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetByEmailErr != nil {
		return nil, r.GetByEmailErr
	}
	for _, a := range r.accounts {
		if a.DeletedAt == nil && a.Email == email {
			return clone(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memAccountRepo) activate(a *models.Account, trackingKey string, now time.Time) {
	a.SignupToken = nil
	a.SignupTokenExpiresAt = nil
	a.ActivatedAt = &now
	a.TrackingKey = &trackingKey
	a.UpdatedAt = now
}

func (r *memAccountRepo) Activate(_ context.Context, token, trackingKey string, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.DeletedAt != nil || a.ActivatedAt != nil || a.SignupToken == nil {
			continue
		}
		if *a.SignupToken == token && a.SignupTokenExpiresAt.After(now) {
			r.activate(a, trackingKey, now)
			return clone(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memAccountRepo) ActivateByID(_ context.Context, id, trackingKey string, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ActivateErr != nil {
		return nil, r.ActivateErr
	}
	a, ok := r.live(id)
	if !ok || a.ActivatedAt != nil {
		return nil, models.ErrNotFound
	}
	r.activate(a, trackingKey, now)
	return clone(a), nil
}

func (r *memAccountRepo) SetResetToken(_ context.Context, id, token string, expiresAt, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	a.ResetToken = &token
	a.ResetTokenExpiresAt = &expiresAt
	a.UpdatedAt = now
	return clone(a), nil
}

func (r *memAccountRepo) GetByResetToken(_ context.Context, token string, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.DeletedAt == nil && a.ResetToken != nil && *a.ResetToken == token && a.ResetTokenExpiresAt.After(now) {
			return clone(a), nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memAccountRepo) RedeemResetToken(_ context.Context, id, token, passwordHash string, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok || a.ResetToken == nil || *a.ResetToken != token || !a.ResetTokenExpiresAt.After(now) {
		return nil, models.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpiresAt = nil
	a.UpdatedAt = now
	return clone(a), nil
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return models.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = now
	return nil
}

func (r *memAccountRepo) UpdateProfile(_ context.Context, id, name string, p models.Profile, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	a.Name = name
	a.Profile = p
	a.UpdatedAt = now
	return clone(a), nil
}

func (r *memAccountRepo) SetStatus(_ context.Context, id string, status models.AccountStatus, now time.Time) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	a.Status = status
	if status == models.StatusDisabled {
		a.DisabledAt = &now
	} else {
		a.DisabledAt = nil
	}
	a.UpdatedAt = now
	return clone(a), nil
}

func (r *memAccountRepo) SoftDelete(_ context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.live(id)
	if !ok {
		return models.ErrNotFound
	}
	a.DeletedAt = &now
	return nil
}

func (r *memAccountRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.accounts[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.accounts, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memAccountRepo) List(_ context.Context, term string, page models.Pagination) ([]*models.Account, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Account
	for _, a := range r.accounts {
		if a.DeletedAt != nil {
			continue
		}
		if term != "" && !strings.Contains(a.Email, term) && !strings.Contains(a.Name, term) {
			continue
		}
		matched = append(matched, clone(a))
	}
	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

type mockMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) last() Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}
	}
	return m.sent[len(m.sent)-1]
}

type memNotificationRepo struct {
	mu    sync.Mutex
	items []*models.Notification
	seq   int
	err   error
}

func (r *memNotificationRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.seq++
	c := *n
	c.ID = fmt.Sprintf("n-%d", r.seq)
	c.CreatedAt = time.Date(2026, 1, 1, 0, 0, r.seq, 0, time.UTC)
	r.items = append(r.items, &c)
	out := c
	return &out, nil
}

func (r *memNotificationRepo) ListForAccount(_ context.Context, accountID string, page models.Pagination) ([]*models.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	var owned []*models.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].ToAccount == accountID {
			c := *r.items[i]
			owned = append(owned, &c)
		}
	}
	total := len(owned)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return owned[start:end], total, nil
}

func (r *memNotificationRepo) ToggleRead(_ context.Context, accountID, id string, now time.Time) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.ToAccount == accountID {
			if n.ReadAt == nil {
				n.ReadAt = &now
			} else {
				n.ReadAt = nil
			}
			c := *n
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memNotificationRepo) Delete(_ context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id && n.ToAccount == accountID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type memAuditRepo struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (r *memAuditRepo) Create(_ context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.logs = append(r.logs, log)
	return log, nil
}

func (r *memAuditRepo) ListForAccount(_ context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if (l.ActorID != nil && *l.ActorID == accountID) || (l.TargetID != nil && *l.TargetID == accountID) {
			out = append(out, l)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAuditRepo) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.EventType)
	}
	return out
}

type revokedToken struct {
	jti       string
	accountID string
	expiresAt time.Time
	reason    string
}

type memRevoker struct {
	mu      sync.Mutex
	revoked []revokedToken
	err     error
}

func (r *memRevoker) RevokeToken(_ context.Context, jti, accountID string, expiresAt time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.revoked = append(r.revoked, revokedToken{jti, accountID, expiresAt, reason})
	return nil
}
