// Package memory implements the account repositories in process memory.
// It backs STORAGE_DRIVER=memory and the use case tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/deps"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
)

// Store holds every collection behind one lock.
type Store struct {
	mu       sync.RWMutex
	accounts map[primitive.ObjectID]*entities.Account
	users    map[int64]*entities.User
	logs     []*entities.AdminLog
	jobs     map[primitive.ObjectID]*entities.ReportJob
	channels map[entities.LogKind]int64
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[primitive.ObjectID]*entities.Account),
		users:    make(map[int64]*entities.User),
		jobs:     make(map[primitive.ObjectID]*entities.ReportJob),
		channels: make(map[entities.LogKind]int64),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// Accounts returns the store as a deps.AccountRepository.
func (s *Store) Accounts() deps.AccountRepository { return (*accountRepository)(s) }

func (s *Store) Users() deps.UserRepository { return (*userRepository)(s) }

func (s *Store) AdminLogs() deps.AdminLogRepository { return (*adminLogRepository)(s) }

func (s *Store) ReportJobs() deps.ReportJobRepository { return (*reportJobRepository)(s) }

func (s *Store) Settings() deps.SettingsRepository { return (*settingsRepository)(s) }

type accountRepository Store

func matches(a *entities.Account, f entities.AccountFilter) bool {
	switch {
	case f.UserID != nil && a.UserID != *f.UserID:
		return false
	case f.IsActive != nil && a.IsActive != *f.IsActive:
		return false
	case f.IsFrozen != nil && a.IsFrozen != *f.IsFrozen:
		return false
	case f.IsDeleted != nil && a.IsDeleted != *f.IsDeleted:
		return false
	case f.Phone != "" && a.PhoneNumber != f.Phone:
		return false
	}
	return true
}

func (r *accountRepository) Create(_ context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	cp := *account
	r.accounts[cp.ID] = &cp
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, accounterrors.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *accountRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.PhoneNumber == phone && !a.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepository) List(_ context.Context, filter entities.AccountFilter, skip, limit int) ([]*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.Account
	for _, a := range r.accounts {
		if matches(a, filter) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})

	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *accountRepository) Count(_ context.Context, filter entities.AccountFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, a := range r.accounts {
		if matches(a, filter) {
			n++
		}
	}
	return n, nil
}

func (r *accountRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status entities.AccountStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.IsDeleted {
		return accounterrors.ErrAccountNotFound
	}
	a.IsActive = status.IsActive && !status.IsFrozen
	a.IsFrozen = status.IsFrozen
	if p := status.Profile; p != nil {
		a.TelegramID = p.TelegramID
		a.FirstName = p.FirstName
		a.LastName = p.LastName
		a.Username = p.Username
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (r *accountRepository) MarkUsed(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.accounts[id]; ok {
		a.LastUsed = &at
	}
	return nil
}

func (r *accountRepository) SoftDelete(_ context.Context, filter entities.AccountFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, a := range r.accounts {
		if !a.IsDeleted && matches(a, filter) {
			a.IsDeleted, a.IsActive, a.UpdatedAt = true, false, time.Now()
			n++
		}
	}
	return n, nil
}

func (r *accountRepository) SoftDeleteIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok && !a.IsDeleted {
			a.IsDeleted, a.IsActive, a.UpdatedAt = true, false, time.Now()
			n++
		}
	}
	return n, nil
}

type userRepository Store

// user must be called with the lock held.
func (r *userRepository) user(userID int64) *entities.User {
	u, ok := r.users[userID]
	if !ok {
		now := time.Now()
		u = &entities.User{
			ID:        primitive.NewObjectID(),
			UserID:    userID,
			Accounts:  []primitive.ObjectID{},
			CreatedAt: now,
		}
		r.users[userID] = u
	}
	u.UpdatedAt = time.Now()
	return u
}

func (r *userRepository) Get(_ context.Context, userID int64) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, accounterrors.ErrUserNotFound
	}
	cp := *u
	cp.Accounts = append([]primitive.ObjectID(nil), u.Accounts...)
	return &cp, nil
}

func (r *userRepository) Touch(_ context.Context, userID int64, username, firstName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.user(userID)
	if username != "" {
		u.Username = username
	}
	if firstName != "" {
		u.FirstName = firstName
	}
	return nil
}

func (r *userRepository) AddAccount(_ context.Context, userID int64, accountID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.user(userID)
	for _, id := range u.Accounts {
		if id == accountID {
			return nil
		}
	}
	u.Accounts = append(u.Accounts, accountID)
	return nil
}

func (r *userRepository) SetAccounts(_ context.Context, userID int64, ids []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user(userID).Accounts = append([]primitive.ObjectID{}, ids...)
	return nil
}

func (r *userRepository) SetAdmin(_ context.Context, userID int64, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user(userID).IsAdmin = isAdmin
	return nil
}

func (r *userRepository) ListAdmins(_ context.Context) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entities.User
	for _, u := range r.users {
		if u.IsAdmin {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *userRepository) SetLogChannel(_ context.Context, userID int64, channelID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user(userID).LogChannel = channelID
	return nil
}

func (r *userRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

type adminLogRepository Store

func (r *adminLogRepository) Insert(_ context.Context, entry *entities.AdminLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := *entry
	r.logs = append(r.logs, &cp)
	return nil
}

func (r *adminLogRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.logs)), nil
}

type reportJobRepository Store

func (r *reportJobRepository) Create(_ context.Context, job *entities.ReportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.ID = primitive.NewObjectID()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *reportJobRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, status entities.ReportStatus, totalReports int, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return accounterrors.ErrReportJobNotFound
	}
	job.Status = status
	job.TotalReports = totalReports
	if completedAt != nil {
		t := *completedAt
		job.CompletedAt = &t
	}
	return nil
}

func (r *reportJobRepository) Get(_ context.Context, id primitive.ObjectID) (*entities.ReportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, accounterrors.ErrReportJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (r *reportJobRepository) CountByStatus(_ context.Context, status entities.ReportStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, job := range r.jobs {
		if status == "" || job.Status == status {
			n++
		}
	}
	return n, nil
}

type settingsRepository Store

func (r *settingsRepository) LogChannels(_ context.Context) (map[entities.LogKind]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[entities.LogKind]int64, len(r.channels))
	for k, v := range r.channels {
		out[k] = v
	}
	return out, nil
}

func (r *settingsRepository) SetLogChannel(_ context.Context, kind entities.LogKind, channelID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels[kind] = channelID
	return nil
}
