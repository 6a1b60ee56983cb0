package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain/account/deps"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/utils"
)

// Observer receives account gauges.
type Observer interface {
	AccountsSnapshot(total, active, frozen int64)
}

type nopObserver struct{}

func (nopObserver) AccountsSnapshot(int64, int64, int64) {}

// Service implements account registration, listing, removal, refresh and
// statistics on top of the repositories.
type Service struct {
	accounts deps.AccountRepository
	users    deps.UserRepository
	logs     deps.AdminLogRepository
	jobs     deps.ReportJobRepository
	dialer   remote.Dialer
	limits   *config.LimitsConfig
	observer Observer
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService creates the account service
func NewService(
	accounts deps.AccountRepository,
	users deps.UserRepository,
	logs deps.AdminLogRepository,
	jobs deps.ReportJobRepository,
	dialer remote.Dialer,
	limits *config.LimitsConfig,
	observer Observer,
	logger zerolog.Logger,
) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		accounts: accounts,
		users:    users,
		logs:     logs,
		jobs:     jobs,
		dialer:   dialer,
		limits:   limits,
		observer: observer,
		now:      time.Now,
		logger:   logger.With().Str("component", "account_service").Logger(),
	}
}

// CheckCapacity fails when the user or the bot cannot take another account.
func (s *Service) CheckCapacity(ctx context.Context, userID int64) error {
	owned, err := s.accounts.Count(ctx, entities.AccountFilter{UserID: &userID, IsDeleted: entities.Flag(false)})
	if err != nil {
		return err
	}

	limit := s.limits.MaxAccountsPerUser
	if user, err := s.users.Get(ctx, userID); err == nil && user.MaxAccounts > 0 {
		limit = user.MaxAccounts
	} else if err != nil && !errors.Is(err, accounterrors.ErrUserNotFound) {
		return err
	}
	if limit > 0 && owned >= int64(limit) {
		return accounterrors.ErrUserAccountLimit
	}

	active, err := s.accounts.Count(ctx, entities.AccountFilter{IsActive: entities.Flag(true)})
	if err != nil {
		return err
	}
	if s.limits.MaxTotalAccounts > 0 && active >= int64(s.limits.MaxTotalAccounts) {
		return accounterrors.ErrTotalAccountLimit
	}
	return nil
}

// PhoneTaken reports whether a non-deleted account already uses phone.
func (s *Service) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	return s.accounts.ExistsByPhone(ctx, phone)
}

// Registration is the outcome of a completed login.
type Registration struct {
	UserID       int64
	Phone        string
	APIID        int
	APIHash      string
	Name         string
	SessionToken string
	Profile      *remote.Profile
}

// Register stores a new account and links it to its owner. The accounts
// collection is authoritative; a failed link is logged and repaired by the
// next refresh.
func (s *Service) Register(ctx context.Context, reg Registration) (*entities.Account, error) {
	now := s.now()
	account := &entities.Account{
		UserID:        reg.UserID,
		PhoneNumber:   reg.Phone,
		APIID:         reg.APIID,
		APIHash:       reg.APIHash,
		SessionString: reg.SessionToken,
		AccountName:   reg.Name,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p := reg.Profile; p != nil {
		account.TelegramID = p.ID
		account.FirstName = p.FirstName
		account.LastName = p.LastName
		account.Username = p.Username
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.users.AddAccount(ctx, reg.UserID, account.ID); err != nil {
		s.logger.Warn().Err(err).
			Int64("user_id", reg.UserID).
			Str("account_id", account.ID.Hex()).
			Msg("account stored but user link failed, will reconcile on refresh")
	}

	s.logger.Info().
		Int64("user_id", reg.UserID).
		Str("phone", utils.MaskPhoneNumber(reg.Phone)).
		Str("account_id", account.ID.Hex()).
		Msg("account registered")
	return account, nil
}

// ActiveAccounts lists usable accounts, all of them or one user's.
func (s *Service) ActiveAccounts(ctx context.Context, userID *int64) ([]*entities.Account, error) {
	return s.accounts.List(ctx, entities.AccountFilter{
		UserID:    userID,
		IsActive:  entities.Flag(true),
		IsDeleted: entities.Flag(false),
	}, 0, 0)
}

// Page is one page of an account listing.
type Page struct {
	Accounts []*entities.Account
	Page     int
	Pages    int
	Total    int64
	Offset   int
}

// ListPage returns page (0-based) of non-deleted accounts. perPage <= 0
// returns every account on a single page.
func (s *Service) ListPage(ctx context.Context, userID *int64, page, perPage int) (*Page, error) {
	filter := entities.AccountFilter{UserID: userID, IsDeleted: entities.Flag(false)}
	total, err := s.accounts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	if perPage <= 0 {
		accounts, err := s.accounts.List(ctx, filter, 0, 0)
		if err != nil {
			return nil, err
		}
		return &Page{Accounts: accounts, Pages: 1, Total: total}, nil
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 0), pages-1)

	accounts, err := s.accounts.List(ctx, filter, page*perPage, perPage)
	if err != nil {
		return nil, err
	}
	return &Page{Accounts: accounts, Page: page, Pages: pages, Total: total, Offset: page * perPage}, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*entities.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// MarkUsed records that the account just served a task.
func (s *Service) MarkUsed(ctx context.Context, id primitive.ObjectID) {
	if err := s.accounts.MarkUsed(ctx, id, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("account_id", id.Hex()).Msg("failed to mark account used")
	}
}

// Removal scopes
type RemoveScope string

const (
	RemoveAll      RemoveScope = "all"
	RemoveInactive RemoveScope = "inactive"
)

// Remove soft deletes accounts in scope, optionally limited to one owner.
func (s *Service) Remove(ctx context.Context, owner *int64, scope RemoveScope) (int64, error) {
	filter := entities.AccountFilter{UserID: owner}
	if scope == RemoveInactive {
		filter.IsActive = entities.Flag(false)
	}
	return s.accounts.SoftDelete(ctx, filter)
}

// RemoveByNumbers soft deletes accounts by their 1-based position in the
// listing of non-deleted accounts, optionally limited to one owner.
func (s *Service) RemoveByNumbers(ctx context.Context, owner *int64, input string) (int64, error) {
	accounts, err := s.accounts.List(ctx, entities.AccountFilter{UserID: owner, IsDeleted: entities.Flag(false)}, 0, 0)
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, accounterrors.ErrNoAccounts
	}

	numbers, err := utils.ParseNumberList(input, len(accounts))
	if err != nil {
		return 0, err
	}

	ids := make([]primitive.ObjectID, 0, len(numbers))
	for _, n := range numbers {
		ids = append(ids, accounts[n-1].ID)
	}
	return s.accounts.SoftDeleteIDs(ctx, ids)
}

// RemoveOne soft deletes a single account if owner matches (nil owner skips
// the check).
func (s *Service) RemoveOne(ctx context.Context, owner *int64, id primitive.ObjectID) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.IsDeleted || (owner != nil && account.UserID != *owner) {
		return accounterrors.ErrAccountNotFound
	}
	_, err = s.accounts.SoftDeleteIDs(ctx, []primitive.ObjectID{id})
	return err
}

// Audit appends an admin action. Failures are logged only.
func (s *Service) Audit(ctx context.Context, adminID int64, action string, details map[string]any) {
	entry := &entities.AdminLog{
		AdminID:   adminID,
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	}
	if target, ok := details["target_user_id"].(int64); ok {
		entry.TargetUserID = target
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		s.logger.Error().Err(err).Int64("admin_id", adminID).Str("action", action).Msg("failed to write admin log")
	}
}

// Stats aggregates store counters.
type Stats struct {
	TotalAccounts    int64
	ActiveAccounts   int64
	FrozenAccounts   int64
	DeletedAccounts  int64
	TotalUsers       int64
	Admins           int
	AdminActions     int64
	ReportJobs       int64
	RunningReports   int64
	CompletedReports int64
}

// Stats collects counters; per-counter failures abort.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var err error

	count := func(dst *int64, f entities.AccountFilter) {
		if err == nil {
			*dst, err = s.accounts.Count(ctx, f)
		}
	}
	count(&st.TotalAccounts, entities.AccountFilter{IsDeleted: entities.Flag(false)})
	count(&st.ActiveAccounts, entities.AccountFilter{IsActive: entities.Flag(true), IsDeleted: entities.Flag(false)})
	count(&st.FrozenAccounts, entities.AccountFilter{IsFrozen: entities.Flag(true), IsDeleted: entities.Flag(false)})
	count(&st.DeletedAccounts, entities.AccountFilter{IsDeleted: entities.Flag(true)})
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}

	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	st.Admins = len(admins)

	if st.AdminActions, err = s.logs.Count(ctx); err != nil {
		return nil, fmt.Errorf("count admin logs: %w", err)
	}
	if st.ReportJobs, err = s.jobs.CountByStatus(ctx, ""); err != nil {
		return nil, fmt.Errorf("count report jobs: %w", err)
	}
	if st.RunningReports, err = s.jobs.CountByStatus(ctx, entities.ReportRunning); err != nil {
		return nil, fmt.Errorf("count report jobs: %w", err)
	}
	if st.CompletedReports, err = s.jobs.CountByStatus(ctx, entities.ReportCompleted); err != nil {
		return nil, fmt.Errorf("count report jobs: %w", err)
	}

	s.observer.AccountsSnapshot(st.TotalAccounts, st.ActiveAccounts, st.FrozenAccounts)
	return &st, nil
}
