package business

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/utils"
)

// RefreshReport summarises a liveness check.
type RefreshReport struct {
	Checked  int
	Active   int
	Frozen   int
	Inactive int
}

// Refresh checks every non-deleted account in scope (nil owner means all)
// with at most MaxWorkers concurrent connections, stores the new flags and
// rebuilds the owners' account lists.
func (s *Service) Refresh(ctx context.Context, owner *int64) (*RefreshReport, error) {
	accounts, err := s.accounts.List(ctx, entities.AccountFilter{UserID: owner, IsDeleted: entities.Flag(false)}, 0, 0)
	if err != nil {
		return nil, err
	}

	report := &RefreshReport{Checked: len(accounts)}
	if len(accounts) == 0 {
		return report, nil
	}

	maxConcurrent := s.limits.MaxWorkers
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	s.logger.Info().
		Int("count", len(accounts)).
		Int("max_concurrent", maxConcurrent).
		Msg("starting account refresh")

	var (
		wg        sync.WaitGroup
		reportMu  sync.Mutex
		semaphore = make(chan struct{}, maxConcurrent)
	)

	for _, account := range accounts {
		wg.Add(1)
		go func(acc *entities.Account) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				return
			}

			status := s.check(ctx, acc)
			if err := s.accounts.UpdateStatus(ctx, acc.ID, status); err != nil {
				s.logger.Error().Err(err).Str("account_id", acc.ID.Hex()).Msg("failed to store account status")
			}

			reportMu.Lock()
			switch {
			case status.IsFrozen:
				report.Frozen++
			case status.IsActive:
				report.Active++
			default:
				report.Inactive++
			}
			reportMu.Unlock()
		}(account)
	}
	wg.Wait()

	s.reconcileOwners(ctx, accounts)

	s.logger.Info().
		Int("active", report.Active).
		Int("frozen", report.Frozen).
		Int("inactive", report.Inactive).
		Msg("account refresh finished")
	return report, ctx.Err()
}

// check dials the account and asks for its own profile. A rate limit marks
// the account frozen; any other failure marks it inactive.
func (s *Service) check(ctx context.Context, acc *entities.Account) entities.AccountStatus {
	log := s.logger.With().Str("phone", utils.MaskPhoneNumber(acc.PhoneNumber)).Logger()

	sess, err := s.dialer.Dial(ctx, remote.Credentials{
		APIID:        acc.APIID,
		APIHash:      acc.APIHash,
		SessionToken: acc.SessionString,
	})
	if err == nil {
		defer sess.Close()
		var profile *remote.Profile
		if profile, err = sess.Self(ctx); err == nil {
			return entities.AccountStatus{
				IsActive: true,
				Profile: &entities.Profile{
					TelegramID: profile.ID,
					FirstName:  profile.FirstName,
					LastName:   profile.LastName,
					Username:   profile.Username,
				},
			}
		}
	}

	if remote.KindOf(err) == remote.KindRateLimited {
		log.Warn().Err(err).Msg("account is rate limited, marking frozen")
		return entities.AccountStatus{IsFrozen: true}
	}
	log.Warn().Err(err).Msg("account check failed, marking inactive")
	return entities.AccountStatus{}
}

// reconcileOwners rewrites user.accounts from the accounts collection.
func (s *Service) reconcileOwners(ctx context.Context, checked []*entities.Account) {
	owners := make(map[int64]struct{})
	for _, acc := range checked {
		owners[acc.UserID] = struct{}{}
	}

	for userID := range owners {
		owned, err := s.accounts.List(ctx, entities.AccountFilter{UserID: &userID, IsDeleted: entities.Flag(false)}, 0, 0)
		if err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to list accounts for reconcile")
			continue
		}
		ids := make([]primitive.ObjectID, 0, len(owned))
		for _, acc := range owned {
			ids = append(ids, acc.ID)
		}
		if err := s.users.SetAccounts(ctx, userID, ids); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to reconcile user accounts")
		}
	}
}

// ObserveFailure applies a remote error seen by a task to the account's
// flags. A rate limit marks the account frozen and a revoked session marks it
// inactive; other errors leave the flags alone. It reports whether the flags
// changed.
func (s *Service) ObserveFailure(ctx context.Context, acc *entities.Account, err error) bool {
	var status entities.AccountStatus
	switch remote.KindOf(err) {
	case remote.KindRateLimited:
		status.IsFrozen = true
	case remote.KindUnauthorized:
	default:
		return false
	}

	log := s.logger.With().
		Str("account_id", acc.ID.Hex()).
		Str("phone", utils.MaskPhoneNumber(acc.PhoneNumber)).
		Logger()
	if uerr := s.accounts.UpdateStatus(ctx, acc.ID, status); uerr != nil {
		log.Error().Err(uerr).Msg("failed to store account status")
		return false
	}
	log.Warn().Err(err).Bool("frozen", status.IsFrozen).Msg("account disabled after task failure")
	return true
}
