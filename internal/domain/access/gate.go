// Package access decides owner and admin privileges.
package access

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

var (
	ErrAdminOnly = pkgerrors.NewPermissionError("Admin only command")
	ErrOwnerOnly = pkgerrors.NewPermissionError("Owner only command")
)

// UserFinder is the slice of the user repository the gate needs.
type UserFinder interface {
	Get(ctx context.Context, userID int64) (*entities.User, error)
}

// Gate answers role questions with a fresh lookup on every call so flag
// changes apply immediately.
type Gate struct {
	ownerID int64
	users   UserFinder
	logger  zerolog.Logger
}

func NewGate(cfg *config.TelegramConfig, users UserFinder, logger zerolog.Logger) *Gate {
	return &Gate{
		ownerID: cfg.OwnerID,
		users:   users,
		logger:  logger.With().Str("component", "access_gate").Logger(),
	}
}

func (g *Gate) IsOwner(userID int64) bool {
	return userID == g.ownerID
}

// IsAdmin is true for the configured owner and otherwise equals the stored
// admin flag. A stored owner flag grants nothing. Lookup failures deny.
func (g *Gate) IsAdmin(ctx context.Context, userID int64) bool {
	if g.IsOwner(userID) {
		return true
	}

	user, err := g.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, accounterrors.ErrUserNotFound) {
			g.logger.Error().Err(err).Int64("user_id", userID).Msg("admin lookup failed")
		}
		return false
	}
	return user.IsAdmin
}

func (g *Gate) RequireAdmin(ctx context.Context, userID int64) error {
	if !g.IsAdmin(ctx, userID) {
		return ErrAdminOnly
	}
	return nil
}

func (g *Gate) RequireOwner(userID int64) error {
	if !g.IsOwner(userID) {
		return ErrOwnerOnly
	}
	return nil
}

// OwnerID returns the configured owner.
func (g *Gate) OwnerID() int64 {
	return g.ownerID
}
