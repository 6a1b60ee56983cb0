// Package deps contains interface definitions for account persistence
package deps

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
)

// AccountRepository defines data access for the accounts collection
type AccountRepository interface {
	// Create inserts the account and sets its ID
	Create(ctx context.Context, account *entities.Account) error

	// GetByID returns ErrAccountNotFound when no document matches
	GetByID(ctx context.Context, id primitive.ObjectID) (*entities.Account, error)

	// ExistsByPhone reports whether a non-deleted account uses phone
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// List returns accounts ordered by creation time. limit <= 0 means no limit
	List(ctx context.Context, filter entities.AccountFilter, skip, limit int) ([]*entities.Account, error)

	// Count counts accounts matching filter
	Count(ctx context.Context, filter entities.AccountFilter) (int64, error)

	// UpdateStatus stores the result of a liveness check
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entities.AccountStatus) error

	// MarkUsed sets last_used
	MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// SoftDelete flags matching accounts deleted and inactive, returning the number changed
	SoftDelete(ctx context.Context, filter entities.AccountFilter) (int64, error)

	// SoftDeleteIDs flags the given accounts deleted and inactive
	SoftDeleteIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// UserRepository defines data access for the users collection
type UserRepository interface {
	// Get returns ErrUserNotFound when the user was never stored
	Get(ctx context.Context, userID int64) (*entities.User, error)

	// Touch upserts the user's profile fields
	Touch(ctx context.Context, userID int64, username, firstName string) error

	// AddAccount adds accountID to the user's account list, creating the user if needed
	AddAccount(ctx context.Context, userID int64, accountID primitive.ObjectID) error

	// SetAccounts replaces the user's account list
	SetAccounts(ctx context.Context, userID int64, ids []primitive.ObjectID) error

	// SetAdmin sets the admin flag, creating the user if needed
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error

	// ListAdmins returns users flagged as admin
	ListAdmins(ctx context.Context) ([]*entities.User, error)

	// SetLogChannel stores the personal log channel; 0 removes it
	SetLogChannel(ctx context.Context, userID int64, channelID int64) error

	// Count counts stored users
	Count(ctx context.Context) (int64, error)
}

// AdminLogRepository defines data access for the audit trail
type AdminLogRepository interface {
	// Insert appends an entry
	Insert(ctx context.Context, entry *entities.AdminLog) error

	// Count counts entries
	Count(ctx context.Context) (int64, error)
}

// ReportJobRepository defines data access for report jobs
type ReportJobRepository interface {
	// Create inserts the job and sets its ID
	Create(ctx context.Context, job *entities.ReportJob) error

	// UpdateStatus sets status and totals; completedAt is stored when non-nil
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status entities.ReportStatus, totalReports int, completedAt *time.Time) error

	// Get returns ErrReportJobNotFound when no job matches
	Get(ctx context.Context, id primitive.ObjectID) (*entities.ReportJob, error)

	// CountByStatus counts jobs in status; empty status counts all
	CountByStatus(ctx context.Context, status entities.ReportStatus) (int64, error)
}

// SettingsRepository defines data access for the bot_config document
type SettingsRepository interface {
	// LogChannels returns stored channel overrides keyed by log kind
	LogChannels(ctx context.Context) (map[entities.LogKind]int64, error)

	// SetLogChannel stores an override; 0 disables the channel
	SetLogChannel(ctx context.Context, kind entities.LogKind, channelID int64) error
}

// Pinger reports storage reachability for health checks
type Pinger interface {
	Ping(ctx context.Context) error
}
