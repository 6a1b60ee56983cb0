package entities

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a registered remote user account.
// Deleted accounts are never active. Frozen accounts are never active.
type Account struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        int64              `bson:"user_id"`
	PhoneNumber   string             `bson:"phone_number"`
	APIID         int                `bson:"api_id"`
	APIHash       string             `bson:"api_hash"`
	SessionString string             `bson:"session_string"`
	AccountName   string             `bson:"account_name"`
	TelegramID    int64              `bson:"telegram_id,omitempty"`
	FirstName     string             `bson:"first_name,omitempty"`
	LastName      string             `bson:"last_name,omitempty"`
	Username      string             `bson:"username,omitempty"`
	IsActive      bool               `bson:"is_active"`
	IsFrozen      bool               `bson:"is_frozen"`
	IsDeleted     bool               `bson:"is_deleted"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	LastUsed      *time.Time         `bson:"last_used,omitempty"`
}

// DisplayName returns the label shown in account lists.
func (a *Account) DisplayName() string {
	if a.AccountName != "" {
		return a.AccountName
	}
	if name := strings.TrimSpace(a.FirstName + " " + a.LastName); name != "" {
		return name
	}
	return a.PhoneNumber
}

// StatusIcon summarises the account flags for lists.
func (a *Account) StatusIcon() string {
	switch {
	case a.IsDeleted:
		return "🗑"
	case a.IsFrozen:
		return "🧊"
	case a.IsActive:
		return "✅"
	default:
		return "❌"
	}
}

// AccountFilter selects accounts. Nil fields are not constrained.
type AccountFilter struct {
	UserID    *int64
	IsActive  *bool
	IsFrozen  *bool
	IsDeleted *bool
	Phone     string
}

// Flag is a small helper for building filters.
func Flag(v bool) *bool { return &v }

// UserRef is a helper for building filters.
func UserRef(id int64) *int64 { return &id }

// AccountStatus is a partial update of the status flags after a refresh.
type AccountStatus struct {
	IsActive bool
	IsFrozen bool
	Profile  *Profile
}

// Profile mirrors the remote self info stored on the account.
type Profile struct {
	TelegramID int64
	FirstName  string
	LastName   string
	Username   string
}
