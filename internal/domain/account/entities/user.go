package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a human interacting with the bot.
type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	UserID      int64                `bson:"user_id"`
	Username    string               `bson:"username,omitempty"`
	FirstName   string               `bson:"first_name,omitempty"`
	IsAdmin     bool                 `bson:"is_admin"`
	IsOwner     bool                 `bson:"is_owner"`
	Accounts    []primitive.ObjectID `bson:"accounts"`
	LogChannel  int64                `bson:"log_channel,omitempty"`
	MaxAccounts int                  `bson:"max_accounts,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}
