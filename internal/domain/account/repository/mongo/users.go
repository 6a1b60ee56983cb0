package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Devensh22345/account-manage/internal/domain/account/deps"
	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	accounterrors "github.com/Devensh22345/account-manage/internal/domain/account/errors"
)

// userRepository implements deps.UserRepository on MongoDB
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a MongoDB user repository
func NewUserRepository(db *mongo.Database) deps.UserRepository {
	return &userRepository{coll: db.Collection(UsersCollection)}
}

func (r *userRepository) Get(ctx context.Context, userID int64) (*entities.User, error) {
	var user entities.User
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accounterrors.ErrUserNotFound
		}
		return nil, storeError(err, "failed to get user")
	}
	return &user, nil
}

// upsert applies update to the user's document, creating it with defaults
// when missing.
func (r *userRepository) upsert(ctx context.Context, userID int64, update bson.M) error {
	now := time.Now()

	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = now
	update["$set"] = set

	onInsert := bson.M{"created_at": now}
	for field, def := range map[string]any{"is_admin": false, "is_owner": false, "accounts": bson.A{}} {
		if !touches(update, field) {
			onInsert[field] = def
		}
	}
	update["$setOnInsert"] = onInsert

	_, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	return err
}

func touches(update bson.M, field string) bool {
	for _, op := range update {
		if m, ok := op.(bson.M); ok {
			if _, ok := m[field]; ok {
				return true
			}
		}
	}
	return false
}

func (r *userRepository) Touch(ctx context.Context, userID int64, username, firstName string) error {
	set := bson.M{}
	if username != "" {
		set["username"] = username
	}
	if firstName != "" {
		set["first_name"] = firstName
	}
	if err := r.upsert(ctx, userID, bson.M{"$set": set}); err != nil {
		return storeError(err, "failed to touch user")
	}
	return nil
}

func (r *userRepository) AddAccount(ctx context.Context, userID int64, accountID primitive.ObjectID) error {
	if err := r.upsert(ctx, userID, bson.M{"$addToSet": bson.M{"accounts": accountID}}); err != nil {
		return storeError(err, "failed to add account to user")
	}
	return nil
}

func (r *userRepository) SetAccounts(ctx context.Context, userID int64, ids []primitive.ObjectID) error {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	if err := r.upsert(ctx, userID, bson.M{"$set": bson.M{"accounts": ids}}); err != nil {
		return storeError(err, "failed to set user accounts")
	}
	return nil
}

func (r *userRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	if err := r.upsert(ctx, userID, bson.M{"$set": bson.M{"is_admin": isAdmin}}); err != nil {
		return storeError(err, "failed to set admin flag")
	}
	return nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]*entities.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"is_admin": true}, options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}}))
	if err != nil {
		return nil, storeError(err, "failed to list admins")
	}

	var users []*entities.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, storeError(err, "failed to decode admins")
	}
	return users, nil
}

func (r *userRepository) SetLogChannel(ctx context.Context, userID int64, channelID int64) error {
	update := bson.M{"$set": bson.M{"log_channel": channelID}}
	if channelID == 0 {
		update = bson.M{"$unset": bson.M{"log_channel": ""}}
	}
	if err := r.upsert(ctx, userID, update); err != nil {
		return storeError(err, "failed to set log channel")
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeError(err, "failed to count users")
	}
	return n, nil
}
