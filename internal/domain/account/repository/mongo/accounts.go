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

// Collection names
const (
	AccountsCollection   = "accounts"
	UsersCollection      = "users"
	AdminLogsCollection  = "admin_logs"
	ReportJobsCollection = "report_jobs"
	SettingsCollection   = "bot_config"
)

// accountRepository implements deps.AccountRepository on MongoDB
type accountRepository struct {
	coll *mongo.Collection
}

// NewAccountRepository creates a MongoDB account repository
func NewAccountRepository(db *mongo.Database) deps.AccountRepository {
	return &accountRepository{coll: db.Collection(AccountsCollection)}
}

func accountFilter(f entities.AccountFilter) bson.M {
	m := bson.M{}
	if f.UserID != nil {
		m["user_id"] = *f.UserID
	}
	if f.IsActive != nil {
		m["is_active"] = *f.IsActive
	}
	if f.IsFrozen != nil {
		m["is_frozen"] = *f.IsFrozen
	}
	if f.IsDeleted != nil {
		m["is_deleted"] = *f.IsDeleted
	}
	if f.Phone != "" {
		m["phone_number"] = f.Phone
	}
	return m
}

func (r *accountRepository) Create(ctx context.Context, account *entities.Account) error {
	res, err := r.coll.InsertOne(ctx, account)
	if err != nil {
		return storeError(err, "failed to insert account")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = id
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entities.Account, error) {
	var account entities.Account
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&account); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accounterrors.ErrAccountNotFound
		}
		return nil, storeError(err, "failed to get account")
	}
	return &account, nil
}

func (r *accountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx,
		bson.M{"phone_number": phone, "is_deleted": bson.M{"$ne": true}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, storeError(err, "failed to check phone")
	}
	return n > 0, nil
}

func (r *accountRepository) List(ctx context.Context, filter entities.AccountFilter, skip, limit int) ([]*entities.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, accountFilter(filter), opts)
	if err != nil {
		return nil, storeError(err, "failed to list accounts")
	}

	var accounts []*entities.Account
	if err := cur.All(ctx, &accounts); err != nil {
		return nil, storeError(err, "failed to decode accounts")
	}
	return accounts, nil
}

func (r *accountRepository) Count(ctx context.Context, filter entities.AccountFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, accountFilter(filter))
	if err != nil {
		return 0, storeError(err, "failed to count accounts")
	}
	return n, nil
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entities.AccountStatus) error {
	set := bson.M{
		"is_active":  status.IsActive && !status.IsFrozen,
		"is_frozen":  status.IsFrozen,
		"updated_at": time.Now(),
	}
	if p := status.Profile; p != nil {
		set["telegram_id"] = p.TelegramID
		set["first_name"] = p.FirstName
		set["last_name"] = p.LastName
		set["username"] = p.Username
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}, bson.M{"$set": set})
	if err != nil {
		return storeError(err, "failed to update account status")
	}
	if res.MatchedCount == 0 {
		return accounterrors.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_used": at}}); err != nil {
		return storeError(err, "failed to mark account used")
	}
	return nil
}

func softDeleteUpdate() bson.M {
	return bson.M{"$set": bson.M{"is_deleted": true, "is_active": false, "updated_at": time.Now()}}
}

func (r *accountRepository) SoftDelete(ctx context.Context, filter entities.AccountFilter) (int64, error) {
	f := accountFilter(filter)
	f["is_deleted"] = bson.M{"$ne": true}

	res, err := r.coll.UpdateMany(ctx, f, softDeleteUpdate())
	if err != nil {
		return 0, storeError(err, "failed to delete accounts")
	}
	return res.ModifiedCount, nil
}

func (r *accountRepository) SoftDeleteIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "is_deleted": bson.M{"$ne": true}},
		softDeleteUpdate(),
	)
	if err != nil {
		return 0, storeError(err, "failed to delete accounts")
	}
	return res.ModifiedCount, nil
}
