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

type adminLogRepository struct {
	coll *mongo.Collection
}

// NewAdminLogRepository creates a MongoDB audit log repository
func NewAdminLogRepository(db *mongo.Database) deps.AdminLogRepository {
	return &adminLogRepository{coll: db.Collection(AdminLogsCollection)}
}

func (r *adminLogRepository) Insert(ctx context.Context, entry *entities.AdminLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return storeError(err, "failed to insert admin log")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

func (r *adminLogRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeError(err, "failed to count admin logs")
	}
	return n, nil
}

type reportJobRepository struct {
	coll *mongo.Collection
}

// NewReportJobRepository creates a MongoDB report job repository
func NewReportJobRepository(db *mongo.Database) deps.ReportJobRepository {
	return &reportJobRepository{coll: db.Collection(ReportJobsCollection)}
}

func (r *reportJobRepository) Create(ctx context.Context, job *entities.ReportJob) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, job)
	if err != nil {
		return storeError(err, "failed to insert report job")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		job.ID = id
	}
	return nil
}

func (r *reportJobRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status entities.ReportStatus, totalReports int, completedAt *time.Time) error {
	set := bson.M{"status": status, "total_reports": totalReports}
	if completedAt != nil {
		set["completed_at"] = *completedAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return storeError(err, "failed to update report job")
	}
	if res.MatchedCount == 0 {
		return accounterrors.ErrReportJobNotFound
	}
	return nil
}

func (r *reportJobRepository) Get(ctx context.Context, id primitive.ObjectID) (*entities.ReportJob, error) {
	var job entities.ReportJob
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accounterrors.ErrReportJobNotFound
		}
		return nil, storeError(err, "failed to get report job")
	}
	return &job, nil
}

func (r *reportJobRepository) CountByStatus(ctx context.Context, status entities.ReportStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storeError(err, "failed to count report jobs")
	}
	return n, nil
}

type settingsRepository struct {
	coll *mongo.Collection
}

// NewSettingsRepository creates a MongoDB bot_config repository
func NewSettingsRepository(db *mongo.Database) deps.SettingsRepository {
	return &settingsRepository{coll: db.Collection(SettingsCollection)}
}

func (r *settingsRepository) LogChannels(ctx context.Context) (map[entities.LogKind]int64, error) {
	var doc entities.BotSettings
	err := r.coll.FindOne(ctx, bson.M{"_id": entities.SettingsID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return map[entities.LogKind]int64{}, nil
	}
	if err != nil {
		return nil, storeError(err, "failed to load bot settings")
	}

	out := make(map[entities.LogKind]int64, len(doc.LogChannels))
	for k, v := range doc.LogChannels {
		out[entities.LogKind(k)] = v
	}
	return out, nil
}

func (r *settingsRepository) SetLogChannel(ctx context.Context, kind entities.LogKind, channelID int64) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": entities.SettingsID},
		bson.M{"$set": bson.M{"log_channels." + string(kind): channelID, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return storeError(err, "failed to set log channel")
	}
	return nil
}
