// Package database contains the MongoDB connection and schema setup
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Devensh22345/account-manage/config"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName("account-manager").
		SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Indexes lists the indexes each collection needs.
var Indexes = map[string][]mongo.IndexModel{
	"users": {
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_admin", Value: 1}}},
	},
	"accounts": {
		{Keys: bson.D{{Key: "phone_number", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "is_frozen", Value: 1}}},
	},
	"admin_logs": {
		{Keys: bson.D{{Key: "admin_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	},
	"report_jobs": {
		{Keys: bson.D{{Key: "admin_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	},
}

// EnsureIndexes creates missing indexes. Existing identical indexes are a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range Indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
