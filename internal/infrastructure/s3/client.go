package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/config"
)

// Client wraps MinIO client with session archive and media staging
type Client struct {
	client *minio.Client
	bucket string
	logger zerolog.Logger
}

// NewClient creates a new S3/MinIO client
func NewClient(cfg *config.S3Config, logger zerolog.Logger) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With().Str("component", "s3").Logger(),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist. The bucket holds
// session material and stays private.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	c.logger.Info().Str("bucket", c.bucket).Msg("created S3 bucket")
	return nil
}

type sessionBackup struct {
	UserID       int64     `json:"user_id"`
	Phone        string    `json:"phone"`
	APIID        int       `json:"api_id"`
	SessionToken string    `json:"session_string"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArchiveSession stores a backup of a newly registered session.
// Path structure: sessions/{user_id}/{YYYY}/{MM}/{DD}/{phone}_{unix}.json
func (c *Client) ArchiveSession(ctx context.Context, userID int64, phone string, apiID int, token string) error {
	now := time.Now().UTC()
	data, err := json.Marshal(sessionBackup{
		UserID:       userID,
		Phone:        phone,
		APIID:        apiID,
		SessionToken: token,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session backup: %w", err)
	}

	key := fmt.Sprintf("sessions/%d/%d/%02d/%02d/%s_%d.json",
		userID, now.Year(), now.Month(), now.Day(), phone, now.Unix())

	if _, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("failed to upload session backup: %w", err)
	}

	c.logger.Debug().Int64("user_id", userID).Str("object_key", key).Msg("archived session")
	return nil
}

// PutMedia stages an uploaded file and returns its key.
func (c *Client) PutMedia(ctx context.Context, userID int64, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("media/%d/%s", userID, uuid.NewString())

	if _, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("failed to upload media to S3: %w", err)
	}

	c.logger.Debug().Int64("user_id", userID).Str("object_key", key).Int("size", len(data)).Msg("staged media")
	return key, nil
}

// GetMedia reads a staged file.
func (c *Client) GetMedia(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get media from S3: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read media from S3: %w", err)
	}
	return data, nil
}

// DeleteMedia deletes a staged file
func (c *Client) DeleteMedia(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete media from S3: %w", err)
	}
	c.logger.Debug().Str("object_key", key).Msg("deleted media from S3")
	return nil
}
