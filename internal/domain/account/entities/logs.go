package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminLog is an append-only audit record.
type AdminLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AdminID      int64              `bson:"admin_id"`
	Action       string             `bson:"action"`
	Details      map[string]any     `bson:"details,omitempty"`
	TargetUserID int64              `bson:"target_user_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// ReportStatus is the lifecycle of a ReportJob.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportRunning   ReportStatus = "running"
	ReportCompleted ReportStatus = "completed"
	ReportStopped   ReportStatus = "stopped"
)

// ReportJob records one report wizard run.
type ReportJob struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	AdminID      int64                `bson:"admin_id"`
	TargetType   string               `bson:"target_type"`
	Target       string               `bson:"target"`
	Reason       string               `bson:"reason"`
	Description  string               `bson:"description,omitempty"`
	ReportCount  int                  `bson:"report_count"`
	AccountsUsed []primitive.ObjectID `bson:"accounts_used"`
	Status       ReportStatus         `bson:"status"`
	TotalReports int                  `bson:"total_reports"`
	CreatedAt    time.Time            `bson:"created_at"`
	CompletedAt  *time.Time           `bson:"completed_at,omitempty"`
}

// LogKind names a configurable log channel.
type LogKind string

const (
	LogMain   LogKind = "main"
	LogString LogKind = "string"
	LogReport LogKind = "report"
	LogSend   LogKind = "send"
	LogOTP    LogKind = "otp"
	LogJoin   LogKind = "join"
	LogLeave  LogKind = "leave"
)

// AllLogKinds in menu order.
var AllLogKinds = []LogKind{LogMain, LogString, LogReport, LogSend, LogOTP, LogJoin, LogLeave}

// BotSettings is the single bot_config document.
type BotSettings struct {
	ID          string           `bson:"_id"`
	LogChannels map[string]int64 `bson:"log_channels"`
	UpdatedAt   time.Time        `bson:"updated_at"`
}

// SettingsID is the _id of the bot_config document.
const SettingsID = "settings"
