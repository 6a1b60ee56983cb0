package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the account manager bot
type Config struct {
	Telegram TelegramConfig
	Mongo    MongoConfig
	Channels ChannelsConfig
	Limits   LimitsConfig
	Dialog   DialogConfig
	Kafka    KafkaConfig
	S3       S3Config
	Logging  LoggingConfig
	Service  ServiceConfig
}

// TelegramConfig holds bot API configuration
type TelegramConfig struct {
	BotToken string
	OwnerID  int64
}

// Storage drivers
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// MongoConfig holds document store configuration
type MongoConfig struct {
	Driver         string
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// ChannelsConfig holds default log channel IDs. Zero disables a channel.
// Values stored by admins in bot_config take precedence.
type ChannelsConfig struct {
	Main   int64
	String int64
	Report int64
	Send   int64
	OTP    int64
	Join   int64
	Leave  int64
}

// LimitsConfig holds account caps and worker pool sizing
type LimitsConfig struct {
	MaxAccountsPerUser int
	MaxTotalAccounts   int
	MaxWorkers         int
	RequestTimeout     time.Duration
}

// DialogConfig controls expiry of idle conversations
type DialogConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// KafkaConfig holds channel log relay configuration
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	GroupID          string
	TopicChannelLogs string
}

// S3Config holds object storage configuration
type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Mongo    *MongoConfig
	Channels *ChannelsConfig
	Limits   *LimitsConfig
	Dialog   *DialogConfig
	Kafka    *KafkaConfig
	S3       *S3Config
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:   cfg,
		Telegram: &cfg.Telegram,
		Mongo:    &cfg.Mongo,
		Channels: &cfg.Channels,
		Limits:   &cfg.Limits,
		Dialog:   &cfg.Dialog,
		Kafka:    &cfg.Kafka,
		S3:       &cfg.S3,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	p := &envParser{}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("BOT_TOKEN", ""),
			OwnerID:  p.parseInt64("OWNER_ID", 0),
		},
		Mongo: MongoConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongo)),
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("DB_NAME", "telegram_account_manager"),
			ConnectTimeout: p.parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Channels: ChannelsConfig{
			Main:   p.parseInt64("MAIN_LOG_CHANNEL", 0),
			String: p.parseInt64("STRING_CHANNEL", 0),
			Report: p.parseInt64("REPORT_LOG_CHANNEL", 0),
			Send:   p.parseInt64("SEND_LOG_CHANNEL", 0),
			OTP:    p.parseInt64("OTP_LOG_CHANNEL", 0),
			Join:   p.parseInt64("JOIN_LOG_CHANNEL", 0),
			Leave:  p.parseInt64("LEAVE_LOG_CHANNEL", 0),
		},
		Limits: LimitsConfig{
			MaxAccountsPerUser: p.parseInt("MAX_ACCOUNTS_PER_USER", 50),
			MaxTotalAccounts:   p.parseInt("MAX_TOTAL_ACCOUNTS", 10000),
			MaxWorkers:         p.parseInt("MAX_WORKERS", 10),
			RequestTimeout:     p.parseDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Dialog: DialogConfig{
			TTL:             p.parseDuration("DIALOG_TTL", 15*time.Minute),
			CleanupInterval: p.parseDuration("DIALOG_CLEANUP_INTERVAL", time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled:          p.parseBool("KAFKA_ENABLED", false),
			Brokers:          strings.Split(getEnv("KAFKA_BROKERS", "localhost:9093"), ","),
			GroupID:          getEnv("KAFKA_GROUP_ID", "account-manage"),
			TopicChannelLogs: getEnv("KAFKA_TOPIC_CHANNEL_LOGS", "bot.channel-logs"),
		},
		S3: S3Config{
			Enabled:   p.parseBool("S3_ENABLED", false),
			Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "account-manage"),
			UseSSL:    p.parseBool("S3_USE_SSL", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "account-manage"),
			Port: getEnv("SERVICE_PORT", "8080"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.Telegram.OwnerID == 0 {
		return fmt.Errorf("OWNER_ID is required")
	}

	switch c.Mongo.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Mongo.Driver)
	}

	if c.Limits.MaxWorkers <= 0 {
		return fmt.Errorf("MAX_WORKERS must be positive")
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Brokers[0] == "") {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	if c.S3.Enabled && c.S3.Endpoint == "" {
		return fmt.Errorf("S3_ENDPOINT is required when S3_ENABLED is set")
	}

	return nil
}

// envParser reads typed values and keeps the first parse error.
type envParser struct {
	err error
}

func (p *envParser) parseInt64(key string, def int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *envParser) parseInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *envParser) parseDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	// Bare numbers are seconds, as in REQUEST_TIMEOUT=30.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *envParser) parseBool(key string, def bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return v
}

func (p *envParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
