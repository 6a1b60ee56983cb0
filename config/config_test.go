package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("OWNER_ID", "42")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Telegram.OwnerID != 42 {
		t.Errorf("OwnerID = %d, want 42", cfg.Telegram.OwnerID)
	}
	if cfg.Mongo.Database != "telegram_account_manager" {
		t.Errorf("Database = %q", cfg.Mongo.Database)
	}
	if cfg.Limits.MaxAccountsPerUser != 50 || cfg.Limits.MaxTotalAccounts != 10000 || cfg.Limits.MaxWorkers != 10 {
		t.Errorf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Limits.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Limits.RequestTimeout)
	}
	if cfg.Kafka.Enabled || cfg.S3.Enabled {
		t.Errorf("kafka and s3 must be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SEND_LOG_CHANNEL", "-1001234567890")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("DIALOG_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Channels.Send != -1001234567890 {
		t.Errorf("Channels.Send = %d", cfg.Channels.Send)
	}
	if cfg.Limits.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Limits.RequestTimeout)
	}
	if cfg.Dialog.TTL != 5*time.Minute {
		t.Errorf("Dialog.TTL = %v", cfg.Dialog.TTL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing token", env: map[string]string{"BOT_TOKEN": ""}, wantErr: "BOT_TOKEN"},
		{name: "bad owner", env: map[string]string{"OWNER_ID": "abc"}, wantErr: "OWNER_ID"},
		{name: "missing mongo uri", env: map[string]string{"MONGO_URI": ""}, wantErr: "MONGO_URI"},
		{name: "bad channel", env: map[string]string{"MAIN_LOG_CHANNEL": "x"}, wantErr: "MAIN_LOG_CHANNEL"},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}, wantErr: "STORAGE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryDriverWithoutURI(t *testing.T) {
	setRequired(t)
	t.Setenv("MONGO_URI", "")
	t.Setenv("STORAGE_DRIVER", "memory")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}
