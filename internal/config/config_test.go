package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "MONGO_DB", "JWT_EXPIRY", "LIVE_POLL_INTERVAL", "TIMEZONE", "RATE_LIMIT_REQUESTS", "MONGO_TRANSACTIONS", "LIVE_RECOMPUTE_INTERVAL", "REPORT_S3_ACCESS_KEY_ID", "REPORT_S3_SECRET_ACCESS_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, "detailing", cfg.MongoDB)
	assert.False(t, cfg.MongoTransactions)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 30, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RecomputeInterval)
	assert.Empty(t, cfg.ReportAccessKeyID)
	assert.Empty(t, cfg.ReportSecretAccessKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("LIVE_POLL_INTERVAL", "15")
	t.Setenv("TIMEZONE", "America/New_York")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")
	t.Setenv("REPORT_S3_PATH_STYLE", "true")
	t.Setenv("REPORT_S3_ACCESS_KEY_ID", "minio")
	t.Setenv("REPORT_S3_SECRET_ACCESS_KEY", "minio-secret")
	t.Setenv("LIVE_RECOMPUTE_INTERVAL", "5m")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.True(t, cfg.MongoTransactions)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, "America/New_York", cfg.Location.String())
	assert.Equal(t, 30, cfg.RateLimitRequests)
	assert.True(t, cfg.ReportPathStyle)
	assert.Equal(t, "minio", cfg.ReportAccessKeyID)
	assert.Equal(t, "minio-secret", cfg.ReportSecretAccessKey)
	assert.Equal(t, 5*time.Minute, cfg.RecomputeInterval)
}

func TestLoad_BadTimezoneFallsBack(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	assert.Equal(t, time.UTC, Load().Location)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	Config{LogLevel: "debug", LogFormat: "json"}.ConfigureLogging()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	_, isJSON := log.StandardLogger().Formatter.(*log.JSONFormatter)
	assert.True(t, isJSON)

	Config{LogLevel: "shouting"}.ConfigureLogging()
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
