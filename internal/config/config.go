package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	StoreDriver       string
	MongoURI          string
	MongoDB           string
	MongoTransactions bool
	SQLitePath        string
	PostgresDSN       string

	JWTSecret string
	JWTExpiry time.Duration

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string
	PollInterval    time.Duration

	// RecomputeInterval rebuilds the dashboard on the clock between writes.
	RecomputeInterval time.Duration

	Location *time.Location

	RateLimitRequests int
	RateLimitWindow   int

	ReportBucket    string
	ReportRegion    string
	ReportEndpoint  string
	ReportPathStyle bool

	// Static archive credentials; empty falls back to the AWS default chain.
	ReportAccessKeyID     string
	ReportSecretAccessKey string

	LogLevel  string
	LogFormat string

	AdminEmail    string
	AdminPassword string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set take precedence.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	cfg := Config{
		Port: getEnv("PORT", "8080"),

		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "detailing"),
		MongoTransactions: getEnvBool("MONGO_TRANSACTIONS", false),
		SQLitePath:        getEnv("SQLITE_PATH", "detailing.db"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),

		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", defaultClientID()),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "detailing"),
		PollInterval:    getEnvDuration("LIVE_POLL_INTERVAL", 5*time.Second),

		RecomputeInterval: getEnvDuration("LIVE_RECOMPUTE_INTERVAL", time.Minute),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		ReportBucket:    os.Getenv("REPORT_S3_BUCKET"),
		ReportRegion:    getEnv("REPORT_S3_REGION", "us-east-1"),
		ReportEndpoint:  os.Getenv("REPORT_S3_ENDPOINT"),
		ReportPathStyle: getEnvBool("REPORT_S3_PATH_STYLE", false),

		ReportAccessKeyID:     os.Getenv("REPORT_S3_ACCESS_KEY_ID"),
		ReportSecretAccessKey: os.Getenv("REPORT_S3_SECRET_ACCESS_KEY"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	cfg.Location = time.UTC
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.WithError(err).WithField("timezone", tz).Warn("Unknown TIMEZONE, using UTC")
		} else {
			cfg.Location = loc
		}
	}
	return cfg
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c Config) ConfigureLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "detailing-desk-" + host
}
