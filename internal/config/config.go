package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL         string
	ServerAddr          string
	MigrationsDir       string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	BroadcastExpiry time.Duration
	MerchantTimeout time.Duration
	SweepInterval   time.Duration
	SweepBatchSize  int
	SyncInterval    time.Duration
	SyncLookback    time.Duration
	SyncBatchSize   int
	ApprovalMax     int
	ApprovalWindow  time.Duration
	DraftTableName  string
	EventQueueURL   string
	AttachmentDir   string
}

// Load reads configuration from environment. A local .env file is
// applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "quotehub")
		pass := getenv("POSTGRES_PASSWORD", "quotehub_pass")
		db := getenv("POSTGRES_DB", "quotehub")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	return &Config{
		DatabaseURL:         dsn,
		ServerAddr:          getenv("SERVER_ADDR", "0.0.0.0:8080"),
		MigrationsDir:       getenv("MIGRATIONS_DIR", "internal/migrations"),
		SessionTTL:          parseDuration(getenv("SESSION_TTL", "24h"), 24*time.Hour),
		SessionCookieName:   getenv("SESSION_COOKIE_NAME", "quotehub_session"),
		SessionCookieSecure: parseBool(getenv("SESSION_COOKIE_SECURE", "false"), false),

		BroadcastExpiry: parseDuration(getenv("BROADCAST_EXPIRY", "24h"), 24*time.Hour),
		MerchantTimeout: parseDuration(getenv("MERCHANT_TIMEOUT", "2h"), 2*time.Hour),
		SweepInterval:   parseDuration(getenv("SWEEP_INTERVAL", "30s"), 30*time.Second),
		SweepBatchSize:  parseInt(getenv("SWEEP_BATCH_SIZE", "100"), 100),
		SyncInterval:    parseDuration(getenv("SYNC_INTERVAL", "30s"), 30*time.Second),
		SyncLookback:    parseDuration(getenv("SYNC_LOOKBACK", "2m"), 2*time.Minute),
		SyncBatchSize:   parseInt(getenv("SYNC_BATCH_SIZE", "200"), 200),
		ApprovalMax:     parseInt(getenv("APPROVAL_RATE_MAX", "10"), 10),
		ApprovalWindow:  parseDuration(getenv("APPROVAL_RATE_WINDOW", "1m"), time.Minute),
		DraftTableName:  os.Getenv("DRAFT_TABLE_NAME"),
		EventQueueURL:   os.Getenv("EVENT_QUEUE_URL"),
		AttachmentDir:   getenv("ATTACHMENT_DIR", "data/attachments"),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
