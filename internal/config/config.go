// Package config loads radar settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full radar configuration, built once at startup and
// read-only afterwards.
type Config struct {
	// Telegram gateway.
	TelegramAPIID       int
	TelegramAPIHash     string
	TelegramPhone       string
	TelegramSessionName string
	TelegramGatewayURL  string

	// Postgres.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBPoolMin  int
	DBPoolMax  int

	// Optional ClickHouse alert archive. Empty DSN disables it.
	ClickhouseDSN string

	// Trending.
	TrendingWindow         time.Duration
	TrendingMinMentions    int
	TrendingMinUniqueChats int
	TrendingCooldown       time.Duration
	TrendingCheckInterval  time.Duration

	// Ingress filters.
	FilterMinMsgLength    int
	FilterIgnoreForwarded bool
	FilterStrictBase58    bool

	// Liquidity filter.
	DexscreenerEnabled      bool
	DexscreenerMinLiquidity float64

	// Retention.
	RetentionHours int

	// Surfaces.
	MetricsEnabled bool
	MetricsPort    int
	HealthEnabled  bool
	HealthPort     int

	// Logging.
	LogLevel string
	LogJSON  bool
}

// Load reads the environment, layering a .env file underneath when one
// exists. Missing required keys and unparsable numerics are reported
// together so the operator can fix everything in one pass.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	r := &reader{}

	cfg := &Config{
		TelegramAPIID:       r.intval("TELEGRAM_API_ID", 0),
		TelegramAPIHash:     os.Getenv("TELEGRAM_API_HASH"),
		TelegramPhone:       os.Getenv("TELEGRAM_PHONE"),
		TelegramSessionName: r.str("TELEGRAM_SESSION_NAME", "alpha_radar"),
		TelegramGatewayURL:  r.str("TELEGRAM_GATEWAY_URL", "ws://localhost:8443/stream"),

		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.intval("DB_PORT", 5432),
		DBUser:     r.str("DB_USER", "radar"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     r.str("DB_NAME", "alpha_radar"),
		DBPoolMin:  r.intval("DB_POOL_MIN", 2),
		DBPoolMax:  r.intval("DB_POOL_MAX", 10),

		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		TrendingWindow:         time.Duration(r.intval("TRENDING_WINDOW_MINUTES", 5)) * time.Minute,
		TrendingMinMentions:    r.intval("TRENDING_MIN_MENTIONS", 3),
		TrendingMinUniqueChats: r.intval("TRENDING_MIN_UNIQUE_CHATS", 2),
		TrendingCooldown:       time.Duration(r.intval("TRENDING_COOLDOWN_MINUTES", 15)) * time.Minute,
		TrendingCheckInterval:  time.Duration(r.intval("TRENDING_CHECK_INTERVAL", 30)) * time.Second,

		FilterMinMsgLength:    r.intval("FILTER_MIN_MSG_LENGTH", 5),
		FilterIgnoreForwarded: r.boolval("FILTER_IGNORE_FORWARDED", false),
		FilterStrictBase58:    r.boolval("FILTER_STRICT_BASE58", false),

		DexscreenerEnabled:      r.boolval("DEXSCREENER_ENABLED", false),
		DexscreenerMinLiquidity: r.floatval("DEXSCREENER_MIN_LIQUIDITY", 1000),

		RetentionHours: r.intval("RETENTION_HOURS", 24),

		MetricsEnabled: r.boolval("METRICS_ENABLED", false),
		MetricsPort:    r.intval("METRICS_PORT", 9090),
		HealthEnabled:  r.boolval("HEALTH_ENABLED", true),
		HealthPort:     r.intval("HEALTH_PORT", 8080),

		LogLevel: r.str("LOG_LEVEL", "INFO"),
		LogJSON:  r.boolval("LOG_JSON", false),
	}

	if err := cfg.validate(r.errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(errs []string) error {
	if c.TelegramAPIID == 0 {
		errs = append(errs, "TELEGRAM_API_ID is required")
	}
	if c.TelegramAPIHash == "" {
		errs = append(errs, "TELEGRAM_API_HASH is required")
	}
	if c.TelegramPhone == "" {
		errs = append(errs, "TELEGRAM_PHONE is required")
	}
	if c.DBPassword == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}
	if c.DBPoolMin > c.DBPoolMax {
		errs = append(errs, "DB_POOL_MIN exceeds DB_POOL_MAX")
	}
	if c.TrendingWindow <= 0 {
		errs = append(errs, "TRENDING_WINDOW_MINUTES must be positive")
	}
	if c.TrendingCheckInterval <= 0 {
		errs = append(errs, "TRENDING_CHECK_INTERVAL must be positive")
	}
	if c.RetentionHours <= 0 {
		errs = append(errs, "RETENTION_HOURS must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %v", errs)
	}
	return nil
}

// DatabaseDSN builds the Postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName)
}

// LogValue renders the configuration for startup logging with secrets
// masked.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("gateway_url", c.TelegramGatewayURL),
		slog.String("telegram_api_hash", mask(c.TelegramAPIHash)),
		slog.String("telegram_phone", mask(c.TelegramPhone)),
		slog.String("db", fmt.Sprintf("%s:%d/%s", c.DBHost, c.DBPort, c.DBName)),
		slog.Bool("clickhouse", c.ClickhouseDSN != ""),
		slog.Duration("trending_window", c.TrendingWindow),
		slog.Int("min_mentions", c.TrendingMinMentions),
		slog.Int("min_unique_chats", c.TrendingMinUniqueChats),
		slog.Duration("cooldown", c.TrendingCooldown),
		slog.Duration("check_interval", c.TrendingCheckInterval),
		slog.Bool("dexscreener", c.DexscreenerEnabled),
		slog.Int("retention_hours", c.RetentionHours),
	)
}

// mask keeps the first two characters of a secret for recognizability.
func mask(s string) string {
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + "***"
}

// reader accumulates parse failures so Load can report them all at once.
type reader struct {
	errs []string
}

func (r *reader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) intval(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: not an integer: %q", key, v))
		return def
	}
	return n
}

func (r *reader) boolval(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: not a boolean: %q", key, v))
		return def
	}
	return b
}

func (r *reader) floatval(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s: not a number: %q", key, v))
		return def
	}
	return f
}
