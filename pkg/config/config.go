package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Upstream      UpstreamConfig
	Cache         CacheConfig
	Dashboard     DashboardConfig
	Notifications NotificationConfig
	Session       SessionConfig
	Articles      ArticleConfig
	Snapshots     SnapshotConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig points the gateway at the remote journal REST backend.
type UpstreamConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
}

// CacheConfig toggles the Redis-backed cache layer.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
	KeyPrefix  string
}

// DashboardConfig governs dashboard composition and last-known-good retention.
type DashboardConfig struct {
	CacheTTL   time.Duration
	StrictJoin bool
	Timezone   string
}

// NotificationConfig tunes the cached notification view.
type NotificationConfig struct {
	ViewTTL time.Duration
}

// SessionConfig controls how long revoked tokens are remembered.
type SessionConfig struct {
	RevokeTTL time.Duration
}

// ArticleConfig holds submission upload ceilings.
type ArticleConfig struct {
	MaxDocumentBytes int64
	MaxImageBytes    int64
}

// SnapshotConfig governs scheduled trend snapshot capture.
type SnapshotConfig struct {
	Enabled bool
	Cron    string
	Workers int
	Retries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Upstream = UpstreamConfig{
		BaseURL:      strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout:      parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
		ServiceToken: v.GetString("UPSTREAM_SERVICE_TOKEN"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		DefaultTTL: parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 10*time.Minute),
		KeyPrefix:  v.GetString("CACHE_KEY_PREFIX"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:   parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 24*time.Hour),
		StrictJoin: v.GetBool("DASHBOARD_STRICT_JOIN"),
		Timezone:   v.GetString("DASHBOARD_TIMEZONE"),
	}

	cfg.Notifications = NotificationConfig{
		ViewTTL: parseDuration(v.GetString("NOTIFICATION_VIEW_TTL"), 30*time.Minute),
	}

	cfg.Session = SessionConfig{
		RevokeTTL: parseDuration(v.GetString("SESSION_REVOKE_TTL"), 24*time.Hour),
	}

	maxDocument := v.GetInt64("ARTICLE_MAX_DOCUMENT_BYTES")
	if maxDocument <= 0 {
		maxDocument = 10 * 1024 * 1024
	}
	maxImage := v.GetInt64("ARTICLE_MAX_IMAGE_BYTES")
	if maxImage <= 0 {
		maxImage = 2 * 1024 * 1024
	}
	cfg.Articles = ArticleConfig{
		MaxDocumentBytes: maxDocument,
		MaxImageBytes:    maxImage,
	}

	cfg.Snapshots = SnapshotConfig{
		Enabled: v.GetBool("ENABLE_SNAPSHOTS"),
		Cron:    v.GetString("SNAPSHOT_CRON"),
		Workers: v.GetInt("SNAPSHOT_WORKERS"),
		Retries: v.GetInt("SNAPSHOT_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "journal_desk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")
	v.SetDefault("UPSTREAM_SERVICE_TOKEN", "")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_DEFAULT_TTL", "10m")
	v.SetDefault("CACHE_KEY_PREFIX", "journaldesk:")
	v.SetDefault("DASHBOARD_CACHE_TTL", "24h")
	v.SetDefault("DASHBOARD_STRICT_JOIN", false)
	v.SetDefault("DASHBOARD_TIMEZONE", "Local")
	v.SetDefault("NOTIFICATION_VIEW_TTL", "30m")
	v.SetDefault("SESSION_REVOKE_TTL", "24h")

	v.SetDefault("ARTICLE_MAX_DOCUMENT_BYTES", 10*1024*1024)
	v.SetDefault("ARTICLE_MAX_IMAGE_BYTES", 2*1024*1024)

	v.SetDefault("ENABLE_SNAPSHOTS", false)
	v.SetDefault("SNAPSHOT_CRON", "@daily")
	v.SetDefault("SNAPSHOT_WORKERS", 1)
	v.SetDefault("SNAPSHOT_RETRIES", 3)
}

// Location resolves the configured dashboard timezone, falling back to local time.
func (d DashboardConfig) Location() *time.Location {
	switch strings.TrimSpace(d.Timezone) {
	case "", "Local", "local":
		return time.Local
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
