package config

import (
	"errors"
	"fmt"
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
	Timezone  string
	Location  *time.Location

	Database        DatabaseConfig
	Redis           RedisConfig
	JWT             JWTConfig
	CORS            CORSConfig
	Log             LogConfig
	TimeRestriction TimeRestrictionConfig
	Sweep           SweepConfig
	Submissions     SubmissionsConfig
	Export          ExportConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimeRestrictionConfig seeds the editing window policy when none is persisted yet.
type TimeRestrictionConfig struct {
	Enabled           bool
	BlockStartHour    int
	BlockEndHour      int
	BlockWeekdaysOnly bool
	ReloadInterval    time.Duration
}

// SweepConfig drives the periodic archive sweep.
type SweepConfig struct {
	Enabled    bool
	Interval   time.Duration
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// SubmissionsConfig tunes weekly submission handling.
type SubmissionsConfig struct {
	LockArchived     bool
	OverviewCacheTTL time.Duration
}

// ExportConfig controls rendered overviews.
type ExportConfig struct {
	CSVDelimiter string
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
	cfg.Timezone = v.GetString("APP_TIMEZONE")
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

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
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.TimeRestriction = TimeRestrictionConfig{
		Enabled:           v.GetBool("TIME_RESTRICTION_ENABLED"),
		BlockStartHour:    v.GetInt("TIME_RESTRICTION_START_HOUR"),
		BlockEndHour:      v.GetInt("TIME_RESTRICTION_END_HOUR"),
		BlockWeekdaysOnly: v.GetBool("TIME_RESTRICTION_WEEKDAYS_ONLY"),
		ReloadInterval:    parseDuration(v.GetString("TIME_RESTRICTION_RELOAD_INTERVAL"), time.Minute),
	}

	cfg.Sweep = SweepConfig{
		Enabled:    v.GetBool("ENABLE_ARCHIVE_SWEEP"),
		Interval:   parseDuration(v.GetString("ARCHIVE_SWEEP_INTERVAL"), 15*time.Minute),
		Workers:    v.GetInt("ARCHIVE_SWEEP_WORKERS"),
		MaxRetries: v.GetInt("ARCHIVE_SWEEP_RETRIES"),
		RetryDelay: parseDuration(v.GetString("ARCHIVE_SWEEP_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Submissions = SubmissionsConfig{
		LockArchived:     v.GetBool("SUBMISSIONS_LOCK_ARCHIVED"),
		OverviewCacheTTL: parseDuration(v.GetString("SUBMISSIONS_OVERVIEW_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Export = ExportConfig{CSVDelimiter: v.GetString("EXPORT_CSV_DELIMITER")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("APP_TIMEZONE", "Europe/Amsterdam")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "weekly_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "weekly-attendance-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIME_RESTRICTION_ENABLED", true)
	v.SetDefault("TIME_RESTRICTION_START_HOUR", 12)
	v.SetDefault("TIME_RESTRICTION_END_HOUR", 17)
	v.SetDefault("TIME_RESTRICTION_WEEKDAYS_ONLY", true)
	v.SetDefault("TIME_RESTRICTION_RELOAD_INTERVAL", "1m")

	v.SetDefault("ENABLE_ARCHIVE_SWEEP", true)
	v.SetDefault("ARCHIVE_SWEEP_INTERVAL", "15m")
	v.SetDefault("ARCHIVE_SWEEP_WORKERS", 1)
	v.SetDefault("ARCHIVE_SWEEP_RETRIES", 3)
	v.SetDefault("ARCHIVE_SWEEP_RETRY_DELAY", "30s")

	v.SetDefault("SUBMISSIONS_LOCK_ARCHIVED", false)
	v.SetDefault("SUBMISSIONS_OVERVIEW_CACHE_TTL", "2m")

	v.SetDefault("EXPORT_CSV_DELIMITER", ",")
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
