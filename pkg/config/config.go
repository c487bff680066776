package config

import (
	"errors"
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

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Mapping  MappingConfig
	Notifier NotifierConfig
	Board    BoardConfig
	Exports  ExportsConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MappingConfig configures the external distance matrix provider and its cache.
type MappingConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	CacheMaxAge   time.Duration
	RoundDecimals int
}

// NotifierConfig governs the near-deadline departure scan.
type NotifierConfig struct {
	Enabled        bool
	Lookahead      time.Duration
	Interval       time.Duration
	Channels       []string
	QueueWorkers   int
	QueueRetries   int
	QueueRetryWait time.Duration
}

// BoardConfig governs the schedule board exposure and cache tuning.
type BoardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig toggles board export endpoints.
type ExportsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) {
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mapping = MappingConfig{
		BaseURL:       v.GetString("MAPPING_BASE_URL"),
		APIKey:        v.GetString("MAPPING_API_KEY"),
		Timeout:       parseDuration(v.GetString("MAPPING_TIMEOUT"), 10*time.Second),
		CacheMaxAge:   parseDuration(v.GetString("MAPPING_CACHE_MAX_AGE"), 7*24*time.Hour),
		RoundDecimals: v.GetInt("MAPPING_ROUND_DECIMALS"),
	}

	cfg.Notifier = NotifierConfig{
		Enabled:        v.GetBool("ENABLE_NOTIFIER"),
		Lookahead:      parseDuration(v.GetString("NOTIFIER_LOOKAHEAD"), 2*time.Hour),
		Interval:       parseDuration(v.GetString("NOTIFIER_INTERVAL"), 15*time.Minute),
		Channels:       splitAndTrim(v.GetString("NOTIFIER_CHANNELS")),
		QueueWorkers:   v.GetInt("NOTIFIER_QUEUE_WORKERS"),
		QueueRetries:   v.GetInt("NOTIFIER_QUEUE_RETRIES"),
		QueueRetryWait: parseDuration(v.GetString("NOTIFIER_QUEUE_RETRY_WAIT"), time.Second),
	}

	cfg.Board = BoardConfig{
		Enabled:  v.GetBool("ENABLE_BOARD"),
		CacheTTL: parseDuration(v.GetString("BOARD_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
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
	v.SetDefault("DB_NAME", "fleetline")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MAPPING_BASE_URL", "https://api.routemetrics.example.com")
	v.SetDefault("MAPPING_API_KEY", "")
	v.SetDefault("MAPPING_TIMEOUT", "10s")
	v.SetDefault("MAPPING_CACHE_MAX_AGE", "168h")
	v.SetDefault("MAPPING_ROUND_DECIMALS", 4)

	v.SetDefault("ENABLE_NOTIFIER", false)
	v.SetDefault("NOTIFIER_LOOKAHEAD", "2h")
	v.SetDefault("NOTIFIER_INTERVAL", "15m")
	v.SetDefault("NOTIFIER_CHANNELS", "dashboard")
	v.SetDefault("NOTIFIER_QUEUE_WORKERS", 1)
	v.SetDefault("NOTIFIER_QUEUE_RETRIES", 3)
	v.SetDefault("NOTIFIER_QUEUE_RETRY_WAIT", "1s")

	v.SetDefault("ENABLE_BOARD", true)
	v.SetDefault("BOARD_CACHE_TTL", "2m")

	v.SetDefault("ENABLE_EXPORTS", true)
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
