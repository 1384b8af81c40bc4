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

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Scheduling SchedulingConfig
	SlotCache  SlotCacheConfig
	LiveRoom   LiveRoomConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to verify access tokens issued by the account service.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig tunes slot suggestion and the live-room join window.
type SchedulingConfig struct {
	DefaultTimezone string
	SlotStride      time.Duration
	MaxSuggestions  int
	JoinWindow      time.Duration
}

// SlotCacheConfig governs Redis caching of suggested slots.
type SlotCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// LiveRoomConfig carries credentials for the room-token provider.
type LiveRoomConfig struct {
	WSURL     string
	APIKey    string
	APISecret string
	TokenTTL  time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxSuggestions := v.GetInt("SCHEDULING_MAX_SUGGESTIONS")
	if maxSuggestions <= 0 {
		maxSuggestions = 50
	}
	cfg.Scheduling = SchedulingConfig{
		DefaultTimezone: v.GetString("SCHEDULING_DEFAULT_TIMEZONE"),
		SlotStride:      parseDuration(v.GetString("SCHEDULING_SLOT_STRIDE"), 30*time.Minute),
		MaxSuggestions:  maxSuggestions,
		JoinWindow:      parseDuration(v.GetString("SCHEDULING_JOIN_WINDOW"), 30*time.Minute),
	}

	cfg.SlotCache = SlotCacheConfig{
		Enabled: v.GetBool("SLOT_CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("SLOT_CACHE_TTL"), time.Minute),
	}

	cfg.LiveRoom = LiveRoomConfig{
		WSURL:     v.GetString("LIVEKIT_WS_URL"),
		APIKey:    v.GetString("LIVEKIT_API_KEY"),
		APISecret: v.GetString("LIVEKIT_API_SECRET"),
		TokenTTL:  parseDuration(v.GetString("LIVEKIT_TOKEN_TTL"), time.Hour),
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
	v.SetDefault("DB_NAME", "tutor_sessions")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_DEFAULT_TIMEZONE", "UTC")
	v.SetDefault("SCHEDULING_SLOT_STRIDE", "30m")
	v.SetDefault("SCHEDULING_MAX_SUGGESTIONS", 50)
	v.SetDefault("SCHEDULING_JOIN_WINDOW", "30m")

	v.SetDefault("SLOT_CACHE_ENABLED", false)
	v.SetDefault("SLOT_CACHE_TTL", "1m")

	v.SetDefault("LIVEKIT_WS_URL", "")
	v.SetDefault("LIVEKIT_API_KEY", "")
	v.SetDefault("LIVEKIT_API_SECRET", "")
	v.SetDefault("LIVEKIT_TOKEN_TTL", "1h")
}

// isMissingFile covers viper returning a raw fs error when SetConfigFile points at an absent .env.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
