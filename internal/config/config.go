package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	Env         string
	LogLevel    string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string
	MockMode    bool

	Client ClientConfig
}

// ClientConfig configures the resilient dashboard client used by dashctl.
type ClientConfig struct {
	APIBaseURL    string
	CacheBackend  string
	CachePath     string
	TierTimeout   time.Duration
	RemoteRetries int
	MockProfiles  int
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/socialdash?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		MockMode:    getEnvBool("MOCK_MODE", false),
		Client: ClientConfig{
			APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8080"),
			CacheBackend:  getEnv("LOCAL_CACHE_BACKEND", "file"),
			CachePath:     getEnv("LOCAL_CACHE_PATH", ".socialdash-cache.json"),
			TierTimeout:   getEnvDuration("TIER_TIMEOUT", 5*time.Second),
			RemoteRetries: getEnvInt("REMOTE_RETRIES", 1),
			MockProfiles:  getEnvInt("MOCK_PROFILES", 4),
		},
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
