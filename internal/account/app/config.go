package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer        string // Issuer claim for tokens (default: pingpong-account)
	SigningSecret string // Required: HMAC secret for token signing (>= 32 bytes)
	SecretBoxKey  string // Optional: base64 32-byte key for sealing TOTP secrets

	FTClientID     string // Required: OAuth client id from the provider
	FTClientSecret string // Required: OAuth client secret
	FTRedirectURI  string // Required: callback URL registered with the provider
	OAuthTimeout   time.Duration

	AccessTTL  time.Duration // Access token lifetime (default: 1h)
	RefreshTTL time.Duration // Refresh token lifetime (default: 168h)
	TicketTTL  time.Duration // 2FA verification ticket lifetime (default: 5m)

	DatabaseFile string // Path to SQLite database file (default: ./account.db)

	CacheBackend  string // "memory" or "redis" (default: memory)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string // CORS origins, comma separated ("*" allows all)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Blacklist pruning interval (default: 1h)
}

func LoadConfig() Config {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:        getEnvOrDefault("ACCOUNT_ISSUER", "pingpong-account"),
		SigningSecret: os.Getenv("ACCOUNT_SIGNING_SECRET"),
		SecretBoxKey:  os.Getenv("ACCOUNT_SECRETBOX_KEY"),

		FTClientID:     os.Getenv("FT_CLIENT_ID"),
		FTClientSecret: os.Getenv("FT_CLIENT_SECRET"),
		FTRedirectURI:  os.Getenv("FT_REDIRECT_URI"),
		OAuthTimeout:   getEnvDurationOrDefault("OAUTH_TIMEOUT", 10*time.Second),

		AccessTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TicketTTL:  getEnvDurationOrDefault("TWOFA_TICKET_TTL", 5*time.Minute),

		DatabaseFile: getEnvOrDefault("ACCOUNT_DATABASE_FILE", "account.db"),

		CacheBackend:  getEnvOrDefault("CACHE_BACKEND", "memory"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	origins := getEnvOrDefault("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
