package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centralizes configuration loaded from the environment.
type Config struct {
	Port            int
	DBDSN           string
	MongoURL        string
	MongoDB         string
	RedisURL        string
	JWTSecret       string
	JWTAlgorithm    string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	BrokerURL       string
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// RateLimitConfig holds simple throttling limits.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads environment variables and applies safe defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("invalid PORT")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}

	cfg.MongoURL = getEnv("MONGO_URL", "")
	if cfg.MongoURL == "" {
		return nil, errors.New("MONGO_URL is required")
	}
	cfg.MongoDB = getEnv("MONGO_DB", "janavani")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must have at least 32 characters")
	}

	cfg.JWTAlgorithm = strings.ToUpper(strings.TrimSpace(getEnv("JWT_ALGORITHM", "HS256")))
	switch cfg.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return nil, errors.New("unsupported JWT_ALGORITHM")
	}

	accessMinutes, err := parseIntEnv("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	cfg.AccessTTL = time.Duration(accessMinutes) * time.Minute

	refreshDays, err := parseIntEnv("REFRESH_TOKEN_EXPIRE_DAYS", 30)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTTL = time.Duration(refreshDays) * 24 * time.Hour

	cfg.BrokerURL = strings.TrimSpace(getEnv("BROKER_URL", ""))
	if cfg.BrokerURL == "" {
		return nil, errors.New("BROKER_URL is required")
	}

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
