package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"storefront-backend/internal/pricing"
	"storefront-backend/internal/refund"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DBUrl         string
	AllowedOrigin string
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// Cache
	QuoteCacheTTL time.Duration
	EnumCacheTTL  time.Duration
	// Rate limiting (per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
	// Pricing & refund policy
	PolicyFile string
	Sizes      pricing.SizeTables
	Refund     refund.PolicyConfig
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env may be absent in container deployments.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	return cfg
}

// FromEnv builds the configuration from the process environment without
// touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBUrl:         getEnv("DB_DSN", ""),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 50),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 10),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		// Quotes expire after 15m; enums change only on redeploy.
		QuoteCacheTTL: getDurationEnv("QUOTE_CACHE_TTL", 15*time.Minute),
		EnumCacheTTL:  getDurationEnv("ENUM_CACHE_TTL", time.Hour),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 20),

		PolicyFile: getEnv("POLICY_FILE", ""),
		Sizes:      pricing.DefaultSizeTables(),
	}

	policy := refund.DefaultPolicyConfig()
	policy.BaseRefundPercentage = getFloatEnv("REFUND_BASE_PERCENT", policy.BaseRefundPercentage)
	policy.DeliveredOrderPenalty = getFloatEnv("REFUND_DELIVERED_PENALTY", policy.DeliveredOrderPenalty)
	policy.LateRequestPenalty = getFloatEnv("REFUND_LATE_PENALTY", policy.LateRequestPenalty)
	policy.LateRequestAfterDays = getIntEnv("REFUND_LATE_AFTER_DAYS", policy.LateRequestAfterDays)
	policy.MinimumRefundPercentage = getFloatEnv("REFUND_MINIMUM_PERCENT", policy.MinimumRefundPercentage)
	policy.UsePolicyOverride = getBoolEnv("REFUND_POLICY_OVERRIDE", policy.UsePolicyOverride)
	cfg.Refund = policy

	if cfg.PolicyFile != "" {
		if err := LoadPolicyFile(cfg.PolicyFile, &cfg.Sizes, &cfg.Refund); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBUrl == "" {
		return errors.New("DB_DSN environment variable is required")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.QuoteCacheTTL <= 0 {
		return errors.New("QUOTE_CACHE_TTL must be positive")
	}
	if len(c.Sizes.Multiplicative) == 0 {
		return errors.New("size multiplier table must not be empty")
	}
	return c.Refund.Validate()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid bool for %s, using fallback", key)
	}
	return fallback
}
