package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string
	RedisDB   int

	// Remote API
	APIBaseURL string
	APITimeout time.Duration

	// Browser session
	SessionSecret string
	SessionCookie string
	CookieSecure  bool
	TokenIdleTTL  time.Duration

	// Throttles
	OTPResendCooldown time.Duration
	LoginRatePerSec   int
	LoginRateBurst    int
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":3000"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000/api/v1"), "/"),
		APITimeout: getEnvDuration("API_TIMEOUT", 0),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),
		SessionCookie: getEnv("SESSION_COOKIE", "console_sid"),
		CookieSecure:  strings.ToLower(getEnv("COOKIE_SECURE", "false")) == "true",
		TokenIdleTTL:  getEnvDuration("TOKEN_IDLE_TTL", 30*24*time.Hour),

		OTPResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", 60*time.Second),
		LoginRatePerSec:   getEnvInt("LOGIN_RATE_PER_SEC", 1),
		LoginRateBurst:    getEnvInt("LOGIN_RATE_BURST", 10),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
