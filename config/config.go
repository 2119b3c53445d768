package config

import (
	"os"
	"strconv"
	"time"
)

const (
	SESSION_BACKEND_MEMORY = "memory"
	SESSION_BACKEND_VALKEY = "valkey"
)

type Config struct {
	Env         string
	HTTPAddr    string
	LogLevel    string
	Username    string
	Password    string
	ReviewField string

	SessionBackend      string
	SessionTTL          time.Duration
	SessionCookieSecure bool

	ValkeyAddr     string
	ValkeyPassword string
	ValkeyTLS      bool

	ReportTitle string
	MaxWords    int
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

// Env returns APP_ENV, defaulting to dev.
func Env() string {
	return getEnv("APP_ENV", "dev")
}

func Load() Config {
	return Config{
		Env:         Env(),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8501"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Username:    getEnv("APP_USERNAME", "admin"),
		Password:    getEnv("APP_PASSWORD", "1234"),
		ReviewField: getEnv("REVIEW_COLUMN", "review_text"),

		SessionBackend:      getEnv("SESSION_BACKEND", SESSION_BACKEND_MEMORY),
		SessionTTL:          time.Duration(getEnvInt("SESSION_TTL", 3600)) * time.Second,
		SessionCookieSecure: os.Getenv("SESSION_COOKIE_SECURE") == "true",

		ValkeyAddr:     getEnv("VALKEY_INIT_ADDRESS", "localhost:6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		ValkeyTLS:      os.Getenv("VALKEY_TLS") == "true",

		ReportTitle: getEnv("REPORT_TITLE", "Zomato Sentiment Analysis Report"),
		MaxWords:    getEnvInt("WORDCLOUD_MAX_WORDS", 200),
	}
}
