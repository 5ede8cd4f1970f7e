package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Port           string
	Environment    string
	APIKey         string
	AdminUsername  string
	AdminPassword  string
	LogLevel       string
	TimeZone       string
	AllowedOrigins []string
	MaxUploadMB    int64

	// Forecast model settings
	ForecastSeed         int64
	ForecastEpochs       int
	ForecastLearningRate float64
	MaxConcurrentFits    int

	// Forecast endpoint rate limit; zero or less disables it
	ForecastRateLimit float64
	ForecastRateBurst int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		APIKey:               getEnv("API_KEY", ""),
		AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		TimeZone:             getEnv("TIME_ZONE", "UTC"),
		AllowedOrigins:       getEnvList("ALLOWED_ORIGINS", nil),
		MaxUploadMB:          getEnvInt64("MAX_UPLOAD_MB", 10),
		ForecastSeed:         getEnvInt64("FORECAST_SEED", 42),
		ForecastEpochs:       getEnvInt("FORECAST_EPOCHS", 100),
		ForecastLearningRate: getEnvFloat("FORECAST_LEARNING_RATE", 0.001),
		MaxConcurrentFits:    getEnvInt("MAX_CONCURRENT_FITS", 0),
		ForecastRateLimit:    getEnvFloat("FORECAST_RATE_LIMIT", 2),
		ForecastRateBurst:    getEnvInt("FORECAST_RATE_BURST", 5),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 数値の環境変数を取得（解析できない場合はデフォルト値）
func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

// getEnvList カンマ区切りの環境変数をスライスとして取得
func getEnvList(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
