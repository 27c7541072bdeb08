package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// HTTP surface
	CORSAllowedOrigins []string

	// Verification flow
	VerificationMaxRetries int
	SupportPhone           string
	DirectoryPath          string

	// Session / history storage
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// Audit trail (optional; disabled when empty)
	DatabaseURL string

	// Chat-completion backend
	LLMProvider          string // "azure" or "gemini"
	AzureOpenAIEndpoint  string
	AzureOpenAIKey       string
	AzureOpenAIVersion   string
	AzureOpenAIDeploy    string
	GeminiAPIKey         string
	GeminiModelID        string
	LLMMaxTokens         int
	LLMTemperature       float64
	LLMRequestTimeout    time.Duration

	// Worker pool
	WorkerCount int

	// Admin API
	AdminJWTSecret string

	// Lockout alerts
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	FraudDeskEmail    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		VerificationMaxRetries: getEnvAsInt("VERIFICATION_MAX_RETRIES", 1),
		SupportPhone:           getEnv("SUPPORT_PHONE", "1800-SHASH-BANK"),
		DirectoryPath:          getEnv("CUSTOMER_DIRECTORY_PATH", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		LLMProvider:         strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "azure"))),
		AzureOpenAIEndpoint: getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIKey:      getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIVersion:  getEnv("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
		AzureOpenAIDeploy:   getEnv("AZURE_OPENAI_DEPLOYMENT", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		LLMMaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 512),
		LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.2),
		LLMRequestTimeout:   getEnvAsDuration("LLM_REQUEST_TIMEOUT", 30*time.Second),

		WorkerCount: getEnvAsInt("WORKER_COUNT", 2),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "alerts@bankofshash.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Bank of Shash Support AI"),
		FraudDeskEmail:    getEnv("FRAUD_DESK_EMAIL", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
