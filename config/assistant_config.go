package config

import (
	"os"
	"strconv"
	"strings"

	"assistant_server/pkg/apperr"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// LocalOverrideFile is overlaid on the environment in development only.
const LocalOverrideFile = ".env.local"

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// OpenAI
	OpenAIAPIKey string
	IntentModel  string
	ExtractModel string
	GeneralModel string

	// OAuth - Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AppURL             string

	// Data store
	DatabaseURL            string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	RedisURL               string

	// Single-tenant user the calendar path acts for
	DefaultUserID string

	// Routing and lookup
	CalendarKeywords []string
	LookupWindowDays int
	LookupMaxResults int

	// Twilio
	TwilioAccountSID string
	TwilioAuthToken  string

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	env := getEnv("ENV", "development")
	if env == "development" {
		// Missing file is fine; only values present in it are overlaid.
		_ = godotenv.Overload(LocalOverrideFile)
	}

	appURL := strings.TrimRight(getEnv("APP_URL", getEnv("NEXT_PUBLIC_APP_URL", "http://localhost:3001")), "/")

	defaultLevel := "info"
	if env == "development" {
		defaultLevel = "debug"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", defaultLevel),

		// OpenAI
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		IntentModel:  getEnv("LLM_INTENT_MODEL", "gpt-3.5-turbo"),
		ExtractModel: getEnv("LLM_EXTRACT_MODEL", "gpt-4-turbo"),
		GeneralModel: getEnv("LLM_GENERAL_MODEL", "gpt-4o-mini"),

		// OAuth - Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", appURL+"/api/auth/google/callback"),
		AppURL:             appURL,

		// Data store
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		SupabaseURL:            getEnv("SUPABASE_URL", getEnv("NEXT_PUBLIC_SUPABASE_URL", "")),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		RedisURL:               getEnv("REDIS_URL", ""),

		DefaultUserID: getEnv("TEST_USER_ID", getEnv("DEFAULT_USER_ID", "")),

		// Routing and lookup
		CalendarKeywords: getEnvSlice("CALENDAR_KEYWORDS", []string{"calendar", "meeting", "schedule", "appointment"}),
		LookupWindowDays: getEnvInt("LOOKUP_WINDOW_DAYS", 7),
		LookupMaxResults: getEnvInt("LOOKUP_MAX_RESULTS", 20),

		// Twilio
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
	}, nil
}

// Validate checks the settings the prompt endpoint cannot run without.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return apperr.ConfigError("OPENAI_API_KEY is required")
	}
	if c.DefaultUserID == "" {
		return apperr.ConfigError("TEST_USER_ID is required")
	}
	if _, err := uuid.Parse(c.DefaultUserID); err != nil {
		return apperr.ConfigError("TEST_USER_ID must be a UUID").WithError(err)
	}
	if c.DatabaseURL == "" && (c.SupabaseURL == "" || c.SupabaseServiceRoleKey == "") {
		return apperr.ConfigError("DATABASE_URL or SUPABASE_URL with SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.LookupWindowDays <= 0 || c.LookupMaxResults <= 0 {
		return apperr.ConfigError("LOOKUP_WINDOW_DAYS and LOOKUP_MAX_RESULTS must be positive")
	}
	return nil
}

// DefaultUser returns the parsed default user id. Call Validate first.
func (c *Config) DefaultUser() uuid.UUID {
	id, _ := uuid.Parse(c.DefaultUserID)
	return id
}

// GoogleConfigured reports whether Google OAuth credentials are present.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// TwilioConfigured reports whether Twilio credentials are present.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
