package config

import (
	"os"
	"path/filepath"
	"testing"

	"assistant_server/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "76b3b1fb-04fe-4b9f-8919-a431a8e3ddb1"

func validConfig() *Config {
	return &Config{
		OpenAIAPIKey:     "sk-test",
		DefaultUserID:    testUserID,
		DatabaseURL:      "postgres://localhost/assistant",
		LookupWindowDays: 7,
		LookupMaxResults: 20,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("APP_URL", "https://assistant.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.IntentModel)
	assert.Equal(t, "gpt-4-turbo", cfg.ExtractModel)
	assert.Equal(t, 7, cfg.LookupWindowDays)
	assert.Equal(t, 20, cfg.LookupMaxResults)
	assert.Equal(t, []string{"calendar", "meeting", "schedule", "appointment"}, cfg.CalendarKeywords)
	assert.Equal(t, "https://assistant.example.com/api/auth/google/callback", cfg.GoogleRedirectURL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TEST_USER_ID", testUserID)
	t.Setenv("CALENDAR_KEYWORDS", " calendar , agenda ,,")
	t.Setenv("LOOKUP_WINDOW_DAYS", "30")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://abc.supabase.co")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	assert.Equal(t, testUserID, cfg.DefaultUserID)
	assert.Equal(t, testUserID, cfg.DefaultUser().String())
	assert.Equal(t, []string{"calendar", "agenda"}, cfg.CalendarKeywords)
	assert.Equal(t, 30, cfg.LookupWindowDays)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
}

func TestLoadDevelopmentOverlaysLocalFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LocalOverrideFile), []byte("OPENAI_API_KEY=sk-local\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ENV", "development")
	t.Setenv("OPENAI_API_KEY", "sk-process")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-local", cfg.OpenAIAPIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid postgres", func(c *Config) {}, false},
		{"valid supabase", func(c *Config) {
			c.DatabaseURL = ""
			c.SupabaseURL = "https://abc.supabase.co"
			c.SupabaseServiceRoleKey = "service-key"
		}, false},
		{"missing openai key", func(c *Config) { c.OpenAIAPIKey = "" }, true},
		{"missing user", func(c *Config) { c.DefaultUserID = "" }, true},
		{"user not uuid", func(c *Config) { c.DefaultUserID = "jane" }, true},
		{"no data store", func(c *Config) { c.DatabaseURL = "" }, true},
		{"supabase without key", func(c *Config) {
			c.DatabaseURL = ""
			c.SupabaseURL = "https://abc.supabase.co"
		}, true},
		{"zero window", func(c *Config) { c.LookupWindowDays = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperr.CodeConfigError, apperr.AsAppError(err).Code)
		})
	}
}

func TestConfiguredHelpers(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.GoogleConfigured())
	assert.False(t, cfg.TwilioConfigured())

	cfg.GoogleClientID, cfg.GoogleClientSecret = "id", "secret"
	cfg.TwilioAccountSID, cfg.TwilioAuthToken = "AC123", "token"
	assert.True(t, cfg.GoogleConfigured())
	assert.True(t, cfg.TwilioConfigured())
}
