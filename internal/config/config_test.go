package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, ".quizmaster/session.json", cfg.SessionFile)
	assert.Equal(t, "development", cfg.Environment)
	// Admin login is disabled out of the box.
	assert.Empty(t, cfg.AdminUsername)
	assert.Empty(t, cfg.AdminPassword)
	assert.Empty(t, cfg.EmailLogFile)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", "https://quiz.example.com/api")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("EMAIL_LOG_FILE", "/tmp/emails.jsonl")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://quiz.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
	assert.Equal(t, "/tmp/emails.jsonl", cfg.EmailLogFile)
}
