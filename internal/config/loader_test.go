package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServiceFromYAML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	path := writeConfig(t, `
storage:
  backend: fs
  dir: /tmp/agent-profit
query:
  text: custom query
  within_days: 14
  mode: speculative
providers:
  transcripts:
    feeds:
      - https://feeds.example.com/a
      - https://feeds.example.com/b
scheduler:
  cron: "0 7 * * *"
  attempt_delay: 45s
`)

	cfg, err := config.LoadService(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/agent-profit", cfg.Storage.Dir)
	assert.Equal(t, "custom query", cfg.Query.Text)
	assert.Equal(t, 14, cfg.Query.WithinDays)
	assert.Equal(t, "speculative", cfg.Query.Mode)
	assert.Len(t, cfg.Providers.Transcripts.Feeds, 2)
	assert.Equal(t, "0 7 * * *", cfg.Scheduler.Cron)
	assert.Equal(t, 45*time.Second, cfg.Scheduler.AttemptDelay)

	// Untouched sections fall back to defaults.
	assert.Equal(t, 10, cfg.Query.TargetCount)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Research.MaxFinalizeAttempts)
}

func TestLoadServiceEnvOverridesFile(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("RESEARCH_QUERY", "env wins")
	t.Setenv("RESEARCH_WITHIN_DAYS", "3")
	t.Setenv("STORAGE_BACKEND", "gcs")
	t.Setenv("STORAGE_BUCKET", "agent-profit-prod")
	t.Setenv("MAX_FINALIZE_ATTEMPTS", "5")
	t.Setenv("TRANSCRIPT_FEEDS", "https://a.example.com, https://b.example.com")
	path := writeConfig(t, `
query:
  text: file value
  within_days: 14
`)

	cfg, err := config.LoadService(path)
	require.NoError(t, err)

	assert.Equal(t, "env wins", cfg.Query.Text)
	assert.Equal(t, 3, cfg.Query.WithinDays)
	assert.Equal(t, config.StorageGCS, cfg.Storage.Backend)
	assert.Equal(t, "agent-profit-prod", cfg.Storage.Bucket)
	assert.Equal(t, 5, cfg.Research.MaxFinalizeAttempts)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Providers.Transcripts.Feeds)
}

func TestLoadServiceEnvOnly(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := config.LoadService("")
	require.NoError(t, err)
	assert.Equal(t, config.StorageFS, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Dir)
}

func TestLoadServiceMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := config.LoadService("")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestLoadServiceRejectsUnknownBackend(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := config.LoadService("")
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestLoadServiceRejectsBadMode(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("RESEARCH_MODE", "yolo")

	_, err := config.LoadService("")
	assert.ErrorContains(t, err, "query.mode")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/agent-profit/config.yml")
	assert.Equal(t, "/etc/agent-profit/config.yml", config.GetConfigPath("config.yml"))
}

func TestLoadServiceBadYAML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	path := writeConfig(t, "storage: [not a map")

	_, err := config.LoadService(path)
	assert.Error(t, err)
}
