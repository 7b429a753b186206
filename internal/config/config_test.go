package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "gpt-5-mini", cfg.Model)
	require.Equal(t, 2000, cfg.MaxOutputTokens)
	require.Equal(t, float32(0), cfg.Temperature)
	require.Equal(t, 0.7, cfg.ConfidenceThreshold)
	require.Equal(t, 2, cfg.MaxRetries)
	require.Equal(t, 20, cfg.BatchSize)
	require.Equal(t, 5*time.Second, cfg.BatchDelay)
	require.Equal(t, 500*time.Millisecond, cfg.InterCallDelay)
	require.Equal(t, "outputs", cfg.OutputDir)
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: gpt-4o
max_output_tokens: 1500
temperature: 0.2
confidence_threshold: 0.8
max_retries: 4
batch:
  size: 10
  delay: 30s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", cfg.Model)
	require.Equal(t, 1500, cfg.MaxOutputTokens)
	require.Equal(t, float32(0.2), cfg.Temperature)
	require.Equal(t, 0.8, cfg.ConfidenceThreshold)
	require.Equal(t, 4, cfg.MaxRetries)
	require.Equal(t, 10, cfg.BatchSize)
	require.Equal(t, 30*time.Second, cfg.BatchDelay)
	require.Equal(t, 500*time.Millisecond, cfg.InterCallDelay, "unset keys keep their defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GRADER_MODEL", "gpt-4o-mini")
	t.Setenv("GRADER_CONFIDENCE_THRESHOLD", "0.9")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", cfg.Model)
	require.Equal(t, 0.9, cfg.ConfidenceThreshold)
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("confidence_threshold: 1.5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsMissingSettingsFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestAPIKeyIssue(t *testing.T) {
	require.NotEmpty(t, Config{}.APIKeyIssue())
	require.Contains(t, Config{APIKey: " sk-proj-x "}.APIKeyIssue(), "whitespace")
	require.Empty(t, Config{APIKey: "sk-proj-x"}.APIKeyIssue())
}
