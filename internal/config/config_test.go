package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvConfigFile, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, domain.ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.Equal(t, "Lumora", cfg.AppTitle)
	assert.Equal(t, time.Duration(0), cfg.LLMTimeout)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LUMORA_PROVIDER", "Gemini")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT_MS", "1500")
	t.Setenv("LUMORA_MODE", "mock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, domain.ProviderGemini, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.ProviderConfig().APIKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.LLMTimeout)
	assert.Equal(t, "MOCK", cfg.Mode)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	t.Setenv("LUMORA_PROVIDER", "bedrock")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lumora.yaml")
	content := "http_port: 7070\nlumora_model: openai/gpt-4o-mini\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvConfigFile, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Model)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
