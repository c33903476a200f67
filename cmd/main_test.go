package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/edu-ai-gateway/internal/config"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"APP_ENV", "AI_MOCK_ENABLED", "EDU_TELEMETRY_LOG", "PORT", "AUDIT_STORE",
		"OPENROUTER_API_KEYS", "OPENROUTER_API_KEY",
		"GEMINI_API_KEYS", "GEMINI_API_KEY",
		"GROQ_API_KEYS", "GROQ_API_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestEmbeddedDefaultConfig_Loads(t *testing.T) {
	clearProviderEnv(t)

	data, err := getEmbeddedConfig(defaultConfigName)
	require.NoError(t, err)

	cfg, err := config.LoadFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, config.EnvProduction, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	require.Len(t, cfg.Providers, 3)
	assert.Equal(t, "openrouter", cfg.Providers[0].Name)
	assert.Equal(t, "gemini", cfg.Providers[1].Name)
	assert.Equal(t, "groq", cfg.Providers[2].Name)
	assert.False(t, cfg.MockAllowed(), "unset APP_ENV must not enable mock answers")
}

func TestEmbeddedDefaultConfig_MockOptIn(t *testing.T) {
	data, err := getEmbeddedConfig(defaultConfigName)
	require.NoError(t, err)

	t.Run("development", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("APP_ENV", "development")
		cfg, err := config.LoadFromBytes(data)
		require.NoError(t, err)
		assert.True(t, cfg.MockAllowed())
	})

	t.Run("explicit flag", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("AI_MOCK_ENABLED", "true")
		cfg, err := config.LoadFromBytes(data)
		require.NoError(t, err)
		assert.Equal(t, config.EnvProduction, cfg.Environment)
		assert.True(t, cfg.MockAllowed())
	})
}

func TestListEmbeddedConfigs(t *testing.T) {
	names, err := listEmbeddedConfigs()
	require.NoError(t, err)
	assert.Contains(t, names, defaultConfigName)
}

func TestResolveServeConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\n"), 0600))

	data, source, err := resolveServeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, "environment: test\n", string(data))

	_, _, err = resolveServeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteProviderTable(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEYS", "g1,g2")
	t.Setenv("GROQ_API_KEY", "q1")

	data, err := getEmbeddedConfig(defaultConfigName)
	require.NoError(t, err)
	cfg, err := config.LoadFromBytes(data)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeProviderTable(&buf, cfg, "test")
	out := buf.String()

	assert.Contains(t, out, "config: test")
	assert.Contains(t, out, "ORDER")
	assert.Regexp(t, `1\s+openrouter\s+chat_completion\s+\S+\s+0\s+false`, out)
	assert.Regexp(t, `2\s+gemini\s+generate_content\s+\S+\s+2\s+true`, out)
	assert.Regexp(t, `3\s+groq\s+chat_completion\s+\S+\s+1\s+true`, out)
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf)
	assert.Contains(t, buf.String(), "providers")
	assert.Contains(t, buf.String(), "--config FILE")
}
