package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.AppPort)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.True(t, cfg.AgentEnabled)
	assert.Contains(t, cfg.SystemPrompt, "BizPilot")
	assert.EqualValues(t, 10<<20, cfg.UploadMaxBytes)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("LLM_PROVIDER", "GROQ")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("CHAT_RATE_PER_MINUTE", "5")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.OfflineMode)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "gsk-test", cfg.GroqAPIKey)
	assert.Equal(t, 5, cfg.ChatRatePerMinute)
}

func TestConfig_HasProviderCredentials(t *testing.T) {
	assert.False(t, (&Config{}).HasProviderCredentials())
	assert.True(t, (&Config{OpenRouterAPIKey: "k"}).HasProviderCredentials())
	assert.True(t, (&Config{OllamaURL: "http://localhost:11434"}).HasProviderCredentials())
}
