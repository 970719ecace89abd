package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amnesia-labs/amnesia-go/pkg/core"
)

func TestValidate(t *testing.T) {
	cfg := &core.Config{
		Storage: core.StorageConfig{Provider: "sqlite"},
		LLM:     core.LLMConfig{Provider: "groq"},
	}
	assert.NoError(t, cfg.Validate())

	cfg = &core.Config{LLM: core.LLMConfig{Provider: "groq"}}
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)

	cfg = &core.Config{Storage: core.StorageConfig{Provider: "sqlite"}}
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
}

func TestDefaultPersonaDefaults(t *testing.T) {
	d := core.DefaultPersonaDefaults()
	assert.InDelta(t, 0.15, d.PratfallProbability, 0.0001)
	assert.InDelta(t, 0.25, d.MemoryDecayRate, 0.0001)
	assert.Equal(t, 6, d.RecallDepth)
	assert.InDelta(t, 1.5, d.EmotionWeight, 0.0001)
}

func TestLoadConfigFromJSON(t *testing.T) {
	content := `{
		"storage": {
			"provider": "postgres",
			"config": {
				"host": "db.internal",
				"port": 5433,
				"db_name": "amnesia"
			}
		},
		"llm": {
			"provider": "groq",
			"api_key": "gsk_test",
			"model": "llama-3.3-70b-versatile"
		},
		"voice": {
			"provider": "elevenlabs",
			"api_key": "el_test"
		}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Provider)
	assert.Equal(t, "db.internal", cfg.Storage.Config["host"])
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "gsk_test", cfg.LLM.APIKey)
	require.NotNil(t, cfg.Voice)
	assert.Equal(t, "elevenlabs", cfg.Voice.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromJSONMissingFile(t *testing.T) {
	_, err := core.LoadConfigFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	var engineErr *core.EngineError
	assert.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "LoadConfigFromJSON", engineErr.Op)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_PROVIDER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("LLM_API_KEY", "gsk_test")
	t.Setenv("VOICE_PROVIDER", "elevenlabs")
	t.Setenv("ELEVENLABS_API_KEY", "el_test")

	cfg, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Provider)
	assert.Equal(t, "db.internal", cfg.Storage.Config["host"])
	assert.Equal(t, 5433, cfg.Storage.Config["port"])
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "gsk_test", cfg.LLM.APIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	require.NotNil(t, cfg.Voice)
	assert.Equal(t, "el_test", cfg.Voice.APIKey)
	assert.Equal(t, 6, cfg.PersonaDefaults.RecallDepth)
}

func TestEngineErrorUnwrap(t *testing.T) {
	err := core.NewEngineError("Chat", core.ErrLLMOperation)
	assert.ErrorIs(t, err, core.ErrLLMOperation)
	assert.Contains(t, err.Error(), "amnesia: Chat:")

	assert.Nil(t, core.NewEngineError("Chat", nil))
}
