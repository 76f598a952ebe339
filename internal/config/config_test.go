package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterURL)
	assert.Equal(t, 10, cfg.MaxSessionsPerUser)
	assert.Equal(t, 100, cfg.MaxMessagesPerSession)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadModelsDefaults(t *testing.T) {
	models, err := LoadModels("")
	require.NoError(t, err)
	require.NotEmpty(t, models)

	vision := 0
	for _, m := range models {
		assert.True(t, m.Available)
		assert.True(t, m.IsFree())
		if m.SupportsVision {
			vision++
		}
	}
	assert.Equal(t, 2, vision)
}

func TestLoadModelsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	content := `models:
  - id: acme/fast-1
    name: Fast One
    available: true
    prompt_price: "0.25"
  - id: acme/vision-1
    name: Vision One
    available: true
    supports_vision: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	models, err := LoadModels(path)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "acme/fast-1", models[0].ID)
	assert.True(t, models[0].PromptPrice.Equal(decimal.RequireFromString("0.25")))
	assert.False(t, models[0].IsFree())
	assert.True(t, models[1].SupportsVision)
}

func TestLoadModelsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: []\n"), 0o644))

	_, err := LoadModels(path)
	assert.Error(t, err)
}

func TestLoadModelsMissingFile(t *testing.T) {
	_, err := LoadModels(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
