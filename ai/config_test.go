package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "none", cfg.EmbeddingAPIKey)
	assert.Zero(t, cfg.Dimensions)
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("https://api.openai.com"),
		WithEmbeddingModel("text-embedding-3-small"),
		WithEmbeddingAPIKey("sk-test"),
		WithDimensions(1536),
	)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "sk-test", cfg.EmbeddingAPIKey)
	assert.Equal(t, 1536, cfg.Dimensions)
}

func TestConfig_Normalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://localhost:9100"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:9100/v1", cfg.EmbeddingHost)
	})

	t.Run("strips trailing slash before adding v1", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://localhost:9100/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:9100/v1", cfg.EmbeddingHost)
	})

	t.Run("leaves v1 suffix alone", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost("http://localhost:9100/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:9100/v1", cfg.EmbeddingHost)
	})

	t.Run("defaults empty api key", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingAPIKey(""))
		cfg.Normalize()
		assert.Equal(t, "none", cfg.EmbeddingAPIKey)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative dimensions", func(t *testing.T) {
		cfg := NewConfig(WithDimensions(-1))
		assert.Error(t, cfg.Validate())
	})
}
