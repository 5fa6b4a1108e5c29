package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "chainforge", cfg.Name)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
		assert.Equal(t, 3, cfg.Generation.MaxRetries)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai-compat
  model: gpt-4o-mini
generation:
  max_retries: 5
  retry_delay: 250ms
server:
  port: 9090
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "openai-compat", cfg.LLM.Provider)
		assert.Equal(t, 5, cfg.Generation.MaxRetries)
		assert.Equal(t, 250*time.Millisecond, cfg.Generation.RetryDelayDuration())
		assert.Equal(t, 9090, cfg.Server.Port)
		// Untouched sections keep their defaults.
		assert.Equal(t, 8192, cfg.Generation.MaxTokens)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestDurations(t *testing.T) {
	t.Run("invalid retry delay falls back", func(t *testing.T) {
		g := GenerationConfig{RetryDelay: "soon"}
		assert.Equal(t, time.Second, g.RetryDelayDuration())
	})

	t.Run("invalid timeout falls back", func(t *testing.T) {
		l := LLMConfig{Timeout: ""}
		assert.Equal(t, 2*time.Minute, l.TimeoutDuration())
	})
}
