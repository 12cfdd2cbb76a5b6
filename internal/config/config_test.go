package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 45*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, ":8390", cfg.Server.Addr)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "auto", cfg.Pov.Declared)
	assert.Equal(t, 0.20, cfg.Pov.MixedShare)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearProviderEnv(t)

	path := filepath.Join(t.TempDir(), "redline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: openai
  model: gpt-4o
  timeout: 30s
rules:
  builtin:
    grammar: true
    tone: false
  custom:
    - text: "No semicolons."
      enabled: true
server:
  addr: ":9999"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, ":9999", cfg.Server.Addr)
	require.Len(t, cfg.Rules.Custom, 1)
	assert.True(t, cfg.Rules.Builtin["grammar"])
	assert.False(t, cfg.Rules.Builtin["tone"])
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("key sets provider when empty", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ant-key", cfg.LLM.APIKey)
		assert.Equal(t, "anthropic", cfg.LLM.Provider)
	})

	t.Run("openai outranks anthropic", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")
		t.Setenv("OPENAI_API_KEY", "oa-key")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.LLM.APIKey)
		assert.Equal(t, "openai", cfg.LLM.Provider)
	})

	t.Run("explicit provider takes only its own key", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "gem-key")

		cfg := Default()
		cfg.LLM.Provider = "gemini"
		cfg.applyEnvOverrides()

		assert.Equal(t, "gem-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("base url and model overrides", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("REDLINE_BASE_URL", "http://localhost:1234/v1")
		t.Setenv("REDLINE_MODEL", "local-model")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.BaseURL)
		assert.Equal(t, "local-model", cfg.LLM.Model)
	})
}

func TestTimeoutDuration_Garbage(t *testing.T) {
	c := LLMConfig{Timeout: "not-a-duration"}
	assert.Equal(t, 45*time.Second, c.TimeoutDuration())
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "REDLINE_BASE_URL", "REDLINE_MODEL"} {
		t.Setenv(v, "")
	}
}
