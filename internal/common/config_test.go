package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, int64(10*1024*1024), config.Upload.MaxSizeBytes)
	assert.Contains(t, config.Upload.AllowedTypes, "application/pdf")
	assert.Equal(t, "tesseract", config.OCR.Binary)
	assert.Equal(t, "gemini", config.LLM.DefaultProvider)
	assert.Equal(t, float64(5), config.RateLimit.RequestsPerSecond)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig("/nonexistent/formforge.toml")
	require.NoError(t, err)
	assert.Equal(t, 8085, config.Server.Port)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formforge.toml")
	content := `
[server]
port = 9090
host = "0.0.0.0"

[llm]
default_provider = "claude"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "claude", config.LLM.DefaultProvider)
	assert.Equal(t, "info", config.Logging.Level, "untouched keys keep defaults")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("FORMFORGE_SERVER_PORT", "7070")
	t.Setenv("FORMFORGE_LOG_LEVEL", "debug")
	t.Setenv("GEMINI_API_KEY", "test-key")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "test-key", config.Gemini.APIKey)
}

func TestLoadConfig_InvalidProviderRejected(t *testing.T) {
	t.Setenv("FORMFORGE_LLM_PROVIDER", "oracle")

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := DefaultConfig()

	ApplyFlagOverrides(config, 6060, "example.internal")
	assert.Equal(t, 6060, config.Server.Port)
	assert.Equal(t, "example.internal", config.Server.Host)

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 6060, config.Server.Port, "zero values leave config untouched")
}
