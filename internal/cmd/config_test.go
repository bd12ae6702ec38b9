package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convcom/convcom/internal/pkg/config"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
)

func TestConfigInit_NonInteractive(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "conv_commit_ai", ".env.commits")

	stdout, _, err := execute(t, environment{}, "config", "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, cfgPath)

	info, err := os.Stat(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	for _, key := range config.Keys {
		assert.Contains(t, string(content), key)
	}

	_, _, err = execute(t, environment{}, "config", "init", "--config", cfgPath)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidConfig), "second init must refuse to overwrite")
}

func TestConfigSetGetList(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), ".env.commits")
	key := "gsk_0123456789abcdefghijklmn"

	stdout, _, err := execute(t, environment{}, "config", "set", "groq", key, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "GROQ_API_KEY")
	assert.NotContains(t, stdout, key, "set must mask the key")
	assert.Contains(t, stdout, "klmn")

	stdout, _, err = execute(t, environment{}, "config", "get", "GROQ_API_KEY", "--config", cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, stdout, key)

	stdout, _, err = execute(t, environment{}, "config", "get", "groq", "--reveal", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, key+"\n", stdout)

	_, _, err = execute(t, environment{}, "config", "set", "model", "gemma2-9b-it", "--config", cfgPath)
	require.NoError(t, err)

	t.Setenv(config.KeyAnthropicAPIKey, "sk-ant-REDACTED")

	stdout, _, err = execute(t, environment{}, "config", "list", "--config", cfgPath)
	require.NoError(t, err)

	lines := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		lines[strings.Fields(line)[0]] = line
	}
	require.Len(t, lines, len(config.Keys))
	assert.Contains(t, lines[config.KeyGroqAPIKey], "(file)")
	assert.NotContains(t, lines[config.KeyGroqAPIKey], key)
	assert.Contains(t, lines[config.KeyAnthropicAPIKey], "(env)")
	assert.NotContains(t, lines[config.KeyAnthropicAPIKey], "sk-ant-0123456789")
	assert.Contains(t, lines[config.KeyModel], "gemma2-9b-it")
	assert.Contains(t, lines[config.KeyGroqEndpoint], "(unset)")
}

func TestConfigSet_UnknownKey(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), ".env.commits")

	_, _, err := execute(t, environment{}, "config", "set", "provider.name", "openai", "--config", cfgPath)
	require.Error(t, err)
	assert.Equal(t, 1, apperrors.GetExitCode(err))

	_, statErr := os.Stat(cfgPath)
	assert.True(t, os.IsNotExist(statErr), "a rejected set must not create the file")
}

func TestConfigPath(t *testing.T) {
	clearEnv(t)
	cfgPath := filepath.Join(t.TempDir(), ".env.commits")

	stdout, _, err := execute(t, environment{}, "config", "path", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfgPath+"\n", stdout)
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "", displayValue(config.KeyGroqAPIKey, ""))
	assert.Equal(t, "****", displayValue(config.KeyGroqAPIKey, "abc"))
	assert.Equal(t, "gemma2-9b-it", displayValue(config.KeyModel, "gemma2-9b-it"))
}
