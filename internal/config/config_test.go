package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "github", cfg.Catalog.Source)
	assert.Equal(t, DefaultCatalogOwner, cfg.Catalog.Owner)
	assert.Equal(t, "catalog-index.json", cfg.Catalog.IndexFile)
	assert.Equal(t, 30, cfg.Catalog.TimeoutSeconds)
	assert.Equal(t, "sqlite", cfg.Catalog.Cache)
	assert.Equal(t, 60, cfg.Catalog.CacheTTLMinutes)

	assert.Equal(t, "openai", cfg.Assistant.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Assistant.Model)
	require.NotNil(t, cfg.Assistant.Temperature)
	assert.InDelta(t, 0.7, *cfg.Assistant.Temperature, 1e-9)
	assert.Equal(t, 2000, cfg.Assistant.MaxTokens)

	assert.Equal(t, "agent-workspace", cfg.Document.Namespace)
	assert.Equal(t, "Agent Development", cfg.Document.Team)
	assert.Equal(t, []string{"looks good", "proceed", "continue"}, cfg.Wizard.AcceptPhrases)
	assert.True(t, cfg.Wizard.Strict())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.ConsoleStyle)
}

func TestDefaultsDoNotShareAcceptPhrases(t *testing.T) {
	cfg := Defaults()
	cfg.Wizard.AcceptPhrases[0] = "changed"
	assert.Equal(t, "looks good", DefaultAcceptPhrases[0])
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "github", cfg.Catalog.Source)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Assistant.APIKey)
}

func TestLoadValidYAML(t *testing.T) {
	t.Setenv("AZURE_KEY", "az-secret")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
catalog:
  source: dir
  dir: /srv/components
  cache: memory
assistant:
  provider: openai
  model: gpt-4o
  apiKey: sk-inline
  temperature: 0
  fallbacks: [azure]
  providers:
    azure:
      apiKey: ${AZURE_KEY}
      baseUrl: https://example.openai.azure.com/v1
document:
  namespace: finance
  team: Payments
wizard:
  acceptPhrases: [ship it]
  strictNames: false
logging:
  level: debug
  consoleStyle: json
hooks:
  documentAssembled:
    - command: ./notify.sh
      timeout: 5000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dir", cfg.Catalog.Source)
	assert.Equal(t, "/srv/components", cfg.Catalog.Dir)
	assert.Equal(t, "memory", cfg.Catalog.Cache)
	assert.Equal(t, 30, cfg.Catalog.TimeoutSeconds, "unset fields get defaults")

	assert.Equal(t, "gpt-4o", cfg.Assistant.Model)
	assert.Equal(t, "sk-inline", cfg.Assistant.APIKey)
	require.NotNil(t, cfg.Assistant.Temperature)
	assert.Zero(t, *cfg.Assistant.Temperature, "explicit zero temperature is kept")
	assert.Equal(t, "az-secret", cfg.Assistant.Providers["azure"].APIKey)
	assert.Equal(t, []string{"azure"}, cfg.Assistant.Fallbacks)

	assert.Equal(t, "finance", cfg.Document.Namespace)
	assert.Equal(t, "Payments", cfg.Document.Team)
	assert.Equal(t, "Enterprise", cfg.Document.Organization)

	assert.Equal(t, []string{"ship it"}, cfg.Wizard.AcceptPhrases)
	assert.False(t, cfg.Wizard.Strict())

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)

	require.Len(t, cfg.Hooks.DocumentAssembled, 1)
	assert.Equal(t, 5000, cfg.Hooks.DocumentAssembled[0].Timeout)

	assert.Empty(t, Validate(&cfg))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")

	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AGENTWIZ_LOG_LEVEL", "TRACE")
	t.Setenv("AGENTWIZ_CATALOG_SOURCE", "HTTP")
	t.Setenv("AGENTWIZ_CATALOG_BASE_URL", "https://components.internal")
	t.Setenv("AGENTWIZ_ASSISTANT_PROVIDER", "none")
	t.Setenv("AGENTWIZ_ASSISTANT_MODEL", "gpt-4.1")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "http", cfg.Catalog.Source)
	assert.Equal(t, "https://components.internal", cfg.Catalog.BaseURL)
	assert.Equal(t, "none", cfg.Assistant.Provider)
	assert.Equal(t, "gpt-4.1", cfg.Assistant.Model)
	assert.Equal(t, "sk-env", cfg.Assistant.APIKey)
}

func TestLoadFileKeyBeatsEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant:\n  apiKey: sk-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.Assistant.APIKey)
}

func TestExpandEnvVarsLeavesUnset(t *testing.T) {
	t.Setenv("SET_ONE", "x")
	assert.Equal(t, "x-${UNSET_ONE_XYZ}", expandEnvVars("${SET_ONE}-${UNSET_ONE_XYZ}"))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	raw := map[string]any{
		"catalog": map[string]any{
			"timeoutSeconds": 10,
		},
	}

	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"catalog", "timeoutSeconds"})
	assert.True(t, ok)
	assert.Equal(t, 10, val)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRawMissingAndEmpty(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	raw, err = LoadRaw(path)
	require.NoError(t, err)
	assert.NotNil(t, raw)
}
