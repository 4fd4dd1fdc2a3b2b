package config

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Assistant.APIKey = expandEnvVars(cfg.Assistant.APIKey)
	for name, provider := range cfg.Assistant.Providers {
		provider.APIKey = expandEnvVars(provider.APIKey)
		cfg.Assistant.Providers[name] = provider
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	cfg = Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	expandSensitiveFields(&cfg)
	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	c := &cfg.Catalog
	if c.Source == "" {
		c.Source = "github"
	}
	if c.Owner == "" {
		c.Owner = DefaultCatalogOwner
	}
	if c.Repo == "" {
		c.Repo = DefaultCatalogRepo
	}
	if c.Branch == "" {
		c.Branch = DefaultCatalogBranch
	}
	if c.IndexFile == "" {
		c.IndexFile = "catalog-index.json"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	if c.Cache == "" {
		c.Cache = "sqlite"
	}
	if c.CacheTTLMinutes == 0 {
		c.CacheTTLMinutes = 60
	}

	a := &cfg.Assistant
	if a.Provider == "" {
		a.Provider = "openai"
	}
	if a.Model == "" {
		a.Model = "gpt-4o-mini"
	}
	if a.Temperature == nil {
		t := 0.7
		a.Temperature = &t
	}
	if a.MaxTokens == 0 {
		a.MaxTokens = 2000
	}
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = 60
	}

	d := &cfg.Document
	if d.Namespace == "" {
		d.Namespace = "agent-workspace"
	}
	if d.Environment == "" {
		d.Environment = "dev"
	}
	if d.Organization == "" {
		d.Organization = "Enterprise"
	}
	if d.Team == "" {
		d.Team = "Agent Development"
	}
	if d.User == "" {
		d.User = "agent-builder"
	}

	if len(cfg.Wizard.AcceptPhrases) == 0 {
		cfg.Wizard.AcceptPhrases = slices.Clone(DefaultAcceptPhrases)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads AGENTWIZ_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTWIZ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("AGENTWIZ_CATALOG_SOURCE"); v != "" {
		cfg.Catalog.Source = strings.ToLower(v)
	}
	if v := os.Getenv("AGENTWIZ_CATALOG_DIR"); v != "" {
		cfg.Catalog.Dir = v
	}
	if v := os.Getenv("AGENTWIZ_CATALOG_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("AGENTWIZ_ASSISTANT_PROVIDER"); v != "" {
		cfg.Assistant.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("AGENTWIZ_ASSISTANT_MODEL"); v != "" {
		cfg.Assistant.Model = v
	}
	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}
