package config

// Config is the root configuration for agentwiz.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog,omitempty"`
	Assistant AssistantConfig `yaml:"assistant,omitempty"`
	Document  DocumentConfig  `yaml:"document,omitempty"`
	Wizard    WizardConfig    `yaml:"wizard,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Hooks     HooksConfig     `yaml:"hooks,omitempty"`
}

// CatalogConfig selects where the component library is read from.
type CatalogConfig struct {
	Source          string `yaml:"source,omitempty"` // "github" | "http" | "dir"
	Owner           string `yaml:"owner,omitempty"`
	Repo            string `yaml:"repo,omitempty"`
	Branch          string `yaml:"branch,omitempty"`
	BaseURL         string `yaml:"baseUrl,omitempty"` // source: http
	Dir             string `yaml:"dir,omitempty"`     // source: dir
	IndexFile       string `yaml:"indexFile,omitempty"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds,omitempty"`
	Cache           string `yaml:"cache,omitempty"` // "sqlite" | "memory" | "none"
	CacheTTLMinutes int    `yaml:"cacheTtlMinutes,omitempty"`
}

// AssistantConfig configures the conversation assistant.
type AssistantConfig struct {
	Provider       string                    `yaml:"provider,omitempty"` // "openai" | "none"
	Model          string                    `yaml:"model,omitempty"`
	APIKey         string                    `yaml:"apiKey,omitempty"`
	BaseURL        string                    `yaml:"baseUrl,omitempty"`
	Temperature    *float64                  `yaml:"temperature,omitempty"`
	MaxTokens      int                       `yaml:"maxTokens,omitempty"`
	TimeoutSeconds int                       `yaml:"timeoutSeconds,omitempty"`
	Fallbacks      []string                  `yaml:"fallbacks,omitempty"` // provider names tried in order
	Providers      map[string]ProviderConfig `yaml:"providers,omitempty"`
}

// ProviderConfig is a named OpenAI-compatible endpoint.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// DocumentConfig holds values stamped into every assembled agent.
type DocumentConfig struct {
	Namespace    string `yaml:"namespace,omitempty"`
	Environment  string `yaml:"environment,omitempty"`
	Organization string `yaml:"organization,omitempty"`
	Team         string `yaml:"team,omitempty"`
	User         string `yaml:"user,omitempty"`
}

// WizardConfig tunes the interactive flow.
type WizardConfig struct {
	AcceptPhrases []string `yaml:"acceptPhrases,omitempty"`
	StrictNames   *bool    `yaml:"strictNames,omitempty"` // agentName must be a DNS-1123 subdomain; defaults to true
}

// Strict reports whether agent names are validated.
func (w WizardConfig) Strict() bool {
	return w.StrictNames == nil || *w.StrictNames
}

// StoreConfig locates the local database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // empty means <base>/data/agentwiz.db
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// HooksConfig defines shell commands run on wizard events.
type HooksConfig struct {
	StepChanged       []HookEntry `yaml:"stepChanged,omitempty"`
	DocumentAssembled []HookEntry `yaml:"documentAssembled,omitempty"`
	SessionCompleted  []HookEntry `yaml:"sessionCompleted,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}
