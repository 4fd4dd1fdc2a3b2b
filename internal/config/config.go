package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Default component library location.
const (
	DefaultCatalogOwner  = "sandeepettads"
	DefaultCatalogRepo   = "agent-component-library"
	DefaultCatalogBranch = "main"
)

// DefaultAcceptPhrases are the phrases that accept generated content.
var DefaultAcceptPhrases = []string{"looks good", "proceed", "continue"}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}
