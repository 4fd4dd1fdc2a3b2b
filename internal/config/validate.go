package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	oneOf := func(path, value string, valid []string) {
		if value != "" && !slices.Contains(valid, value) {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: fmt.Sprintf("must be one of %v, got %q", valid, value),
			})
		}
	}

	// Catalog
	oneOf("catalog.source", cfg.Catalog.Source, []string{"github", "http", "dir"})
	oneOf("catalog.cache", cfg.Catalog.Cache, []string{"sqlite", "memory", "none"})
	switch cfg.Catalog.Source {
	case "github":
		if cfg.Catalog.Owner == "" || cfg.Catalog.Repo == "" {
			issues = append(issues, ValidationIssue{Path: "catalog.repo", Message: "owner and repo are required for source github"})
		}
	case "http":
		if cfg.Catalog.BaseURL == "" {
			issues = append(issues, ValidationIssue{Path: "catalog.baseUrl", Message: "required for source http"})
		}
	case "dir":
		if cfg.Catalog.Dir == "" {
			issues = append(issues, ValidationIssue{Path: "catalog.dir", Message: "required for source dir"})
		}
	}
	if cfg.Catalog.TimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{Path: "catalog.timeoutSeconds", Message: "must not be negative"})
	}
	if cfg.Catalog.CacheTTLMinutes < 0 {
		issues = append(issues, ValidationIssue{Path: "catalog.cacheTtlMinutes", Message: "must not be negative"})
	}

	// Assistant
	oneOf("assistant.provider", cfg.Assistant.Provider, []string{"openai", "none"})
	if t := cfg.Assistant.Temperature; t != nil && (*t < 0 || *t > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "assistant.temperature",
			Message: fmt.Sprintf("must be 0-2, got %g", *t),
		})
	}
	if cfg.Assistant.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{Path: "assistant.maxTokens", Message: "must not be negative"})
	}
	for _, name := range cfg.Assistant.Fallbacks {
		if name == "openai" {
			continue
		}
		if _, ok := cfg.Assistant.Providers[name]; !ok {
			issues = append(issues, ValidationIssue{
				Path:    "assistant.fallbacks",
				Message: fmt.Sprintf("unknown provider %q", name),
			})
		}
	}

	// Wizard
	for i, p := range cfg.Wizard.AcceptPhrases {
		if p == "" {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("wizard.acceptPhrases[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	oneOf("logging.level", cfg.Logging.Level, validLogLevels)
	oneOf("logging.consoleStyle", cfg.Logging.ConsoleStyle, []string{"pretty", "compact", "json"})

	// Hooks
	hookLists := []struct {
		path    string
		entries []HookEntry
	}{
		{"hooks.stepChanged", cfg.Hooks.StepChanged},
		{"hooks.documentAssembled", cfg.Hooks.DocumentAssembled},
		{"hooks.sessionCompleted", cfg.Hooks.SessionCompleted},
	}
	for _, list := range hookLists {
		for i, h := range list.entries {
			if h.Command == "" {
				issues = append(issues, ValidationIssue{
					Path:    fmt.Sprintf("%s[%d].command", list.path, i),
					Message: "command is required",
				})
			}
		}
	}

	return issues
}
