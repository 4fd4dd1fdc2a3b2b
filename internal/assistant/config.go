package assistant

import (
	"slices"
	"time"

	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/llm"
	"github.com/soyeahso/agentwiz/internal/logging"
)

// FromConfig builds the assistant described by the assistant config
// section. Without a usable provider it returns Fallback.
func FromConfig(cfg config.AssistantConfig, log *logging.Logger) Assistant {
	if cfg.Provider == "none" {
		log.Sub("assistant").Info().Msg("assistant disabled, using templates")
		return Fallback{}
	}

	reg := llm.NewRegistryFromConfig(cfg, log)
	if reg.Len() == 0 {
		log.Sub("assistant").Warn().Msg("no API key configured, using templates")
		return Fallback{}
	}

	primary, fallbacks := route(reg.List(), cfg.Fallbacks)
	client := llm.NewFailoverClient(reg, primary, fallbacks, log)

	return NewLLM(client, LLMOptions{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, log)
}

// route picks the primary provider and the fallbacks that are registered.
// "openai" leads when present; otherwise the first registered fallback does.
func route(registered, fallbacks []string) (string, []string) {
	var order []string
	if slices.Contains(registered, "openai") {
		order = append(order, "openai")
	}
	for _, name := range fallbacks {
		if slices.Contains(registered, name) && !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		order = append(order, registered[0])
	}
	return order[0], order[1:]
}
