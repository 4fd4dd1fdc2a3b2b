package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/soyeahso/agentwiz/internal/logging"
)

// FailoverClient wraps a registry to try fallback providers on failure.
type FailoverClient struct {
	registry  *Registry
	primary   string
	fallbacks []string
	log       *logging.Logger
}

// NewFailoverClient creates a client that tries the primary provider first,
// then falls back through the list on retryable errors (401, 429, 5xx).
func NewFailoverClient(registry *Registry, primary string, fallbacks []string, log *logging.Logger) *FailoverClient {
	return &FailoverClient{
		registry:  registry,
		primary:   primary,
		fallbacks: fallbacks,
		log:       log.Sub("failover"),
	}
}

func (f *FailoverClient) Name() string { return f.primary }

// Complete tries the primary provider, falling back on retryable errors.
func (f *FailoverClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for _, target := range f.targets() {
		client, err := f.registry.Resolve(target)
		if err != nil {
			f.log.Debug().Str("provider", target).Err(err).Msg("no provider, skipping")
			lastErr = err
			continue
		}

		resp, err := client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if ctx.Err() == nil && isRetryable(err) {
			f.log.Warn().
				Str("provider", target).
				Err(err).
				Msg("retryable error, trying next provider")
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

// Stream tries the primary provider for streaming, with failover.
func (f *FailoverClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	var lastErr error
	for _, target := range f.targets() {
		client, err := f.registry.Resolve(target)
		if err != nil {
			lastErr = err
			continue
		}

		ch, err := client.Stream(ctx, req)
		if err == nil {
			return ch, nil
		}

		lastErr = err

		if ctx.Err() == nil && isRetryable(err) {
			f.log.Warn().
				Str("provider", target).
				Err(err).
				Msg("retryable stream error, trying next provider")
			continue
		}

		return nil, err
	}

	return nil, lastErr
}

func (f *FailoverClient) targets() []string {
	return append([]string{f.primary}, f.fallbacks...)
}

// isRetryable checks if the error suggests trying another provider.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Code {
		case 401, 403, 429, 500, 502, 503, 529:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "capacity") ||
		strings.Contains(msg, "timeout")
}
