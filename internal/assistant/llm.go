package assistant

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/llm"
	"github.com/soyeahso/agentwiz/internal/logging"
)

// maxHistory bounds the reply conversation kept for context.
const maxHistory = 20

// LLMOptions tunes step replies. Generation and refinement use fixed
// sampling settings per content kind.
type LLMOptions struct {
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLM is an Assistant backed by a chat completion client.
type LLM struct {
	client llm.Client
	opts   LLMOptions
	log    *logging.Logger

	mu      sync.Mutex
	history []llm.Message
}

// NewLLM creates an assistant over client.
func NewLLM(client llm.Client, opts LLMOptions, log *logging.Logger) *LLM {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	return &LLM{client: client, opts: opts, log: log.Sub("assistant")}
}

func (a *LLM) Live() bool { return true }

// Reply sends the instruction with the session context and the recent
// conversation, and records the exchange.
func (a *LLM) Reply(ctx context.Context, p Prompt, c Context) (string, error) {
	a.mu.Lock()
	history := append([]llm.Message(nil), a.history...)
	a.mu.Unlock()

	req := llm.CompletionRequest{
		System:      wizardSystemPrompt + "\n\nCurrent context:\n" + c.Summary(),
		Messages:    append(history, llm.Message{Role: llm.RoleUser, Content: p.Instruction}),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.opts.Temperature,
	}

	text, err := a.complete(ctx, "reply", req)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.history = append(a.history,
		llm.Message{Role: llm.RoleUser, Content: p.Instruction},
		llm.Message{Role: llm.RoleAssistant, Content: text},
	)
	if over := len(a.history) - maxHistory; over > 0 {
		a.history = a.history[over:]
	}
	a.mu.Unlock()

	return text, nil
}

// Generate writes a backstory or system prompt.
func (a *LLM) Generate(ctx context.Context, kind Kind, c Context) (string, error) {
	if c.Persona == nil {
		return "", domain.Errorf(domain.GenerationFailed, "generate", "no persona selected")
	}

	var req llm.CompletionRequest
	switch kind {
	case KindBackstory:
		req = llm.CompletionRequest{
			System:      backstoryWriter,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: backstoryRequest(c)}},
			MaxTokens:   300,
			Temperature: llm.Temperature(0.8),
		}
	case KindSystemPrompt:
		req = llm.CompletionRequest{
			System:      promptWriter,
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: systemPromptRequest(c)}},
			MaxTokens:   800,
			Temperature: llm.Temperature(0.7),
		}
	default:
		return "", domain.Errorf(domain.GenerationFailed, "generate", "unknown content kind %q", kind)
	}

	text, err := a.complete(ctx, string(kind), req)
	if err != nil {
		return "", domain.Wrap(domain.GenerationFailed, "generate "+string(kind), err)
	}
	return text, nil
}

// Refine rewrites current from feedback. An empty completion keeps current.
func (a *LLM) Refine(ctx context.Context, kind Kind, current, feedback string, c Context) (string, error) {
	maxTokens := 800
	if kind == KindBackstory {
		maxTokens = 300
	}
	req := llm.CompletionRequest{
		System:      refiner,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: refineRequest(kind, current, feedback, c)}},
		MaxTokens:   maxTokens,
		Temperature: llm.Temperature(0.7),
	}

	text, err := a.complete(ctx, "refine "+string(kind), req)
	if err != nil {
		if domain.IsKind(err, domain.GenerationFailed) {
			return current, nil
		}
		return "", domain.Wrap(domain.GenerationFailed, "refine "+string(kind), err)
	}
	return text, nil
}

// Reset forgets the reply conversation.
func (a *LLM) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

func (a *LLM) complete(ctx context.Context, purpose string, req llm.CompletionRequest) (string, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		a.log.Warn().Err(err).Str("purpose", purpose).Msg("completion failed")
		return "", err
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", domain.Errorf(domain.GenerationFailed, purpose, "empty completion")
	}

	a.log.Debug().
		Str("purpose", purpose).
		Str("model", resp.Model).
		Int("inputTokens", resp.Usage.InputTokens).
		Int("outputTokens", resp.Usage.OutputTokens).
		Dur("duration", resp.Duration).
		Msg("completion")
	return text, nil
}

var _ Assistant = (*LLM)(nil)
var _ Assistant = Fallback{}
