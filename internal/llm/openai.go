package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when neither the config nor the request names
// a model.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures an OpenAI-compatible provider.
type OpenAIConfig struct {
	Name    string // provider name, defaults to "openai"
	APIKey  string
	BaseURL string // empty means the public OpenAI endpoint
	Model   string
}

// OpenAIClient talks to any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client *openai.Client
	name   string
	model  string
}

// NewOpenAIClient creates a client for cfg.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		name:   cfg.Name,
		model:  cfg.Model,
	}
}

func (c *OpenAIClient) Name() string { return c.name }

// Complete sends a non-streaming chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req, false))
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "empty response"}
	}

	return &CompletionResponse{
		Content:    resp.Choices[0].Message.Content,
		StopReason: string(resp.Choices[0].FinishReason),
		Model:      resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Duration: time.Since(start),
	}, nil
}

// Stream sends a streaming chat completion request. The channel is closed
// after a "done" or "error" event.
func (c *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req, true))
	if err != nil {
		return nil, c.wrapError(err)
	}

	ch := make(chan StreamEvent)
	go func() {
		defer close(ch)
		defer stream.Close()

		start := time.Now()
		var content []byte
		var stop, model string
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				send(ctx, ch, StreamEvent{Type: "error", Error: c.wrapError(err).Error()})
				return
			}
			model = chunk.Model
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if fr := chunk.Choices[0].FinishReason; fr != "" {
				stop = string(fr)
			}
			if delta == "" {
				continue
			}
			content = append(content, delta...)
			if !send(ctx, ch, StreamEvent{Type: "delta", Content: delta}) {
				return
			}
		}

		send(ctx, ch, StreamEvent{
			Type: "done",
			Response: &CompletionResponse{
				Content:    string(content),
				StopReason: stop,
				Model:      model,
				Duration:   time.Since(start),
			},
		})
	}()
	return ch, nil
}

func (c *OpenAIClient) buildRequest(req CompletionRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	out := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	return out
}

func openAIRole(role string) string {
	switch role {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// wrapError converts API errors into ProviderError so failover can inspect
// the status code.
func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.name, Message: apiErr.Message, Code: apiErr.HTTPStatusCode}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: c.name, Message: reqErr.Error(), Code: reqErr.HTTPStatusCode}
	}
	return fmt.Errorf("%s API error: %w", c.name, err)
}

func send(ctx context.Context, ch chan<- StreamEvent, evt StreamEvent) bool {
	select {
	case ch <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}
