package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/logging"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// --- Registry tests ---

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry(silentLog())

	mock := &MockClient{ProviderName: "test-provider"}
	reg.Register("test-provider", mock)

	client, err := reg.Resolve("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", client.Name())
}

func TestRegistryAlias(t *testing.T) {
	reg := NewRegistry(silentLog())

	reg.Register("openai", &MockClient{ProviderName: "openai"})
	reg.Alias("gpt-4o-mini", "openai")

	client, err := reg.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry(silentLog())

	reg.Register("default-llm", &MockClient{ProviderName: "default-llm"})
	reg.SetFallback("default-llm")

	client, err := reg.Resolve("unknown-model-xyz")
	require.NoError(t, err)
	assert.Equal(t, "default-llm", client.Name())
}

func TestRegistryResolveNotFound(t *testing.T) {
	reg := NewRegistry(silentLog())

	_, err := reg.Resolve("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider")
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("b", &MockClient{ProviderName: "b"})
	reg.Register("a", &MockClient{ProviderName: "a"})

	assert.Equal(t, []string{"a", "b"}, reg.List())
	assert.Equal(t, 2, reg.Len())
}

func TestNewRegistryFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AssistantConfig
		want []string
	}{
		{
			name: "no key means no providers",
			cfg:  config.AssistantConfig{Provider: "openai", Model: "gpt-4o-mini"},
			want: []string{},
		},
		{
			name: "provider none",
			cfg:  config.AssistantConfig{Provider: "none", APIKey: "sk-test"},
			want: []string{},
		},
		{
			name: "primary and named endpoints",
			cfg: config.AssistantConfig{
				Provider: "openai",
				APIKey:   "sk-test",
				Model:    "gpt-4o-mini",
				Providers: map[string]config.ProviderConfig{
					"azure": {APIKey: "az-key", BaseURL: "https://example.openai.azure.com/v1", Model: "gpt-4o"},
					"local": {BaseURL: "http://localhost:11434/v1"},
				},
			},
			want: []string{"azure", "openai"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistryFromConfig(tt.cfg, silentLog())
			assert.Equal(t, tt.want, reg.List())
		})
	}
}

func TestNewRegistryFromConfigAliases(t *testing.T) {
	reg := NewRegistryFromConfig(config.AssistantConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		Providers: map[string]config.ProviderConfig{
			"azure": {APIKey: "az-key", Model: "gpt-4o"},
		},
	}, silentLog())

	c, err := reg.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "azure", c.Name())

	c, err = reg.Resolve("anything-else")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name(), "falls back to primary")
}

// --- MockClient tests ---

func TestMockClientComplete(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{
				Content: "The answer is 42",
				Usage:   Usage{InputTokens: 10, OutputTokens: 5},
			}, nil
		},
	}

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "What is the answer?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42", resp.Content)
	assert.Equal(t, 10, resp.Usage.InputTokens)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "What is the answer?", reqs[0].Messages[0].Content)
}

func TestMockClientCompleteError(t *testing.T) {
	mock := &MockClient{
		ProviderName: "test",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return nil, &ProviderError{Provider: "test", Message: "rate limited", Code: 429}
		},
	}

	_, err := mock.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
	assert.Equal(t, 429, provErr.Code)
	assert.Equal(t, "test: 429 rate limited", err.Error())
}

// --- Collect tests ---

func TestCollectUsesFinalResponse(t *testing.T) {
	mock := &MockClient{ProviderName: "test"}
	ch, err := mock.Stream(context.Background(), CompletionRequest{})
	require.NoError(t, err)

	resp, err := Collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "mock stream response", resp.Content)
}

func TestCollectConcatenatesDeltas(t *testing.T) {
	ch := make(chan StreamEvent, 3)
	ch <- StreamEvent{Type: "delta", Content: "Hel"}
	ch <- StreamEvent{Type: "delta", Content: "lo"}
	close(ch)

	resp, err := Collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "Hello", resp.Content)
}

func TestCollectError(t *testing.T) {
	ch := make(chan StreamEvent, 2)
	ch <- StreamEvent{Type: "delta", Content: "partial"}
	ch <- StreamEvent{Type: "error", Error: "stream reset"}
	close(ch)

	_, err := Collect(ch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream reset")
}
