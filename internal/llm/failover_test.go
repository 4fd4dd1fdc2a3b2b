package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverSuccess(t *testing.T) {
	mock := &MockClient{
		ProviderName: "mock",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			return &CompletionResponse{Content: "ok"}, nil
		},
	}

	reg := NewRegistry(silentLog())
	reg.Register("mock", mock)
	fc := NewFailoverClient(reg, "mock", nil, silentLog())

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "mock", fc.Name())
}

func TestFailoverTriesFallback(t *testing.T) {
	callOrder := []string{}

	primary := &MockClient{
		ProviderName: "primary",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			callOrder = append(callOrder, "primary")
			return nil, &ProviderError{Provider: "primary", Message: "overloaded", Code: 529}
		},
	}

	fallback := &MockClient{
		ProviderName: "fallback",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			callOrder = append(callOrder, "fallback")
			return &CompletionResponse{Content: "fallback response"}, nil
		},
	}

	reg := NewRegistry(silentLog())
	reg.Register("primary", primary)
	reg.Register("fallback", fallback)

	fc := NewFailoverClient(reg, "primary", []string{"fallback"}, silentLog())

	resp, err := fc.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fallback response", resp.Content)
	assert.Equal(t, []string{"primary", "fallback"}, callOrder)
}

func TestFailoverNonRetryableStops(t *testing.T) {
	callCount := 0

	primary := &MockClient{
		ProviderName: "primary",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			callCount++
			return nil, fmt.Errorf("non-retryable error")
		},
	}

	fallback := &MockClient{
		ProviderName: "fallback",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			callCount++
			return &CompletionResponse{Content: "should not reach"}, nil
		},
	}

	reg := NewRegistry(silentLog())
	reg.Register("primary", primary)
	reg.Register("fallback", fallback)

	fc := NewFailoverClient(reg, "primary", []string{"fallback"}, silentLog())

	_, err := fc.Complete(context.Background(), CompletionRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, callCount, "should not try fallback on non-retryable error")
}

func TestFailoverStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	primary := &MockClient{
		ProviderName: "primary",
		CompleteFunc: func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
			calls++
			cancel()
			return nil, &ProviderError{Provider: "primary", Message: "timeout", Code: 503}
		},
	}
	reg := NewRegistry(silentLog())
	reg.Register("primary", primary)
	reg.Register("fallback", &MockClient{ProviderName: "fallback"})

	fc := NewFailoverClient(reg, "primary", []string{"fallback"}, silentLog())
	_, err := fc.Complete(ctx, CompletionRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFailoverNoProviders(t *testing.T) {
	fc := NewFailoverClient(NewRegistry(silentLog()), "openai", nil, silentLog())
	_, err := fc.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider")

	_, err = fc.Stream(context.Background(), CompletionRequest{})
	assert.Error(t, err)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(nil))
	assert.True(t, isRetryable(&ProviderError{Code: 429}))
	assert.True(t, isRetryable(&ProviderError{Code: 503}))
	assert.False(t, isRetryable(&ProviderError{Code: 400}))
	assert.True(t, isRetryable(errors.New("Rate limit exceeded")))
	assert.True(t, isRetryable(fmt.Errorf("wrapped: %w", &ProviderError{Code: 401})))
	assert.False(t, isRetryable(errors.New("bad request")))
}
