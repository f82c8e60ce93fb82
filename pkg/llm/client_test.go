package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider replays a scripted sequence of results and records
// every request it receives.
type fakeProvider struct {
	mu       sync.Mutex
	script   []fakeResult
	next     int
	requests []ChatRequest
}

type fakeResult struct {
	content string
	err     error
}

func (p *fakeProvider) Provider() string { return "fake" }

func (p *fakeProvider) Call(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, request)

	if p.next >= len(p.script) {
		return nil, fmt.Errorf("script exhausted")
	}

	result := p.script[p.next]
	p.next++

	if result.err != nil {
		return nil, result.err
	}
	return &ChatResponse{Content: result.content, Model: request.Model}, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func newTestClient(t *testing.T, provider Provider, fallbacks ...string) *Client {
	t.Helper()

	client, err := NewClient(provider, ClientConfig{
		MaxAttempts:    3,
		BackoffBase:    time.Millisecond,
		FallbackModels: fallbacks,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)

	return client
}

func validRequest() ChatRequest {
	return ChatRequest{
		Model: "test-model",
		Messages: []Message{
			{Role: RoleSystem, Content: "be helpful"},
			{Role: RoleUser, Content: "hello"},
		},
		MaxTokens:   900,
		Temperature: 0.4,
	}
}

var errRateLimited = errors.New("429: rate limit exceeded")

func TestNewClient(t *testing.T) {
	t.Run("should require a provider", func(t *testing.T) {
		_, err := NewClient(nil, ClientConfig{})
		assert.Error(t, err)
	})

	t.Run("should apply defaults", func(t *testing.T) {
		client, err := NewClient(&fakeProvider{}, ClientConfig{})
		require.NoError(t, err)
		assert.Equal(t, 3, client.maxAttempts)
		assert.Equal(t, time.Second, client.backoffBase)
	})
}

func TestSendValidation(t *testing.T) {
	provider := &fakeProvider{}
	client := newTestClient(t, provider)

	cases := []struct {
		name   string
		mutate func(*ChatRequest)
	}{
		{"empty model", func(r *ChatRequest) { r.Model = "" }},
		{"empty messages", func(r *ChatRequest) { r.Messages = nil }},
		{"last message not user", func(r *ChatRequest) {
			r.Messages = []Message{{Role: RoleSystem, Content: "x"}}
		}},
		{"zero max tokens", func(r *ChatRequest) { r.MaxTokens = 0 }},
		{"temperature too high", func(r *ChatRequest) { r.Temperature = 2.5 }},
		{"negative temperature", func(r *ChatRequest) { r.Temperature = -0.1 }},
	}

	for _, tc := range cases {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			_, err := client.Send(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	t.Run("should make no network call on validation failure", func(t *testing.T) {
		assert.Equal(t, 0, provider.callCount())
	})
}

func TestSendRetry(t *testing.T) {
	t.Run("should succeed on first attempt", func(t *testing.T) {
		provider := &fakeProvider{script: []fakeResult{{content: "ok"}}}
		client := newTestClient(t, provider)

		reply, err := client.Send(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, "ok", reply.Content)
		assert.Equal(t, "test-model", reply.Model)
		assert.Equal(t, 1, reply.Attempts)
	})

	t.Run("should recover from transient failures at ceiling-1", func(t *testing.T) {
		provider := &fakeProvider{script: []fakeResult{
			{err: errRateLimited},
			{err: errRateLimited},
			{content: "third time lucky"},
		}}
		client := newTestClient(t, provider)

		reply, err := client.Send(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, "third time lucky", reply.Content)
		assert.Equal(t, 3, reply.Attempts)
		assert.Equal(t, 3, provider.callCount())
	})

	t.Run("should fail with upstream unavailable when ceiling exhausted", func(t *testing.T) {
		provider := &fakeProvider{script: []fakeResult{
			{err: errRateLimited},
			{err: errRateLimited},
			{err: errRateLimited},
		}}
		client := newTestClient(t, provider)

		_, err := client.Send(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, errRateLimited)
		assert.Equal(t, 3, provider.callCount())
	})

	t.Run("should not retry client-side errors", func(t *testing.T) {
		badRequest := errors.New("400: invalid request payload")
		provider := &fakeProvider{script: []fakeResult{{err: badRequest}}}
		client := newTestClient(t, provider, "fallback-model")

		_, err := client.Send(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, 1, provider.callCount(), "no retries and no fallback models")
	})

	t.Run("should abort at retry boundary when context cancelled", func(t *testing.T) {
		provider := &fakeProvider{script: []fakeResult{
			{err: errRateLimited},
			{content: "never reached"},
		}}
		client, err := NewClient(provider, ClientConfig{
			MaxAttempts: 3,
			BackoffBase: time.Hour,
			Logger:      zerolog.Nop(),
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err = client.Send(ctx, validRequest())
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, provider.callCount())
	})
}

func TestSendFallback(t *testing.T) {
	t.Run("should fall back to alternate models after primary exhausts", func(t *testing.T) {
		provider := &fakeProvider{script: []fakeResult{
			{err: errRateLimited},
			{err: errRateLimited},
			{err: errRateLimited},
			{content: "answered by fallback"},
		}}
		client := newTestClient(t, provider, "fallback-model")

		reply, err := client.Send(context.Background(), validRequest())
		require.NoError(t, err)
		assert.Equal(t, "answered by fallback", reply.Content)
		assert.Equal(t, "fallback-model", reply.Model)
		assert.Equal(t, 4, reply.Attempts)

		assert.Equal(t, "test-model", provider.requests[0].Model)
		assert.Equal(t, "fallback-model", provider.requests[3].Model)
	})

	t.Run("should skip a fallback equal to the primary", func(t *testing.T) {
		provider := &fakeProvider{}
		client := newTestClient(t, provider, "test-model", "other-model")

		assert.Equal(t, []string{"test-model", "other-model"}, client.modelsToTry("test-model"))
	})

	t.Run("should preserve the last cause when every model fails", func(t *testing.T) {
		lastErr := errors.New("503 service unavailable")
		provider := &fakeProvider{script: []fakeResult{
			{err: errRateLimited},
			{err: errRateLimited},
			{err: errRateLimited},
			{err: lastErr},
			{err: lastErr},
			{err: lastErr},
		}}
		client := newTestClient(t, provider, "fallback-model")

		_, err := client.Send(context.Background(), validRequest())
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, lastErr)
	})
}
