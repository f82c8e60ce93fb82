package arena

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harun/arena/pkg/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProvider fails a fixed number of times per call sequence before
// answering, exercising the real retry path under the orchestrator.
type flakyProvider struct {
	mu           sync.Mutex
	failuresLeft int
	calls        int
}

func (p *flakyProvider) Provider() string { return "flaky" }

func (p *flakyProvider) Call(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return nil, errors.New("429: rate limit exceeded")
	}

	agentMsg := req.Messages[1].Content
	switch {
	case strings.Contains(agentMsg, "Agent: Builder"):
		return &llm.ChatResponse{Content: "plan text", Model: req.Model}, nil
	case strings.Contains(agentMsg, "Agent: Challenger"):
		return &llm.ChatResponse{Content: "critique text", Model: req.Model}, nil
	case strings.Contains(agentMsg, "Agent: Judge"):
		return &llm.ChatResponse{Content: "verdict text", Model: req.Model}, nil
	default:
		return nil, fmt.Errorf("unexpected prompt")
	}
}

func newPipeline(t *testing.T, provider llm.Provider) *Orchestrator {
	t.Helper()

	client, err := llm.NewClient(provider, llm.ClientConfig{
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	inv, err := NewInvoker(client, testInvokerConfig(), zerolog.Nop())
	require.NoError(t, err)

	orch, err := New(inv, zerolog.Nop())
	require.NoError(t, err)

	return orch
}

func TestPipelineRetryBoundary(t *testing.T) {
	t.Run("should complete when transient failures stop at ceiling-1", func(t *testing.T) {
		provider := &flakyProvider{failuresLeft: 2}
		orch := newPipeline(t, provider)

		outcome := orch.Run(context.Background(), testGoal())

		assert.Equal(t, StatusComplete, outcome.Status)
		// 2 failed + 1 successful builder attempts, then one call each
		// for challenger and judge
		assert.Equal(t, 5, provider.calls)
	})

	t.Run("should fail at the builder stage when the ceiling is exhausted", func(t *testing.T) {
		provider := &flakyProvider{failuresLeft: 3}
		orch := newPipeline(t, provider)

		outcome := orch.Run(context.Background(), testGoal())

		assert.Equal(t, StatusFailed, outcome.Status)
		assert.Equal(t, StageBuilder, outcome.Stage)
		assert.Contains(t, outcome.Diagnostic, "upstream unavailable")
		// the retry ceiling bounds the call count; no later stage runs
		assert.Equal(t, 3, provider.calls)
	})
}
