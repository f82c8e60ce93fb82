package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/harun/arena/pkg/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements CallClient, recording every request and
// answering from a per-role script.
type fakeClient struct {
	mu       sync.Mutex
	requests []llm.ChatRequest
	respond  func(req llm.ChatRequest) (*llm.Reply, error)
}

func (c *fakeClient) Send(ctx context.Context, req llm.ChatRequest) (*llm.Reply, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.respond != nil {
		return c.respond(req)
	}
	return &llm.Reply{Content: "response", Model: req.Model}, nil
}

func (c *fakeClient) lastRequest() llm.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

func testInvokerConfig() InvokerConfig {
	return InvokerConfig{
		Model: "test-model",
		Budgets: BudgetTable{
			Quick:    400,
			Standard: 900,
			Deep:     1600,
		},
		Temperatures: RoleTemperatures{
			Builder:    0.4,
			Challenger: 0.7,
			Judge:      0.4,
		},
	}
}

func newTestInvoker(t *testing.T, client CallClient) *Invoker {
	t.Helper()
	inv, err := NewInvoker(client, testInvokerConfig(), zerolog.Nop())
	require.NoError(t, err)
	return inv
}

func TestNewInvoker(t *testing.T) {
	t.Run("should require a call client", func(t *testing.T) {
		_, err := NewInvoker(nil, testInvokerConfig(), zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("should require a model", func(t *testing.T) {
		cfg := testInvokerConfig()
		cfg.Model = ""
		_, err := NewInvoker(&fakeClient{}, cfg, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("should require positive budgets", func(t *testing.T) {
		cfg := testInvokerConfig()
		cfg.Budgets.Quick = 0
		_, err := NewInvoker(&fakeClient{}, cfg, zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestRunAgentBudgets(t *testing.T) {
	t.Run("should forward a distinct budget per depth", func(t *testing.T) {
		client := &fakeClient{}
		inv := newTestInvoker(t, client)

		budgets := map[Depth]int{}
		for _, depth := range []Depth{DepthQuick, DepthStandard, DepthDeep} {
			req := testGoal()
			req.Depth = depth

			turn, err := inv.RunAgent(context.Background(), RoleBuilder, req, nil)
			require.NoError(t, err)

			sent := client.lastRequest()
			budgets[depth] = sent.MaxTokens
			assert.Equal(t, sent.MaxTokens, turn.TokenBudget)
		}

		assert.Equal(t, 400, budgets[DepthQuick])
		assert.Equal(t, 900, budgets[DepthStandard])
		assert.Equal(t, 1600, budgets[DepthDeep])
		assert.Less(t, budgets[DepthQuick], budgets[DepthStandard])
		assert.Less(t, budgets[DepthStandard], budgets[DepthDeep])
	})
}

func TestRunAgentTemperatures(t *testing.T) {
	t.Run("should run the challenger hotter than builder and judge", func(t *testing.T) {
		client := &fakeClient{}
		inv := newTestInvoker(t, client)
		prior := &Context{BuilderText: "plan", ChallengerText: "critique"}

		temps := map[Role]float64{}
		for _, role := range []Role{RoleBuilder, RoleChallenger, RoleJudge} {
			_, err := inv.RunAgent(context.Background(), role, testGoal(), prior)
			require.NoError(t, err)
			temps[role] = client.lastRequest().Temperature
		}

		assert.InDelta(t, 0.4, temps[RoleBuilder], 1e-9)
		assert.InDelta(t, 0.7, temps[RoleChallenger], 1e-9)
		assert.InDelta(t, 0.4, temps[RoleJudge], 1e-9)
	})
}

func TestRunAgentErrors(t *testing.T) {
	t.Run("should propagate call layer failures unchanged", func(t *testing.T) {
		upstream := fmt.Errorf("%w: all models exhausted", llm.ErrUpstreamUnavailable)
		client := &fakeClient{respond: func(llm.ChatRequest) (*llm.Reply, error) {
			return nil, upstream
		}}
		inv := newTestInvoker(t, client)

		_, err := inv.RunAgent(context.Background(), RoleBuilder, testGoal(), nil)
		assert.ErrorIs(t, err, llm.ErrUpstreamUnavailable)
		assert.True(t, errors.Is(err, upstream))
	})

	t.Run("should fail without calling out when context is incomplete", func(t *testing.T) {
		client := &fakeClient{}
		inv := newTestInvoker(t, client)

		_, err := inv.RunAgent(context.Background(), RoleJudge, testGoal(), nil)
		assert.Error(t, err)
		assert.Empty(t, client.requests)
	})
}

func TestRunAgentTurn(t *testing.T) {
	t.Run("should record prompt, response, and model on the turn", func(t *testing.T) {
		client := &fakeClient{respond: func(req llm.ChatRequest) (*llm.Reply, error) {
			return &llm.Reply{Content: "the plan", Model: "fallback-model"}, nil
		}}
		inv := newTestInvoker(t, client)

		turn, err := inv.RunAgent(context.Background(), RoleBuilder, testGoal(), nil)
		require.NoError(t, err)

		assert.Equal(t, RoleBuilder, turn.Role)
		assert.Equal(t, "the plan", turn.Response)
		assert.Equal(t, "fallback-model", turn.Model)
		assert.Contains(t, turn.Prompt, "Launch a SaaS in 30 days")
	})
}
