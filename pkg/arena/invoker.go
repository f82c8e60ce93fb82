package arena

import (
	"context"
	"fmt"

	"github.com/harun/arena/pkg/llm"
	"github.com/rs/zerolog"
)

// CallClient is the resilient call layer the invoker delegates to.
type CallClient interface {
	Send(ctx context.Context, req llm.ChatRequest) (*llm.Reply, error)
}

// BudgetTable maps depth to the model's output token budget.
type BudgetTable struct {
	Quick    int `json:"quick" mapstructure:"quick"`
	Standard int `json:"standard" mapstructure:"standard"`
	Deep     int `json:"deep" mapstructure:"deep"`
}

// For resolves the budget for a depth value.
func (t BudgetTable) For(depth Depth) int {
	switch depth {
	case DepthQuick:
		return t.Quick
	case DepthDeep:
		return t.Deep
	default:
		return t.Standard
	}
}

// RoleTemperatures holds per-role generation temperatures. The
// Challenger runs hotter to encourage adversarial critique.
type RoleTemperatures struct {
	Builder    float64 `json:"builder" mapstructure:"builder"`
	Challenger float64 `json:"challenger" mapstructure:"challenger"`
	Judge      float64 `json:"judge" mapstructure:"judge"`
}

// For resolves the temperature for a role.
func (t RoleTemperatures) For(role Role) float64 {
	switch role {
	case RoleChallenger:
		return t.Challenger
	case RoleJudge:
		return t.Judge
	default:
		return t.Builder
	}
}

// InvokerConfig configures agent invocation
type InvokerConfig struct {
	Model        string
	Budgets      BudgetTable
	Temperatures RoleTemperatures
}

// Invoker builds role-specific prompts and delegates calls to the
// resilient client with the resolved generation parameters.
type Invoker struct {
	client CallClient
	cfg    InvokerConfig
	logger zerolog.Logger
}

// NewInvoker creates a new agent invoker
func NewInvoker(client CallClient, cfg InvokerConfig, logger zerolog.Logger) (*Invoker, error) {
	if client == nil {
		return nil, fmt.Errorf("call client is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.Budgets.Quick <= 0 || cfg.Budgets.Standard <= 0 || cfg.Budgets.Deep <= 0 {
		return nil, fmt.Errorf("token budgets must be positive")
	}

	return &Invoker{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// RunAgent executes one agent turn. Failures from the call layer
// propagate unchanged.
func (inv *Invoker) RunAgent(ctx context.Context, role Role, req GoalRequest, prior *Context) (Turn, error) {
	messages, err := buildMessages(role, req, prior)
	if err != nil {
		return Turn{}, err
	}

	budget := inv.cfg.Budgets.For(req.Depth)
	temperature := inv.cfg.Temperatures.For(role)

	inv.logger.Debug().
		Str("role", role.Label()).
		Str("depth", string(req.Depth)).
		Int("token_budget", budget).
		Float64("temperature", temperature).
		Msg("Invoking agent")

	reply, err := inv.client.Send(ctx, llm.ChatRequest{
		Model:       inv.cfg.Model,
		Messages:    messages,
		MaxTokens:   budget,
		Temperature: temperature,
	})
	if err != nil {
		return Turn{}, err
	}

	return Turn{
		Role:        role,
		Prompt:      renderPrompt(messages),
		Response:    reply.Content,
		TokenBudget: budget,
		Model:       reply.Model,
		Latency:     reply.Latency,
	}, nil
}
