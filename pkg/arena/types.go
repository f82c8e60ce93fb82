package arena

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks an inbound request rejected before any network
// call is made.
var ErrValidation = errors.New("validation failed")

// Role identifies one of the three fixed agents.
type Role string

const (
	RoleBuilder    Role = "builder"
	RoleChallenger Role = "challenger"
	RoleJudge      Role = "judge"
)

// Label returns the role name as it appears in prompts and reports.
func (r Role) Label() string {
	switch r {
	case RoleBuilder:
		return "Builder"
	case RoleChallenger:
		return "Challenger"
	case RoleJudge:
		return "Judge"
	default:
		return string(r)
	}
}

// RiskPreference is the user-selected risk appetite, carried verbatim
// into every agent prompt.
type RiskPreference string

const (
	RiskLow    RiskPreference = "low"
	RiskMedium RiskPreference = "medium"
	RiskHigh   RiskPreference = "high"
)

// Depth controls the model's output length budget.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// GoalRequest is one user submission. Immutable once validated; owned
// by the orchestrator for the duration of a single run.
type GoalRequest struct {
	Goal  string         `json:"goal"`
	Risk  RiskPreference `json:"risk_preference"`
	Depth Depth          `json:"depth"`
}

// Validate rejects empty goals and out-of-range enum fields.
func (r GoalRequest) Validate() error {
	if strings.TrimSpace(r.Goal) == "" {
		return fmt.Errorf("%w: goal cannot be empty", ErrValidation)
	}

	switch r.Risk {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return fmt.Errorf("%w: unknown risk preference %q", ErrValidation, r.Risk)
	}

	switch r.Depth {
	case DepthQuick, DepthStandard, DepthDeep:
	default:
		return fmt.Errorf("%w: unknown depth %q", ErrValidation, r.Depth)
	}

	return nil
}

// Turn is the prompt/response pair produced by one agent invocation.
type Turn struct {
	Role        Role
	Prompt      string
	Response    string
	TokenBudget int
	Model       string
	Latency     time.Duration
}

// Context carries prior agent outputs into the next agent's prompt.
type Context struct {
	BuilderText    string
	ChallengerText string
}

// Result aggregates all three turns of a completed run.
type Result struct {
	RunID          string
	BuilderText    string
	ChallengerText string
	JudgeText      string
	Turns          []Turn
}

// Report assembles the final combined text block with labelled
// sections in fixed order.
func (r *Result) Report() string {
	var b strings.Builder

	b.WriteString("# Decision Arena\n\n")

	b.WriteString("## Builder\n")
	b.WriteString(strings.TrimSpace(r.BuilderText))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Challenger\n")
	b.WriteString(strings.TrimSpace(r.ChallengerText))
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Judge (Final)\n")
	b.WriteString(strings.TrimSpace(r.JudgeText))
	b.WriteString("\n")

	return b.String()
}

// ModelsUsed summarizes which model answered each turn, for the run
// info line accompanying the report.
func (r *Result) ModelsUsed() string {
	parts := make([]string, 0, len(r.Turns))
	for _, turn := range r.Turns {
		parts = append(parts, fmt.Sprintf("%s=%s", turn.Role.Label(), turn.Model))
	}
	return "Models used: " + strings.Join(parts, ", ")
}
