package arena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harun/arena/internal/observability"
	"github.com/rs/zerolog"
)

// State is the orchestrator's position in one run.
type State string

const (
	StateIdle              State = "idle"
	StateRunningBuilder    State = "running_builder"
	StateRunningChallenger State = "running_challenger"
	StateRunningJudge      State = "running_judge"
	StateComplete          State = "complete"
	StateFailed            State = "failed"
)

// Status is the terminal outcome of a run.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Stage names the step a failure originated from.
type Stage string

const (
	StageValidation Stage = "validation"
	StageBuilder    Stage = "builder"
	StageChallenger Stage = "challenger"
	StageJudge      Stage = "judge"
)

// RunOutcome is what the orchestration boundary returns: either a
// completed report or a structured failure description. Raw transport
// errors never cross this boundary.
type RunOutcome struct {
	Status     Status  `json:"status"`
	RunID      string  `json:"run_id"`
	Report     string  `json:"report,omitempty"`
	ModelsUsed string  `json:"models_used,omitempty"`
	Stage      Stage   `json:"stage,omitempty"`
	Diagnostic string  `json:"diagnostic,omitempty"`
	Result     *Result `json:"-"`
}

// AgentRunner runs one agent turn.
type AgentRunner interface {
	RunAgent(ctx context.Context, role Role, req GoalRequest, prior *Context) (Turn, error)
}

// Orchestrator runs the three agents in fixed dependency order,
// threading each output into the next prompt. State is local to one
// run, so a single orchestrator serves concurrent callers.
type Orchestrator struct {
	invoker AgentRunner
	logger  zerolog.Logger
}

// New creates a new arena orchestrator
func New(invoker AgentRunner, logger zerolog.Logger) (*Orchestrator, error) {
	observability.EnsureRegistered()

	if invoker == nil {
		return nil, fmt.Errorf("agent runner is required")
	}

	return &Orchestrator{
		invoker: invoker,
		logger:  logger,
	}, nil
}

// run tracks one arena execution.
type run struct {
	id     string
	state  State
	req    GoalRequest
	result Result
	logger zerolog.Logger
}

func (r *run) transition(next State) {
	r.logger.Debug().
		Str("from", string(r.state)).
		Str("to", string(next)).
		Msg("State transition")
	r.state = next
}

// Run executes one complete arena: Builder, then Challenger seeded
// with the Builder's output, then Judge seeded with both. It never
// panics or returns an error past this boundary; every failure is
// converted into a Failed outcome naming the originating stage.
func (o *Orchestrator) Run(ctx context.Context, req GoalRequest) RunOutcome {
	start := time.Now()
	r := &run{
		id:    uuid.New().String(),
		state: StateIdle,
		req:   req,
	}
	r.logger = o.logger.With().Str("run_id", r.id).Logger()
	r.result.RunID = r.id

	if err := req.Validate(); err != nil {
		r.transition(StateFailed)
		observability.RecordRun(string(StatusFailed), time.Since(start))
		return o.failed(r, StageValidation, err)
	}

	stages := []struct {
		state State
		stage Stage
		role  Role
	}{
		{StateRunningBuilder, StageBuilder, RoleBuilder},
		{StateRunningChallenger, StageChallenger, RoleChallenger},
		{StateRunningJudge, StageJudge, RoleJudge},
	}

	for _, s := range stages {
		r.transition(s.state)

		prior := &Context{
			BuilderText:    r.result.BuilderText,
			ChallengerText: r.result.ChallengerText,
		}
		if s.role == RoleBuilder {
			prior = nil
		}

		stageStart := time.Now()
		turn, err := o.invoker.RunAgent(ctx, s.role, req, prior)
		observability.ObserveStage(string(s.role), time.Since(stageStart))

		if err != nil {
			r.transition(StateFailed)
			observability.RecordStageFailure(string(s.role))
			observability.RecordRun(string(StatusFailed), time.Since(start))
			return o.failed(r, s.stage, err)
		}

		r.result.Turns = append(r.result.Turns, turn)
		switch s.role {
		case RoleBuilder:
			r.result.BuilderText = turn.Response
		case RoleChallenger:
			r.result.ChallengerText = turn.Response
		case RoleJudge:
			r.result.JudgeText = turn.Response
		}
	}

	r.transition(StateComplete)
	observability.RecordRun(string(StatusComplete), time.Since(start))

	r.logger.Info().
		Dur("duration", time.Since(start)).
		Msg("Arena run complete")

	return RunOutcome{
		Status:     StatusComplete,
		RunID:      r.id,
		Report:     r.result.Report(),
		ModelsUsed: r.result.ModelsUsed(),
		Result:     &r.result,
	}
}

// failed converts an internal error into the user-facing terminal
// outcome. The full cause goes to the log; the caller gets a short
// diagnostic summary.
func (o *Orchestrator) failed(r *run, stage Stage, err error) RunOutcome {
	r.logger.Error().
		Str("stage", string(stage)).
		Err(err).
		Msg("Arena run failed")

	return RunOutcome{
		Status:     StatusFailed,
		RunID:      r.id,
		Stage:      stage,
		Diagnostic: summarize(err),
	}
}

// summarize trims an error chain to a single diagnostic line.
func summarize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}
