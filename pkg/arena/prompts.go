package arena

import (
	"fmt"
	"strings"

	"github.com/harun/arena/pkg/llm"
)

// systemRules is the shared preamble every agent receives before its
// role-specific instructions.
const systemRules = `You are a high-signal decision assistant.
Be concrete, pragmatic, and action-oriented.
Avoid generic motivation. Avoid fluff.
If info is missing, state assumptions explicitly.
Format output in Markdown with clear headings and bullets.`

const builderPrompt = `Create the strongest possible plan and recommendation.
- Explain why this path could win.
- Provide a simple step-by-step approach.
- Include assumptions and what must be true for success.`

const challengerPrompt = `Attack the plan like a critical reviewer.
- Identify risks, hidden constraints, and failure modes.
- List what is missing/uncertain.
- Provide mitigations and "stop doing" advice.`

const judgePrompt = `Synthesize Builder + Challenger and decide.
Output MUST include:
1) Final recommendation (1-2 lines)
2) Key assumptions (bullets)
3) 7-day action plan (day-wise bullets)
4) Metrics to track (3-6 metrics)
5) If-then guardrails (e.g., 'If X by Day 3 not true, then do Y')`

func rolePrompt(role Role) string {
	switch role {
	case RoleBuilder:
		return builderPrompt
	case RoleChallenger:
		return challengerPrompt
	case RoleJudge:
		return judgePrompt
	default:
		return ""
	}
}

// buildMessages assembles the ordered message sequence for one agent
// turn. Prior agent outputs are embedded verbatim: the Challenger sees
// the Builder's full response, the Judge sees both.
func buildMessages(role Role, req GoalRequest, prior *Context) ([]llm.Message, error) {
	prompt := rolePrompt(role)
	if prompt == "" {
		return nil, fmt.Errorf("unknown agent role: %s", role)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemRules},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("You are Agent: %s.\n%s", role.Label(), prompt)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Decision/Goal:\n%s\n\nRisk preference: %s\nDepth: %s", req.Goal, req.Risk, req.Depth)},
	}

	switch role {
	case RoleChallenger:
		if prior == nil || prior.BuilderText == "" {
			return nil, fmt.Errorf("challenger requires the builder output")
		}
		messages = append(messages, llm.Message{
			Role:    llm.RoleUser,
			Content: "Builder Output:\n" + prior.BuilderText,
		})
	case RoleJudge:
		if prior == nil || prior.BuilderText == "" || prior.ChallengerText == "" {
			return nil, fmt.Errorf("judge requires both prior outputs")
		}
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: "Builder Output:\n" + prior.BuilderText},
			llm.Message{Role: llm.RoleUser, Content: "Challenger Output:\n" + prior.ChallengerText},
		)
	}

	return messages, nil
}

// renderPrompt flattens a message sequence into the single prompt text
// recorded on the turn.
func renderPrompt(messages []llm.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, fmt.Sprintf("[%s] %s", msg.Role, msg.Content))
	}
	return strings.Join(parts, "\n\n")
}
