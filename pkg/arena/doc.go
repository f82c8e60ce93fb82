// Package arena runs the three-agent decision pipeline: Builder,
// Challenger, Judge, in that fixed order.
//
// Invariants:
// - Stages run strictly sequentially; each prompt embeds the prior
//   stage's output verbatim.
// - The depth-resolved token budget reaches the call layer on every turn.
// - All call-layer failures are converted to a Failed outcome at the
//   orchestrator boundary; no raw transport error escapes it.
//
// Usage:
//
//	inv, _ := arena.NewInvoker(client, arena.InvokerConfig{...}, logger)
//	orch, _ := arena.New(inv, logger)
//	outcome := orch.Run(ctx, arena.GoalRequest{
//		Goal:  "Launch a SaaS in 30 days",
//		Risk:  arena.RiskMedium,
//		Depth: arena.DepthStandard,
//	})
//	_ = outcome.Report
package arena
