package cli

import (
	"fmt"

	"github.com/harun/arena/pkg/arena"
	"github.com/spf13/cobra"
)

var (
	runGoal  string
	runRisk  string
	runDepth string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one decision arena from the command line",
	Long: `Runs a single Builder -> Challenger -> Judge arena for the
given goal and prints the combined report to stdout.`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runGoal, "goal", "", "decision or goal to analyze (required)")
	runCmd.Flags().StringVar(&runRisk, "risk", "medium", "risk preference (low, medium, high)")
	runCmd.Flags().StringVar(&runDepth, "depth", "standard", "analysis depth (quick, standard, deep)")
	runCmd.MarkFlagRequired("goal")

	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Close()

	orchestrator, err := buildOrchestrator(cfg, log.GetZerolog())
	if err != nil {
		return err
	}

	outcome := orchestrator.Run(cmd.Context(), arena.GoalRequest{
		Goal:  runGoal,
		Risk:  arena.RiskPreference(runRisk),
		Depth: arena.Depth(runDepth),
	})

	if outcome.Status == arena.StatusFailed {
		return fmt.Errorf("arena failed at %s stage: %s", outcome.Stage, outcome.Diagnostic)
	}

	fmt.Fprintln(cmd.OutOrStdout(), outcome.Report)
	fmt.Fprintln(cmd.OutOrStdout(), outcome.ModelsUsed)
	return nil
}
