package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate user journeys and predict churn",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		problem, _ := cmd.Flags().GetString("problem")
		users, _ := cmd.Flags().GetString("users")
		flow, _ := cmd.Flags().GetString("flow")
		scenarios, _ := cmd.Flags().GetInt("scenarios")

		simulator, err := sim.NewSimulator(cfg, newLLM())
		if err != nil {
			return err
		}

		resp, err := simulator.Simulate(ctx, model.SimulationRequest{
			ProblemStatement: problem,
			TargetUsers:      users,
			ProductFlow:      flow,
			NumScenarios:     scenarios,
		})
		if err != nil {
			return eris.Wrap(err, "simulate")
		}
		return printJSON(resp)
	},
}

func init() {
	simulateCmd.Flags().String("problem", "", "problem the product solves (required)")
	simulateCmd.Flags().String("users", "", "target user description")
	simulateCmd.Flags().String("flow", "", "product flow to walk through (required)")
	simulateCmd.Flags().Int("scenarios", 5, "number of scenarios to run")
	rootCmd.AddCommand(simulateCmd)
}
