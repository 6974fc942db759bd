package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Mine community discussions for pain points",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		problem, _ := cmd.Flags().GetString("problem")
		users, _ := cmd.Flags().GetString("users")
		source, _ := cmd.Flags().GetString("source")
		numPersonas, _ := cmd.Flags().GetInt("personas")

		svc := research.NewService(cfg, newLLM())

		resp, err := svc.Research(ctx, model.ResearchRequest{
			ProblemStatement: problem,
			TargetUsers:      users,
			Source:           model.SourceName(source),
		})
		if err != nil {
			return eris.Wrap(err, "research")
		}

		if numPersonas > 0 {
			personas, err := svc.Personas(ctx, model.PersonaRequest{
				PainPoints:       resp.PainPoints,
				ProblemStatement: problem,
				TargetUsers:      users,
				NumPersonas:      numPersonas,
			})
			if err != nil {
				return eris.Wrap(err, "personas")
			}
			return printJSON(map[string]any{"research": resp, "personas": personas})
		}

		return printJSON(resp)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	researchCmd.Flags().String("problem", "", "problem statement to research (required)")
	researchCmd.Flags().String("users", "", "target user description")
	researchCmd.Flags().String("source", "", "data source: youtube, reddit, producthunt, hackernews, demo (default auto)")
	researchCmd.Flags().Int("personas", 0, "also generate N personas from the extracted pain points")
	rootCmd.AddCommand(researchCmd)
}
