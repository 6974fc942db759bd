package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prodscope/prodscope/internal/model"
	"github.com/prodscope/prodscope/internal/prioritize"
)

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Rank pain points by JTBD opportunity and RICE score",
	Long:  "Reads a prioritization request (pain points, personas, problem statement) as JSON from a file or stdin and prints the ranked result.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input, _ := cmd.Flags().GetString("input")
		var r io.Reader = os.Stdin
		if input != "" && input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return eris.Wrapf(err, "opening %s", input)
			}
			defer f.Close() //nolint:errcheck
			r = f
		}

		var req model.PrioritizeRequest
		if err := json.NewDecoder(r).Decode(&req); err != nil {
			return eris.Wrap(err, "decoding prioritize request")
		}

		resp, err := prioritize.NewEngine(cfg, newLLM()).Prioritize(ctx, req)
		if err != nil {
			return eris.Wrap(err, "prioritize")
		}
		return printJSON(resp)
	},
}

func init() {
	prioritizeCmd.Flags().String("input", "-", "path to request JSON (default stdin)")
	rootCmd.AddCommand(prioritizeCmd)
}
