package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brdgen",
	Short: "Business Requirements Document generator",
	Long: `brdgen generates a Business Requirements Document from a corpus of
legacy system files (rule exports, data model sheets, interface specs).

Six specialized manager agents analyze the corpus in three phases:
  1. Parallel:    drool (business rules) and model (data model) run together
  2. Sequential:  outbound, transformation, and inbound build on stored
                  upstream outputs
  3. Review:      the reviewer validates everything and sends flagged
                  managers back to work, up to the retry limit

Each agent writes its section to <output>/agent_outputs/; the run report
lands in <output>/brd_report.json.

Configuration comes from brdgen.yaml in the working directory and
BRDGEN_-prefixed environment variables. The Anthropic API key is read
from ANTHROPIC_API_KEY unless AWS Bedrock is configured.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
