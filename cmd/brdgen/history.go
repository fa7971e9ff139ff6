package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dlange/brdgen/internal/state"
	"github.com/dlange/brdgen/pkg/models"
)

var (
	historyLimit int
	historyDB    string
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past pipeline runs",
	Long: `Show the recorded history of pipeline runs.

Without arguments, lists the most recent runs. With a run id, shows the
per-agent message breakdown of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "History database path (defaults to the user data directory)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := historyDB
	if path == "" {
		path = state.DefaultDBPath()
	}

	db, err := state.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	if len(args) == 1 {
		return showRun(db, args[0])
	}
	return listRuns(db)
}

func listRuns(db *state.DB) error {
	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s  %.1fs  $%.4f",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.ID, statusLabel(r.Status), r.ElapsedSec, r.CostEstimate)
		if r.WarningCount > 0 {
			fmt.Printf("  %s", color.YellowString("%d warning(s)", r.WarningCount))
		}
		fmt.Printf("\n  %s\n", r.Query)
	}
	return nil
}

func showRun(db *state.DB, runID string) error {
	msgs, err := db.RunMessages(runID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return fmt.Errorf("no messages recorded for run %s", runID)
	}

	fmt.Printf("Run %s (%d messages)\n", runID, len(msgs))
	for _, m := range msgs {
		fmt.Printf("  %-16s %s  %.0fms  %d bytes\n",
			m.AgentID, statusLabel(m.Status), m.DurationMS, m.ContentBytes)
	}
	return nil
}

func statusLabel(status models.MessageStatus) string {
	switch status {
	case models.StatusSuccess:
		return color.GreenString("%-8s", status)
	case models.StatusTimeout, models.StatusPartial, models.StatusFallback:
		return color.YellowString("%-8s", status)
	default:
		return color.RedString("%-8s", status)
	}
}
