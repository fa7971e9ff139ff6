package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/api"
	"github.com/dlange/brdgen/internal/config"
	"github.com/dlange/brdgen/internal/corpus"
	"github.com/dlange/brdgen/internal/drool"
	"github.com/dlange/brdgen/internal/grouper"
	"github.com/dlange/brdgen/internal/guardrail"
	"github.com/dlange/brdgen/internal/orchestrator"
	"github.com/dlange/brdgen/internal/outputs"
	"github.com/dlange/brdgen/internal/state"
	"github.com/dlange/brdgen/pkg/models"
)

var (
	runCorpusDir string
	runOutputDir string
	runDryRun    bool
	runNoFilter  bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Generate a BRD from the corpus",
	Long: `Run the full generation pipeline for one query.

The query describes what the BRD should cover, for example:
  brdgen run "Document the order processing system"

Corpus files are grouped per workbook (shared prefix before the
group delimiter) and large workbooks are processed in chunks, then
consolidated. Individual agent failures never abort the run; they are
reported as warnings and the BRD is assembled from whatever sections
succeeded.

Use --dry-run to see the corpus files and workbook grouping without
making any API calls.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	runCmd.Flags().StringVar(&runCorpusDir, "corpus", "", "Corpus directory (overrides config)")
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "Output directory (overrides config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Show the corpus files and grouping plan, then exit")
	runCmd.Flags().BoolVar(&runNoFilter, "no-filter", false, "Skip the relevance filter; drool sees the full corpus")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the history database")
}

func runGenerate(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("PANIC in run: %v", r)
		}
	}()

	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if runCorpusDir != "" {
		cfg.Paths.CorpusDir = runCorpusDir
	}
	if runOutputDir != "" {
		cfg.Paths.OutputDir = runOutputDir
	}

	guard := guardrail.New()
	if cfg.Paths.GuardrailRules != "" {
		if err := guard.LoadRules(cfg.Paths.GuardrailRules); err != nil {
			return fmt.Errorf("load guardrail rules: %w", err)
		}
	}

	reader := corpus.NewReader(cfg.Paths.CorpusDir, cfg.Paths.MaxFileSizeMB)
	files, err := reader.ListFiles()
	if err != nil {
		return fmt.Errorf("list corpus files: %w", err)
	}

	if runDryRun {
		if ok, violations := guard.ValidateInput(query); !ok {
			return fmt.Errorf("%s", guardrail.Summary(violations))
		}
		printPlan(cfg, query, files)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, shutting down...")
		interrupted.Store(true)
		cancel()
	}()

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.LLM.Model),
		APIKey:        cfg.LLM.APIKey,
		UseAWSBedrock: cfg.LLM.UseBedrock,
		AWSRegion:     cfg.LLM.AWSRegion,
		AWSProfile:    cfg.LLM.AWSProfile,
	})
	if err != nil {
		return err
	}

	store := outputs.NewStore(cfg.Paths.OutputDir)
	tools := api.NewToolset(reader, store)
	managers := api.NewAllManagers(client, tools)

	emitter := orchestrator.NewEventEmitter(64)
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		printEvents(emitter.Events())
	}()

	deps := orchestrator.Deps{
		Managers:  managers,
		Store:     store,
		Guardrail: guard,
		Emitter:   emitter,
	}
	if !runNoFilter {
		classifier := api.NewManager(client, "drool_filter",
			"You classify whether files are relevant to a query. Answer with the requested JSON only.", tools)
		deps.Filter = drool.NewFilter(classifier, reader)
	}

	orch := orchestrator.New(orchestrator.Config{
		AgentTimeout:    cfg.Pipeline.AgentTimeout,
		ReviewerTimeout: cfg.Pipeline.ReviewerTimeout,
		MaxRetries:      cfg.Pipeline.MaxRetries,
		GroupDelimiter:  cfg.Pipeline.GroupDelimiter,
		MaxGroupSize:    cfg.Pipeline.MaxGroupSize,
		CostRates: agent.CostRates{
			InputPer1K:  cfg.Tokens.InputCostPer1K,
			OutputPer1K: cfg.Tokens.OutputCostPer1K,
		},
		TrackTokens:       cfg.Tokens.Track,
		CostWarnThreshold: cfg.Tokens.CostWarnThreshold,
		GoldenReference:   corpus.ReadGoldenReference(cfg.Paths.GoldenReference),
	}, deps)

	fmt.Printf("Generating BRD: %s\n", query)
	fmt.Printf("  Corpus: %s (%d files)\n", cfg.Paths.CorpusDir, len(files))
	fmt.Printf("  Output: %s\n", cfg.Paths.OutputDir)
	fmt.Println()

	startedAt := time.Now()
	result := orch.RunPipeline(ctx, query, files, cfg.Paths.OutputDir)

	emitter.Close()
	<-printerDone

	reportPath, err := writeReport(cfg.Paths.OutputDir, query, result)
	if err != nil {
		fmt.Printf("Warning: could not write report: %v\n", err)
	}

	if !runNoHistory {
		if err := saveHistory(query, startedAt, result); err != nil {
			fmt.Printf("Warning: could not record run history: %v\n", err)
		}
	}

	printSummary(result, reportPath)

	if interrupted.Load() {
		os.Exit(130)
	}
	if result.Status != models.StatusSuccess {
		return fmt.Errorf("pipeline failed: %v", result.Errors)
	}
	return nil
}

func saveHistory(query string, startedAt time.Time, result models.ExecutionResult) error {
	db, err := state.Open(state.DefaultDBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	return db.SaveResult(query, startedAt, result)
}

// printPlan shows what a run would do: the corpus listing and the workbook
// grouping each grouped manager will fan out over.
func printPlan(cfg *config.Config, query string, files []string) {
	fmt.Printf("Query: %s\n\n", query)
	fmt.Printf("Corpus: %s (%d files)\n", cfg.Paths.CorpusDir, len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}

	groups := grouper.GroupFiles(files, cfg.Pipeline.GroupDelimiter, cfg.Pipeline.MaxGroupSize)
	fmt.Printf("\nWorkbook groups (delimiter %q, max %d files per call):\n",
		cfg.Pipeline.GroupDelimiter, cfg.Pipeline.MaxGroupSize)
	for _, g := range groups {
		fmt.Printf("  %s part %d: %d files\n", g.Key, g.Part, len(g.Files))
	}

	fmt.Printf("\nModel: %s\n", cfg.LLM.Model)
	fmt.Printf("Agent timeout: %s, reviewer timeout: %s, max retries: %d\n",
		cfg.Pipeline.AgentTimeout, cfg.Pipeline.ReviewerTimeout, cfg.Pipeline.MaxRetries)
}

func printEvents(events <-chan orchestrator.PipelineEvent) {
	for event := range events {
		switch event.Type {
		case orchestrator.EventPhaseStarted:
			color.Cyan("=== %s phase ===", event.Phase)
		case orchestrator.EventAgentStarted:
			fmt.Printf("  %s started\n", event.AgentID)
		case orchestrator.EventAgentCompleted:
			switch event.Status {
			case models.StatusSuccess:
				fmt.Printf("  %s %s\n", color.GreenString("✓"), event.AgentID)
			case models.StatusTimeout:
				fmt.Printf("  %s %s timed out\n", color.YellowString("⚠"), event.AgentID)
			default:
				fmt.Printf("  %s %s: %s\n", color.RedString("✗"), event.AgentID, event.Message)
			}
		case orchestrator.EventGroupScheduled:
			fmt.Printf("  %s group: %s\n", event.AgentID, event.Message)
		case orchestrator.EventConsolidation:
			fmt.Printf("  %s consolidating group outputs\n", event.AgentID)
		case orchestrator.EventReviewIteration:
			color.Cyan("--- review iteration %d ---", event.Iteration)
		case orchestrator.EventReprocess:
			fmt.Printf("  %s reprocessing: %s\n", event.AgentID, event.Message)
		}
	}
}

func printSummary(result models.ExecutionResult, reportPath string) {
	fmt.Println()
	if result.Status == models.StatusSuccess {
		fmt.Printf("%s Pipeline complete (%.1fs)\n", color.GreenString("✓"), result.ElapsedSec)
	} else {
		fmt.Printf("%s Pipeline failed (%.1fs)\n", color.RedString("✗"), result.ElapsedSec)
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	s := result.TokenSummary
	if s.TotalEstimatedTokens > 0 {
		fmt.Printf("  Tokens: %d in / %d out, estimated cost $%.4f\n",
			s.TotalInputTokens, s.TotalOutputTokens, s.TotalCostEstimate)
	}

	for _, w := range result.Warnings {
		fmt.Printf("  %s %s\n", color.YellowString("⚠"), w)
	}

	if reportPath != "" {
		fmt.Printf("  Report: %s\n", reportPath)
	}
}
