// Package orchestrator runs the BRD generation pipeline: six manager
// agents across a parallel phase, a sequential cascade, and a bounded
// reviewer loop. Individual agent failures never abort a run; every
// invocation becomes a status-tagged message and the pipeline carries on
// with whatever outputs exist.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/drool"
	"github.com/dlange/brdgen/internal/guardrail"
	"github.com/dlange/brdgen/internal/outputs"
	"github.com/dlange/brdgen/pkg/models"
)

// Config carries the tunables for one orchestrator instance.
type Config struct {
	// AgentTimeout bounds each non-reviewer invocation.
	AgentTimeout time.Duration
	// ReviewerTimeout bounds each reviewer invocation. The reviewer reads
	// every upstream output, so it gets more time.
	ReviewerTimeout time.Duration
	// MaxRetries bounds feedback rounds; the reviewer runs at most
	// MaxRetries+1 times.
	MaxRetries int
	// GroupDelimiter splits workbook keys from file names ("_sheet").
	GroupDelimiter string
	// MaxGroupSize caps files per group invocation.
	MaxGroupSize int
	// CostRates derive per-call cost estimates.
	CostRates agent.CostRates
	// TrackTokens enables token accounting.
	TrackTokens bool
	// CostWarnThreshold adds a warning when the run's estimated cost
	// exceeds it. Zero disables the check.
	CostWarnThreshold float64
	// GoldenReference is optional reference text injected into
	// consolidation prompts.
	GoldenReference string
}

// FileFilter decides which corpus files are relevant to a query.
type FileFilter interface {
	FilterFiles(ctx context.Context, userQuery string, filePaths []string) drool.Result
}

// Deps are the orchestrator's collaborators.
type Deps struct {
	// Managers maps manager names to their agents. Missing managers are
	// skipped with an error message rather than aborting the run.
	Managers map[string]agent.Agent
	// Store persists agent outputs between phases.
	Store *outputs.Store
	// Guardrail validates the user query before anything runs. May be nil.
	Guardrail *guardrail.Guardrail
	// Filter narrows the drool manager's file list. May be nil; the drool
	// manager then sees the full corpus.
	Filter FileFilter
	// Emitter receives progress events. May be nil.
	Emitter *EventEmitter
}

// Orchestrator coordinates one pipeline run at a time.
type Orchestrator struct {
	cfg  Config
	deps Deps
}

// New creates an orchestrator.
func New(cfg Config, deps Deps) *Orchestrator {
	return &Orchestrator{cfg: cfg, deps: deps}
}

func (o *Orchestrator) emit(event PipelineEvent) {
	if o.deps.Emitter != nil {
		o.deps.Emitter.Emit(event)
	}
}

// RunPipeline executes the full pipeline for one query over the given
// corpus files. It always returns a result; scheduler-level failures
// surface in result.Errors with whatever messages had accumulated.
func (o *Orchestrator) RunPipeline(ctx context.Context, userQuery string, corpusFiles []string, outputDir string) (result models.ExecutionResult) {
	if o.deps.Guardrail != nil {
		if ok, violations := o.deps.Guardrail.ValidateInput(userQuery); !ok {
			return models.ExecutionResult{
				Status:      models.StatusError,
				Errors:      []string{guardrail.Summary(violations)},
				ExecutionID: uuid.NewString(),
			}
		}
	}

	ectx := models.NewExecutionContext(userQuery, corpusFiles, outputDir,
		o.cfg.AgentTimeout, o.cfg.MaxRetries, uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			result = o.buildResult(ectx, models.StatusError,
				[]string{fmt.Sprintf("pipeline panic: %v", r)})
		}
	}()

	if err := o.deps.Store.Clear(); err != nil {
		return o.buildResult(ectx, models.StatusError,
			[]string{fmt.Sprintf("clear agent outputs: %v", err)})
	}

	inv := &agent.Invoker{
		Tracker:     ectx.Tokens,
		Rates:       o.cfg.CostRates,
		TrackTokens: o.cfg.TrackTokens,
	}
	if o.deps.Emitter != nil {
		inv.Observer = observerAdapter{emitter: o.deps.Emitter}
	}

	if err := o.runParallelPhase(ctx, inv, ectx); err != nil {
		return o.buildResult(ectx, models.StatusError, []string{err.Error()})
	}
	if err := o.runSequentialPhase(ctx, inv, ectx); err != nil {
		return o.buildResult(ectx, models.StatusError, []string{err.Error()})
	}
	if err := o.runReviewPhase(ctx, inv, ectx); err != nil {
		return o.buildResult(ectx, models.StatusError, []string{err.Error()})
	}

	o.emit(PipelineEvent{Type: EventPipelineDone})
	return o.buildResult(ectx, models.StatusSuccess, nil)
}

// runParallelPhase runs drool and model concurrently. Neither reads the
// other's output, so ordering between them does not matter.
func (o *Orchestrator) runParallelPhase(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("parallel phase: %w", err)
	}
	o.emit(PipelineEvent{Type: EventPhaseStarted, Phase: "parallel"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		o.runDrool(ctx, inv, ectx)
	}()
	go func() {
		defer wg.Done()
		o.runManager(ctx, inv, ectx, agent.Model, ectx.CorpusFiles)
	}()
	wg.Wait()
	return nil
}

// runSequentialPhase cascades outbound, transformation, and inbound. Each
// runs after the previous finished so its stored upstream outputs are
// complete; a failed upstream just means the output file is absent.
func (o *Orchestrator) runSequentialPhase(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext) error {
	o.emit(PipelineEvent{Type: EventPhaseStarted, Phase: "sequential"})

	for _, name := range agent.SequentialManagers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sequential phase at %s: %w", name, err)
		}
		o.runManager(ctx, inv, ectx, name, ectx.CorpusFiles)
	}
	return nil
}

// runReviewPhase runs the reviewer loop: validate, extract gaps, reprocess
// the flagged managers, validate again. The reviewer is invoked at most
// MaxRetries+1 times; remaining gaps on the final pass stay in the last
// reviewer message's metadata.
func (o *Orchestrator) runReviewPhase(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext) error {
	o.emit(PipelineEvent{Type: EventPhaseStarted, Phase: "review"})

	reviewer, ok := o.deps.Managers[agent.Reviewer]
	if !ok {
		ectx.AddMessage(models.AgentMessage{
			AgentID:  agent.Reviewer,
			Kind:     models.KindManager,
			Status:   models.StatusError,
			Metadata: map[string]any{"error": "no reviewer agent registered"},
		})
		return nil
	}

	for iteration := 0; iteration <= ectx.MaxRetries; iteration++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("review phase: %w", err)
		}
		o.emit(PipelineEvent{Type: EventReviewIteration, AgentID: agent.Reviewer, Iteration: iteration + 1})

		msg := inv.Invoke(ctx, reviewer, agent.Reviewer, agent.PromptInputs{
			Query:    ectx.UserQuery,
			Upstream: agent.Dependencies(agent.Reviewer),
		}, o.cfg.ReviewerTimeout)

		gaps := ExtractGaps(msg.MarkdownContent)
		if len(gaps) > 0 {
			msg.Metadata["gaps"] = gaps
		}
		ectx.AddMessage(msg)

		if len(gaps) == 0 || iteration == ectx.MaxRetries {
			return nil
		}
		o.processFeedback(ctx, inv, ectx, gaps)
	}
	return nil
}

// processFeedback re-runs each manager the reviewer flagged, once per
// round, with the merged feedback in its prompt.
func (o *Orchestrator) processFeedback(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext, gaps []models.Gap) {
	for _, req := range BuildReprocessRequests(gaps) {
		if !agent.IsManager(req.AgentID) || req.AgentID == agent.Reviewer {
			continue
		}
		mgr, ok := o.deps.Managers[req.AgentID]
		if !ok {
			continue
		}

		o.emit(PipelineEvent{Type: EventReprocess, AgentID: req.AgentID, Message: req.Feedback})

		msg := inv.Invoke(ctx, mgr, req.AgentID, agent.PromptInputs{
			Query:    ectx.UserQuery,
			Upstream: agent.Dependencies(req.AgentID),
			Feedback: &req,
		}, o.cfg.AgentTimeout)
		msg.Metadata["reprocess"] = true
		ectx.AddMessage(msg)

		if msg.Status == models.StatusSuccess && msg.MarkdownContent != "" {
			if _, err := o.deps.Store.Save(req.AgentID, msg.MarkdownContent); err != nil {
				msg.Metadata["store_error"] = err.Error()
			}
		}
	}
}

// runDrool filters the corpus by relevance, then runs the drool manager
// once over the included files.
func (o *Orchestrator) runDrool(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext) {
	files := ectx.CorpusFiles
	var excluded int
	if o.deps.Filter != nil {
		res := o.deps.Filter.FilterFiles(ctx, ectx.UserQuery, files)
		files = res.Included
		excluded = len(res.Excluded)
	}

	msg := inv.Invoke(ctx, o.managerAgent(agent.Drool), agent.Drool, agent.PromptInputs{
		Query: ectx.UserQuery,
		Files: files,
	}, o.cfg.AgentTimeout)
	msg.Metadata["files_included"] = len(files)
	msg.Metadata["files_excluded"] = excluded
	ectx.AddMessage(msg)

	o.storeOnSuccess(ectx, agent.Drool, msg)
}

// managerAgent returns the registered agent for name, or a stub that
// reports the missing registration as an invocation error.
func (o *Orchestrator) managerAgent(name string) agent.Agent {
	if mgr, ok := o.deps.Managers[name]; ok {
		return mgr
	}
	return missingAgent(name)
}

type missingAgent string

func (m missingAgent) Invoke(context.Context, []agent.Message) (*agent.Reply, error) {
	return nil, fmt.Errorf("no agent registered for manager %q", string(m))
}

// storeOnSuccess persists a successful invocation's output so downstream
// managers can read it. Store failures are recorded on the message; they
// do not fail the invocation.
func (o *Orchestrator) storeOnSuccess(ectx *models.ExecutionContext, name string, msg models.AgentMessage) {
	if msg.Status != models.StatusSuccess || msg.MarkdownContent == "" {
		return
	}
	o.saveOutput(ectx, name, msg.MarkdownContent)
}

// saveOutput persists text as the named agent's stored output. Store
// failures are recorded as messages; they never abort the run.
func (o *Orchestrator) saveOutput(ectx *models.ExecutionContext, name, text string) {
	if _, err := o.deps.Store.Save(name, text); err != nil {
		ectx.AddMessage(models.AgentMessage{
			AgentID:  name,
			Kind:     models.KindSubAgent,
			Status:   models.StatusError,
			Metadata: map[string]any{"error": fmt.Sprintf("store output: %v", err)},
		})
	}
}

// buildResult assembles the caller-facing result from the run's state.
func (o *Orchestrator) buildResult(ectx *models.ExecutionContext, status models.MessageStatus, errs []string) models.ExecutionResult {
	summary := ectx.Tokens.Summary()
	return models.ExecutionResult{
		Status:       status,
		Messages:     ectx.Messages(),
		TokenSummary: summary,
		ElapsedSec:   ectx.Elapsed().Seconds(),
		Warnings:     collectWarnings(ectx.Messages(), summary, o.cfg.CostWarnThreshold),
		Errors:       errs,
		ExecutionID:  ectx.ExecutionID,
	}
}
