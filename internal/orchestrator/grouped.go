package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/grouper"
	"github.com/dlange/brdgen/pkg/models"
)

// groupSeparator joins per-group outputs in generation order when building
// the concatenated fallback text.
const groupSeparator = "\n\n---\n\n"

// runManager executes one manager over its file list. Grouped managers fan
// out per workbook group and merge the results; everything else (and any
// manager whose corpus yields a single group) runs once.
func (o *Orchestrator) runManager(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext, name string, files []string) {
	mgr := o.managerAgent(name)
	upstream := agent.Dependencies(name)

	groups := grouper.GroupFiles(files, o.cfg.GroupDelimiter, o.cfg.MaxGroupSize)
	if !agent.GroupedManagers[name] || len(groups) <= 1 {
		msg := inv.Invoke(ctx, mgr, name, agent.PromptInputs{
			Query:    ectx.UserQuery,
			Files:    files,
			Upstream: upstream,
		}, o.cfg.AgentTimeout)
		ectx.AddMessage(msg)
		o.storeOnSuccess(ectx, name, msg)
		return
	}

	start := time.Now()
	results := make([]models.AgentMessage, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		o.emit(PipelineEvent{
			Type:    EventGroupScheduled,
			AgentID: name,
			Message: fmt.Sprintf("%s part %d (%d files)", g.Key, g.Part, len(g.Files)),
		})
		wg.Add(1)
		go func(i int, g grouper.Group) {
			defer wg.Done()
			msg := inv.Invoke(ctx, mgr, name, agent.PromptInputs{
				Query:    ectx.UserQuery,
				Files:    g.Files,
				Upstream: upstream,
			}, o.cfg.AgentTimeout)
			msg.Metadata["group"] = g.Key
			msg.Metadata["group_part"] = g.Part
			results[i] = msg
			ectx.AddMessage(msg)
		}(i, g)
	}
	wg.Wait()

	// Join successes in generation order, not completion order.
	var sections []string
	var failed int
	for _, msg := range results {
		if msg.Status == models.StatusSuccess && msg.MarkdownContent != "" {
			sections = append(sections, msg.MarkdownContent)
		} else {
			failed++
		}
	}
	if len(sections) == 0 {
		// Every group failed; the per-group messages tell the story and
		// nothing gets stored.
		return
	}

	finalText := strings.Join(sections, groupSeparator)
	status := models.StatusSuccess
	if failed > 0 {
		status = models.StatusPartial
	}

	if len(sections) > 1 {
		finalText, status = o.consolidate(ctx, inv, ectx, name, finalText, status)
	}

	ectx.AddMessage(models.AgentMessage{
		AgentID:         name,
		Kind:            models.KindManager,
		MarkdownContent: finalText,
		Metadata: map[string]any{
			"rollup":        true,
			"groups":        len(groups),
			"failed_groups": failed,
		},
		Timestamp:  start,
		DurationMS: float64(time.Since(start)) / float64(time.Millisecond),
		Status:     status,
	})
	o.saveOutput(ectx, name, finalText)
}

// consolidate asks the manager to merge its per-group outputs into one
// document. A failed consolidation keeps the concatenation and downgrades a
// clean run to FALLBACK; a PARTIAL run stays PARTIAL.
func (o *Orchestrator) consolidate(ctx context.Context, inv *agent.Invoker, ectx *models.ExecutionContext, name, combined string, status models.MessageStatus) (string, models.MessageStatus) {
	o.emit(PipelineEvent{Type: EventConsolidation, AgentID: name})

	prompt := agent.BuildConsolidationPrompt(name, ectx.UserQuery, combined, o.cfg.GoldenReference)
	msg := inv.InvokePrompt(ctx, o.managerAgent(name), name, prompt, o.cfg.AgentTimeout)
	msg.Metadata["consolidation"] = true
	ectx.AddMessage(msg)

	if msg.Status == models.StatusSuccess && msg.MarkdownContent != "" {
		return msg.MarkdownContent, status
	}
	if status == models.StatusSuccess {
		status = models.StatusFallback
	}
	return combined, status
}
