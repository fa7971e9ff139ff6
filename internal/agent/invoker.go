package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dlange/brdgen/pkg/models"
)

// Observer receives execution hooks around each agent call. Implementations
// must be safe for concurrent use: parallel fan-outs fire hooks from
// sibling goroutines.
type Observer interface {
	OnCallStart(agentID string)
	OnCallComplete(msg models.AgentMessage)
}

// CostRates are USD rates per 1000 tokens used to derive cost estimates.
type CostRates struct {
	InputPer1K  float64
	OutputPer1K float64
}

// Invoker wraps a single manager-agent call: builds the prompt, bounds the
// call with a timeout, normalizes the reply, classifies the outcome, and
// records token usage. It never returns an error; every outcome becomes a
// status-tagged AgentMessage.
type Invoker struct {
	// Tracker receives one token record per call that reported usage.
	Tracker *models.TokenTracker
	// Rates derive the per-call cost estimate.
	Rates CostRates
	// TrackTokens disables recording when false.
	TrackTokens bool
	// Observer receives call start/complete hooks. May be nil.
	Observer Observer
}

// Invoke runs one manager invocation with the standard prompt.
func (inv *Invoker) Invoke(ctx context.Context, ag Agent, name string, in PromptInputs, timeout time.Duration) models.AgentMessage {
	return inv.InvokePrompt(ctx, ag, name, BuildPrompt(name, in), timeout)
}

// InvokePrompt runs one invocation with an explicit prompt (used by the
// consolidation pass). The call is abandoned, not retried, on timeout.
func (inv *Invoker) InvokePrompt(ctx context.Context, ag Agent, name, prompt string, timeout time.Duration) models.AgentMessage {
	if inv.Observer != nil {
		inv.Observer.OnCallStart(name)
	}

	start := time.Now()
	msg := inv.call(ctx, ag, name, prompt, timeout)
	msg.Timestamp = start
	msg.DurationMS = float64(time.Since(start)) / float64(time.Millisecond)

	if inv.Observer != nil {
		inv.Observer.OnCallComplete(msg)
	}
	return msg
}

type callResult struct {
	reply *Reply
	err   error
}

func (inv *Invoker) call(ctx context.Context, ag Agent, name, prompt string, timeout time.Duration) models.AgentMessage {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so an abandoned call can still deliver without blocking.
	resultCh := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- callResult{err: fmt.Errorf("agent panic: %v", r)}
			}
		}()
		reply, err := ag.Invoke(cctx, []Message{{Role: "user", Content: prompt}})
		resultCh <- callResult{reply: reply, err: err}
	}()

	select {
	case res := <-resultCh:
		return inv.classify(name, res)
	case <-cctx.Done():
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return models.AgentMessage{
				AgentID: name,
				Kind:    models.KindManager,
				Status:  models.StatusTimeout,
				Metadata: map[string]any{
					"error": fmt.Sprintf("Timeout after %s", timeout),
				},
			}
		}
		return models.AgentMessage{
			AgentID: name,
			Kind:    models.KindManager,
			Status:  models.StatusError,
			Metadata: map[string]any{
				"error": cctx.Err().Error(),
			},
		}
	}
}

func (inv *Invoker) classify(name string, res callResult) models.AgentMessage {
	if res.err != nil {
		return models.AgentMessage{
			AgentID: name,
			Kind:    models.KindManager,
			Status:  models.StatusError,
			Metadata: map[string]any{
				"error": res.err.Error(),
			},
		}
	}
	if res.reply == nil {
		return models.AgentMessage{
			AgentID: name,
			Kind:    models.KindManager,
			Status:  models.StatusError,
			Metadata: map[string]any{
				"error": "agent returned no reply",
			},
		}
	}

	if inv.TrackTokens && inv.Tracker != nil {
		u := res.reply.Usage
		if u.InputTokens != 0 || u.OutputTokens != 0 {
			cost := (float64(u.InputTokens)*inv.Rates.InputPer1K + float64(u.OutputTokens)*inv.Rates.OutputPer1K) / 1000
			inv.Tracker.RecordEstimate(name, u.InputTokens, u.OutputTokens, cost)
		}
	}

	return models.AgentMessage{
		AgentID:         name,
		Kind:            models.KindManager,
		MarkdownContent: res.reply.PlainText(),
		Metadata:        map[string]any{},
		Status:          models.StatusSuccess,
	}
}
