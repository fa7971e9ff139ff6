// Package models defines the shared value types for the BRD generation
// pipeline: agent messages, execution context, token accounting, and the
// final pipeline result.
package models

import (
	"sync"
	"time"
)

// AgentKind identifies the kind of agent that produced a message.
type AgentKind string

const (
	// KindManager is one of the six named manager agents.
	KindManager AgentKind = "manager"
	// KindSubAgent is a helper agent invoked on behalf of a manager.
	KindSubAgent AgentKind = "sub_agent"
)

// MessageStatus is the terminal classification of a single agent invocation.
type MessageStatus string

const (
	// StatusSuccess indicates the invocation completed normally.
	StatusSuccess MessageStatus = "success"
	// StatusTimeout indicates the invocation exceeded its deadline and was abandoned.
	StatusTimeout MessageStatus = "timeout"
	// StatusError indicates the invocation raised an error.
	StatusError MessageStatus = "error"
	// StatusPartial indicates only a subset of a grouped invocation succeeded.
	StatusPartial MessageStatus = "partial"
	// StatusFallback indicates a degraded result was kept after a follow-up step failed.
	StatusFallback MessageStatus = "fallback"
)

// AgentMessage records one agent invocation attempt. It is immutable after
// creation; retries produce new messages.
type AgentMessage struct {
	// AgentID is the manager name (drool, model, outbound, ...).
	AgentID string
	// Kind is the agent kind that produced this message.
	Kind AgentKind
	// MarkdownContent is the normalized text output of the invocation.
	MarkdownContent string
	// Metadata carries free-form invocation details. The reviewer's
	// structured gap list travels here under the "gaps" key.
	Metadata map[string]any
	// Timestamp is when the invocation started.
	Timestamp time.Time
	// DurationMS is wall-clock invocation time in milliseconds.
	DurationMS float64
	// Status is the terminal classification of the invocation.
	Status MessageStatus
}

// Gap is one reviewer-reported deficiency. The reviewer's output is
// untrusted external input, so every field defaults to its zero value.
type Gap struct {
	AgentID      string   `json:"agent_id"`
	Domain       string   `json:"domain"`
	Feedback     string   `json:"feedback"`
	MissingItems []string `json:"missing_items"`
}

// ReprocessRequest describes why and what an agent must redo. It lives only
// for the duration of one reprocessing call.
type ReprocessRequest struct {
	AgentID      string
	Domain       string
	Feedback     string
	Context      string
	MissingItems []string
	RetryCount   int
}

// ExecutionContext is the shared state for one pipeline run. Messages and
// token records are append-only; AddMessage is safe for concurrent use
// during parallel fan-outs.
type ExecutionContext struct {
	UserQuery   string
	CorpusFiles []string
	OutputDir   string
	Timeout     time.Duration
	MaxRetries  int
	StartTime   time.Time
	ExecutionID string
	Tokens      *TokenTracker

	mu       sync.Mutex
	messages []AgentMessage
}

// NewExecutionContext creates a context for a single pipeline run.
func NewExecutionContext(query string, corpusFiles []string, outputDir string, timeout time.Duration, maxRetries int, executionID string) *ExecutionContext {
	return &ExecutionContext{
		UserQuery:   query,
		CorpusFiles: corpusFiles,
		OutputDir:   outputDir,
		Timeout:     timeout,
		MaxRetries:  maxRetries,
		StartTime:   time.Now(),
		ExecutionID: executionID,
		Tokens:      NewTokenTracker(),
	}
}

// AddMessage appends a message to the run's history.
func (c *ExecutionContext) AddMessage(msg AgentMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a snapshot of all messages appended so far.
func (c *ExecutionContext) Messages() []AgentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AgentMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessagesByAgent returns all messages produced by the named agent.
func (c *ExecutionContext) MessagesByAgent(agentID string) []AgentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []AgentMessage
	for _, m := range c.messages {
		if m.AgentID == agentID {
			out = append(out, m)
		}
	}
	return out
}

// Elapsed returns time since the run started.
func (c *ExecutionContext) Elapsed() time.Duration {
	return time.Since(c.StartTime)
}

// ExecutionResult is the final outcome of a pipeline run exposed to callers.
type ExecutionResult struct {
	Status       MessageStatus
	Messages     []AgentMessage
	TokenSummary TokenSummary
	ElapsedSec   float64
	Warnings     []string
	Errors       []string
	ExecutionID  string
}
