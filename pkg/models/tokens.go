package models

import (
	"sync"
	"time"
)

// TokenAccount is one usage record tied to a single agent invocation.
type TokenAccount struct {
	AgentID         string    `json:"agent_id"`
	InputTokens     int64     `json:"input_tokens"`
	OutputTokens    int64     `json:"output_tokens"`
	EstimatedTokens int64     `json:"estimated_tokens"`
	CostEstimate    float64   `json:"cost_estimate"`
	Timestamp       time.Time `json:"timestamp"`
}

// TokenSummary aggregates all accounts recorded during a run.
type TokenSummary struct {
	TotalInputTokens     int64          `json:"total_input_tokens"`
	TotalOutputTokens    int64          `json:"total_output_tokens"`
	TotalEstimatedTokens int64          `json:"total_estimated_tokens"`
	TotalCostEstimate    float64        `json:"total_cost_estimate"`
	AgentCount           int            `json:"agent_count"`
	Accounts             []TokenAccount `json:"accounts"`
}

// TokenTracker is an append-only sequence of token accounts, summarized on
// demand. Records are never removed. Safe for concurrent append during
// parallel fan-outs.
type TokenTracker struct {
	mu       sync.Mutex
	accounts []TokenAccount
}

// NewTokenTracker creates an empty tracker.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{}
}

// RecordEstimate appends one usage record. Negative token counts are coerced
// to zero; malformed input never raises.
func (t *TokenTracker) RecordEstimate(agentID string, inputTokens, outputTokens int64, costEstimate float64) {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	if costEstimate < 0 {
		costEstimate = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.accounts = append(t.accounts, TokenAccount{
		AgentID:         agentID,
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		EstimatedTokens: inputTokens + outputTokens,
		CostEstimate:    costEstimate,
		Timestamp:       time.Now(),
	})
}

// Summary returns totals across all recorded accounts.
func (t *TokenTracker) Summary() TokenSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := TokenSummary{
		Accounts: make([]TokenAccount, len(t.accounts)),
	}
	copy(s.Accounts, t.accounts)

	agents := make(map[string]struct{})
	for _, a := range t.accounts {
		s.TotalInputTokens += a.InputTokens
		s.TotalOutputTokens += a.OutputTokens
		s.TotalEstimatedTokens += a.EstimatedTokens
		s.TotalCostEstimate += a.CostEstimate
		agents[a.AgentID] = struct{}{}
	}
	s.AgentCount = len(agents)
	return s
}
