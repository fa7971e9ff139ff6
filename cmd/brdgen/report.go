package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dlange/brdgen/pkg/models"
)

// runReport is the JSON shape of brd_report.json.
type runReport struct {
	ExecutionID string              `json:"execution_id"`
	Query       string              `json:"query"`
	Status      string              `json:"status"`
	ElapsedSec  float64             `json:"elapsed_sec"`
	GeneratedAt time.Time           `json:"generated_at"`
	Tokens      models.TokenSummary `json:"tokens"`
	Warnings    []string            `json:"warnings"`
	Errors      []string            `json:"errors"`
	Agents      []agentReport       `json:"agents"`
}

type agentReport struct {
	AgentID      string         `json:"agent_id"`
	Status       string         `json:"status"`
	DurationMS   float64        `json:"duration_ms"`
	ContentBytes int            `json:"content_bytes"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// writeReport writes the run report next to the agent outputs and returns
// its path.
func writeReport(outputDir, query string, result models.ExecutionResult) (string, error) {
	report := runReport{
		ExecutionID: result.ExecutionID,
		Query:       query,
		Status:      string(result.Status),
		ElapsedSec:  result.ElapsedSec,
		GeneratedAt: time.Now(),
		Tokens:      result.TokenSummary,
		Warnings:    result.Warnings,
		Errors:      result.Errors,
	}
	for _, m := range result.Messages {
		report.Agents = append(report.Agents, agentReport{
			AgentID:      m.AgentID,
			Status:       string(m.Status),
			DurationMS:   m.DurationMS,
			ContentBytes: len(m.MarkdownContent),
			Metadata:     m.Metadata,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, "brd_report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
