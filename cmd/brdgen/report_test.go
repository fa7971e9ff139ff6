package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dlange/brdgen/pkg/models"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	result := models.ExecutionResult{
		ExecutionID: "run-42",
		Status:      models.StatusSuccess,
		ElapsedSec:  3.5,
		Warnings:    []string{"model timed out"},
		Messages: []models.AgentMessage{
			{AgentID: "drool", Status: models.StatusSuccess, MarkdownContent: "# Rules", DurationMS: 120},
		},
		TokenSummary: models.TokenSummary{TotalInputTokens: 10, TotalOutputTokens: 5},
	}

	path, err := writeReport(dir, "Document the system", result)
	if err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if filepath.Base(path) != "brd_report.json" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var report runReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if report.ExecutionID != "run-42" || report.Query != "Document the system" {
		t.Errorf("report = %+v", report)
	}
	if len(report.Agents) != 1 || report.Agents[0].ContentBytes != len("# Rules") {
		t.Errorf("agents = %+v", report.Agents)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("warnings = %v", report.Warnings)
	}
}
