package orchestrator

import (
	"fmt"

	"github.com/dlange/brdgen/pkg/models"
)

// collectWarnings derives human-readable warnings from the run's message
// statuses plus a cost threshold check.
func collectWarnings(messages []models.AgentMessage, summary models.TokenSummary, costThreshold float64) []string {
	var warnings []string

	for _, m := range messages {
		switch m.Status {
		case models.StatusTimeout:
			warnings = append(warnings, fmt.Sprintf("%s timed out", m.AgentID))
		case models.StatusPartial:
			warnings = append(warnings, fmt.Sprintf("%s produced partial results", m.AgentID))
		case models.StatusFallback:
			warnings = append(warnings, fmt.Sprintf("%s fell back to unconsolidated group output", m.AgentID))
		case models.StatusError:
			if errText, ok := m.Metadata["error"].(string); ok && errText != "" {
				warnings = append(warnings, fmt.Sprintf("%s failed: %s", m.AgentID, errText))
			} else {
				warnings = append(warnings, fmt.Sprintf("%s failed", m.AgentID))
			}
		}
	}

	if costThreshold > 0 && summary.TotalCostEstimate > costThreshold {
		warnings = append(warnings, fmt.Sprintf("High token cost: $%.2f", summary.TotalCostEstimate))
	}
	return warnings
}
