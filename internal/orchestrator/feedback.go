package orchestrator

import (
	"encoding/json"
	"strings"

	"github.com/dlange/brdgen/pkg/models"
)

// gapReport is the JSON shape the reviewer emits inside a fenced block.
type gapReport struct {
	GapsDetected bool         `json:"gaps_detected"`
	Gaps         []models.Gap `json:"gaps"`
}

// ExtractGaps pulls the reviewer's structured gap list out of its markdown
// output. The reviewer is asked for a fenced ```json block, but its output
// is untrusted: a missing block, malformed JSON, or gaps_detected=false all
// mean no gaps, never an error.
func ExtractGaps(markdown string) []models.Gap {
	payload, ok := fencedJSON(markdown)
	if !ok {
		// Fall back to the widest braced span; the reviewer sometimes
		// skips the fence.
		start := strings.Index(markdown, "{")
		end := strings.LastIndex(markdown, "}")
		if start < 0 || end <= start {
			return nil
		}
		payload = markdown[start : end+1]
	}

	var report gapReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil
	}
	if !report.GapsDetected {
		return nil
	}
	return report.Gaps
}

// fencedJSON returns the contents of the first ```json fence in text.
func fencedJSON(text string) (string, bool) {
	const open = "```json"
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// BuildReprocessRequests groups gaps by target agent, one request per agent
// in first-seen order. Gaps without an agent_id cannot be routed and are
// dropped; multiple gaps for one agent merge their feedback and missing
// items.
func BuildReprocessRequests(gaps []models.Gap) []models.ReprocessRequest {
	var order []string
	byAgent := make(map[string]*models.ReprocessRequest)

	for _, gap := range gaps {
		if gap.AgentID == "" {
			continue
		}

		req, ok := byAgent[gap.AgentID]
		if !ok {
			req = &models.ReprocessRequest{
				AgentID:    gap.AgentID,
				Domain:     gap.Domain,
				Context:    "Feedback from Reviewer after initial validation",
				RetryCount: 1,
			}
			byAgent[gap.AgentID] = req
			order = append(order, gap.AgentID)
		}

		if gap.Feedback != "" {
			if req.Feedback != "" {
				req.Feedback += "\n"
			}
			req.Feedback += gap.Feedback
		}
		req.MissingItems = appendMissing(req.MissingItems, gap.MissingItems)
	}

	out := make([]models.ReprocessRequest, 0, len(order))
	for _, id := range order {
		out = append(out, *byAgent[id])
	}
	return out
}

func appendMissing(existing, items []string) []string {
	for _, item := range items {
		dup := false
		for _, have := range existing {
			if have == item {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, item)
		}
	}
	return existing
}
