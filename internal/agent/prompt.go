package agent

import (
	"fmt"
	"strings"

	"github.com/dlange/brdgen/pkg/models"
)

// PromptInputs carries everything that shapes one manager invocation's
// user prompt.
type PromptInputs struct {
	// Query is the user's BRD generation request.
	Query string
	// Files is the explicit file list for this call, if any.
	Files []string
	// Upstream names the agents whose stored outputs this manager may
	// read, per the static dependency table.
	Upstream []string
	// Feedback is the reviewer's reprocessing request, if this is a
	// feedback-driven re-invocation.
	Feedback *models.ReprocessRequest
}

// BuildPrompt assembles the user prompt for one manager invocation.
func BuildPrompt(managerName string, in PromptInputs) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the %s Manager Agent for BRD generation.\n\n", strings.ToUpper(managerName))
	fmt.Fprintf(&b, "User Query: %s\n\n", in.Query)

	if len(in.Files) > 0 {
		b.WriteString("Files to process in this call:\n")
		for _, f := range in.Files {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(in.Upstream) > 0 {
		b.WriteString("Upstream agent outputs available via read_agent_output:\n")
		for _, u := range in.Upstream {
			fmt.Fprintf(&b, "  - %s\n", u)
		}
		b.WriteString("\n")
	}

	if in.Feedback != nil {
		b.WriteString("REPROCESSING REQUEST:\n")
		fmt.Fprintf(&b, "Domain: %s\n", in.Feedback.Domain)
		fmt.Fprintf(&b, "Feedback: %s\n", in.Feedback.Feedback)
		fmt.Fprintf(&b, "Missing Items: %s\n\n", strings.Join(in.Feedback.MissingItems, ", "))
		b.WriteString("Please reprocess and address the gaps identified above.\n")
	} else {
		b.WriteString("Please analyze the query and corpus files to generate comprehensive output for your domain.\n")
	}

	return b.String()
}

// BuildConsolidationPrompt assembles the follow-up prompt that merges
// multiple group-scoped outputs into one document. It carries no file list;
// the files were already processed by the group invocations.
func BuildConsolidationPrompt(managerName, query, combined, goldenReference string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the %s Manager Agent for BRD generation.\n\n", strings.ToUpper(managerName))
	fmt.Fprintf(&b, "User Query: %s\n\n", query)

	b.WriteString("CONSOLIDATION TASK:\n")
	b.WriteString("The sections below were produced from separate workbook batches. ")
	b.WriteString("Merge them into ONE coherent, non-duplicated document for your domain. ")
	b.WriteString("Preserve every distinct requirement; collapse repeated content.\n\n")

	if goldenReference != "" {
		b.WriteString("Reference document for structure and tone:\n\n")
		b.WriteString(goldenReference)
		b.WriteString("\n\n")
	}

	b.WriteString("Batch outputs to consolidate:\n\n")
	b.WriteString(combined)
	b.WriteString("\n")

	return b.String()
}
