package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/dlange/brdgen/internal/corpus"
	"github.com/dlange/brdgen/internal/outputs"
)

// Toolset gives manager agents read access to the corpus and to prior
// agents' stored outputs. Both tools are read-only; managers never write
// through the tool boundary.
type Toolset struct {
	corpus *corpus.Reader
	store  *outputs.Store
}

// NewToolset creates the toolset shared by all managers in a run.
func NewToolset(reader *corpus.Reader, store *outputs.Store) *Toolset {
	return &Toolset{corpus: reader, store: store}
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

// Definitions returns the tool schemas for manager API calls.
func (t *Toolset) Definitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        "read_corpus_file",
				Description: anthropic.String("Read a corpus file by its path relative to the corpus root. Returns the full file content."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Corpus-relative path of the file to read",
						},
					},
					Required: []string{"path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "read_agent_output",
				Description: anthropic.String("Read a previous agent's FULL markdown output. Available agents: drool, model, outbound, transformation, inbound."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"agent_name": map[string]interface{}{
							"type":        "string",
							"description": "Name of the agent whose output to read",
						},
					},
					Required: []string{"agent_name"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        "list_agent_outputs",
				Description: anthropic.String("List all available agent output files with their sizes."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{},
				},
			},
		},
	}
}

// Execute runs a tool by name with the given JSON input.
func (t *Toolset) Execute(ctx context.Context, name string, input json.RawMessage) ToolResult {
	switch name {
	case "read_corpus_file":
		return t.execReadCorpusFile(input)
	case "read_agent_output":
		return t.execReadAgentOutput(input)
	case "list_agent_outputs":
		return ToolResult{Content: t.store.List()}
	default:
		return ToolResult{Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}
}

func (t *Toolset) execReadCorpusFile(input json.RawMessage) ToolResult {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}

	content, err := t.corpus.ReadFile(params.Path)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("ERROR: %v", err), IsError: true}
	}
	return ToolResult{Content: content}
}

func (t *Toolset) execReadAgentOutput(input json.RawMessage) ToolResult {
	var params struct {
		AgentName string `json:"agent_name"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}

	// The store's miss message already enumerates available outputs; an
	// agent probing for optional upstream output is not an error.
	return ToolResult{Content: t.store.Read(params.AgentName)}
}
