package api

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/dlange/brdgen/internal/agent"
)

// defaultMaxTurns bounds the tool-use loop of a single manager invocation.
const defaultMaxTurns = 30

// Manager is the Anthropic-backed implementation of one named manager
// agent. Each invocation runs a bounded tool-use loop: the model reads
// corpus files and upstream outputs through the toolset until it ends its
// turn with the final markdown.
type Manager struct {
	client   *Client
	name     string
	system   string
	tools    *Toolset
	maxTurns int
}

// NewManager creates a manager agent with the given system prompt.
func NewManager(client *Client, name, systemPrompt string, tools *Toolset) *Manager {
	return &Manager{
		client:   client,
		name:     name,
		system:   systemPrompt,
		tools:    tools,
		maxTurns: defaultMaxTurns,
	}
}

// NewAllManagers creates the six manager agents sharing one client and
// toolset.
func NewAllManagers(client *Client, tools *Toolset) map[string]agent.Agent {
	managers := make(map[string]agent.Agent)
	for _, name := range []string{agent.Drool, agent.Model, agent.Outbound, agent.Transformation, agent.Inbound, agent.Reviewer} {
		managers[name] = NewManager(client, name, agent.SystemPrompt(name), tools)
	}
	return managers
}

// Invoke runs one manager invocation. It honors ctx cancellation at every
// API-call boundary and accumulates token usage across turns.
func (m *Manager) Invoke(ctx context.Context, messages []agent.Message) (*agent.Reply, error) {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}

	reply := &agent.Reply{}

	for turn := 0; turn < m.maxTurns; turn++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := m.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     m.client.Model(),
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: m.system},
			},
			Messages: params,
			Tools:    m.tools.Definitions(),
		})
		if err != nil {
			return nil, fmt.Errorf("%s API call: %w", m.name, err)
		}

		reply.Usage.InputTokens += resp.Usage.InputTokens
		reply.Usage.OutputTokens += resp.Usage.OutputTokens

		var blocks []agent.Block
		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				blocks = append(blocks, agent.Block{Type: "text", Text: variant.Text})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				blocks = append(blocks, agent.Block{Type: "tool_use"})
				result := m.tools.Execute(ctx, variant.Name, variant.Input)

				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))
				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, result.Content, result.IsError))
			}
		}

		reply.Messages = append(reply.Messages, agent.ReplyMessage{
			Content: agent.BlockContent(blocks),
		})

		if resp.StopReason == anthropic.StopReasonEndTurn {
			return reply, nil
		}

		params = append(params, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			params = append(params, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return nil, fmt.Errorf("%s: max turns (%d) reached without end of turn", m.name, m.maxTurns)
}
