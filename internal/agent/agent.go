// Package agent defines the manager-agent invocation boundary: the opaque
// Agent capability, the reply shapes it may return, and the Invoker that
// turns one call into a status-tagged AgentMessage.
package agent

import (
	"context"
	"strings"
)

// Message is one prompt message sent to an agent.
type Message struct {
	Role    string
	Content string
}

// Agent is the opaque async invocation capability behind every manager.
// Implementations must honor context cancellation.
type Agent interface {
	Invoke(ctx context.Context, messages []Message) (*Reply, error)
}

// Usage is token usage reported by an agent implementation, when available.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Reply is an agent's raw response: a list of messages whose last element
// carries the produced content.
type Reply struct {
	Messages []ReplyMessage
	Usage    Usage
}

// ReplyMessage is one message within a reply.
type ReplyMessage struct {
	Content Content
}

// Block is one content block within a block-shaped reply. Non-text blocks
// keep their type but contribute no text.
type Block struct {
	Type string
	Text string
}

// Content is the tagged union of reply content shapes: a single string or
// a list of content blocks. Exactly one variant is populated.
type Content struct {
	text   string
	blocks []Block
	isText bool
}

// TextContent wraps a plain string reply.
func TextContent(s string) Content {
	return Content{text: s, isText: true}
}

// BlockContent wraps a list-of-blocks reply.
func BlockContent(blocks []Block) Content {
	return Content{blocks: blocks}
}

// PlainText normalizes the content to plain text. Text-typed blocks are
// joined with newlines; other block types are dropped.
func (c Content) PlainText() string {
	if c.isText {
		return c.text
	}
	var parts []string
	for _, b := range c.blocks {
		if b.Type == "" || b.Type == "text" {
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// PlainText extracts the reply's final text: the last message's content,
// normalized. A nil or empty reply yields an empty string.
func (r *Reply) PlainText() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content.PlainText()
}

// TextReply builds a single-message reply from plain text. Used by simple
// agent implementations and tests.
func TextReply(text string) *Reply {
	return &Reply{Messages: []ReplyMessage{{Content: TextContent(text)}}}
}
