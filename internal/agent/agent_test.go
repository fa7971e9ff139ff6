package agent

import "testing"

func TestContent_PlainText_String(t *testing.T) {
	c := TextContent("# Analysis\n\nDone.")
	if got := c.PlainText(); got != "# Analysis\n\nDone." {
		t.Errorf("PlainText = %q", got)
	}
}

func TestContent_PlainText_Blocks(t *testing.T) {
	c := BlockContent([]Block{
		{Type: "text", Text: "first"},
		{Type: "tool_use"},
		{Type: "text", Text: "second"},
	})
	if got := c.PlainText(); got != "first\nsecond" {
		t.Errorf("PlainText = %q, want text blocks joined with newline", got)
	}
}

func TestReply_PlainText_LastMessage(t *testing.T) {
	r := &Reply{Messages: []ReplyMessage{
		{Content: TextContent("intermediate")},
		{Content: TextContent("final output")},
	}}
	if got := r.PlainText(); got != "final output" {
		t.Errorf("PlainText = %q, want last message content", got)
	}
}

func TestReply_PlainText_AllShapesAgree(t *testing.T) {
	want := "business requirements"

	asString := TextReply(want)
	asBlocks := &Reply{Messages: []ReplyMessage{{Content: BlockContent([]Block{{Type: "text", Text: want}})}}}
	asNested := &Reply{Messages: []ReplyMessage{
		{Content: TextContent("earlier turn")},
		{Content: BlockContent([]Block{{Type: "text", Text: want}})},
	}}

	for i, r := range []*Reply{asString, asBlocks, asNested} {
		if got := r.PlainText(); got != want {
			t.Errorf("shape %d: PlainText = %q, want %q", i, got, want)
		}
	}
}

func TestReply_PlainText_Empty(t *testing.T) {
	var nilReply *Reply
	if got := nilReply.PlainText(); got != "" {
		t.Errorf("nil reply PlainText = %q", got)
	}
	if got := (&Reply{}).PlainText(); got != "" {
		t.Errorf("empty reply PlainText = %q", got)
	}
}

func TestDependencies(t *testing.T) {
	cases := map[string][]string{
		Drool:          {},
		Model:          {},
		Outbound:       {Drool, Model},
		Transformation: {Drool, Model, Outbound},
		Inbound:        {Drool, Model, Outbound, Transformation},
		Reviewer:       {Drool, Model, Outbound, Transformation, Inbound},
	}
	for name, want := range cases {
		got := Dependencies(name)
		if len(got) != len(want) {
			t.Errorf("Dependencies(%s) = %v, want %v", name, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Dependencies(%s)[%d] = %s, want %s", name, i, got[i], want[i])
			}
		}
	}

	if deps := Dependencies("unknown"); deps != nil {
		t.Errorf("Dependencies(unknown) = %v, want nil", deps)
	}
}

func TestSystemPrompt_AllManagersCovered(t *testing.T) {
	for _, name := range []string{Drool, Model, Outbound, Transformation, Inbound, Reviewer} {
		if SystemPrompt(name) == "" {
			t.Errorf("SystemPrompt(%s) is empty", name)
		}
	}
	if SystemPrompt("unknown") != "" {
		t.Error("SystemPrompt(unknown) should be empty")
	}
}
