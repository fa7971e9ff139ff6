package models

import (
	"sync"
	"testing"
	"time"
)

func TestExecutionContext_AddMessage(t *testing.T) {
	ctx := NewExecutionContext("query", nil, "/tmp/out", time.Minute, 2, "exec-1")

	ctx.AddMessage(AgentMessage{AgentID: "drool", Status: StatusSuccess})
	ctx.AddMessage(AgentMessage{AgentID: "model", Status: StatusTimeout})

	msgs := ctx.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() returned %d, want 2", len(msgs))
	}
	if msgs[0].AgentID != "drool" || msgs[1].AgentID != "model" {
		t.Errorf("append order not preserved: %v", msgs)
	}
}

func TestExecutionContext_MessagesByAgent(t *testing.T) {
	ctx := NewExecutionContext("query", nil, "/tmp/out", time.Minute, 2, "exec-1")
	ctx.AddMessage(AgentMessage{AgentID: "model", Status: StatusSuccess})
	ctx.AddMessage(AgentMessage{AgentID: "drool", Status: StatusSuccess})
	ctx.AddMessage(AgentMessage{AgentID: "model", Status: StatusError})

	got := ctx.MessagesByAgent("model")
	if len(got) != 2 {
		t.Fatalf("MessagesByAgent(model) returned %d, want 2", len(got))
	}
	if got[1].Status != StatusError {
		t.Errorf("second model message status = %s, want error", got[1].Status)
	}
}

func TestExecutionContext_MessagesSnapshotIsolated(t *testing.T) {
	ctx := NewExecutionContext("query", nil, "", time.Minute, 2, "exec-1")
	ctx.AddMessage(AgentMessage{AgentID: "drool"})

	snap := ctx.Messages()
	snap[0].AgentID = "mutated"

	if ctx.Messages()[0].AgentID != "drool" {
		t.Error("Messages() snapshot mutation leaked into context")
	}
}

func TestExecutionContext_ConcurrentAddMessage(t *testing.T) {
	ctx := NewExecutionContext("query", nil, "", time.Minute, 2, "exec-1")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ctx.AddMessage(AgentMessage{AgentID: "model"})
			}
		}()
	}
	wg.Wait()

	if got := len(ctx.Messages()); got != 200 {
		t.Errorf("Messages() returned %d, want 200", got)
	}
}
