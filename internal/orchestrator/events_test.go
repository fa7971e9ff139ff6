package orchestrator

import (
	"testing"

	"github.com/dlange/brdgen/pkg/models"
)

func TestEventEmitter_DeliversInOrder(t *testing.T) {
	e := NewEventEmitter(4)
	e.Emit(PipelineEvent{Type: EventPhaseStarted, Phase: "parallel"})
	e.Emit(PipelineEvent{Type: EventAgentStarted, AgentID: "drool"})
	e.Close()

	var got []EventType
	for event := range e.Events() {
		got = append(got, event.Type)
		if event.Timestamp.IsZero() {
			t.Error("emit must stamp events")
		}
	}
	if len(got) != 2 || got[0] != EventPhaseStarted || got[1] != EventAgentStarted {
		t.Errorf("events = %v", got)
	}
}

func TestEventEmitter_DropsWhenFull(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(PipelineEvent{Type: EventPhaseStarted})
	e.Emit(PipelineEvent{Type: EventAgentStarted}) // nobody draining

	if e.DroppedCount() != 1 {
		t.Errorf("dropped = %d, want 1", e.DroppedCount())
	}
}

func TestObserverAdapter(t *testing.T) {
	e := NewEventEmitter(4)
	obs := observerAdapter{emitter: e}

	obs.OnCallStart("model")
	obs.OnCallComplete(models.AgentMessage{
		AgentID:  "model",
		Status:   models.StatusError,
		Metadata: map[string]any{"error": "boom"},
	})
	e.Close()

	var events []PipelineEvent
	for event := range e.Events() {
		events = append(events, event)
	}
	if len(events) != 2 {
		t.Fatalf("events = %v", events)
	}
	if events[0].Type != EventAgentStarted || events[0].AgentID != "model" {
		t.Errorf("start event = %+v", events[0])
	}
	if events[1].Type != EventAgentCompleted || events[1].Status != models.StatusError || events[1].Message != "boom" {
		t.Errorf("complete event = %+v", events[1])
	}
}
