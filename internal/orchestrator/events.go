package orchestrator

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/dlange/brdgen/pkg/models"
)

// EventType represents the type of pipeline event.
type EventType string

const (
	// EventPhaseStarted indicates a pipeline phase has started.
	EventPhaseStarted EventType = "phase_started"
	// EventAgentStarted indicates a manager invocation has started.
	EventAgentStarted EventType = "agent_started"
	// EventAgentCompleted indicates a manager invocation finished, whatever
	// its status.
	EventAgentCompleted EventType = "agent_completed"
	// EventGroupScheduled indicates a workbook group was scheduled for a
	// grouped manager.
	EventGroupScheduled EventType = "group_scheduled"
	// EventConsolidation indicates a consolidation pass over group outputs.
	EventConsolidation EventType = "consolidation"
	// EventReviewIteration indicates one reviewer validation pass.
	EventReviewIteration EventType = "review_iteration"
	// EventReprocess indicates a manager re-run driven by reviewer feedback.
	EventReprocess EventType = "reprocess"
	// EventPipelineDone indicates the whole pipeline is complete.
	EventPipelineDone EventType = "pipeline_done"
)

// PipelineEvent is one observable step of a pipeline run. Events drive the
// CLI progress display and carry no pipeline state of their own.
type PipelineEvent struct {
	// Type is the kind of event.
	Type EventType
	// Phase names the pipeline phase, if applicable.
	Phase string
	// AgentID is the related manager, if applicable.
	AgentID string
	// Status is the invocation outcome for completion events.
	Status models.MessageStatus
	// Message provides additional context about the event.
	Message string
	// Iteration is the 1-based review iteration for reviewer events.
	Iteration int
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter fans pipeline events out to a single subscriber channel.
// Emission never blocks the pipeline: a full channel gets a short grace
// period, then the event is dropped.
type EventEmitter struct {
	events       chan PipelineEvent
	droppedCount atomic.Uint64
}

// NewEventEmitter creates an emitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan PipelineEvent, bufferSize),
	}
}

// Emit sends an event to the subscriber channel.
func (e *EventEmitter) Emit(event PipelineEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	// Give the receiver a short window to drain before dropping.
	select {
	case e.events <- event:
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[orchestrator] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of events dropped so far.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the read-only subscriber channel.
func (e *EventEmitter) Events() <-chan PipelineEvent {
	return e.events
}

// Close closes the subscriber channel. Call only after the pipeline has
// finished emitting.
func (e *EventEmitter) Close() {
	close(e.events)
}

// observerAdapter bridges the invoker's call hooks onto the emitter.
type observerAdapter struct {
	emitter *EventEmitter
}

func (o observerAdapter) OnCallStart(agentID string) {
	o.emitter.Emit(PipelineEvent{Type: EventAgentStarted, AgentID: agentID})
}

func (o observerAdapter) OnCallComplete(msg models.AgentMessage) {
	event := PipelineEvent{
		Type:    EventAgentCompleted,
		AgentID: msg.AgentID,
		Status:  msg.Status,
	}
	if errText, ok := msg.Metadata["error"].(string); ok {
		event.Message = errText
	}
	o.emitter.Emit(event)
}
