// Package orchestrator sequences the per-batch pipeline: classify,
// route, generate, duplicate-check, and finally assemble the manifest.
package orchestrator

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventAreaReceived indicates an area has entered the pipeline.
	EventAreaReceived EventType = "area_received"
	// EventAreaClassified indicates the domain classifier has run.
	EventAreaClassified EventType = "area_classified"
	// EventPolicyEvaluated indicates a routing decision has been made.
	EventPolicyEvaluated EventType = "policy_evaluated"
	// EventContractGenerated indicates a contract draft passed validation.
	EventContractGenerated EventType = "contract_generated"
	// EventAreaEscalated indicates the area was handed to a human reviewer.
	EventAreaEscalated EventType = "area_escalated"
	// EventDuplicateChecked indicates the duplicate gate has run.
	EventDuplicateChecked EventType = "duplicate_checked"
	// EventAreaAccepted indicates the contract joined the batch.
	EventAreaAccepted EventType = "area_accepted"
	// EventAreaRejected indicates the area was rejected with a reason.
	EventAreaRejected EventType = "area_rejected"
	// EventManifestBuilt indicates the batch resolved into a manifest.
	EventManifestBuilt EventType = "manifest_built"
	// EventBatchFailed indicates the whole batch failed, no manifest emitted.
	EventBatchFailed EventType = "batch_failed"
)

// Event is one progress notification emitted by the coordinator.
// Subscribers (CLI progress output, tests) receive these on a channel.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// BatchID identifies the batch being compiled.
	BatchID string
	// Area is the enhancement area name, if applicable.
	Area string
	// CorrelationID ties the event to the area's audit trail.
	CorrelationID string
	// Route is the policy route, for policy_evaluated events.
	Route models.Route
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// EventEmitter provides thread-safe event emission to subscribers.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit sends an event to the events channel. If the channel is full,
// it tries with a short timeout before dropping the event: a slow
// subscriber must never stall the pipeline.
func (e *EventEmitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[orchestrator] WARNING: event channel full, dropped event (total dropped: %d): type=%s", count, event.Type)
		}
	}
}

// DroppedCount returns the total number of dropped events.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events for subscribers.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Call only after the pipeline has
// fully stopped emitting.
func (e *EventEmitter) Close() {
	close(e.events)
}
