package models

import "time"

// AuditEntry is one append-only record of a decision or transition.
// Entries are self-contained and never mutated once written.
type AuditEntry struct {
	// Timestamp is when the recorded action happened.
	Timestamp time.Time `json:"timestamp"`
	// CorrelationID ties the entry to one area's pipeline run.
	CorrelationID string `json:"correlation_id"`
	// Actor is the subsystem that acted (classifier, policy, dedupe, ...).
	Actor string `json:"actor"`
	// Action names what happened (area_classified, contract_rejected, ...).
	Action string `json:"action"`
	// Payload carries the decision or result being recorded.
	Payload map[string]any `json:"payload,omitempty"`
	// Duration is how long the action took, when measured.
	Duration time.Duration `json:"duration,omitempty"`
	// Metadata carries free-form context (batch id, area name, ...).
	Metadata map[string]string `json:"metadata,omitempty"`
}
