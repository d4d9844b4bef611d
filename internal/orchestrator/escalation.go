package orchestrator

import (
	"context"
	"log"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Escalator hands an enhancement area to a human reviewer. Escalation
// is fire-and-forget: the reviewing workflow happens elsewhere, and a
// sink failure never fails the area beyond being logged.
type Escalator interface {
	Escalate(ctx context.Context, area models.EnhancementArea, reason string) error
}

// LogEscalator records escalations to the process log. It is the
// default sink when no review queue is wired in.
type LogEscalator struct{}

// Escalate logs the handoff and returns nil.
func (LogEscalator) Escalate(_ context.Context, area models.EnhancementArea, reason string) error {
	log.Printf("[orchestrator] escalated to human review: area=%s reason=%s", area.Name, reason)
	return nil
}

// EscalatorFunc adapts a function to the Escalator interface.
type EscalatorFunc func(ctx context.Context, area models.EnhancementArea, reason string) error

// Escalate calls f.
func (f EscalatorFunc) Escalate(ctx context.Context, area models.EnhancementArea, reason string) error {
	return f(ctx, area, reason)
}
