package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// DelegationStep records the handoff of one contract to its executor.
type DelegationStep struct {
	// Position is the step's index in the build order, starting at 1.
	Position int `json:"position"`
	// Area is the enhancement area being delegated.
	Area string `json:"area"`
	// DependsOn lists the in-manifest areas delegated before this one.
	DependsOn []string `json:"depends_on,omitempty"`
	// DelegatedAt is when the handoff was recorded.
	DelegatedAt time.Time `json:"delegated_at"`
}

// ExecuteDelegation replays a validated manifest's build order,
// recording the handoff of each contract in dependency-safe sequence.
// The actual implementation work happens downstream; this operation
// owns only the ordering and the audit record of it. A manifest that
// fails validation is never delegated.
func (c *Coordinator) ExecuteDelegation(ctx context.Context, manifest *models.Manifest) ([]DelegationStep, error) {
	if err := c.ValidateOutputs(manifest); err != nil {
		return nil, fmt.Errorf("refusing to delegate invalid manifest: %w", err)
	}

	byArea := make(map[string]*models.AgentContract, len(manifest.Enhancements))
	for i := range manifest.Enhancements {
		byArea[manifest.Enhancements[i].EnhancementArea] = &manifest.Enhancements[i]
	}

	steps := make([]DelegationStep, 0, len(manifest.Roadmap.BuildOrder))
	for i, area := range manifest.Roadmap.BuildOrder {
		if err := ctx.Err(); err != nil {
			return steps, fault.Wrap(fault.KindExternal, err,
				"delegation stopped after %d of %d steps", i, len(manifest.Roadmap.BuildOrder))
		}

		contract := byArea[area]
		step := DelegationStep{
			Position:    i + 1,
			Area:        area,
			DependsOn:   inManifestDeps(contract.DependsOn, byArea),
			DelegatedAt: time.Now().UTC(),
		}
		steps = append(steps, step)

		c.auditor.Record(models.AuditEntry{
			CorrelationID: manifest.Meta.BatchID,
			Actor:         "orchestrator",
			Action:        "contract_delegated",
			Payload: map[string]any{
				"position": step.Position,
				"area":     step.Area,
			},
			Metadata: map[string]string{"batch_id": manifest.Meta.BatchID, "area": area},
		})
		log.Printf("[orchestrator] delegated %d/%d: %s", step.Position, len(manifest.Roadmap.BuildOrder), area)
	}

	return steps, nil
}

// inManifestDeps filters a dependency list to areas the manifest
// actually contains.
func inManifestDeps(deps []string, byArea map[string]*models.AgentContract) []string {
	var out []string
	for _, d := range deps {
		if _, ok := byArea[d]; ok {
			out = append(out, d)
		}
	}
	return out
}
