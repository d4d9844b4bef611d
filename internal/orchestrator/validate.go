package orchestrator

import (
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/graph"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// ValidateOutputs re-validates a previously emitted manifest: every
// contract against its schema, and the roadmap against the contracts
// it claims to order. It is the check a caller runs before acting on a
// manifest that crossed a trust boundary (disk, network).
func (c *Coordinator) ValidateOutputs(manifest *models.Manifest) error {
	return ValidateManifest(manifest)
}

// ValidateManifest is ValidateOutputs without a coordinator; adapters
// that only validate need no pipeline collaborators.
func ValidateManifest(manifest *models.Manifest) error {
	if manifest == nil {
		return fault.New(fault.KindValidation, "manifest is nil")
	}

	byArea := make(map[string]bool, len(manifest.Enhancements))
	for i := range manifest.Enhancements {
		contract := &manifest.Enhancements[i]
		if err := contract.Validate(); err != nil {
			return fault.Wrap(fault.KindValidation, err, "manifest contract %d invalid", i)
		}
		if byArea[contract.EnhancementArea] {
			return fault.New(fault.KindValidation,
				"manifest contains duplicate contract for %q", contract.EnhancementArea)
		}
		byArea[contract.EnhancementArea] = true
	}

	if len(manifest.Roadmap.Nodes) != len(manifest.Enhancements) {
		return fault.New(fault.KindValidation,
			"roadmap has %d nodes but manifest has %d contracts",
			len(manifest.Roadmap.Nodes), len(manifest.Enhancements))
	}
	for _, node := range manifest.Roadmap.Nodes {
		if !byArea[node] {
			return fault.New(fault.KindValidation,
				"roadmap node %q has no contract in manifest", node)
		}
	}

	if err := graph.Verify(&manifest.Roadmap); err != nil {
		return err
	}

	// Rebuilding from the contracts must reproduce a valid ordering;
	// a cycle here means the manifest was tampered with or corrupted.
	contracts := make([]*models.AgentContract, len(manifest.Enhancements))
	for i := range manifest.Enhancements {
		contracts[i] = &manifest.Enhancements[i]
	}
	if _, err := graph.Build(contracts); err != nil {
		if cyc, ok := err.(*fault.CycleError); ok {
			return cyc.AsFault()
		}
		return err
	}

	return nil
}
