// Package dedupe gates contract acceptance against historical work
// using an external similarity store.
package dedupe

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/similarity"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// MetadataDependsOn is the store metadata key holding a record's
// comma-separated dependency list.
const MetadataDependsOn = "depends_on"

// MetadataArea is the store metadata key holding the record's
// enhancement area name.
const MetadataArea = "enhancement_area"

// Result is the outcome of checking one candidate contract.
type Result struct {
	// Accept is true when the candidate passed the gate.
	Accept bool
	// Reason explains a rejection, citing the matching id and score.
	Reason string
	// MatchID is the offending stored record, when rejected.
	MatchID string
	// Score is the offending similarity, for duplicate rejections.
	Score float64
}

// Checker queries the similarity store for near-duplicates and
// dependency conflicts. Duplicate prevention is a quality safeguard,
// not a safety gate: if the store is unreachable, the checker fails
// open and accepts.
type Checker struct {
	store     similarity.Store
	threshold float64
	topK      int
}

// NewChecker creates a Checker with the given duplicate-similarity
// threshold (e.g. 0.85).
func NewChecker(store similarity.Store, threshold float64) *Checker {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85
	}
	return &Checker{store: store, threshold: threshold, topK: 5}
}

// Check embeds the candidate's descriptive text and queries for
// near-duplicates. It rejects as duplicate when any match's score
// exceeds the threshold, and independently rejects as conflict when a
// match's recorded dependency set references the candidate's own name:
// accepting it would retroactively create a dependency on work that
// already depends on it.
func (c *Checker) Check(ctx context.Context, candidate *models.AgentContract) Result {
	text := candidate.DescriptiveText()

	vectors, err := c.store.Embed(ctx, []string{text})
	if err != nil {
		log.Printf("[dedupe] warning: embed failed, failing open for %q: %v",
			candidate.EnhancementArea, err)
		return Result{Accept: true, Reason: "similarity store unavailable (fail open)"}
	}
	if len(vectors) == 0 {
		return Result{Accept: true}
	}

	matches, err := c.store.Query(ctx, vectors[0], nil, c.topK)
	if err != nil {
		log.Printf("[dedupe] warning: query failed, failing open for %q: %v",
			candidate.EnhancementArea, err)
		return Result{Accept: true, Reason: "similarity store unavailable (fail open)"}
	}

	for _, m := range matches {
		if m.ID == candidate.EnhancementArea {
			// The candidate's own prior record is not a duplicate of itself.
			continue
		}
		if m.Score > c.threshold {
			return Result{
				Accept:  false,
				MatchID: m.ID,
				Score:   m.Score,
				Reason: fmt.Sprintf("duplicate of %q (similarity %.2f exceeds threshold %.2f)",
					m.ID, m.Score, c.threshold),
			}
		}
		if dependsOn(m.Metadata, candidate.EnhancementArea) {
			return Result{
				Accept:  false,
				MatchID: m.ID,
				Reason: fmt.Sprintf("conflict: existing work %q already depends on %q",
					m.ID, candidate.EnhancementArea),
			}
		}
	}

	return Result{Accept: true}
}

// RecordAccepted upserts the accepted contract so future submissions of
// the same descriptive text are caught as duplicates. Store failures
// are logged, not surfaced: the contract is already accepted.
func (c *Checker) RecordAccepted(ctx context.Context, contract *models.AgentContract) {
	vectors, err := c.store.Embed(ctx, []string{contract.DescriptiveText()})
	if err != nil || len(vectors) == 0 {
		log.Printf("[dedupe] warning: could not embed accepted contract %q: %v",
			contract.EnhancementArea, err)
		return
	}

	rec := similarity.Record{
		ID:     contract.EnhancementArea,
		Values: vectors[0],
		Metadata: map[string]string{
			MetadataArea:      contract.EnhancementArea,
			MetadataDependsOn: strings.Join(contract.DependsOn, ","),
		},
	}
	if err := c.store.Upsert(ctx, []similarity.Record{rec}); err != nil {
		log.Printf("[dedupe] warning: could not record accepted contract %q: %v",
			contract.EnhancementArea, err)
	}
}

// dependsOn reports whether a record's dependency metadata names area.
func dependsOn(metadata map[string]string, area string) bool {
	raw := metadata[MetadataDependsOn]
	if raw == "" {
		return false
	}
	for _, dep := range strings.Split(raw, ",") {
		if strings.TrimSpace(dep) == area {
			return true
		}
	}
	return false
}
