// Package graph builds the dependency-ordered roadmap over a batch of
// accepted contracts.
package graph

import (
	"fmt"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Build constructs the roadmap for the given contracts using Kahn's
// algorithm. Each contract's enhancement area is a node; an edge runs
// dependency -> dependent only when the dependency name is itself a
// node in the batch. Names that resolve to nothing in the batch are
// ignored for graph purposes: they never count as satisfied and never
// block ordering.
//
// Build is pure, synchronous, and deterministic given a fixed input
// order: zero-in-degree nodes are seeded in batch input order, so ties
// resolve the same way on every run. A cycle fails the whole build
// with a CycleError naming exactly the unresolved nodes.
func Build(contracts []*models.AgentContract) (*models.Roadmap, error) {
	nodes := make([]string, 0, len(contracts))
	inBatch := make(map[string]bool, len(contracts))

	for _, c := range contracts {
		if c.EnhancementArea == "" {
			return nil, fault.New(fault.KindValidation, "contract missing enhancement_area")
		}
		if inBatch[c.EnhancementArea] {
			return nil, fault.New(fault.KindValidation,
				"duplicate enhancement_area %q in batch", c.EnhancementArea)
		}
		inBatch[c.EnhancementArea] = true
		nodes = append(nodes, c.EnhancementArea)
	}

	// dependents[dep] lists nodes that declared dep, in batch order.
	dependents := make(map[string][]string, len(contracts))
	inDegree := make(map[string]int, len(contracts))
	var edges []models.Edge

	for _, name := range nodes {
		inDegree[name] = 0
	}
	for _, c := range contracts {
		seen := make(map[string]bool)
		for _, dep := range c.DependsOn {
			if !inBatch[dep] || dep == c.EnhancementArea || seen[dep] {
				continue
			}
			seen[dep] = true
			dependents[dep] = append(dependents[dep], c.EnhancementArea)
			inDegree[c.EnhancementArea]++
			edges = append(edges, models.Edge{From: dep, To: c.EnhancementArea})
		}
	}

	// Seed the queue with zero-in-degree nodes in batch input order.
	queue := make([]string, 0, len(nodes))
	for _, name := range nodes {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	buildOrder := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		buildOrder = append(buildOrder, current)

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(buildOrder) < len(nodes) {
		resolved := make(map[string]bool, len(buildOrder))
		for _, name := range buildOrder {
			resolved[name] = true
		}
		var unresolved []string
		for _, name := range nodes {
			if !resolved[name] {
				unresolved = append(unresolved, name)
			}
		}
		return nil, fault.NewCycleError(unresolved)
	}

	return &models.Roadmap{
		Nodes:      nodes,
		Edges:      edges,
		BuildOrder: buildOrder,
	}, nil
}

// Verify checks that a roadmap's build order is a permutation of its
// nodes respecting every edge. Used when re-validating an emitted
// manifest.
func Verify(r *models.Roadmap) error {
	if len(r.BuildOrder) != len(r.Nodes) {
		return fmt.Errorf("build_order has %d entries for %d nodes",
			len(r.BuildOrder), len(r.Nodes))
	}
	position := make(map[string]int, len(r.BuildOrder))
	for i, name := range r.BuildOrder {
		if _, dup := position[name]; dup {
			return fmt.Errorf("build_order repeats node %q", name)
		}
		position[name] = i
	}
	for _, name := range r.Nodes {
		if _, ok := position[name]; !ok {
			return fmt.Errorf("node %q missing from build_order", name)
		}
	}
	for _, e := range r.Edges {
		from, ok := position[e.From]
		if !ok {
			return fmt.Errorf("edge references unknown node %q", e.From)
		}
		to, ok := position[e.To]
		if !ok {
			return fmt.Errorf("edge references unknown node %q", e.To)
		}
		if from >= to {
			return fmt.Errorf("build_order places %q before its dependency %q", e.To, e.From)
		}
	}
	return nil
}
