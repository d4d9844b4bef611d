package models

import "time"

// Edge is a directed dependency edge: From must build before To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Roadmap is the cycle-free dependency graph over accepted contracts.
type Roadmap struct {
	// Nodes are the accepted enhancement area names, unique, in batch order.
	Nodes []string `json:"nodes"`
	// Edges run dependency -> dependent, in-batch names only.
	Edges []Edge `json:"edges"`
	// BuildOrder is a permutation of Nodes respecting every edge.
	BuildOrder []string `json:"build_order"`
}

// ManifestMeta wraps a manifest with provenance information.
type ManifestMeta struct {
	Version     string    `json:"version"`
	BatchID     string    `json:"batch_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Environment string    `json:"environment,omitempty"`
	// AreaCount is the number of areas submitted in the batch.
	AreaCount int `json:"area_count"`
	// AcceptedCount is the number of contracts in the manifest.
	AcceptedCount int `json:"accepted_count"`
	// RejectedCount is the number of areas rejected or escalated.
	RejectedCount int `json:"rejected_count"`
}

// Manifest is the validated, dependency-ordered execution plan emitted
// once every area in a batch has resolved.
type Manifest struct {
	Enhancements []AgentContract `json:"enhancements"`
	Roadmap      Roadmap         `json:"roadmap"`
	Meta         ManifestMeta    `json:"meta"`
}
