// Package similarity defines the embedding/similarity collaborator
// interfaces the duplicate checker consumes, plus an in-memory store.
package similarity

import "context"

// Match is one near-duplicate candidate returned by a query.
type Match struct {
	// ID identifies the stored record.
	ID string
	// Score is the similarity in [0,1]; higher is closer.
	Score float64
	// Metadata carries the record's stored fields, including the
	// comma-separated "depends_on" list used for conflict detection.
	Metadata map[string]string
}

// Record is one entry to upsert into the store.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Store is the external similarity/vector collaborator. It is assumed
// unreliable: callers treat every error as transient and apply their
// own failure policy.
type Store interface {
	// Embed converts texts to vectors.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Query returns the topK closest matches to vector, restricted to
	// records whose metadata contains every filter entry.
	Query(ctx context.Context, vector []float32, filter map[string]string, topK int) ([]Match, error)
	// Upsert stores records, replacing any with the same ID.
	Upsert(ctx context.Context, records []Record) error
}
