package similarity

import (
	"context"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
)

// memoryDims is the vector width of the hashing embedder.
const memoryDims = 256

// MemoryStore is an in-process Store built on a deterministic
// token-hashing embedder and cosine similarity. Byte-identical text
// always embeds to the identical vector, so a re-submitted duplicate
// scores 1.0 against its stored twin.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Embed hashes each text's tokens into a fixed-width vector.
func (s *MemoryStore) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embed(text)
	}
	return vectors, nil
}

// Query returns the topK records closest to vector by cosine
// similarity, filtered by metadata, sorted by descending score with
// ties broken by record id.
func (s *MemoryStore) Query(_ context.Context, vector []float32, filter map[string]string, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, rec := range s.records {
		if !metadataMatches(rec.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       rec.ID,
			Score:    cosine(vector, rec.Values),
			Metadata: rec.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Upsert stores records keyed by ID.
func (s *MemoryStore) Upsert(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func metadataMatches(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func embed(text string) []float32 {
	vec := make([]float32, memoryDims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%memoryDims]++
	}
	return normalize(vec)
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	// Inputs are normalized on embed, so the dot product is the cosine.
	if dot > 1 {
		dot = 1
	}
	if dot < 0 {
		dot = 0
	}
	return dot
}
