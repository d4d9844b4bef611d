package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// rosterDocument is the on-disk agent roster shape.
type rosterDocument struct {
	Agents []models.AgentMeta `yaml:"agents"`
}

// LoadRoster reads an agent roster file and registers every agent.
// Registration is an upsert, so loading the same roster twice is safe.
func LoadRoster(r *Registry, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read roster: %w", err)
	}

	var doc rosterDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("decode roster %s: %w", path, err)
	}

	for i, meta := range doc.Agents {
		if err := r.Register(meta); err != nil {
			return i, fmt.Errorf("register roster agent %d: %w", i, err)
		}
	}
	return len(doc.Agents), nil
}
