// Package intake reads a batch of enhancement areas from a structured
// YAML document and validates batch-level invariants before anything
// reaches the coordinator.
package intake

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Document is the on-disk batch shape.
type Document struct {
	// Version is the document schema version.
	Version string `yaml:"version,omitempty"`
	// Batch optionally names the batch for audit metadata.
	Batch string `yaml:"batch,omitempty"`
	// Areas is the ordered list of enhancement areas.
	Areas []models.EnhancementArea `yaml:"areas"`
}

// Read decodes a batch document. Unknown fields are rejected, not
// silently trusted: the decoder runs in strict mode.
func Read(r io.Reader) ([]models.EnhancementArea, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "decode batch document")
	}

	if len(doc.Areas) == 0 {
		return nil, fault.New(fault.KindValidation, "batch document contains no areas")
	}

	seen := make(map[string]bool, len(doc.Areas))
	for i := range doc.Areas {
		area := &doc.Areas[i]
		if err := area.Validate(); err != nil {
			return nil, fault.Wrap(fault.KindValidation, err, "area %d invalid", i)
		}
		if seen[area.Name] {
			return nil, fault.New(fault.KindValidation,
				"duplicate area name %q in batch", area.Name)
		}
		seen[area.Name] = true
	}

	return doc.Areas, nil
}

// ReadFile reads a batch document from disk.
func ReadFile(path string) ([]models.EnhancementArea, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch document: %w", err)
	}
	defer f.Close()
	return Read(f)
}
