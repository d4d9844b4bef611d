package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
)

const validDoc = `version: "1"
batch: q3-enhancements
areas:
  - name: auth-service
    objective: Add OAuth2 login
    key_requirements:
      - Support Google and GitHub providers
    depends_on: [user-store]
  - name: user-store
    objective: Persist user profiles
    key_requirements:
      - Schema migration for profile table
    sources:
      - docs/users.md
`

func TestReadValidDocument(t *testing.T) {
	areas, err := Read(strings.NewReader(validDoc))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(areas) != 2 {
		t.Fatalf("got %d areas, want 2", len(areas))
	}
	if areas[0].Name != "auth-service" {
		t.Errorf("first area = %q, want auth-service (input order preserved)", areas[0].Name)
	}
	if len(areas[0].DependsOn) != 1 || areas[0].DependsOn[0] != "user-store" {
		t.Errorf("depends_on = %v, want [user-store]", areas[0].DependsOn)
	}
	if len(areas[1].Sources) != 1 {
		t.Errorf("sources = %v, want one entry", areas[1].Sources)
	}
}

func TestReadRejectsUnknownFields(t *testing.T) {
	doc := `areas:
  - name: x
    objective: y
    key_requirements: [z]
    surprise_field: true
`
	_, err := Read(strings.NewReader(doc))
	if !fault.IsKind(err, fault.KindValidation) {
		t.Errorf("Read() error = %v, want validation fault for unknown field", err)
	}
}

func TestReadRejectsEmptyBatch(t *testing.T) {
	_, err := Read(strings.NewReader("areas: []\n"))
	if !fault.IsKind(err, fault.KindValidation) {
		t.Errorf("Read() error = %v, want validation fault", err)
	}
}

func TestReadRejectsDuplicateNames(t *testing.T) {
	doc := `areas:
  - name: same
    objective: one
    key_requirements: [a]
  - name: same
    objective: two
    key_requirements: [b]
`
	_, err := Read(strings.NewReader(doc))
	if !fault.IsKind(err, fault.KindValidation) {
		t.Fatalf("Read() error = %v, want validation fault", err)
	}
	if !strings.Contains(err.Error(), "same") {
		t.Errorf("error %q does not name the duplicate", err.Error())
	}
}

func TestReadRejectsInvalidArea(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing name",
			doc:  "areas:\n  - objective: y\n    key_requirements: [a]\n",
		},
		{
			name: "missing objective",
			doc:  "areas:\n  - name: x\n    key_requirements: [a]\n",
		},
		{
			name: "no requirements",
			doc:  "areas:\n  - name: x\n    objective: y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.doc)); err == nil {
				t.Error("Read() accepted an invalid area")
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte(validDoc), 0644); err != nil {
		t.Fatal(err)
	}

	areas, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(areas) != 2 {
		t.Errorf("got %d areas, want 2", len(areas))
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("ReadFile() succeeded on a missing file")
	}
}
