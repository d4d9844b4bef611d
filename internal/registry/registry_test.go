package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()

	err := r.Register(models.AgentMeta{
		AgentID:    "agent-1",
		Domains:    []string{"data"},
		TrustScore: 0.8,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := r.Get("agent-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TrustScore != 0.8 {
		t.Errorf("trust = %v, want 0.8", got.TrustScore)
	}
}

func TestRegisterMissingIDFails(t *testing.T) {
	r := New()
	err := r.Register(models.AgentMeta{Domains: []string{"data"}})
	if !fault.IsKind(err, fault.KindValidation) {
		t.Errorf("Register() error = %v, want validation fault", err)
	}
}

func TestRegisterIsUpsert(t *testing.T) {
	r := New()

	r.Register(models.AgentMeta{AgentID: "a", TrustScore: 0.5})
	r.Register(models.AgentMeta{AgentID: "a", TrustScore: 0.9})

	if r.Count() != 1 {
		t.Fatalf("count = %d, want 1 after upsert", r.Count())
	}
	got, _ := r.Get("a")
	if got.TrustScore != 0.9 {
		t.Errorf("trust = %v, want the upserted 0.9", got.TrustScore)
	}
}

func TestRegisterClampsTrust(t *testing.T) {
	r := New()

	r.Register(models.AgentMeta{AgentID: "over", TrustScore: 1.5})
	r.Register(models.AgentMeta{AgentID: "under", TrustScore: -0.2})

	over, _ := r.Get("over")
	under, _ := r.Get("under")
	if over.TrustScore != 1.0 {
		t.Errorf("over trust = %v, want clamped 1.0", over.TrustScore)
	}
	if under.TrustScore != 0.0 {
		t.Errorf("under trust = %v, want clamped 0.0", under.TrustScore)
	}
}

func TestUnknownAgentFails(t *testing.T) {
	r := New()

	if _, err := r.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := r.Unregister("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unregister() error = %v, want ErrNotFound", err)
	}
	if err := r.SetTrustScore("ghost", 0.5); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTrustScore() error = %v, want ErrNotFound", err)
	}
}

func TestSetTrustScoreClamps(t *testing.T) {
	r := New()
	r.Register(models.AgentMeta{AgentID: "a", TrustScore: 0.5})

	if err := r.SetTrustScore("a", 2.0); err != nil {
		t.Fatalf("SetTrustScore() error = %v", err)
	}
	got, _ := r.Get("a")
	if got.TrustScore != 1.0 {
		t.Errorf("trust = %v, want clamped 1.0", got.TrustScore)
	}
}

func TestListByDomain(t *testing.T) {
	r := New()
	r.Register(models.AgentMeta{AgentID: "b", Domains: []string{"data", "backend"}})
	r.Register(models.AgentMeta{AgentID: "a", Domains: []string{"data"}})
	r.Register(models.AgentMeta{AgentID: "c", Domains: []string{"frontend"}})

	got := r.ListByDomain("data")
	if len(got) != 2 {
		t.Fatalf("ListByDomain(data) returned %d agents, want 2", len(got))
	}
	// Sorted by agent id for deterministic downstream decisions.
	if got[0].AgentID != "a" || got[1].AgentID != "b" {
		t.Errorf("order = [%s %s], want [a b]", got[0].AgentID, got[1].AgentID)
	}

	if empty := r.ListByDomain("payments"); len(empty) != 0 {
		t.Errorf("ListByDomain(payments) = %v, want empty", empty)
	}
}

func TestUnregister(t *testing.T) {
	r := New()
	r.Register(models.AgentMeta{AgentID: "a"})

	if err := r.Unregister("a"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, err := r.Get("a"); err == nil {
		t.Error("Get() succeeded after Unregister")
	}
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	doc := `agents:
  - agent_id: sec-reviewer
    domains: [security]
    trust_score: 0.92
    capabilities: [threat-modeling]
  - agent_id: data-eng
    domains: [data]
    trust_score: 0.75
    preferred: true
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	r := New()
	n, err := LoadRoster(r, path)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	if n != 2 || r.Count() != 2 {
		t.Errorf("loaded %d agents, registry has %d, want 2", n, r.Count())
	}

	sec, err := r.Get("sec-reviewer")
	if err != nil {
		t.Fatalf("Get(sec-reviewer) error = %v", err)
	}
	if sec.TrustScore != 0.92 {
		t.Errorf("trust = %v, want 0.92", sec.TrustScore)
	}
}

func TestLoadRosterMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	os.WriteFile(path, []byte("agents:\n  - domains: [data]\n"), 0644)

	r := New()
	if _, err := LoadRoster(r, path); err == nil {
		t.Error("LoadRoster() accepted an agent without an id")
	}
}
