package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/audit"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/classifier"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/dedupe"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/policy"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/registry"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/similarity"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// stubGenerator builds a deterministic contract from the area itself,
// failing for areas listed in fail.
type stubGenerator struct {
	mu    sync.Mutex
	fail  map[string]error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, area models.EnhancementArea, _ models.PolicyDecision) (*models.AgentContract, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if err := g.fail[area.Name]; err != nil {
		return nil, err
	}
	return &models.AgentContract{
		EnhancementArea: area.Name,
		Objective:       area.Objective,
		ImplementationPlan: models.ImplementationPlan{
			Modules:      []string{area.Name + "-core"},
			Architecture: "layered service for " + area.Name,
		},
		DependsOn:          area.DependsOn,
		ValidationCriteria: "acceptance tests pass",
		ConfidenceScore:    0.9,
	}, nil
}

func newTestCoordinator(gen Generator, auditor *audit.Logger, opts ...CoordinatorOption) *Coordinator {
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 1 // serialize so audit and dedupe order is stable
	return New(cfg,
		classifier.New(),
		registry.New(),
		policy.NewEngine(nil),
		gen,
		dedupe.NewChecker(similarity.NewMemoryStore(), 0.85),
		auditor,
		opts...)
}

func area(name, objective string, deps ...string) models.EnhancementArea {
	return models.EnhancementArea{
		Name:            name,
		Objective:       objective,
		KeyRequirements: []string{"must ship"},
		DependsOn:       deps,
	}
}

// chainAreas is a three-area batch with a linear dependency chain:
// profile-ui -> profile-api -> storage.
func chainAreas() []models.EnhancementArea {
	return []models.EnhancementArea{
		area("profile-ui", "Build the dashboard page component rendering customer profiles", "profile-api"),
		area("profile-api", "Expose a rest endpoint returning stored customer profiles", "storage"),
		area("storage", "Persist customer profiles with a new database schema and migration scripts"),
	}
}

func TestCompileManifestChain(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)

	m, err := c.CompileManifest(context.Background(), "batch-1", chainAreas())
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	if m.Meta.BatchID != "batch-1" || m.Meta.Version != ManifestVersion {
		t.Errorf("meta = %+v", m.Meta)
	}
	if m.Meta.AreaCount != 3 || m.Meta.AcceptedCount != 3 || m.Meta.RejectedCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 3/3/0",
			m.Meta.AreaCount, m.Meta.AcceptedCount, m.Meta.RejectedCount)
	}

	// Nodes follow batch input order; build order follows dependencies.
	if want := []string{"profile-ui", "profile-api", "storage"}; !reflect.DeepEqual(m.Roadmap.Nodes, want) {
		t.Errorf("nodes = %v, want %v", m.Roadmap.Nodes, want)
	}
	if want := []string{"storage", "profile-api", "profile-ui"}; !reflect.DeepEqual(m.Roadmap.BuildOrder, want) {
		t.Errorf("build order = %v, want %v", m.Roadmap.BuildOrder, want)
	}
	if len(m.Enhancements) != 3 {
		t.Fatalf("enhancements = %d, want 3", len(m.Enhancements))
	}
}

func TestCompileManifestAssignsBatchID(t *testing.T) {
	c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))

	m, err := c.CompileManifest(context.Background(), "", chainAreas()[2:])
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}
	if m.Meta.BatchID == "" {
		t.Error("empty batch id not replaced")
	}
}

func TestCompileManifestEmptyBatch(t *testing.T) {
	c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))

	_, err := c.CompileManifest(context.Background(), "b", nil)
	if !fault.IsKind(err, fault.KindValidation) {
		t.Errorf("error = %v, want validation fault", err)
	}
}

func TestCompileManifestDuplicateNames(t *testing.T) {
	c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))

	areas := []models.EnhancementArea{
		area("same", "first objective text"),
		area("same", "second objective text"),
	}
	_, err := c.CompileManifest(context.Background(), "b", areas)
	if !fault.IsKind(err, fault.KindValidation) {
		t.Errorf("error = %v, want validation fault for duplicate names", err)
	}
}

func TestCompileManifestEscalatesHumanRoute(t *testing.T) {
	var escalated []string
	esc := EscalatorFunc(func(_ context.Context, a models.EnhancementArea, _ string) error {
		escalated = append(escalated, a.Name)
		return nil
	})

	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor, WithEscalator(esc))

	areas := []models.EnhancementArea{
		// Security domain at mid confidence: compliance rule routes HUMAN.
		area("authn", "Harden login with token authentication and encryption of stored secrets"),
		area("storage", "Persist customer profiles with a new database schema and migration scripts"),
	}
	m, err := c.CompileManifest(context.Background(), "b", areas)
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	if !reflect.DeepEqual(escalated, []string{"authn"}) {
		t.Errorf("escalated = %v, want [authn]", escalated)
	}
	if m.Meta.AcceptedCount != 1 || m.Meta.RejectedCount != 1 {
		t.Errorf("counts = %d accepted / %d rejected, want 1/1", m.Meta.AcceptedCount, m.Meta.RejectedCount)
	}
	for _, name := range m.Roadmap.Nodes {
		if name == "authn" {
			t.Error("escalated area leaked into the manifest")
		}
	}
	if !hasAction(auditor, "area_escalated") {
		t.Error("escalation not audited")
	}
}

func TestCompileManifestGenerationFailureIsolated(t *testing.T) {
	gen := &stubGenerator{fail: map[string]error{
		"broken": fault.New(fault.KindValidation, "model returned no parseable contract"),
	}}
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(gen, auditor)

	areas := []models.EnhancementArea{
		area("broken", "Consolidate nightly export files into an archival job"),
		area("storage", "Persist customer profiles with a new database schema and migration scripts"),
	}
	m, err := c.CompileManifest(context.Background(), "b", areas)
	if err != nil {
		t.Fatalf("sibling failure aborted the batch: %v", err)
	}

	if m.Meta.AcceptedCount != 1 || m.Meta.RejectedCount != 1 {
		t.Errorf("counts = %d/%d, want 1 accepted, 1 rejected", m.Meta.AcceptedCount, m.Meta.RejectedCount)
	}
	if !reflect.DeepEqual(m.Roadmap.Nodes, []string{"storage"}) {
		t.Errorf("nodes = %v, want [storage]", m.Roadmap.Nodes)
	}
	if !hasAction(auditor, "contract_generation_failed") {
		t.Error("generation failure not audited")
	}
}

func TestCompileManifestRejectsDuplicateContract(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)

	// Identical objectives produce near-identical contracts; whichever
	// resolves second is rejected as a duplicate of the first.
	objective := "Consolidate nightly export files into a single archival job with retry support and alerting"
	areas := []models.EnhancementArea{
		area("export-one", objective),
		area("export-two", objective),
	}
	m, err := c.CompileManifest(context.Background(), "b", areas)
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	if m.Meta.AcceptedCount != 1 || m.Meta.RejectedCount != 1 {
		t.Errorf("counts = %d/%d, want exactly one duplicate rejected", m.Meta.AcceptedCount, m.Meta.RejectedCount)
	}
	if !hasAction(auditor, "duplicate_conflict") {
		t.Error("duplicate rejection not audited")
	}
}

func TestCompileManifestCycleFailsBatch(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)

	areas := []models.EnhancementArea{
		area("alpha", "First of two mutually dependent work items", "beta"),
		area("beta", "Second of two mutually dependent work items plus extra scope", "alpha"),
	}
	m, err := c.CompileManifest(context.Background(), "b", areas)
	if m != nil {
		t.Fatal("partial manifest emitted despite a dependency cycle")
	}
	if !fault.IsKind(err, fault.KindCycle) {
		t.Fatalf("error = %v, want cycle fault", err)
	}

	var cyc *fault.CycleError
	if !errors.As(err, &cyc) {
		t.Fatalf("cycle error not recoverable from %v", err)
	}
	if !reflect.DeepEqual(cyc.Nodes, []string{"alpha", "beta"}) {
		t.Errorf("cycle nodes = %v, want [alpha beta]", cyc.Nodes)
	}
	if !hasAction(auditor, "batch_failed") {
		t.Error("batch failure not audited")
	}
}

func TestCompileManifestCancelledContext(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := c.CompileManifest(ctx, "b", chainAreas())
	if m != nil {
		t.Error("manifest emitted for a cancelled batch")
	}
	if !fault.IsKind(err, fault.KindExternal) {
		t.Errorf("error = %v, want external fault", err)
	}
	if !hasAction(auditor, "batch_failed") {
		t.Error("cancellation not audited")
	}
}

func TestCompileManifestAuditTrail(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)

	if _, err := c.CompileManifest(context.Background(), "b", chainAreas()[2:]); err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	want := []string{
		"area_received",
		"area_classified",
		"policy_evaluated",
		"contract_generated",
		"duplicate_checked",
		"area_accepted",
		"manifest_built",
	}
	var got []string
	for _, e := range auditor.Entries() {
		got = append(got, e.Action)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("audit actions = %v, want %v", got, want)
	}
}

func TestCompileManifestDeterministic(t *testing.T) {
	var first *models.Manifest
	for i := 0; i < 3; i++ {
		c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))
		m, err := c.CompileManifest(context.Background(), "b", chainAreas())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if first == nil {
			first = m
			continue
		}
		if !reflect.DeepEqual(m.Roadmap, first.Roadmap) {
			t.Fatalf("run %d roadmap diverged: %+v vs %+v", i, m.Roadmap, first.Roadmap)
		}
	}
}

func TestValidateOutputsDetectsTampering(t *testing.T) {
	c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))
	m, err := c.CompileManifest(context.Background(), "b", chainAreas())
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	if err := c.ValidateOutputs(m); err != nil {
		t.Fatalf("fresh manifest failed validation: %v", err)
	}

	// Reversing the build order violates the edges.
	tampered := *m
	tampered.Roadmap.BuildOrder = []string{"profile-ui", "profile-api", "storage"}
	if err := c.ValidateOutputs(&tampered); err == nil {
		t.Error("reversed build order passed validation")
	}

	if err := ValidateManifest(nil); err == nil {
		t.Error("nil manifest passed validation")
	}
}

func TestExecuteDelegationFollowsBuildOrder(t *testing.T) {
	auditor := audit.NewLogger(nil)
	c := newTestCoordinator(&stubGenerator{}, auditor)
	m, err := c.CompileManifest(context.Background(), "b", chainAreas())
	if err != nil {
		t.Fatalf("CompileManifest() error = %v", err)
	}

	steps, err := c.ExecuteDelegation(context.Background(), m)
	if err != nil {
		t.Fatalf("ExecuteDelegation() error = %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	for i, step := range steps {
		if step.Position != i+1 {
			t.Errorf("step %d position = %d", i, step.Position)
		}
		if step.Area != m.Roadmap.BuildOrder[i] {
			t.Errorf("step %d area = %q, want %q", i, step.Area, m.Roadmap.BuildOrder[i])
		}
	}
	if steps[2].Area != "profile-ui" || !reflect.DeepEqual(steps[2].DependsOn, []string{"profile-api"}) {
		t.Errorf("last step = %+v, want profile-ui after profile-api", steps[2])
	}
}

func TestExecuteDelegationRefusesInvalidManifest(t *testing.T) {
	c := newTestCoordinator(&stubGenerator{}, audit.NewLogger(nil))

	bad := &models.Manifest{
		Roadmap: models.Roadmap{Nodes: []string{"ghost"}, BuildOrder: []string{"ghost"}},
	}
	if _, err := c.ExecuteDelegation(context.Background(), bad); err == nil {
		t.Error("manifest with a contract-less node accepted for delegation")
	}
}

func hasAction(l *audit.Logger, action string) bool {
	for _, e := range l.Entries() {
		if e.Action == action {
			return true
		}
	}
	return false
}
