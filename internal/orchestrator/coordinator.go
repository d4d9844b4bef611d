package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/audit"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/classifier"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/dedupe"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/graph"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/policy"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/registry"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// ManifestVersion is stamped on every emitted manifest.
const ManifestVersion = "1.0"

// Config holds coordinator tunables.
type Config struct {
	// MaxConcurrent bounds parallel contract generation. Areas beyond
	// the bound queue until a slot frees.
	MaxConcurrent int
	// GenerationTimeout bounds each area's generation call. Zero
	// disables the per-area timeout.
	GenerationTimeout time.Duration
	// Environment is stamped into manifest metadata.
	Environment string
}

// DefaultConfig returns the coordinator defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:     5,
		GenerationTimeout: 2 * time.Minute,
	}
}

// Coordinator is the top-level state machine turning a batch of
// enhancement areas into a validated, dependency-ordered manifest.
// All collaborators are injected; the coordinator holds no hidden
// global state.
type Coordinator struct {
	cfg        Config
	classifier *classifier.Classifier
	registry   *registry.Registry
	policy     *policy.Engine
	generator  Generator
	checker    *dedupe.Checker
	auditor    *audit.Logger
	escalator  Escalator
	emitter    *EventEmitter
}

// New creates a Coordinator. Nil optional collaborators get working
// defaults: a LogEscalator and a small buffered emitter.
func New(cfg Config, cls *classifier.Classifier, reg *registry.Registry, eng *policy.Engine, gen Generator, chk *dedupe.Checker, auditor *audit.Logger, opts ...CoordinatorOption) *Coordinator {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	c := &Coordinator{
		cfg:        cfg,
		classifier: cls,
		registry:   reg,
		policy:     eng,
		generator:  gen,
		checker:    chk,
		auditor:    auditor,
		escalator:  LogEscalator{},
		emitter:    NewEventEmitter(64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CoordinatorOption configures optional collaborators.
type CoordinatorOption func(*Coordinator)

// WithEscalator sets the human-review escalation sink.
func WithEscalator(e Escalator) CoordinatorOption {
	return func(c *Coordinator) {
		if e != nil {
			c.escalator = e
		}
	}
}

// WithEmitter sets the event emitter subscribers listen on.
func WithEmitter(e *EventEmitter) CoordinatorOption {
	return func(c *Coordinator) {
		if e != nil {
			c.emitter = e
		}
	}
}

// Events exposes the coordinator's event stream.
func (c *Coordinator) Events() <-chan Event {
	return c.emitter.Events()
}

// areaOutcome is the resolved state of one area after its pipeline run.
type areaOutcome struct {
	area          models.EnhancementArea
	correlationID string
	status        models.AreaStatus
	contract      *models.AgentContract
	decision      models.PolicyDecision
	reason        string
	err           error
}

// CompileManifest runs the full pipeline over one batch. Every area
// resolves to accepted, rejected, or escalated; per-area failures are
// isolated and never abort siblings. Only after the whole batch has
// resolved is the dependency graph built, exactly once. A cycle at
// that point fails the whole batch: no partial manifest is ever
// emitted. Cancellation stops issuing new external calls but lets
// in-flight work complete and records its outcome.
func (c *Coordinator) CompileManifest(ctx context.Context, batchID string, areas []models.EnhancementArea) (*models.Manifest, error) {
	if batchID == "" {
		batchID = uuid.New().String()
	}
	if len(areas) == 0 {
		return nil, fault.New(fault.KindValidation, "batch %s contains no areas", batchID)
	}
	if err := validateBatch(areas); err != nil {
		return nil, err
	}

	log.Printf("[orchestrator] compiling batch %s: %d areas, max %d concurrent",
		batchID, len(areas), c.cfg.MaxConcurrent)

	sem := semaphore.NewWeighted(int64(c.cfg.MaxConcurrent))
	outcomes := make([]areaOutcome, len(areas))
	var wg sync.WaitGroup

	for i, area := range areas {
		wg.Add(1)
		go func(i int, area models.EnhancementArea) {
			defer wg.Done()

			corrID := uuid.New().String()
			if err := sem.Acquire(ctx, 1); err != nil {
				// Batch cancelled before this area got a slot. Never
				// start new external calls after cancellation.
				outcomes[i] = areaOutcome{
					area:          area,
					correlationID: corrID,
					status:        models.AreaStatusRejected,
					reason:        "batch cancelled before processing",
					err:           fault.Wrap(fault.KindExternal, err, "area %q not processed", area.Name).WithCorrelation(corrID),
				}
				return
			}
			defer sem.Release(1)

			// In-flight work runs to completion and records its
			// outcome even when the batch is cancelled mid-call.
			outcomes[i] = c.processArea(context.WithoutCancel(ctx), batchID, corrID, area)
		}(i, area)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		batchErr := fault.Wrap(fault.KindExternal, err, "batch %s cancelled", batchID)
		c.recordBatchFailure(batchID, batchErr)
		return nil, batchErr
	}

	// Accepted contracts in batch input order keep the graph build
	// deterministic.
	var accepted []*models.AgentContract
	rejected := 0
	for _, out := range outcomes {
		if out.status == models.AreaStatusAccepted {
			accepted = append(accepted, out.contract)
		} else {
			rejected++
		}
	}

	roadmap, err := graph.Build(accepted)
	if err != nil {
		// A cycle among accepted contracts fails the whole batch so
		// the caller can break it and resubmit.
		batchErr := err
		if cyc, ok := err.(*fault.CycleError); ok {
			batchErr = cyc.AsFault().WithCorrelation(batchID)
		}
		c.recordBatchFailure(batchID, batchErr)
		return nil, batchErr
	}

	manifest := &models.Manifest{
		Roadmap: *roadmap,
		Meta: models.ManifestMeta{
			Version:       ManifestVersion,
			BatchID:       batchID,
			GeneratedAt:   time.Now().UTC(),
			Environment:   c.cfg.Environment,
			AreaCount:     len(areas),
			AcceptedCount: len(accepted),
			RejectedCount: rejected,
		},
	}
	for _, contract := range accepted {
		manifest.Enhancements = append(manifest.Enhancements, *contract)
	}

	c.auditor.Record(models.AuditEntry{
		CorrelationID: batchID,
		Actor:         "orchestrator",
		Action:        "manifest_built",
		Payload: map[string]any{
			"nodes":       roadmap.Nodes,
			"build_order": roadmap.BuildOrder,
			"accepted":    len(accepted),
			"rejected":    rejected,
		},
		Metadata: map[string]string{"batch_id": batchID},
	})
	c.emitter.Emit(Event{
		Type:    EventManifestBuilt,
		BatchID: batchID,
		Message: fmt.Sprintf("%d contracts, %d rejected", len(accepted), rejected),
	})

	return manifest, nil
}

// processArea walks one enhancement area through the per-area state
// machine. Every transition is audited under the area's correlation id.
func (c *Coordinator) processArea(ctx context.Context, batchID, corrID string, area models.EnhancementArea) areaOutcome {
	out := areaOutcome{
		area:          area,
		correlationID: corrID,
		status:        models.AreaStatusReceived,
	}
	meta := map[string]string{"batch_id": batchID, "area": area.Name}

	c.record(corrID, "orchestrator", "area_received", map[string]any{"objective": area.Objective}, 0, meta)
	c.emitter.Emit(Event{Type: EventAreaReceived, BatchID: batchID, Area: area.Name, CorrelationID: corrID})

	// RECEIVED -> CLASSIFIED
	start := time.Now()
	classification := c.classifier.Classify(ctx, area.Objective+" "+joined(area.KeyRequirements))
	out.status = models.AreaStatusClassified
	c.record(corrID, "classifier", "area_classified", map[string]any{
		"domain":      classification.Domain,
		"confidence":  classification.Confidence,
		"explanation": classification.Explanation,
	}, time.Since(start), meta)
	c.emitter.Emit(Event{Type: EventAreaClassified, BatchID: batchID, Area: area.Name, CorrelationID: corrID, Message: classification.Domain})

	// CLASSIFIED -> POLICY_EVALUATED
	candidates := c.registry.ListByDomain(classification.Domain)
	decision := c.policy.Decide(classification, candidates, policy.RequestContext{
		AreaName:      area.Name,
		CorrelationID: corrID,
	})
	out.decision = decision
	out.status = models.AreaStatusPolicyEvaluated
	c.record(corrID, "policy", "policy_evaluated", map[string]any{
		"route":         string(decision.Route),
		"agent_id":      decision.AgentID,
		"explanation":   decision.Explanation,
		"rules_applied": decision.PolicyRulesApplied,
		"risk":          decision.Risk,
	}, 0, meta)
	c.emitter.Emit(Event{Type: EventPolicyEvaluated, BatchID: batchID, Area: area.Name, CorrelationID: corrID, Route: decision.Route, Message: decision.Explanation})

	// POLICY_EVALUATED -> ESCALATED
	if decision.Route == models.RouteHuman {
		if err := c.escalator.Escalate(ctx, area, decision.Explanation); err != nil {
			log.Printf("[orchestrator] escalation sink failed for %s: %v", area.Name, err)
		}
		out.status = models.AreaStatusEscalated
		out.reason = decision.Explanation
		c.record(corrID, "orchestrator", "area_escalated", map[string]any{"reason": decision.Explanation}, 0, meta)
		c.emitter.Emit(Event{Type: EventAreaEscalated, BatchID: batchID, Area: area.Name, CorrelationID: corrID, Message: decision.Explanation})
		return out
	}

	// POLICY_EVALUATED -> CONTRACT_GENERATED
	genCtx := ctx
	if c.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, c.cfg.GenerationTimeout)
		defer cancel()
	}
	start = time.Now()
	contract, err := c.generator.Generate(genCtx, area, decision)
	if err != nil {
		return c.rejectArea(out, batchID, meta, "contract_generation_failed", err)
	}
	out.contract = contract
	out.status = models.AreaStatusContractGenerated
	c.record(corrID, "generator", "contract_generated", map[string]any{
		"modules":    contract.ImplementationPlan.Modules,
		"confidence": contract.ConfidenceScore,
	}, time.Since(start), meta)
	c.emitter.Emit(Event{Type: EventContractGenerated, BatchID: batchID, Area: area.Name, CorrelationID: corrID})

	// CONTRACT_GENERATED -> DUPLICATE_CHECKED
	start = time.Now()
	check := c.checker.Check(ctx, contract)
	out.status = models.AreaStatusDuplicateChecked
	c.record(corrID, "dedupe", "duplicate_checked", map[string]any{
		"accept":   check.Accept,
		"reason":   check.Reason,
		"match_id": check.MatchID,
		"score":    check.Score,
	}, time.Since(start), meta)
	c.emitter.Emit(Event{Type: EventDuplicateChecked, BatchID: batchID, Area: area.Name, CorrelationID: corrID, Message: check.Reason})

	if !check.Accept {
		err := fault.New(fault.KindDuplicate, "%s", check.Reason)
		return c.rejectArea(out, batchID, meta, "duplicate_conflict", err)
	}

	// DUPLICATE_CHECKED -> ACCEPTED
	out.status = models.AreaStatusAccepted
	c.checker.RecordAccepted(ctx, contract)
	c.record(corrID, "orchestrator", "area_accepted", nil, 0, meta)
	c.emitter.Emit(Event{Type: EventAreaAccepted, BatchID: batchID, Area: area.Name, CorrelationID: corrID})
	return out
}

// rejectArea resolves an area as rejected, recording the reason under
// the area's correlation id. Sibling areas are unaffected.
func (c *Coordinator) rejectArea(out areaOutcome, batchID string, meta map[string]string, action string, err error) areaOutcome {
	if f, ok := err.(*fault.Fault); ok {
		err = f.WithCorrelation(out.correlationID)
	}
	out.status = models.AreaStatusRejected
	out.reason = err.Error()
	out.err = err

	c.record(out.correlationID, "orchestrator", action, map[string]any{"error": err.Error()}, 0, meta)
	c.emitter.Emit(Event{
		Type:          EventAreaRejected,
		BatchID:       batchID,
		Area:          out.area.Name,
		CorrelationID: out.correlationID,
		Error:         err,
	})
	return out
}

// record appends one audit entry, stamping the timestamp.
func (c *Coordinator) record(corrID, actor, action string, payload map[string]any, duration time.Duration, meta map[string]string) {
	c.auditor.Record(models.AuditEntry{
		Timestamp:     time.Now().UTC(),
		CorrelationID: corrID,
		Actor:         actor,
		Action:        action,
		Payload:       payload,
		Duration:      duration,
		Metadata:      meta,
	})
}

func (c *Coordinator) recordBatchFailure(batchID string, err error) {
	c.auditor.Record(models.AuditEntry{
		CorrelationID: batchID,
		Actor:         "orchestrator",
		Action:        "batch_failed",
		Payload:       map[string]any{"error": err.Error()},
		Metadata:      map[string]string{"batch_id": batchID},
	})
	c.emitter.Emit(Event{Type: EventBatchFailed, BatchID: batchID, Error: err})
}

// validateBatch checks batch-level invariants before any work starts.
func validateBatch(areas []models.EnhancementArea) error {
	seen := make(map[string]bool, len(areas))
	for i := range areas {
		if err := areas[i].Validate(); err != nil {
			return fault.Wrap(fault.KindValidation, err, "area %d invalid", i)
		}
		if seen[areas[i].Name] {
			return fault.New(fault.KindValidation, "duplicate area name %q in batch", areas[i].Name)
		}
		seen[areas[i].Name] = true
	}
	return nil
}

func joined(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
