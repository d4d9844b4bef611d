package main

import (
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/audit"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/classifier"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/config"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/dedupe"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/llm"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/orchestrator"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/policy"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/registry"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/similarity"
)

// pipeline bundles the wired collaborators behind one compile run.
type pipeline struct {
	coordinator *orchestrator.Coordinator
	registry    *registry.Registry
	auditor     *audit.Logger
	cache       *llm.ResponseCache
	store       *audit.Store
}

// close releases pipeline resources.
func (p *pipeline) close() {
	if p.cache != nil {
		p.cache.Stop()
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			log.Printf("[planforge] close audit store: %v", err)
		}
	}
}

// buildPipeline wires the full compilation pipeline from configuration.
func buildPipeline(cfg *config.Config) (*pipeline, error) {
	apiKey, err := config.GetAPIKey(cfg)
	if err != nil && !cfg.Anthropic.UseBedrock {
		return nil, err
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	retry := llm.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.Pipeline.MaxRetries

	var cache *llm.ResponseCache
	if cfg.Cache.Enabled {
		cache = llm.NewResponseCache(cfg.Cache.TTL)
		cache.StartSweep(time.Minute)
	}
	completer := llm.NewCachedCompleter(client, cache, retry)

	oracle := classifier.NewCompleterOracle(completer, classifier.DefaultDomainKeywords())
	cls := classifier.New(
		classifier.WithOracle(oracle, 15*time.Second, 0.6),
	)

	reg := registry.New()
	engine := policy.NewEngine(policyConfig(cfg))
	generator := orchestrator.NewContractGenerator(completer, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	checker := dedupe.NewChecker(similarity.NewMemoryStore(), cfg.Duplicates.SimilarityThreshold)

	store, auditor, err := openAudit(cfg)
	if err != nil {
		return nil, err
	}

	coord := orchestrator.New(orchestrator.Config{
		MaxConcurrent:     cfg.Pipeline.MaxConcurrent,
		GenerationTimeout: cfg.Pipeline.GenerationTimeout,
		Environment:       cfg.Environment,
	}, cls, reg, engine, generator, checker, auditor)

	return &pipeline{
		coordinator: coord,
		registry:    reg,
		auditor:     auditor,
		cache:       cache,
		store:       store,
	}, nil
}

// openAudit opens the persistent audit store and a logger over it.
// Store failures degrade to in-memory auditing rather than blocking
// compilation.
func openAudit(cfg *config.Config) (*audit.Store, *audit.Logger, error) {
	path := cfg.Audit.Path
	if path == "" {
		path = audit.DefaultStorePath()
	}
	store, err := audit.OpenStore(path)
	if err != nil {
		log.Printf("[planforge] audit store unavailable, falling back to in-memory: %v", err)
		return nil, audit.NewLogger(nil), nil
	}
	return store, audit.NewLogger(store), nil
}

// policyConfig maps loaded configuration onto the policy engine's
// defaults, overriding only the global confidence floor.
func policyConfig(cfg *config.Config) *policy.Config {
	pc := policy.Default()
	pc.GlobalConfidenceMin = cfg.Pipeline.ConfidenceMin
	return pc
}
