package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/llm"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Generator produces a validated contract for one enhancement area.
// Implementations are assumed slow and unreliable; the coordinator
// isolates their failures per area.
type Generator interface {
	Generate(ctx context.Context, area models.EnhancementArea, decision models.PolicyDecision) (*models.AgentContract, error)
}

// ContractGenerator drives a text-generation service to draft
// contracts. The same generator serves both routes: for AGENT the
// prompt carries the selected worker's identity so the draft reflects
// its specialty, for LLM it runs as the generic fallback.
type ContractGenerator struct {
	completer llm.Completer
	model     string
	maxTokens int
}

// NewContractGenerator creates a generator over the given completer.
func NewContractGenerator(completer llm.Completer, model string, maxTokens int) *ContractGenerator {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ContractGenerator{
		completer: completer,
		model:     model,
		maxTokens: maxTokens,
	}
}

const generatorSystemPrompt = `You draft implementation contracts for software enhancement work.
Respond with a single JSON object and nothing else. Do not wrap the JSON in markdown fences.`

// Generate drafts and validates a contract for the area. Schema
// failures in the drafted contract are permanent: they reject the area
// and must not be retried.
func (g *ContractGenerator) Generate(ctx context.Context, area models.EnhancementArea, decision models.PolicyDecision) (*models.AgentContract, error) {
	prompt := g.buildPrompt(area, decision)

	text, err := g.completer.Complete(ctx, prompt, llm.Options{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    generatorSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("generate contract for %q: %w", area.Name, err)
	}

	contract, err := parseContract(text)
	if err != nil {
		return nil, fault.Wrap(fault.KindValidation, err,
			"contract for %q failed schema parse", area.Name)
	}

	// The area's identity and declared dependencies are authoritative;
	// the draft cannot rename itself or shed a dependency.
	contract.EnhancementArea = area.Name
	contract.DependsOn = mergeNames(area.DependsOn, contract.DependsOn)
	if len(contract.Sources) == 0 {
		contract.Sources = area.Sources
	}
	if contract.Objective == "" {
		contract.Objective = area.Objective
	}

	if err := contract.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err,
			"contract for %q failed schema validation", area.Name)
	}

	return contract, nil
}

// buildPrompt renders the generation prompt for one area.
func (g *ContractGenerator) buildPrompt(area models.EnhancementArea, decision models.PolicyDecision) string {
	var b strings.Builder

	b.WriteString("Draft an implementation contract for the following enhancement area.\n\n")
	fmt.Fprintf(&b, "Area: %s\n", area.Name)
	fmt.Fprintf(&b, "Objective: %s\n", area.Objective)

	b.WriteString("Key requirements:\n")
	for _, req := range area.KeyRequirements {
		fmt.Fprintf(&b, "- %s\n", req)
	}

	if len(area.DependsOn) > 0 {
		fmt.Fprintf(&b, "Depends on sibling areas: %s\n", strings.Join(area.DependsOn, ", "))
		b.WriteString("You may reference these by name even though their contracts are not yet built.\n")
	}
	if len(area.Sources) > 0 {
		fmt.Fprintf(&b, "Reference sources: %s\n", strings.Join(area.Sources, ", "))
	}
	if decision.Route == models.RouteAgent && decision.AgentID != "" {
		fmt.Fprintf(&b, "\nYou are acting as specialized agent %q. Draft the plan the way that specialist would.\n", decision.AgentID)
	}

	b.WriteString(`
Respond with JSON matching exactly this shape:
{
  "enhancement_area": "<area name>",
  "objective": "<restated objective>",
  "implementation_plan": {
    "modules": ["<module>", ...],
    "architecture": "<structural approach>"
  },
  "depends_on": ["<sibling area>", ...],
  "sources": ["<source>", ...],
  "governance": {
    "security": "<security notes>",
    "compliance": "<compliance notes>",
    "ethics": "<ethics notes>"
  },
  "validation_criteria": "<how finished work is judged>",
  "confidence_score": <0.0-1.0>
}`)

	return b.String()
}

// parseContract extracts and decodes the JSON object from a model
// response, tolerating surrounding prose or markdown fences. Unknown
// fields are rejected, never silently trusted.
func parseContract(text string) (*models.AgentContract, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.DisallowUnknownFields()

	var contract models.AgentContract
	if err := dec.Decode(&contract); err != nil {
		return nil, fmt.Errorf("decode contract JSON: %w", err)
	}
	return &contract, nil
}

// mergeNames unions two name lists, preserving first-seen order.
func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
