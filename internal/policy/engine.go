package policy

import (
	"fmt"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/classifier"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// Rule names recorded on every decision, in cascade order.
const (
	RuleComplianceHumanReview = "compliance_human_review"
	RuleGlobalConfidenceFloor = "global_confidence_floor"
	RuleNoQualifyingAgent     = "no_qualifying_agent"
	RuleHighestTrustAgent     = "highest_trust_agent"
)

// RequestContext carries per-request identifiers into the decision for
// audit purposes. It never influences the routing outcome.
type RequestContext struct {
	AreaName      string
	CorrelationID string
}

// Engine evaluates the fixed-order rule cascade. It is a pure function
// of its inputs: no hidden state, identical inputs always produce
// identical output.
type Engine struct {
	cfg *Config
}

// NewEngine creates an Engine over the given configuration.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = Default()
	}
	cfg.Validate()
	return &Engine{cfg: cfg}
}

// Decide runs the cascade; the first matching rule is terminal:
//  1. Compliance domain with confidence below its human-review
//     threshold routes HUMAN.
//  2. Confidence below the global minimum routes LLM, independent of
//     candidates.
//  3. No candidate meets the domain's minimum trust: route LLM.
//  4. Otherwise the qualifying candidate with highest trust wins; ties
//     break to the lexicographically lowest agent id.
//
// The Preferred flag on a candidate is advisory only and never enters
// the trust comparison.
func (e *Engine) Decide(domainResult classifier.Result, candidates []models.AgentMeta, reqCtx RequestContext) models.PolicyDecision {
	rule := e.cfg.Rule(domainResult.Domain)
	applied := []string{}

	// Rule 1: compliance domains demand a human below their threshold.
	applied = append(applied, RuleComplianceHumanReview)
	if rule.RequiresCompliance && domainResult.Confidence < rule.HumanReviewThreshold {
		return models.PolicyDecision{
			Route: models.RouteHuman,
			Explanation: fmt.Sprintf("domain %q requires compliance certification and confidence %.2f is below its human-review threshold %.2f",
				domainResult.Domain, domainResult.Confidence, rule.HumanReviewThreshold),
			Confidence:         domainResult.Confidence,
			PolicyRulesApplied: applied,
			Risk: models.RiskAssessment{
				Level: models.RiskHigh,
				Reasons: []string{
					"compliance-certified domain",
					"classification confidence below human-review threshold",
				},
			},
		}
	}

	// Rule 2: global confidence floor.
	applied = append(applied, RuleGlobalConfidenceFloor)
	if domainResult.Confidence < e.cfg.GlobalConfidenceMin {
		return models.PolicyDecision{
			Route: models.RouteLLM,
			Explanation: fmt.Sprintf("classification confidence %.2f is below the global minimum %.2f; using generic generator",
				domainResult.Confidence, e.cfg.GlobalConfidenceMin),
			Confidence:         domainResult.Confidence,
			PolicyRulesApplied: applied,
			Risk: models.RiskAssessment{
				Level:   models.RiskMedium,
				Reasons: []string{"low classification confidence"},
			},
		}
	}

	// Rule 3: filter candidates by the domain trust minimum.
	applied = append(applied, RuleNoQualifyingAgent)
	var qualified []models.AgentMeta
	for _, c := range candidates {
		if c.TrustScore >= rule.MinTrust {
			qualified = append(qualified, c)
		}
	}
	if len(qualified) == 0 {
		return models.PolicyDecision{
			Route: models.RouteLLM,
			Explanation: fmt.Sprintf("no candidate meets domain %q minimum trust %.2f; using generic generator",
				domainResult.Domain, rule.MinTrust),
			Confidence:         domainResult.Confidence,
			PolicyRulesApplied: applied,
			Risk: models.RiskAssessment{
				Level:   models.RiskMedium,
				Reasons: []string{"no qualifying specialized agent"},
			},
		}
	}

	// Rule 4: highest trust wins; ties break to the lowest agent id so
	// the decision is independent of candidate input order.
	applied = append(applied, RuleHighestTrustAgent)
	best := qualified[0]
	for _, c := range qualified[1:] {
		if c.TrustScore > best.TrustScore ||
			(c.TrustScore == best.TrustScore && c.AgentID < best.AgentID) {
			best = c
		}
	}

	return models.PolicyDecision{
		Route:   models.RouteAgent,
		AgentID: best.AgentID,
		Explanation: fmt.Sprintf("selected agent %q (trust %.2f) for domain %q",
			best.AgentID, best.TrustScore, domainResult.Domain),
		Confidence:         domainResult.Confidence,
		PolicyRulesApplied: applied,
		Risk: models.RiskAssessment{
			Level:   riskForAgent(best.TrustScore, domainResult.Confidence),
			Reasons: []string{fmt.Sprintf("trusted agent with score %.2f", best.TrustScore)},
		},
	}
}

// riskForAgent grades an AGENT route by trust and confidence.
func riskForAgent(trust, confidence float64) models.RiskLevel {
	if trust >= 0.9 && confidence >= 0.8 {
		return models.RiskLow
	}
	return models.RiskMedium
}
