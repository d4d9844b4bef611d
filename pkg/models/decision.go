package models

// Route identifies who produces the detailed contract for an area.
type Route string

const (
	// RouteAgent assigns a specialized registered worker.
	RouteAgent Route = "AGENT"
	// RouteLLM assigns the generic fallback generator.
	RouteLLM Route = "LLM"
	// RouteHuman escalates to a human reviewer.
	RouteHuman Route = "HUMAN"
)

// Valid returns true if the route is a known value.
func (r Route) Valid() bool {
	switch r {
	case RouteAgent, RouteLLM, RouteHuman:
		return true
	default:
		return false
	}
}

// RiskLevel grades the risk attached to a policy decision.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskAssessment is the machine-readable risk record on a decision.
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Reasons []string  `json:"reasons"`
}

// PolicyDecision records the outcome of the policy engine's rule
// cascade for one enhancement area.
type PolicyDecision struct {
	// Route says who produces the contract.
	Route Route `json:"route"`
	// AgentID names the selected worker when Route is AGENT.
	AgentID string `json:"agent_id,omitempty"`
	// Explanation is the human-readable account of which rule fired.
	Explanation string `json:"explanation"`
	// Confidence is the classification confidence the decision was based on.
	Confidence float64 `json:"confidence"`
	// PolicyRulesApplied names the rules evaluated, in firing order.
	PolicyRulesApplied []string `json:"policy_rules_applied"`
	// Risk is the machine-readable risk assessment.
	Risk RiskAssessment `json:"risk_assessment"`
}
