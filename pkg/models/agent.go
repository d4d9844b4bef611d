package models

// AgentMeta describes a candidate worker known to the registry.
type AgentMeta struct {
	// AgentID uniquely identifies the agent.
	AgentID string `json:"agent_id" yaml:"agent_id"`
	// Domains lists the classification domains the agent serves.
	Domains []string `json:"domains" yaml:"domains"`
	// Capabilities lists what the agent can do, for display and audit.
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	// TrustScore is a [0,1] rating gating policy routing.
	TrustScore float64 `json:"trust_score" yaml:"trust_score"`
	// Preferred is advisory only. It never enters trust comparison;
	// an agent cannot promote itself through metadata.
	Preferred bool `json:"preferred,omitempty" yaml:"preferred,omitempty"`
}

// ServesDomain returns true if the agent lists the given domain.
func (m *AgentMeta) ServesDomain(domain string) bool {
	for _, d := range m.Domains {
		if d == domain {
			return true
		}
	}
	return false
}

// ClampTrustScore clamps a trust score to [0,1].
func ClampTrustScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
