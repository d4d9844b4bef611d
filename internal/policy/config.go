// Package policy implements the deterministic routing decision that
// chooses who produces each enhancement area's contract. It also
// centralizes the threshold values previously scattered across
// implementation files, enabling configuration and testing.
package policy

// DomainRule holds the per-domain thresholds consulted by the rule
// cascade.
type DomainRule struct {
	// MinTrust is the trust score an agent must meet or exceed to be
	// eligible for this domain.
	MinTrust float64
	// RequiresCompliance marks domains that carry compliance
	// certification requirements.
	RequiresCompliance bool
	// HumanReviewThreshold is the classification confidence below
	// which compliance domains route to a human reviewer.
	HumanReviewThreshold float64
}

// Config contains all configurable policy parameters.
type Config struct {
	// GlobalConfidenceMin is the classification confidence below which
	// every area routes to the generic LLM generator, independent of
	// candidates.
	GlobalConfidenceMin float64
	// Domains maps domain names to their rules. Domains absent from
	// the map use DefaultRule.
	Domains map[string]DomainRule
	// DefaultRule applies to domains without an explicit entry.
	DefaultRule DomainRule
}

// Default returns the default policy configuration. The specific
// threshold values are configuration, not tuned constants.
func Default() *Config {
	return &Config{
		GlobalConfidenceMin: 0.5,
		Domains: map[string]DomainRule{
			"security": {
				MinTrust:             0.8,
				RequiresCompliance:   true,
				HumanReviewThreshold: 0.7,
			},
			"payments": {
				MinTrust:             0.85,
				RequiresCompliance:   true,
				HumanReviewThreshold: 0.75,
			},
			"data": {
				MinTrust: 0.7,
			},
			"infrastructure": {
				MinTrust: 0.7,
			},
		},
		DefaultRule: DomainRule{MinTrust: 0.6},
	}
}

// Validate clamps policy values into acceptable ranges.
func (c *Config) Validate() error {
	if c.GlobalConfidenceMin <= 0 || c.GlobalConfidenceMin > 1 {
		c.GlobalConfidenceMin = 0.5
	}
	if c.DefaultRule.MinTrust < 0 || c.DefaultRule.MinTrust > 1 {
		c.DefaultRule.MinTrust = 0.6
	}
	for name, rule := range c.Domains {
		if rule.MinTrust < 0 || rule.MinTrust > 1 {
			rule.MinTrust = c.DefaultRule.MinTrust
		}
		if rule.HumanReviewThreshold < 0 || rule.HumanReviewThreshold > 1 {
			rule.HumanReviewThreshold = 0.7
		}
		c.Domains[name] = rule
	}
	return nil
}

// Rule returns the rule for a domain, falling back to DefaultRule.
func (c *Config) Rule(domain string) DomainRule {
	if rule, ok := c.Domains[domain]; ok {
		return rule
	}
	return c.DefaultRule
}
