package models

import (
	"fmt"
	"strings"
)

// ImplementationPlan describes how an enhancement area will be built.
type ImplementationPlan struct {
	// Modules lists the components the implementation touches or creates.
	Modules []string `json:"modules"`
	// Architecture summarizes the structural approach.
	Architecture string `json:"architecture"`
}

// Governance captures the non-functional review dimensions of a contract.
type Governance struct {
	Security   string `json:"security"`
	Compliance string `json:"compliance"`
	Ethics     string `json:"ethics"`
}

// AgentContract is the validated implementation specification produced
// for an accepted enhancement area. It is created once and never
// mutated after acceptance.
type AgentContract struct {
	// EnhancementArea names the area this contract fulfills.
	EnhancementArea string `json:"enhancement_area"`
	// Objective restates the area's goal as the contract understands it.
	Objective string `json:"objective"`
	// ImplementationPlan carries the modules and architecture summary.
	ImplementationPlan ImplementationPlan `json:"implementation_plan"`
	// DependsOn names sibling areas whose contracts must build first.
	DependsOn []string `json:"depends_on,omitempty"`
	// Sources lists reference material the contract was grounded on.
	Sources []string `json:"sources,omitempty"`
	// Governance carries security, compliance, and ethics notes.
	Governance Governance `json:"governance"`
	// ValidationCriteria states how the finished work is judged.
	ValidationCriteria string `json:"validation_criteria"`
	// ConfidenceScore is the generator's self-assessed confidence in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`
}

// Validate checks the contract against its schema. Failures are
// permanent for a given input and must not be retried.
func (c *AgentContract) Validate() error {
	if c.EnhancementArea == "" {
		return fmt.Errorf("contract missing enhancement_area")
	}
	if c.Objective == "" {
		return fmt.Errorf("contract %q missing objective", c.EnhancementArea)
	}
	if len(c.ImplementationPlan.Modules) == 0 {
		return fmt.Errorf("contract %q has no implementation modules", c.EnhancementArea)
	}
	if c.ImplementationPlan.Architecture == "" {
		return fmt.Errorf("contract %q missing architecture summary", c.EnhancementArea)
	}
	if c.ValidationCriteria == "" {
		return fmt.Errorf("contract %q missing validation criteria", c.EnhancementArea)
	}
	if c.ConfidenceScore < 0 || c.ConfidenceScore > 1 {
		return fmt.Errorf("contract %q confidence_score %.2f outside [0,1]",
			c.EnhancementArea, c.ConfidenceScore)
	}
	return nil
}

// DescriptiveText returns the text the duplicate checker embeds and
// compares: the objective plus a summary of the implementation plan.
func (c *AgentContract) DescriptiveText() string {
	var b strings.Builder
	b.WriteString(c.Objective)
	if c.ImplementationPlan.Architecture != "" {
		b.WriteString("\n")
		b.WriteString(c.ImplementationPlan.Architecture)
	}
	if len(c.ImplementationPlan.Modules) > 0 {
		b.WriteString("\nmodules: ")
		b.WriteString(strings.Join(c.ImplementationPlan.Modules, ", "))
	}
	return b.String()
}
