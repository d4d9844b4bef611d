package models

import (
	"strings"
	"testing"
)

func validContract() AgentContract {
	return AgentContract{
		EnhancementArea: "search",
		Objective:       "Add full-text search",
		ImplementationPlan: ImplementationPlan{
			Modules:      []string{"indexer", "query-api"},
			Architecture: "inverted index behind the existing API",
		},
		ValidationCriteria: "queries return ranked results",
		ConfidenceScore:    0.8,
	}
}

func TestContractValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AgentContract)
		wantErr bool
	}{
		{"valid", func(*AgentContract) {}, false},
		{"missing area", func(c *AgentContract) { c.EnhancementArea = "" }, true},
		{"missing objective", func(c *AgentContract) { c.Objective = "" }, true},
		{"no modules", func(c *AgentContract) { c.ImplementationPlan.Modules = nil }, true},
		{"missing architecture", func(c *AgentContract) { c.ImplementationPlan.Architecture = "" }, true},
		{"missing criteria", func(c *AgentContract) { c.ValidationCriteria = "" }, true},
		{"confidence below zero", func(c *AgentContract) { c.ConfidenceScore = -0.1 }, true},
		{"confidence above one", func(c *AgentContract) { c.ConfidenceScore = 1.1 }, true},
		{"confidence at bounds", func(c *AgentContract) { c.ConfidenceScore = 1.0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContract()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptiveTextCoversPlan(t *testing.T) {
	c := validContract()
	text := c.DescriptiveText()

	for _, want := range []string{c.Objective, c.ImplementationPlan.Architecture, "indexer", "query-api"} {
		if !strings.Contains(text, want) {
			t.Errorf("DescriptiveText() missing %q", want)
		}
	}
}

func TestDescriptiveTextDeterministic(t *testing.T) {
	c := validContract()
	if c.DescriptiveText() != c.DescriptiveText() {
		t.Error("DescriptiveText() is not deterministic")
	}
}

func TestAreaStatusTransitions(t *testing.T) {
	for _, s := range []AreaStatus{AreaStatusAccepted, AreaStatusRejected, AreaStatusEscalated} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []AreaStatus{AreaStatusReceived, AreaStatusClassified, AreaStatusPolicyEvaluated, AreaStatusContractGenerated, AreaStatusDuplicateChecked} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	if AreaStatus("bogus").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestEnhancementAreaValidate(t *testing.T) {
	area := EnhancementArea{
		Name:            "a",
		Objective:       "do a",
		KeyRequirements: []string{"req"},
	}
	if err := area.Validate(); err != nil {
		t.Errorf("Validate() error = %v for valid area", err)
	}

	missing := area
	missing.KeyRequirements = nil
	if err := missing.Validate(); err == nil {
		t.Error("Validate() accepted an area without requirements")
	}
}

func TestRouteValid(t *testing.T) {
	for _, r := range []Route{RouteAgent, RouteLLM, RouteHuman} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Route("SOMETHING").Valid() {
		t.Error("unknown route reported valid")
	}
}
