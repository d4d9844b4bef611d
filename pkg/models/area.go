package models

import "fmt"

// AreaStatus represents the current lifecycle state of an enhancement area.
type AreaStatus string

const (
	// AreaStatusReceived indicates the area has been accepted into a batch.
	AreaStatusReceived AreaStatus = "received"
	// AreaStatusClassified indicates the domain classifier has run.
	AreaStatusClassified AreaStatus = "classified"
	// AreaStatusPolicyEvaluated indicates a routing decision has been made.
	AreaStatusPolicyEvaluated AreaStatus = "policy_evaluated"
	// AreaStatusContractGenerated indicates a contract draft exists.
	AreaStatusContractGenerated AreaStatus = "contract_generated"
	// AreaStatusEscalated indicates the area was handed to a human reviewer.
	AreaStatusEscalated AreaStatus = "escalated"
	// AreaStatusDuplicateChecked indicates the duplicate gate has run.
	AreaStatusDuplicateChecked AreaStatus = "duplicate_checked"
	// AreaStatusAccepted indicates the contract was accepted into the batch.
	AreaStatusAccepted AreaStatus = "accepted"
	// AreaStatusRejected indicates the area was rejected with a recorded reason.
	AreaStatusRejected AreaStatus = "rejected"
)

// Valid returns true if the status is a known value.
func (s AreaStatus) Valid() bool {
	switch s {
	case AreaStatusReceived, AreaStatusClassified, AreaStatusPolicyEvaluated,
		AreaStatusContractGenerated, AreaStatusEscalated,
		AreaStatusDuplicateChecked, AreaStatusAccepted, AreaStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are possible from s.
func (s AreaStatus) Terminal() bool {
	return s == AreaStatusAccepted || s == AreaStatusRejected || s == AreaStatusEscalated
}

// EnhancementArea is one unit of requested work within a batch.
// It is immutable input: the coordinator never mutates it.
type EnhancementArea struct {
	// Name uniquely identifies the area within its batch.
	Name string `json:"name" yaml:"name"`
	// Objective states what the enhancement should accomplish.
	Objective string `json:"objective" yaml:"objective"`
	// KeyRequirements lists the concrete requirements to satisfy.
	KeyRequirements []string `json:"key_requirements" yaml:"key_requirements"`
	// Sources lists reference material for contract generation.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	// DependsOn names other areas in the same batch this area builds on.
	// Names that resolve to nothing in the batch are ignored for graph
	// purposes, never treated as satisfied.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Validate checks that the area carries the required fields.
func (a *EnhancementArea) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("enhancement area missing name")
	}
	if a.Objective == "" {
		return fmt.Errorf("enhancement area %q missing objective", a.Name)
	}
	if len(a.KeyRequirements) == 0 {
		return fmt.Errorf("enhancement area %q has no key requirements", a.Name)
	}
	return nil
}
