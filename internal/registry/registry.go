// Package registry maintains the catalog of candidate workers with
// trust scores and domain tags.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Metatronsdoob369/contract-ai-platform-sub001/internal/fault"
	"github.com/Metatronsdoob369/contract-ai-platform-sub001/pkg/models"
)

// ErrNotFound indicates an operation referenced an unknown agent id.
var ErrNotFound = errors.New("agent not found")

// Registry provides thread-safe storage and retrieval of agent
// metadata. It is in-memory only; persistence is an external concern.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]models.AgentMeta
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{agents: make(map[string]models.AgentMeta)}
}

// Register upserts an agent keyed by AgentID. Re-registering the same
// id replaces the previous record. The trust score is clamped to [0,1].
func (r *Registry) Register(meta models.AgentMeta) error {
	if meta.AgentID == "" {
		return fault.New(fault.KindValidation, "agent registration missing agent_id")
	}
	meta.TrustScore = models.ClampTrustScore(meta.TrustScore)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[meta.AgentID] = meta
	return nil
}

// Unregister removes an agent from the registry.
func (r *Registry) Unregister(agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[agentID]; !ok {
		return fmt.Errorf("unregister %q: %w", agentID, ErrNotFound)
	}
	delete(r.agents, agentID)
	return nil
}

// Get retrieves an agent by id.
func (r *Registry) Get(agentID string) (models.AgentMeta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.agents[agentID]
	if !ok {
		return models.AgentMeta{}, fmt.Errorf("get %q: %w", agentID, ErrNotFound)
	}
	return meta, nil
}

// ListByDomain returns all agents whose domain tags include the given
// domain, sorted by agent id for deterministic iteration.
func (r *Registry) ListByDomain(domain string) []models.AgentMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AgentMeta
	for _, meta := range r.agents {
		if meta.ServesDomain(domain) {
			out = append(out, meta)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// SetTrustScore updates an agent's trust score, clamping to [0,1].
func (r *Registry) SetTrustScore(agentID string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, ok := r.agents[agentID]
	if !ok {
		return fmt.Errorf("set trust score for %q: %w", agentID, ErrNotFound)
	}
	meta.TrustScore = models.ClampTrustScore(score)
	r.agents[agentID] = meta
	return nil
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// All returns a copy of every registered agent, sorted by agent id.
func (r *Registry) All() []models.AgentMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AgentMeta, 0, len(r.agents))
	for _, meta := range r.agents {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}
