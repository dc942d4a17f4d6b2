// Package registry deduplicates candidate entities across extraction windows.
// Each window's extractor emits entities with window-local identifiers; the
// registry assigns one stable identifier per distinct (type, normalized name)
// pair and records the mapping from every window-local identifier to its
// stable identifier so relationship endpoints can be rewired later.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/docugraph/docugraph/pkg/types"
)

// IdentityMap records, per window, which stable identifier each window-local
// entity identifier resolved to.
type IdentityMap map[int]map[string]string

// Lookup resolves a local identifier within a specific window.
func (m IdentityMap) Lookup(windowIndex int, localID string) (string, bool) {
	window, ok := m[windowIndex]
	if !ok {
		return "", false
	}
	stableID, ok := window[localID]
	return stableID, ok
}

// LookupAnyWindow scans the entire map for a local identifier, used when an
// extractor references an entity it did not re-emit in the current window.
// The lowest window index wins so resolution is deterministic.
func (m IdentityMap) LookupAnyWindow(localID string) (string, bool) {
	best := -1
	stableID := ""
	for windowIndex, window := range m {
		if id, ok := window[localID]; ok {
			if best == -1 || windowIndex < best {
				best = windowIndex
				stableID = id
			}
		}
	}
	return stableID, best != -1
}

type registryKey struct {
	entityType     string
	normalizedName string
}

// Registry accumulates candidate entities and exposes the deduplicated
// canonical set. Safe for concurrent use.
type Registry struct {
	mu         sync.Mutex
	normalizer Normalizer
	entities   map[registryKey]*types.CanonicalEntity
	order      []registryKey
	identity   IdentityMap
	extracted  int
}

// New returns a Registry using the given Normalizer, or TitleCaseNormalizer
// when nil.
func New(normalizer Normalizer) *Registry {
	if normalizer == nil {
		normalizer = TitleCaseNormalizer{}
	}
	return &Registry{
		normalizer: normalizer,
		entities:   make(map[registryKey]*types.CanonicalEntity),
		identity:   make(IdentityMap),
	}
}

// Register folds a candidate into the registry and returns the stable
// identifier it resolved to. A candidate matching an already registered
// (type, normalized name) pair reuses the existing identifier; its properties
// replace the stored ones only when it carries strictly more property keys.
func (r *Registry) Register(candidate types.CandidateEntity) (string, error) {
	if err := candidate.Validate(); err != nil {
		return "", fmt.Errorf("register entity %q: %w", candidate.LocalID, err)
	}

	normalized := r.normalizer.Normalize(candidate.DisplayName)
	if normalized == "" {
		return "", fmt.Errorf("register entity %q: %w", candidate.LocalID, types.ErrMissingName)
	}
	key := registryKey{
		entityType:     strings.TrimSpace(candidate.Type),
		normalizedName: normalized,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.extracted++

	existing, ok := r.entities[key]
	if !ok {
		existing = &types.CanonicalEntity{
			StableID:       uuid.New().String(),
			Type:           key.entityType,
			NormalizedName: normalized,
			Properties:     canonicalProperties(candidate.Properties, normalized),
			SourceLocation: candidate.SourceLocation,
		}
		r.entities[key] = existing
		r.order = append(r.order, key)
	} else if next := canonicalProperties(candidate.Properties, normalized); len(next) > len(existing.Properties) {
		existing.Properties = next
		if candidate.SourceLocation != "" {
			existing.SourceLocation = candidate.SourceLocation
		}
	}

	window, ok := r.identity[candidate.WindowIndex]
	if !ok {
		window = make(map[string]string)
		r.identity[candidate.WindowIndex] = window
	}
	window[candidate.LocalID] = existing.StableID

	return existing.StableID, nil
}

// Resolve is the exact fast-path lookup for a local identifier registered in
// a specific window. Cross-window fallback lives on IdentityMap.
func (r *Registry) Resolve(windowIndex int, localID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identity.Lookup(windowIndex, localID)
}

// Entities returns the canonical entities in first-registration order.
func (r *Registry) Entities() []*types.CanonicalEntity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*types.CanonicalEntity, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entities[key])
	}
	return out
}

// Identity returns a copy of the window-local to stable identifier mapping.
func (r *Registry) Identity() IdentityMap {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(IdentityMap, len(r.identity))
	for windowIndex, window := range r.identity {
		copied := make(map[string]string, len(window))
		for localID, stableID := range window {
			copied[localID] = stableID
		}
		out[windowIndex] = copied
	}
	return out
}

// Count returns the number of distinct canonical entities.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

// Stats summarizes how much deduplication the registry performed.
func (r *Registry) Stats() types.EntityStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := types.EntityStats{
		TotalExtracted:    r.extracted,
		UniqueEntities:    len(r.entities),
		DuplicatesRemoved: r.extracted - len(r.entities),
	}
	if r.extracted > 0 {
		stats.DeduplicationRate = float64(stats.DuplicatesRemoved) / float64(r.extracted)
	}
	return stats
}

// canonicalProperties copies the candidate's properties and rewrites the name
// property to the canonical normalized form.
func canonicalProperties(props map[string]interface{}, normalizedName string) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out["name"] = normalizedName
	return out
}
