// Package resolver rewires window-local relationship endpoints onto the
// stable entity identifiers assigned by the registry. Relationships whose
// endpoints cannot be resolved in any window are dropped and counted as
// orphans rather than failing the extraction.
package resolver

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/docugraph/docugraph/pkg/registry"
	"github.com/docugraph/docugraph/pkg/types"
)

// Resolver maps candidate relationships onto canonical entity identifiers.
type Resolver struct {
	logger *slog.Logger
}

// New returns a Resolver. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// ResolveAll resolves every candidate relationship against the identity map.
// Endpoints are looked up in the relationship's own window first; when an
// extractor referenced an entity it did not re-emit there, the lookup falls
// back to the same local identifier in any window. Unresolvable relationships
// are logged and omitted from the result.
func (r *Resolver) ResolveAll(candidates []types.CandidateRelationship, identity registry.IdentityMap) ([]*types.ResolvedRelationship, types.RelationshipStats) {
	resolved := make([]*types.ResolvedRelationship, 0, len(candidates))
	stats := types.RelationshipStats{TotalRelationships: len(candidates)}

	for _, candidate := range candidates {
		sourceID, sourceOK := r.resolveEndpoint(candidate.WindowIndex, candidate.SourceLocalID, identity)
		targetID, targetOK := r.resolveEndpoint(candidate.WindowIndex, candidate.TargetLocalID, identity)

		if !sourceOK || !targetOK {
			stats.OrphanedRelationships++
			r.logger.Warn("dropping orphaned relationship",
				"relationship_id", candidate.LocalID,
				"relationship_type", candidate.Type,
				"window_index", candidate.WindowIndex,
				"source_resolved", sourceOK,
				"target_resolved", targetOK)
			continue
		}

		resolved = append(resolved, &types.ResolvedRelationship{
			StableID:       uuid.New().String(),
			Type:           candidate.Type,
			SourceStableID: sourceID,
			TargetStableID: targetID,
			Properties:     candidate.Properties,
			SourceLocation: candidate.SourceLocation,
		})
		stats.ResolvedRelationships++
	}

	if stats.TotalRelationships > 0 {
		stats.ResolutionRate = float64(stats.ResolvedRelationships) / float64(stats.TotalRelationships)
	}
	return resolved, stats
}

func (r *Resolver) resolveEndpoint(windowIndex int, localID string, identity registry.IdentityMap) (string, bool) {
	localID = strings.TrimSpace(localID)
	if localID == "" {
		return "", false
	}
	if stableID, ok := identity.Lookup(windowIndex, localID); ok {
		return stableID, true
	}
	return identity.LookupAnyWindow(localID)
}
