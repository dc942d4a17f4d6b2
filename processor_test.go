package docugraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

func TestProcessor(t *testing.T) {
	t.Run("assembles entities and relationships across windows", func(t *testing.T) {
		p := NewProcessor(nil, nil)

		require.NoError(t, p.ProcessWindowResult(0, &types.WindowResult{
			Entities: []types.CandidateEntity{
				{LocalID: "e1", Type: "Person", DisplayName: "Ada Lovelace"},
				{LocalID: "e2", Type: "Company", DisplayName: "Analytical Engines Ltd"},
			},
			Relationships: []types.CandidateRelationship{
				{LocalID: "r1", Type: "WORKS_AT", SourceLocalID: "e1", TargetLocalID: "e2"},
			},
		}))

		require.NoError(t, p.ProcessWindowResult(1, &types.WindowResult{
			Entities: []types.CandidateEntity{
				{LocalID: "e1", Type: "Person", DisplayName: "ada lovelace"},
				{LocalID: "e2", Type: "Person", DisplayName: "Charles Babbage"},
			},
			Relationships: []types.CandidateRelationship{
				{LocalID: "r1", Type: "KNOWS", SourceLocalID: "e1", TargetLocalID: "e2"},
			},
		}))

		result, err := p.Finalize()
		require.NoError(t, err)

		assert.Len(t, result.Nodes, 3, "ada lovelace deduplicates across windows")
		assert.Len(t, result.Relationships, 2)

		meta := result.Metadata
		assert.Equal(t, 2, meta.WindowsProcessed)
		assert.Equal(t, 4, meta.EntityStats.TotalExtracted)
		assert.Equal(t, 3, meta.EntityStats.UniqueEntities)
		assert.Equal(t, 1, meta.EntityStats.DuplicatesRemoved)
		assert.Equal(t, 2, meta.RelationshipStats.ResolvedRelationships)
		assert.Equal(t, 0, meta.RelationshipStats.OrphanedRelationships)
	})

	t.Run("relationship endpoints resolve per window", func(t *testing.T) {
		p := NewProcessor(nil, nil)

		// "e1" means a different entity in each window; each
		// relationship must bind to its own window's entity.
		require.NoError(t, p.ProcessWindowResult(0, &types.WindowResult{
			Entities: []types.CandidateEntity{
				{LocalID: "e1", Type: "City", DisplayName: "Paris"},
				{LocalID: "e2", Type: "Country", DisplayName: "France"},
			},
			Relationships: []types.CandidateRelationship{
				{LocalID: "r1", Type: "LOCATED_IN", SourceLocalID: "e1", TargetLocalID: "e2"},
			},
		}))
		require.NoError(t, p.ProcessWindowResult(1, &types.WindowResult{
			Entities: []types.CandidateEntity{
				{LocalID: "e1", Type: "City", DisplayName: "Berlin"},
				{LocalID: "e2", Type: "Country", DisplayName: "Germany"},
			},
			Relationships: []types.CandidateRelationship{
				{LocalID: "r1", Type: "LOCATED_IN", SourceLocalID: "e1", TargetLocalID: "e2"},
			},
		}))

		result, err := p.Finalize()
		require.NoError(t, err)
		require.Len(t, result.Relationships, 2)

		byID := make(map[string]string, len(result.Nodes))
		for _, node := range result.Nodes {
			byID[node.StableID] = node.NormalizedName
		}
		pairs := make(map[string]string, 2)
		for _, rel := range result.Relationships {
			pairs[byID[rel.SourceStableID]] = byID[rel.TargetStableID]
		}
		assert.Equal(t, "France", pairs["Paris"])
		assert.Equal(t, "Germany", pairs["Berlin"])
	})

	t.Run("invalid entities are skipped without failing the window", func(t *testing.T) {
		p := NewProcessor(nil, nil)

		require.NoError(t, p.ProcessWindowResult(0, &types.WindowResult{
			Entities: []types.CandidateEntity{
				{LocalID: "e1", Type: "Person", DisplayName: ""},
				{LocalID: "e2", Type: "Person", DisplayName: "Ada"},
			},
		}))

		result, err := p.Finalize()
		require.NoError(t, err)
		assert.Len(t, result.Nodes, 1)
	})

	t.Run("finalize is one shot", func(t *testing.T) {
		p := NewProcessor(nil, nil)

		_, err := p.Finalize()
		require.NoError(t, err)
		assert.True(t, p.Finalized())

		_, err = p.Finalize()
		assert.ErrorIs(t, err, ErrJobFinalized)

		err = p.ProcessWindowResult(0, &types.WindowResult{})
		assert.ErrorIs(t, err, ErrJobFinalized)
	})

	t.Run("rejects nil window result", func(t *testing.T) {
		p := NewProcessor(nil, nil)
		assert.ErrorIs(t, p.ProcessWindowResult(0, nil), ErrNilWindowResult)
	})

	t.Run("rejects negative window index", func(t *testing.T) {
		p := NewProcessor(nil, nil)
		assert.ErrorIs(t, p.ProcessWindowResult(-1, &types.WindowResult{}), types.ErrNegativeWindow)
	})
}
