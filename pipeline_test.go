package docugraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

// fakeExtractor emits one entity per window plus a relationship back to the
// entity of window zero, exercising cross-window resolution.
type fakeExtractor struct {
	calls int64
	fail  error
}

func (f *fakeExtractor) ExtractWindow(ctx context.Context, window types.TextWindow) (*types.WindowResult, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.fail != nil {
		return nil, f.fail
	}

	result := &types.WindowResult{
		Entities: []types.CandidateEntity{
			{LocalID: "e0", Type: "Document", DisplayName: "Root Document"},
			{LocalID: fmt.Sprintf("w%d", window.Index), Type: "Section", DisplayName: fmt.Sprintf("Section %d", window.Index)},
		},
		Relationships: []types.CandidateRelationship{
			{
				LocalID:       fmt.Sprintf("r%d", window.Index),
				Type:          "PART_OF",
				SourceLocalID: fmt.Sprintf("w%d", window.Index),
				TargetLocalID: "e0",
			},
		},
	}
	return result, nil
}

func TestPipelineRun(t *testing.T) {
	t.Run("extracts and reassembles across windows", func(t *testing.T) {
		extractor := &fakeExtractor{}
		pipeline := NewPipeline(extractor, &PipelineConfig{
			ChunkSize:         100,
			OverlapPercentage: 10,
			MaxConcurrency:    4,
		}, nil)

		text := strings.Repeat("lorem ipsum ", 50)
		result, err := pipeline.Run(context.Background(), text)
		require.NoError(t, err)

		windows := int(atomic.LoadInt64(&extractor.calls))
		require.Greater(t, windows, 1)

		// one shared document entity plus one section per window
		assert.Len(t, result.Nodes, windows+1)
		assert.Len(t, result.Relationships, windows)
		assert.Equal(t, windows, result.Metadata.WindowsProcessed)
		assert.Equal(t, windows, result.Metadata.EntityStats.DuplicatesRemoved+1)
		assert.Equal(t, 0, result.Metadata.RelationshipStats.OrphanedRelationships)
	})

	t.Run("empty text finalizes an empty graph", func(t *testing.T) {
		pipeline := NewPipeline(&fakeExtractor{}, nil, nil)

		result, err := pipeline.Run(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, result.Nodes)
		assert.Empty(t, result.Relationships)
		assert.Zero(t, result.Metadata.WindowsProcessed)
	})

	t.Run("extractor failure aborts the run", func(t *testing.T) {
		sentinel := errors.New("model unavailable")
		pipeline := NewPipeline(&fakeExtractor{fail: sentinel}, nil, nil)

		_, err := pipeline.Run(context.Background(), "some document text")
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("invalid chunk configuration is reported", func(t *testing.T) {
		pipeline := NewPipeline(&fakeExtractor{}, &PipelineConfig{
			ChunkSize:         -1,
			OverlapPercentage: 10,
			MaxConcurrency:    1,
		}, nil)

		_, err := pipeline.Run(context.Background(), "text")
		assert.Error(t, err)
	})
}
