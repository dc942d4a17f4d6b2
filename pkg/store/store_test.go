package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

func newTestStore(t *testing.T) *JobStore {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestJobStore(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		s := newTestStore(t)

		job, err := s.Create("report.pdf")
		require.NoError(t, err)
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, StatusPending, job.Status)
		assert.Equal(t, "report.pdf", job.DocumentName)

		got, err := s.Get(job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, StatusPending, got.Status)
	})

	t.Run("get missing job", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Get("nope")
		assert.ErrorIs(t, err, ErrJobNotFound)
	})

	t.Run("status transitions", func(t *testing.T) {
		s := newTestStore(t)

		job, err := s.Create("doc.txt")
		require.NoError(t, err)

		updated, err := s.SetStatus(job.ID, StatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, StatusProcessing, updated.Status)
		assert.True(t, !updated.UpdatedAt.Before(job.UpdatedAt))
	})

	t.Run("set result completes the job", func(t *testing.T) {
		s := newTestStore(t)

		job, err := s.Create("doc.txt")
		require.NoError(t, err)

		result := &types.ExtractionResult{
			Nodes: []*types.CanonicalEntity{
				{StableID: "n1", Type: "Person", NormalizedName: "Ada"},
			},
			Metadata: types.ExtractionMetadata{WindowsProcessed: 3},
		}
		_, err = s.SetResult(job.ID, result)
		require.NoError(t, err)

		got, err := s.Get(job.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
		require.NotNil(t, got.Result)
		require.Len(t, got.Result.Nodes, 1)
		assert.Equal(t, "Ada", got.Result.Nodes[0].NormalizedName)
		assert.Equal(t, 3, got.Result.Metadata.WindowsProcessed)
	})

	t.Run("set error", func(t *testing.T) {
		s := newTestStore(t)

		job, err := s.Create("doc.txt")
		require.NoError(t, err)

		_, err = s.SetError(job.ID, "model offline")
		require.NoError(t, err)

		got, err := s.Get(job.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, "model offline", got.Error)
	})

	t.Run("list newest first", func(t *testing.T) {
		s := newTestStore(t)

		first, err := s.Create("first.txt")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		second, err := s.Create("second.txt")
		require.NoError(t, err)

		jobs, err := s.List()
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, second.ID, jobs[0].ID)
		assert.Equal(t, first.ID, jobs[1].ID)
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestStore(t)

		job, err := s.Create("doc.txt")
		require.NoError(t, err)

		require.NoError(t, s.Delete(job.ID))

		_, err = s.Get(job.ID)
		assert.ErrorIs(t, err, ErrJobNotFound)

		assert.ErrorIs(t, s.Delete(job.ID), ErrJobNotFound)
	})
}
