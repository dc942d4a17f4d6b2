package server

import (
	"context"
	"log/slog"

	"github.com/docugraph/docugraph"
	"github.com/docugraph/docugraph/pkg/config"
	"github.com/docugraph/docugraph/pkg/store"
	"github.com/docugraph/docugraph/pkg/types"
	"github.com/docugraph/docugraph/pkg/worker"
)

// Service runs extraction jobs asynchronously against the job store. It
// implements handlers.ExtractionRunner.
type Service struct {
	store     *store.JobStore
	extractor docugraph.WindowExtractor
	cfg       *config.Config
	logger    *slog.Logger
}

// NewService creates the extraction service.
func NewService(jobStore *store.JobStore, extractor docugraph.WindowExtractor, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     jobStore,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Submit persists a pending job and starts extraction in the background.
func (s *Service) Submit(documentName, text string, chunkSize int, overlapPercentage *int) (*store.Job, error) {
	job, err := s.store.Create(documentName)
	if err != nil {
		return nil, err
	}

	pipelineCfg := docugraph.DefaultPipelineConfig()
	pipelineCfg.ChunkSize = s.cfg.Extraction.ChunkSize
	pipelineCfg.OverlapPercentage = s.cfg.Extraction.OverlapPercentage
	pipelineCfg.MaxConcurrency = s.cfg.Extraction.MaxConcurrency
	if chunkSize > 0 {
		pipelineCfg.ChunkSize = chunkSize
	}
	if overlapPercentage != nil {
		pipelineCfg.OverlapPercentage = *overlapPercentage
	}

	worker.SafeGo(func() {
		s.run(job.ID, text, pipelineCfg)
	}, func(err error) {
		s.logger.Error("extraction job panicked", "job_id", job.ID, "error", err)
		if _, storeErr := s.store.SetError(job.ID, err.Error()); storeErr != nil {
			s.logger.Error("failed to record job panic", "job_id", job.ID, "error", storeErr)
		}
	})

	return job, nil
}

func (s *Service) run(jobID, text string, cfg *docugraph.PipelineConfig) {
	ctx := context.WithValue(context.Background(), types.ContextKeyJobID, jobID)
	logger := s.logger.With("job_id", jobID)

	if _, err := s.store.SetStatus(jobID, store.StatusProcessing); err != nil {
		logger.Error("failed to mark job processing", "error", err)
		return
	}

	pipeline := docugraph.NewPipeline(s.extractor, cfg, logger)
	result, err := pipeline.Run(ctx, text)
	if err != nil {
		logger.Error("extraction job failed", "error", err)
		if _, storeErr := s.store.SetError(jobID, err.Error()); storeErr != nil {
			logger.Error("failed to record job error", "error", storeErr)
		}
		return
	}

	if _, err := s.store.SetResult(jobID, result); err != nil {
		logger.Error("failed to persist job result", "error", err)
		return
	}
	logger.Info("extraction job completed",
		"unique_entities", result.Metadata.TotalUniqueEntities,
		"resolved_relationships", result.Metadata.TotalResolved)
}

// Get returns a job by identifier.
func (s *Service) Get(id string) (*store.Job, error) {
	return s.store.Get(id)
}

// List returns all jobs, newest first.
func (s *Service) List() ([]*store.Job, error) {
	return s.store.List()
}

// Delete removes a job.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}
