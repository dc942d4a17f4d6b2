package docugraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docugraph/docugraph/pkg/chunker"
	"github.com/docugraph/docugraph/pkg/types"
	"github.com/docugraph/docugraph/pkg/worker"
)

// WindowExtractor produces one window's worth of graph fragments. The
// production implementation lives in pkg/extractor and calls a language
// model; tests substitute deterministic fakes.
type WindowExtractor interface {
	ExtractWindow(ctx context.Context, window types.TextWindow) (*types.WindowResult, error)
}

// PipelineConfig tunes an end-to-end extraction run.
type PipelineConfig struct {
	// ChunkSize is the maximum window size in characters.
	ChunkSize int
	// OverlapPercentage is the window overlap as a percentage of ChunkSize.
	OverlapPercentage int
	// MaxConcurrency caps how many windows are extracted in parallel.
	MaxConcurrency int
	// Processor configures the reassembly stage, including the entity
	// name normalizer.
	Processor ProcessorConfig
}

// DefaultPipelineConfig returns the default extraction settings.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		ChunkSize:         chunker.DefaultChunkSize,
		OverlapPercentage: chunker.DefaultOverlapPercentage,
		MaxConcurrency:    4,
	}
}

// Pipeline runs the full extraction flow over raw text: chunk, extract each
// window through the WindowExtractor, and reassemble the fragments into one
// graph.
type Pipeline struct {
	extractor WindowExtractor
	config    *PipelineConfig
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline. config may be nil for defaults; a nil
// logger falls back to slog.Default().
func NewPipeline(extractor WindowExtractor, config *PipelineConfig, logger *slog.Logger) *Pipeline {
	if config == nil {
		config = DefaultPipelineConfig()
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{extractor: extractor, config: config, logger: logger}
}

// Run extracts a knowledge graph from text. Windows are extracted
// concurrently up to MaxConcurrency; a single window failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, text string) (*types.ExtractionResult, error) {
	windows, err := chunker.Split(text, p.config.ChunkSize, p.config.OverlapPercentage)
	if err != nil {
		return nil, fmt.Errorf("chunking text: %w", err)
	}
	p.logger.Info("starting extraction", "windows", len(windows), "text_chars", len(text))

	processor := NewProcessor(&p.config.Processor, p.logger)

	pool := worker.NewPool(p.config.MaxConcurrency, p.logger)
	for _, window := range windows {
		window := window
		pool.Submit(func(ctx context.Context) error {
			result, err := p.extractor.ExtractWindow(ctx, window)
			if err != nil {
				return fmt.Errorf("extracting window %d: %w", window.Index, err)
			}
			if err := processor.ProcessWindowResult(window.Index, result); err != nil {
				return fmt.Errorf("processing window %d: %w", window.Index, err)
			}
			return nil
		})
	}
	if err := pool.Wait(ctx); err != nil {
		return nil, err
	}

	return processor.Finalize()
}
