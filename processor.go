package docugraph

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docugraph/docugraph/pkg/registry"
	"github.com/docugraph/docugraph/pkg/resolver"
	"github.com/docugraph/docugraph/pkg/types"
)

var (
	// ErrJobFinalized is returned when a Processor is used after Finalize.
	ErrJobFinalized = errors.New("extraction job already finalized")
	// ErrNilWindowResult is returned when a window result fails validation.
	ErrNilWindowResult = errors.New("window result is invalid")
)

// ProcessorConfig tunes a Processor. The zero value selects the default
// title-case normalizer.
type ProcessorConfig struct {
	// Normalizer overrides the name normalization used for entity identity.
	Normalizer registry.Normalizer
}

// Processor accumulates per-window extraction results for a single job and
// assembles them into one deduplicated graph. A Processor is one-shot: after
// Finalize it accepts no further windows and cannot be finalized again.
// Safe for concurrent use by multiple window workers.
type Processor struct {
	mu        sync.Mutex
	registry  *registry.Registry
	resolver  *resolver.Resolver
	logger    *slog.Logger
	pending   []types.CandidateRelationship
	windows   map[int]struct{}
	finalized bool
}

// NewProcessor creates a Processor for a new extraction job. config may be
// nil; a nil logger falls back to slog.Default().
func NewProcessor(config *ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	var normalizer registry.Normalizer
	if config != nil {
		normalizer = config.Normalizer
	}
	return &Processor{
		registry: registry.New(normalizer),
		resolver: resolver.New(logger),
		logger:   logger,
		windows:  make(map[int]struct{}),
	}
}

// ProcessWindowResult folds one window's extraction output into the job.
// Entities are deduplicated immediately; relationships are buffered until
// Finalize because their endpoints may refer to entities emitted by windows
// that have not been processed yet.
func (p *Processor) ProcessWindowResult(windowIndex int, result *types.WindowResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result for window %d", ErrNilWindowResult, windowIndex)
	}
	if windowIndex < 0 {
		return fmt.Errorf("%w: window index %d", types.ErrNegativeWindow, windowIndex)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return ErrJobFinalized
	}

	for _, entity := range result.Entities {
		entity.WindowIndex = windowIndex
		if _, err := p.registry.Register(entity); err != nil {
			p.logger.Warn("skipping invalid entity",
				"window_index", windowIndex,
				"local_id", entity.LocalID,
				"error", err)
			continue
		}
	}

	for _, rel := range result.Relationships {
		rel.WindowIndex = windowIndex
		p.pending = append(p.pending, rel)
	}

	p.windows[windowIndex] = struct{}{}

	p.logger.Debug("processed window result",
		"window_index", windowIndex,
		"entities", len(result.Entities),
		"relationships", len(result.Relationships))
	return nil
}

// Finalize resolves all buffered relationships against the full identity map
// and returns the assembled graph. Calling Finalize twice, or processing more
// windows afterwards, returns ErrJobFinalized.
func (p *Processor) Finalize() (*types.ExtractionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return nil, ErrJobFinalized
	}
	p.finalized = true

	resolved, relStats := p.resolver.ResolveAll(p.pending, p.registry.Identity())
	entityStats := p.registry.Stats()

	result := &types.ExtractionResult{
		Nodes:         p.registry.Entities(),
		Relationships: resolved,
		Metadata: types.ExtractionMetadata{
			EntityStats:         entityStats,
			RelationshipStats:   relStats,
			WindowsProcessed:    len(p.windows),
			TotalUniqueEntities: entityStats.UniqueEntities,
			TotalResolved:       relStats.ResolvedRelationships,
		},
	}

	p.logger.Info("extraction finalized",
		"windows_processed", result.Metadata.WindowsProcessed,
		"unique_entities", entityStats.UniqueEntities,
		"duplicates_removed", entityStats.DuplicatesRemoved,
		"resolved_relationships", relStats.ResolvedRelationships,
		"orphaned_relationships", relStats.OrphanedRelationships)
	return result, nil
}

// Finalized reports whether the job has already been finalized.
func (p *Processor) Finalized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finalized
}
