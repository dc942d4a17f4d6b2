package dto

import (
	"errors"
	"strings"
	"time"
)

// Validation errors
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrTextTooLong         = errors.New("text exceeds maximum length (10MB)")
	ErrNameTooLong         = errors.New("document_name exceeds maximum length (1024)")
	ErrInvalidChunkSize    = errors.New("chunk_size must be positive")
	ErrInvalidOverlap      = errors.New("overlap_percentage must be in [0,100)")
	ErrInvalidExportFormat = errors.New("format must be neo4j or neptune")
)

// Maximum field lengths to prevent abuse
const (
	MaxNameLength = 1024
	MaxTextLength = 10 * 1024 * 1024 // 10MB
)

// CreateExtractionRequest submits a document for extraction.
type CreateExtractionRequest struct {
	// DocumentName labels the job, defaults to "untitled".
	DocumentName string `json:"document_name,omitempty"`
	// Text is the raw document text to extract from.
	Text string `json:"text" binding:"required"`
	// ChunkSize optionally overrides the configured window size.
	ChunkSize int `json:"chunk_size,omitempty"`
	// OverlapPercentage optionally overrides the configured window overlap.
	OverlapPercentage *int `json:"overlap_percentage,omitempty"`
}

// Validate performs validation on CreateExtractionRequest
func (r *CreateExtractionRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	if len(r.DocumentName) > MaxNameLength {
		return ErrNameTooLong
	}
	if r.ChunkSize < 0 {
		return ErrInvalidChunkSize
	}
	if r.OverlapPercentage != nil && (*r.OverlapPercentage < 0 || *r.OverlapPercentage >= 100) {
		return ErrInvalidOverlap
	}
	return nil
}

// ExtractionJobResponse describes one extraction job.
type ExtractionJobResponse struct {
	ID           string    `json:"id"`
	Status       string    `json:"status"`
	DocumentName string    `json:"document_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Error        string    `json:"error,omitempty"`
}

// ExportRequest selects the bulk CSV export variant.
type ExportRequest struct {
	Format string `form:"format"`
	Kind   string `form:"kind"`
}

// Validate performs validation on ExportRequest
func (r *ExportRequest) Validate() error {
	switch r.Format {
	case "", "neo4j", "neptune":
	default:
		return ErrInvalidExportFormat
	}
	switch r.Kind {
	case "", "nodes", "relationships":
	default:
		return errors.New("kind must be nodes or relationships")
	}
	return nil
}
