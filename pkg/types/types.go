package types

import (
	"errors"
)

// Validation errors
var (
	ErrMissingName      = errors.New("entity is missing mandatory name property")
	ErrEmptyLocalID     = errors.New("local id cannot be empty")
	ErrEmptyType        = errors.New("type cannot be empty")
	ErrEmptyEndpoint    = errors.New("relationship endpoint cannot be empty")
	ErrNegativeWindow   = errors.New("window index cannot be negative")
	ErrWindowOutOfOrder = errors.New("window offsets are inconsistent")
)

// TextWindow is a bounded, offset-tracked slice of document text handed to the
// extraction collaborator. Offsets are byte positions into the original
// document; EndChar-StartChar always equals len(Text).
type TextWindow struct {
	Index     int    `json:"index" mapstructure:"index"`
	Text      string `json:"text" mapstructure:"text"`
	StartChar int    `json:"start_char" mapstructure:"start_char"`
	EndChar   int    `json:"end_char" mapstructure:"end_char"`
}

// Validate checks the window's internal offset invariant.
func (w *TextWindow) Validate() error {
	if w.Index < 0 {
		return ErrNegativeWindow
	}
	if w.EndChar-w.StartChar != len(w.Text) {
		return ErrWindowOutOfOrder
	}
	return nil
}

// CandidateEntity is an entity as the extraction collaborator reported it for
// one window. LocalID is only unique within that window.
type CandidateEntity struct {
	LocalID        string                 `json:"id" mapstructure:"id"`
	Type           string                 `json:"type" mapstructure:"type"`
	DisplayName    string                 `json:"name" mapstructure:"name"`
	Properties     map[string]interface{} `json:"properties" mapstructure:"properties"`
	SourceLocation string                 `json:"source_location,omitempty" mapstructure:"source_location"`
	WindowIndex    int                    `json:"window_index" mapstructure:"window_index"`
}

// Validate checks that the candidate carries the mandatory display name.
// A missing name fails this single entity, never the whole window.
func (e *CandidateEntity) Validate() error {
	if e.LocalID == "" {
		return ErrEmptyLocalID
	}
	if e.Type == "" {
		return ErrEmptyType
	}
	if e.DisplayName == "" {
		return ErrMissingName
	}
	return nil
}

// CanonicalEntity is a deduplicated entity owned by the registry. StableID is
// assigned at first observation of the (Type, NormalizedName) key and never
// changes for the lifetime of the job.
type CanonicalEntity struct {
	StableID       string                 `json:"id" mapstructure:"id"`
	Type           string                 `json:"type" mapstructure:"type"`
	NormalizedName string                 `json:"name" mapstructure:"name"`
	Properties     map[string]interface{} `json:"properties" mapstructure:"properties"`
	SourceLocation string                 `json:"source_location,omitempty" mapstructure:"source_location"`
}

// CandidateRelationship is a relationship as reported for one window. The
// source and target local ids refer to entities as they were identified in
// their own windows, which need not be the window the relationship came from.
type CandidateRelationship struct {
	LocalID        string                 `json:"id" mapstructure:"id"`
	Type           string                 `json:"type" mapstructure:"type"`
	SourceLocalID  string                 `json:"source_id" mapstructure:"source_id"`
	TargetLocalID  string                 `json:"target_id" mapstructure:"target_id"`
	Properties     map[string]interface{} `json:"properties" mapstructure:"properties"`
	SourceLocation string                 `json:"source_location,omitempty" mapstructure:"source_location"`
	WindowIndex    int                    `json:"window_index" mapstructure:"window_index"`
}

// Validate checks the relationship's required fields.
func (r *CandidateRelationship) Validate() error {
	if r.LocalID == "" {
		return ErrEmptyLocalID
	}
	if r.Type == "" {
		return ErrEmptyType
	}
	if r.SourceLocalID == "" || r.TargetLocalID == "" {
		return ErrEmptyEndpoint
	}
	return nil
}

// ResolvedRelationship is a relationship whose endpoints have been rewritten
// onto stable entity identities. It is part of the terminal job output.
type ResolvedRelationship struct {
	StableID       string                 `json:"id" mapstructure:"id"`
	Type           string                 `json:"type" mapstructure:"type"`
	SourceStableID string                 `json:"source_id" mapstructure:"source_id"`
	TargetStableID string                 `json:"target_id" mapstructure:"target_id"`
	Properties     map[string]interface{} `json:"properties" mapstructure:"properties"`
	SourceLocation string                 `json:"source_location,omitempty" mapstructure:"source_location"`
}

// WindowResult is the payload the extraction collaborator returns for one
// window: candidate entities and candidate relationships, both using
// window-local identifiers.
type WindowResult struct {
	Entities      []CandidateEntity       `json:"nodes"`
	Relationships []CandidateRelationship `json:"relationships"`
}

// EntityStats summarizes registry deduplication for one job.
type EntityStats struct {
	TotalExtracted    int     `json:"total_extracted"`
	UniqueEntities    int     `json:"unique_entities"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
	DeduplicationRate float64 `json:"deduplication_rate"`
}

// RelationshipStats summarizes relationship resolution for one job.
type RelationshipStats struct {
	TotalRelationships    int     `json:"total_relationships"`
	ResolvedRelationships int     `json:"resolved_relationships"`
	OrphanedRelationships int     `json:"orphaned_relationships"`
	ResolutionRate        float64 `json:"resolution_rate"`
}

// ExtractionMetadata is the statistics block attached to a finalized job.
type ExtractionMetadata struct {
	EntityStats         EntityStats       `json:"entity_stats"`
	RelationshipStats   RelationshipStats `json:"relationship_stats"`
	WindowsProcessed    int               `json:"windows_processed"`
	TotalUniqueEntities int               `json:"total_unique_entities"`
	TotalResolved       int               `json:"total_resolved_relationships"`
}

// ExtractionResult is the terminal output of one extraction job: the final
// node and relationship sets plus combined statistics.
type ExtractionResult struct {
	Nodes         []*CanonicalEntity      `json:"nodes"`
	Relationships []*ResolvedRelationship `json:"relationships"`
	Metadata      ExtractionMetadata      `json:"metadata"`
}
