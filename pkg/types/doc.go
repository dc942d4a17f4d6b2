// Package types defines the core data types for the docugraph extraction engine.
//
// This package contains the fundamental types used throughout docugraph:
//   - TextWindow: An offset-tracked slice of document text handed to the extractor
//   - CandidateEntity / CandidateRelationship: Extraction output scoped to one window
//   - CanonicalEntity: A deduplicated entity with a job-lifetime stable identity
//   - ResolvedRelationship: A relationship rewritten onto stable identities
//   - WindowResult: The payload the extraction collaborator returns per window
//
// # Identity
//
// Candidate entities and relationships carry identifiers that are only unique
// within the window that produced them. Canonical entities and resolved
// relationships carry stable identifiers assigned once per extraction job.
//
// # Validation
//
// Types provide Validate() methods for input validation:
//
//	entity := &types.CandidateEntity{LocalID: "person_1", Type: "Person"}
//	if err := entity.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// All types are designed to be JSON-serializable with appropriate struct tags.
package types
