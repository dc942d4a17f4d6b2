// Package prompts builds the message sequences sent to language models for
// graph extraction and ontology generation.
package prompts

import (
	"fmt"
	"strings"

	"github.com/docugraph/docugraph/pkg/types"
)

const extractGraphSystem = `You are an expert knowledge graph extraction system.
Given a passage of text, extract the entities and the relationships between them.

Respond with a single JSON object of this shape:
{
  "nodes": [
    {"id": "e1", "type": "<entity type>", "name": "<entity name>", "properties": {}, "source_location": "<short quote>"}
  ],
  "relationships": [
    {"id": "r1", "type": "<relationship type>", "source_id": "e1", "target_id": "e2", "properties": {}, "source_location": "<short quote>"}
  ]
}

Rules:
- Every node must have a non-empty "name".
- Node ids must be unique within this response and are only used to connect relationships.
- Relationship "source_id" and "target_id" must refer to node ids from this response.
- Do not invent entities that are not grounded in the text.
- Respond with JSON only, no commentary.`

// ExtractGraph builds the messages for extracting a knowledge graph from one
// window of text. ontology may be empty, in which case the model chooses
// entity and relationship types freely.
func ExtractGraph(text, ontology string) []types.Message {
	var user strings.Builder
	if ontology != "" {
		user.WriteString("Use only these entity and relationship types:\n")
		user.WriteString(ontology)
		user.WriteString("\n\n")
	}
	user.WriteString("Extract the knowledge graph from this text:\n\n")
	user.WriteString(text)

	return []types.Message{
		{Role: "system", Content: extractGraphSystem},
		{Role: "user", Content: user.String()},
	}
}

const buildOntologySystem = `You are an expert ontology designer.
Given sample text from a document collection, propose the entity types and
relationship types a knowledge graph of these documents should use.

Respond with a single JSON object of this shape:
{
  "entity_types": [
    {"name": "Person", "description": "...", "properties": ["role", "title"]}
  ],
  "relationship_types": [
    {"name": "WORKS_AT", "description": "...", "source_types": ["Person"], "target_types": ["Company"]}
  ]
}

Keep the ontology small and general. Respond with JSON only.`

// BuildOntology builds the messages for inferring an ontology from sample
// text. domain is an optional hint such as "financial filings".
func BuildOntology(sample, domain string) []types.Message {
	user := fmt.Sprintf("Propose an ontology for documents like this sample:\n\n%s", sample)
	if domain != "" {
		user = fmt.Sprintf("The documents are about: %s.\n\n%s", domain, user)
	}
	return []types.Message{
		{Role: "system", Content: buildOntologySystem},
		{Role: "user", Content: user},
	}
}
