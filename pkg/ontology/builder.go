package ontology

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/docugraph/docugraph/pkg/nlp"
	"github.com/docugraph/docugraph/pkg/prompts"
)

// Builder infers an ontology from sample text using a language model.
type Builder struct {
	client nlp.Client
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default().
func NewBuilder(client nlp.Client, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{client: client, logger: logger}
}

// BuildFromSample asks the model to propose entity and relationship types for
// documents like the sample. domain is an optional hint such as
// "financial filings".
func (b *Builder) BuildFromSample(ctx context.Context, sample, domain string) (*Ontology, error) {
	messages := prompts.BuildOntology(sample, domain)

	resp, err := b.client.ChatWithStructuredOutput(ctx, messages, nil)
	if err != nil {
		return nil, fmt.Errorf("ontology generation call: %w", err)
	}

	var o Ontology
	if err := json.Unmarshal([]byte(resp.Content), &o); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(resp.Content)
		if repairErr != nil {
			return nil, fmt.Errorf("parsing ontology response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &o); err != nil {
			return nil, fmt.Errorf("parsing repaired ontology response: %w", err)
		}
	}

	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("generated ontology is invalid: %w", err)
	}

	b.logger.Info("built ontology from sample",
		"entity_types", len(o.EntityTypes),
		"relationship_types", len(o.RelationshipTypes))
	return &o, nil
}
