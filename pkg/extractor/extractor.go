// Package extractor turns windows of document text into graph fragments by
// prompting a language model and parsing its JSON output. Model output is
// rarely clean JSON, so parsing strips reasoning tags and markdown fences and
// repairs structural damage before unmarshaling.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docugraph/docugraph/pkg/nlp"
	"github.com/docugraph/docugraph/pkg/prompts"
	"github.com/docugraph/docugraph/pkg/types"
)

// windowResultSchema is handed to the model as the expected response shape.
var windowResultSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"nodes": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "type", "name"},
				"properties": map[string]interface{}{
					"id":              map[string]interface{}{"type": "string"},
					"type":            map[string]interface{}{"type": "string"},
					"name":            map[string]interface{}{"type": "string"},
					"properties":      map[string]interface{}{"type": "object"},
					"source_location": map[string]interface{}{"type": "string"},
				},
			},
		},
		"relationships": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"id", "type", "source_id", "target_id"},
				"properties": map[string]interface{}{
					"id":              map[string]interface{}{"type": "string"},
					"type":            map[string]interface{}{"type": "string"},
					"source_id":       map[string]interface{}{"type": "string"},
					"target_id":       map[string]interface{}{"type": "string"},
					"properties":      map[string]interface{}{"type": "object"},
					"source_location": map[string]interface{}{"type": "string"},
				},
			},
		},
	},
	"required": []string{"nodes", "relationships"},
}

// Extractor extracts graph fragments from text windows through an LLM client.
type Extractor struct {
	client   nlp.Client
	ontology string
	logger   *slog.Logger
}

// New creates an Extractor. ontology may be empty; a nil logger falls back to
// slog.Default().
func New(client nlp.Client, ontology string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client:   client,
		ontology: ontology,
		logger:   logger,
	}
}

// ExtractWindow prompts the model with one window's text and parses the
// response into a WindowResult.
func (e *Extractor) ExtractWindow(ctx context.Context, window types.TextWindow) (*types.WindowResult, error) {
	messages := prompts.ExtractGraph(window.Text, e.ontology)

	resp, err := e.client.ChatWithStructuredOutput(ctx, messages, windowResultSchema)
	if err != nil {
		return nil, fmt.Errorf("window %d extraction call: %w", window.Index, err)
	}

	result, err := ParseWindowResult(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("window %d response parsing: %w", window.Index, err)
	}

	e.logger.Debug("extracted window",
		"window_index", window.Index,
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens)
	return result, nil
}
