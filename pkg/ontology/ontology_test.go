package ontology

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docugraph/docugraph/pkg/types"
)

const sampleYAML = `name: corporate
entity_types:
  - name: Person
    description: A natural person
    properties: [role, title]
  - name: Company
relationship_types:
  - name: WORKS_AT
    source_types: [Person]
    target_types: [Company]
`

func TestParse(t *testing.T) {
	t.Run("valid ontology", func(t *testing.T) {
		o, err := Parse([]byte(sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, "corporate", o.Name)
		require.Len(t, o.EntityTypes, 2)
		assert.Equal(t, []string{"role", "title"}, o.EntityTypes[0].Properties)
		require.Len(t, o.RelationshipTypes, 1)
		assert.Equal(t, []string{"Person"}, o.RelationshipTypes[0].SourceTypes)
	})

	t.Run("no entity types is rejected", func(t *testing.T) {
		_, err := Parse([]byte("entity_types: []\n"))
		assert.ErrorIs(t, err, ErrEmptyOntology)
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		_, err := Parse([]byte("entity_types: [unclosed"))
		assert.Error(t, err)
	})
}

func TestSaveAndLoad(t *testing.T) {
	o, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ontology.yaml")
	require.NoError(t, o.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, o, loaded)
}

func TestPromptText(t *testing.T) {
	o, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	text := o.PromptText()
	assert.Contains(t, text, "Person: A natural person")
	assert.Contains(t, text, "properties: role, title")
	assert.Contains(t, text, "WORKS_AT")
	assert.Contains(t, text, "Person -> Company")
}

type stubClient struct {
	content string
	err     error
}

func (s *stubClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.Response{Content: s.content}, nil
}

func (s *stubClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	return s.Chat(ctx, messages)
}

func (s *stubClient) Close() error { return nil }

func TestBuildFromSample(t *testing.T) {
	t.Run("parses model ontology", func(t *testing.T) {
		b := NewBuilder(&stubClient{content: `{
			"entity_types": [{"name": "Person"}, {"name": "Company"}],
			"relationship_types": [{"name": "WORKS_AT"}]
		}`}, nil)

		o, err := b.BuildFromSample(context.Background(), "Ada works at Acme.", "")
		require.NoError(t, err)
		assert.Len(t, o.EntityTypes, 2)
		assert.Len(t, o.RelationshipTypes, 1)
	})

	t.Run("repairs damaged JSON", func(t *testing.T) {
		b := NewBuilder(&stubClient{content: `{"entity_types": [{"name": "Person"},], "relationship_types": []}`}, nil)

		o, err := b.BuildFromSample(context.Background(), "sample", "")
		require.NoError(t, err)
		assert.Len(t, o.EntityTypes, 1)
	})

	t.Run("empty ontology from model is rejected", func(t *testing.T) {
		b := NewBuilder(&stubClient{content: `{"entity_types": [], "relationship_types": []}`}, nil)

		_, err := b.BuildFromSample(context.Background(), "sample", "")
		assert.ErrorIs(t, err, ErrEmptyOntology)
	})
}
