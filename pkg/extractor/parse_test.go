package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanResponse = `{
  "nodes": [
    {"id": "e1", "type": "Person", "name": "Ada Lovelace", "properties": {"born": 1815}},
    {"id": "e2", "type": "Company", "name": "Analytical Engines Ltd"}
  ],
  "relationships": [
    {"id": "r1", "type": "WORKS_AT", "source_id": "e1", "target_id": "e2"}
  ]
}`

func TestParseWindowResult(t *testing.T) {
	t.Run("clean JSON", func(t *testing.T) {
		result, err := ParseWindowResult(cleanResponse)
		require.NoError(t, err)
		require.Len(t, result.Entities, 2)
		require.Len(t, result.Relationships, 1)

		assert.Equal(t, "e1", result.Entities[0].LocalID)
		assert.Equal(t, "Ada Lovelace", result.Entities[0].DisplayName)
		assert.Equal(t, float64(1815), result.Entities[0].Properties["born"])
		assert.Equal(t, "e1", result.Relationships[0].SourceLocalID)
		assert.Equal(t, "e2", result.Relationships[0].TargetLocalID)
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		fenced := "Here is the extraction:\n```json\n" + cleanResponse + "\n```"
		result, err := ParseWindowResult(fenced)
		require.NoError(t, err)
		assert.Len(t, result.Entities, 2)
	})

	t.Run("think tags are stripped", func(t *testing.T) {
		tagged := "<think>the user wants entities</think>" + cleanResponse
		result, err := ParseWindowResult(tagged)
		require.NoError(t, err)
		assert.Len(t, result.Entities, 2)
	})

	t.Run("surrounding prose is ignored", func(t *testing.T) {
		prose := "Sure! The extracted graph is " + cleanResponse + " as requested."
		result, err := ParseWindowResult(prose)
		require.NoError(t, err)
		assert.Len(t, result.Relationships, 1)
	})

	t.Run("damaged JSON is repaired", func(t *testing.T) {
		// trailing comma and single quotes, typical model damage
		damaged := `{"nodes": [{'id': 'e1', 'type': 'Person', 'name': 'Ada',},], "relationships": []}`
		result, err := ParseWindowResult(damaged)
		require.NoError(t, err)
		require.Len(t, result.Entities, 1)
		assert.Equal(t, "Ada", result.Entities[0].DisplayName)
	})

	t.Run("hopeless input fails", func(t *testing.T) {
		_, err := ParseWindowResult("I could not find any entities, sorry.")
		assert.ErrorIs(t, err, ErrUnparsableResponse)
	})
}

func TestRemoveThinkTags(t *testing.T) {
	assert.Equal(t, "before after", RemoveThinkTags("before <think>reasoning\nlines</think> after"))
	assert.Equal(t, "untouched", RemoveThinkTags("untouched"))
}

func TestExtractJSONFromResponse(t *testing.T) {
	t.Run("plain fences", func(t *testing.T) {
		got := ExtractJSONFromResponse("```\n{\"a\": 1}\n```")
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("array boundaries", func(t *testing.T) {
		got := ExtractJSONFromResponse("the list is [1, 2, 3] ok")
		assert.Equal(t, "[1, 2, 3]", got)
	})

	t.Run("no json returns input", func(t *testing.T) {
		assert.Equal(t, "nothing here", ExtractJSONFromResponse("nothing here"))
	})
}
