package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		path := writeFile(t, "report.txt", "Ada worked at Acme.")

		doc, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, FormatText, doc.Format)
		assert.Equal(t, "report.txt", doc.Name)
		assert.Equal(t, "Ada worked at Acme.", doc.Text)
		assert.Equal(t, int64(19), doc.SizeBytes)
		assert.Equal(t, 4, doc.WordCount())
		assert.Equal(t, 19, doc.CharCount())
		assert.False(t, doc.LoadedAt.IsZero())
	})

	t.Run("markdown", func(t *testing.T) {
		path := writeFile(t, "notes.md", "# Title\n\nBody text.")

		doc, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, FormatMarkdown, doc.Format)
		assert.Contains(t, doc.Text, "Body text.")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "slides.pptx", "binary")

		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Error(t, err)
	})
}

func TestFromString(t *testing.T) {
	doc := FromString("inline", "some text")
	assert.Equal(t, "inline", doc.Name)
	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, "some text", doc.Text)
	assert.Empty(t, doc.Path)
}
