// Package document loads source documents into plain text for extraction.
// Plain text and markdown are read as-is; PDF text is pulled page by page.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for file types the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format identifies a source document type.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// Document is a loaded source document.
type Document struct {
	// Path is the source file path, empty for in-memory documents.
	Path string `json:"path,omitempty"`
	// Name is the base file name.
	Name string `json:"name"`
	// Format is the detected source format.
	Format Format `json:"format"`
	// Text is the full extracted plain text.
	Text string `json:"text"`
	// Pages is the page count for paginated formats, zero otherwise.
	Pages int `json:"pages,omitempty"`
	// SizeBytes is the source file size.
	SizeBytes int64 `json:"size_bytes,omitempty"`
	// LoadedAt records when the document was read.
	LoadedAt time.Time `json:"loaded_at"`
}

// WordCount returns the number of whitespace-separated words in the text.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Text))
}

// CharCount returns the number of characters in the extracted text.
func (d *Document) CharCount() int {
	return len(d.Text)
}

// Load reads a document from disk, detecting the format from the file
// extension.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text", "":
		return loadText(path, FormatText, info.Size())
	case ".md", ".markdown":
		return loadText(path, FormatMarkdown, info.Size())
	case ".pdf":
		return loadPDF(path, info.Size())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// FromString wraps already extracted text as a Document.
func FromString(name, text string) *Document {
	return &Document{
		Name:     name,
		Format:   FormatText,
		Text:     text,
		LoadedAt: time.Now().UTC(),
	}
}

func loadText(path string, format Format, size int64) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return &Document{
		Path:      path,
		Name:      filepath.Base(path),
		Format:    format,
		Text:      string(data),
		SizeBytes: size,
		LoadedAt:  time.Now().UTC(),
	}, nil
}
