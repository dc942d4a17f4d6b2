// Package chunker splits raw document text into overlapping windows with
// stable character offsets. Windows are produced in ascending offset order and
// together cover the whole document; adjacent windows overlap by a configured
// number of characters so entities straddling a boundary appear in at least
// one window whole.
package chunker

import (
	"errors"
	"fmt"

	"github.com/docugraph/docugraph/pkg/types"
)

// ErrInvalidChunking is returned when the chunk parameters cannot produce a
// terminating sequence of windows.
var ErrInvalidChunking = errors.New("invalid chunking parameters")

const (
	// DefaultChunkSize is the window size used when a caller passes no
	// explicit configuration.
	DefaultChunkSize = 1000
	// DefaultOverlapPercentage is the default window overlap.
	DefaultOverlapPercentage = 10
)

// Split cuts text into windows of at most chunkSize characters, each
// overlapping the previous by chunkSize*overlapPercentage/100 characters.
// Empty text yields an empty slice and no error.
//
// The window advance is forced to make strict forward progress: the naive
// start = end - overlap arithmetic stalls when the remaining tail is shorter
// than the overlap, so the next start is clamped to at least one past the
// previous start. The loop ends as soon as a window reaches the end of text.
func Split(text string, chunkSize, overlapPercentage int) ([]types.TextWindow, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunking, chunkSize)
	}
	if overlapPercentage < 0 || overlapPercentage > 100 {
		return nil, fmt.Errorf("%w: overlap percentage %d must be in [0,100]", ErrInvalidChunking, overlapPercentage)
	}

	overlap := chunkSize * overlapPercentage / 100
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, overlap, chunkSize)
	}

	if text == "" {
		return []types.TextWindow{}, nil
	}

	windows := make([]types.TextWindow, 0, len(text)/chunkSize+1)
	start := 0

	for index := 0; start < len(text); index++ {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}

		windows = append(windows, types.TextWindow{
			Index:     index,
			Text:      text[start:end],
			StartChar: start,
			EndChar:   end,
		})

		if end == len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return windows, nil
}
