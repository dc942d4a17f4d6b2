// Package logger provides a colored slog handler for terminal output.
// Warnings render yellow, errors red, and messages about persisting or
// exporting results green so the interesting milestones of a long extraction
// stand out in the scrollback.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// highlightTerms mark messages rendered green at info level.
var highlightTerms = []string{"persist", "export", "finalized", "loaded"}

// ColorHandler is a slog.Handler that writes colored, human-oriented lines.
type ColorHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewColorHandler creates a handler writing to out at the given level.
func NewColorHandler(out io.Writer, level slog.Leveler) *ColorHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &ColorHandler{
		mu:    &sync.Mutex{},
		out:   out,
		level: level,
	}
}

// NewDefaultLogger returns a slog.Logger writing colored output to stderr.
func NewDefaultLogger(level slog.Leveler) *slog.Logger {
	return slog.New(NewColorHandler(os.Stderr, level))
}

func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ColorHandler) Handle(_ context.Context, record slog.Record) error {
	color := ""
	switch {
	case record.Level >= slog.LevelError:
		color = colorRed
	case record.Level >= slog.LevelWarn:
		color = colorYellow
	case record.Level >= slog.LevelInfo && isHighlighted(record.Message):
		color = colorGreen
	}

	var b strings.Builder
	b.WriteString(record.Time.Format(time.TimeOnly))
	b.WriteString(" ")
	b.WriteString(record.Level.String())
	b.WriteString(" ")

	if color != "" {
		b.WriteString(color)
	}
	b.WriteString(record.Message)
	if color != "" {
		b.WriteString(colorReset)
	}

	prefix := strings.Join(h.groups, ".")
	for _, attr := range h.attrs {
		// handler attrs were qualified when added
		writeAttr(&b, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, prefix, attr)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefix := strings.Join(h.groups, ".")
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		qualified = append(qualified, attr)
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), qualified...)
	return &clone
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func writeAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, attr.Value.Resolve().Any())
}

func isHighlighted(message string) bool {
	lower := strings.ToLower(message)
	for _, term := range highlightTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
