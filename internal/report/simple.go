package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/resolver"
)

// SimpleWriter outputs human-readable text.
// This format is designed for terminal display: one compact block per
// resolution, indented entity listings underneath.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the resolution in human-readable format.
func (w *SimpleWriter) Write(res *resolver.Resolution) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, res)
	w.writeEntities(&sb, res)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the token, its classification and the decision line.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, res *resolver.Resolution) {
	sb.WriteString(fmt.Sprintf("%s  [%s]  %s\n",
		res.Token.String(), res.Token.Kind().String(), res.StatusText()))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("  language: %s  entities: %d  took: %s\n",
			res.Language, res.EntityCount(), res.Duration))
		if res.Err != nil {
			sb.WriteString(fmt.Sprintf("  error: %v\n", res.Err))
		}
	}
}

// writeEntities writes the entity list in relevance order.
func (w *SimpleWriter) writeEntities(sb *strings.Builder, res *resolver.Resolution) {
	if res.Entities == nil || res.Entities.IsEmpty() {
		sb.WriteString("\n")
		return
	}

	for i, e := range res.Entities.Entities() {
		name := e.Label
		if id := e.ID(); id != "" {
			name = fmt.Sprintf("%s (%s)", e.Label, id)
		}
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, name))

		if e.Description != "" {
			sb.WriteString(fmt.Sprintf("     %s\n", e.Description))
		}
		for _, d := range e.Destinations {
			sb.WriteString(fmt.Sprintf("     -> %s (%s)\n", d.URL, d.Rank))
		}
	}
	sb.WriteString("\n")
}

// WriteHistory outputs the history records as a fixed-width table.
func (w *SimpleWriter) WriteHistory(records []database.ResolutionRecord) (int, error) {
	var sb strings.Builder

	if len(records) == 0 {
		sb.WriteString("No resolutions recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("%-20s %-7s %-10s %-20s %s\n",
		"WHEN", "KIND", "OUTCOME", "TOKEN", "TARGET"))
	sb.WriteString(strings.Repeat("-", 90))
	sb.WriteString("\n")

	for _, rec := range records {
		when := "-"
		if !rec.CreatedAt.IsZero() {
			when = rec.CreatedAt.Format("2006-01-02 15:04:05")
		}
		target := rec.Target
		if target == "" {
			target = "-"
		}

		sb.WriteString(fmt.Sprintf("%-20s %-7s %-10s %-20s %s\n",
			when, rec.Kind, rec.Outcome, truncateString(rec.Token, 20), target))

		if w.verbose {
			sb.WriteString(fmt.Sprintf("%-20s id: %s\n", "", rec.ID))
			if rec.Error != "" {
				sb.WriteString(fmt.Sprintf("%-20s error: %s\n", "", rec.Error))
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\n%d resolution(s)\n", len(records)))

	return w.output.Write([]byte(sb.String()))
}
