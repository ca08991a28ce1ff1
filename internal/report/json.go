package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/resolver"
)

// JSONWriter outputs resolutions in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// jsonResolution is the JSON view of one resolution. The enum-valued fields
// are rendered by name rather than ordinal so the output stays stable if
// internal values are reordered.
type jsonResolution struct {
	ID         string          `json:"id"`
	Token      string          `json:"token"`
	Kind       string          `json:"kind"`
	Outcome    string          `json:"outcome"`
	Status     string          `json:"status"`
	Language   string          `json:"language"`
	Target     string          `json:"target,omitempty"`
	DelayMS    int64           `json:"delay_ms"`
	DurationMS int64           `json:"duration_ms"`
	Error      string          `json:"error,omitempty"`
	Entities   []*model.Entity `json:"entities"`
}

// newJSONResolution flattens a resolution into its JSON view.
func newJSONResolution(res *resolver.Resolution) jsonResolution {
	jr := jsonResolution{
		ID:         res.ID,
		Token:      res.Token.String(),
		Kind:       res.Token.Kind().String(),
		Outcome:    res.Decision.Outcome.String(),
		Status:     res.StatusText(),
		Language:   res.Language,
		Target:     res.Decision.Target,
		DelayMS:    res.Decision.Delay.Milliseconds(),
		DurationMS: res.Duration.Milliseconds(),
		Entities:   []*model.Entity{},
	}
	if res.Err != nil {
		jr.Error = res.Err.Error()
	}
	if res.Entities != nil {
		jr.Entities = res.Entities.Entities()
	}
	return jr
}

// Write outputs the resolution in JSON format.
func (w *JSONWriter) Write(res *resolver.Resolution) (int, error) {
	return w.writeJSON(newJSONResolution(res))
}

// jsonHistoryRecord is the JSON view of one stored resolution.
type jsonHistoryRecord struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	Kind        string    `json:"kind"`
	Outcome     string    `json:"outcome"`
	Status      string    `json:"status"`
	Language    string    `json:"language"`
	EntityCount int       `json:"entity_count"`
	TopURI      string    `json:"top_uri,omitempty"`
	TopLabel    string    `json:"top_label,omitempty"`
	Target      string    `json:"target,omitempty"`
	DelayMS     int64     `json:"delay_ms"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WriteHistory outputs the history records as a JSON array.
func (w *JSONWriter) WriteHistory(records []database.ResolutionRecord) (int, error) {
	out := make([]jsonHistoryRecord, len(records))
	for i, rec := range records {
		out[i] = jsonHistoryRecord{
			ID:          rec.ID,
			Token:       rec.Token,
			Kind:        rec.Kind,
			Outcome:     rec.Outcome,
			Status:      rec.Status,
			Language:    rec.Language,
			EntityCount: rec.EntityCount,
			TopURI:      rec.TopURI,
			TopLabel:    rec.TopLabel,
			Target:      rec.Target,
			DelayMS:     rec.Delay.Milliseconds(),
			DurationMS:  rec.Duration.Milliseconds(),
			Error:       rec.Error,
			CreatedAt:   rec.CreatedAt,
		}
	}

	return w.writeJSON(out)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
