package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/resolver"
)

// MarkdownWriter outputs resolutions in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the resolution in Markdown format.
func (w *MarkdownWriter) Write(res *resolver.Resolution) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Resolution: " + res.Token.String())
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Token", "`" + res.Token.String() + "`"},
			{"Kind", res.Token.Kind().String()},
			{"Outcome", res.Decision.Outcome.String()},
			{"Status", res.StatusText()},
			{"Language", res.Language},
			{"Duration", res.Duration.String()},
			{"Entities", strconv.Itoa(res.EntityCount())},
		},
	})
	md.PlainText("")

	w.writeAlert(md, res)
	w.writeEntities(md, res)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeAlert writes an appropriate alert based on the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, res *resolver.Resolution) {
	switch res.Decision.Outcome {
	case resolver.OutcomeNavigate:
		md.Notef("Navigation goes to %s after %s.", res.Decision.Target, res.Decision.Delay)
	case resolver.OutcomeDisplay:
		md.Note("Automatic navigation was suppressed; the result list is shown as-is.")
	case resolver.OutcomeNotFound:
		md.Warning("No entity matched this token.")
	case resolver.OutcomeFailed:
		errText := "query execution failed"
		if res.Err != nil {
			errText = res.Err.Error()
		}
		md.Cautionf("Resolution failed: %s", errText)
	}
	md.PlainText("")
}

// writeEntities writes the entity table in relevance order.
func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, res *resolver.Resolution) {
	if res.Entities == nil || res.Entities.IsEmpty() {
		return
	}

	md.H2("Entities")
	md.PlainText("")

	entities := res.Entities.Entities()
	rows := make([][]string, len(entities))
	for i, e := range entities {
		id := e.ID()
		if id == "" {
			id = "-"
		}

		urls := make([]string, len(e.Destinations))
		for j, d := range e.Destinations {
			urls[j] = d.URL + " (" + d.Rank.String() + ")"
		}

		rows[i] = []string{
			strconv.Itoa(i + 1),
			"[" + id + "](" + e.URI + ")",
			truncateString(e.Label, 40),
			truncateString(e.Description, 60),
			strings.Join(urls, "<br>"),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "ID", "Label", "Description", "Destinations"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteHistory outputs the history records in Markdown format.
func (w *MarkdownWriter) WriteHistory(records []database.ResolutionRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Resolution History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No resolutions recorded.")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(records))
	counts := make(map[string]int)
	for i, rec := range records {
		counts[rec.Outcome]++

		when := "-"
		if !rec.CreatedAt.IsZero() {
			when = rec.CreatedAt.Format("2006-01-02 15:04:05")
		}
		target := rec.Target
		if target == "" {
			target = "-"
		}

		rows[i] = []string{
			when,
			"`" + truncateString(rec.Token, 30) + "`",
			rec.Kind,
			rec.Outcome,
			truncateString(target, 60),
			rec.Duration.String(),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"When", "Token", "Kind", "Outcome", "Target", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeOutcomeChart(md, counts)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeOutcomeChart writes a mermaid pie chart of the outcome distribution.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, counts map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Resolution Outcomes"),
		piechart.WithShowData(true),
	)

	// Fixed label order keeps the chart stable across runs.
	for _, outcome := range []string{"navigate", "display", "not_found", "failed"} {
		if counts[outcome] > 0 {
			chart.LabelAndIntValue(outcome, uint64(counts[outcome]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [wikimark](https://github.com/wikimark/wikimark)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
