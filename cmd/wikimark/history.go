package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wikimark/wikimark/internal/config"
	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/report"
	"github.com/wikimark/wikimark/internal/resolver"
)

// NewHistoryCmd creates the history command.
// This command inspects the local resolution history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded resolutions",
		Long: `History lists resolutions recorded by the server and the resolve command.

Each record holds the token, its classification, the decision outcome, the
top result, and timing. Recording can be disabled with --no-history on the
resolve and serve commands.

Examples:
  # Show the 20 most recent resolutions
  wikimark history

  # Show every recorded resolution
  wikimark history --limit 0

  # Filter by token or by outcome
  wikimark history --token q42
  wikimark history --outcome not_found

  # Show one resolution in full, entity list included
  wikimark history --id <resolution-id>

  # Outcome totals
  wikimark history --stats

  # Delete records older than 30 days
  wikimark history --purge 720h

  # JSON output
  wikimark history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	// Filter flags
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum records to list (0 lists all)")
	cmd.Flags().String("outcome", "",
		"Filter by outcome (navigate, display, not_found, failed)")
	cmd.Flags().String("token", "",
		"Filter by exact token")
	cmd.Flags().String("id", "",
		"Show one resolution in full, including its entities")

	// Maintenance flags
	cmd.Flags().Bool("stats", false,
		"Show outcome totals instead of records")
	cmd.Flags().Duration("purge", 0,
		"Delete records older than this age (e.g. 720h)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output records in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output records in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	token, err := cmd.Flags().GetString("token")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}

	// Validate the outcome filter before opening the database
	outcome, err := cmd.Flags().GetString("outcome")
	if err != nil {
		return err
	}
	if outcome != "" {
		if _, err := resolver.ParseOutcome(outcome); err != nil {
			return fmt.Errorf("invalid --outcome value: %w", err)
		}
	}

	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	purge, err := cmd.Flags().GetDuration("purge")
	if err != nil {
		return err
	}

	// History only reads what earlier runs recorded, so a missing database
	// is not an error worth a stack of wrapped messages.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			fmt.Println("No resolutions recorded yet.")
			fmt.Println("\nUse 'wikimark resolve <token>' or 'wikimark serve' to record resolutions.")
			return nil
		}
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if purge > 0 {
		deleted, err := db.PurgeOlderThan(ctx, purge)
		if err != nil {
			return fmt.Errorf("failed to purge history: %w", err)
		}
		fmt.Printf("Deleted %d resolution(s) older than %s.\n", deleted, purge)
		return nil
	}

	if id != "" {
		return outputStoredResolution(ctx, db, id, jsonOutput, markdownOutput, getVerboseFlag(cmd))
	}

	if stats {
		return outputHistoryStats(ctx, db, jsonOutput)
	}

	records, err := db.ListResolutions(ctx, token, outcome, limit)
	if err != nil {
		return fmt.Errorf("failed to list resolutions: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No matching resolutions found.")
		return nil
	}

	writer := newHistoryWriter(os.Stdout, jsonOutput, markdownOutput, getVerboseFlag(cmd))
	if _, err := writer.WriteHistory(records); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// newHistoryWriter selects the history output format. The default is the
// plain text table; --verbose adds per-record ID and error lines to it.
func newHistoryWriter(output io.Writer, jsonOutput, markdownOutput, verbose bool) report.Writer {
	switch {
	case jsonOutput:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownOutput:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(verbose))
	}
}

// outputStoredResolution re-renders one stored resolution in full, entity
// list included.
func outputStoredResolution(ctx context.Context, db *database.HistoryDB, id string, jsonOutput, markdownOutput, verbose bool) error {
	rec, err := db.GetResolution(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load resolution: %w", err)
	}
	if rec == nil {
		fmt.Printf("No resolution recorded under ID %q.\n", id)
		fmt.Println("\nUse 'wikimark history --verbose' to list recorded IDs.")
		return nil
	}

	res, err := rec.Resolution()
	if err != nil {
		return fmt.Errorf("failed to rebuild resolution %s: %w", id, err)
	}

	writer := newHistoryWriter(os.Stdout, jsonOutput, markdownOutput, verbose)
	if _, err := writer.Write(res); err != nil {
		return fmt.Errorf("failed to write resolution: %w", err)
	}
	return nil
}

// outputHistoryStats prints outcome totals.
func outputHistoryStats(ctx context.Context, db *database.HistoryDB, jsonOutput bool) error {
	counts, err := db.CountByOutcome(ctx)
	if err != nil {
		return fmt.Errorf("failed to count resolutions: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(counts)
	}

	// Fixed order so the output is stable across runs
	outcomes := []string{"navigate", "display", "not_found", "failed"}

	total := 0
	fmt.Println("Resolution outcomes:")
	fmt.Println()
	for _, name := range outcomes {
		fmt.Printf("  %-10s  %d\n", name, counts[name])
		total += counts[name]
	}
	fmt.Println("  " + strings.Repeat("-", 20))
	fmt.Printf("  %-10s  %d\n", "total", total)

	return nil
}
