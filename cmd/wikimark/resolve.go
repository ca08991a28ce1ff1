package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wikimark/wikimark/internal/config"
	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/log"
	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/report"
	"github.com/wikimark/wikimark/internal/resolver"
	"github.com/wikimark/wikimark/internal/sparql"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [token...]",
		Short: "Resolve one or more tokens from the command line",
		Long: `Resolve classifies each token the way the server classifies a subdomain
label and reports where navigation would go.

A token containing an entity identifier (q42) is looked up directly; any
other token runs a full-text entity search. Hyphens and underscores read
as word separators, so douglas-adams searches for "douglas adams".

Examples:
  # Resolve a search token
  wikimark resolve douglas-adams

  # Direct entity lookup
  wikimark resolve q42

  # Resolve several tokens concurrently
  wikimark resolve q42 douglas-adams berlin

  # Labels and descriptions in German
  wikimark resolve --language de q42

  # JSON report written to a file
  wikimark resolve --json -o report.json q42

  # List results without scheduling navigation
  wikimark resolve --no-redirect douglas-adams

Configuration file (.wikimark) example:
  endpoint: https://query.wikidata.org/sparql
  language: en
  redirectDelay: 1s
  resultLimit: 20`,
		Args: cobra.ArbitraryArgs,
		RunE: runResolveCmd,
	}

	// Query flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"SPARQL query service endpoint")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Label and description language")
	cmd.Flags().DurationP("timeout", "t", config.DefaultQueryTimeout,
		"HTTP timeout for each query")
	cmd.Flags().IntP("limit", "n", config.DefaultResultLimit,
		"Maximum result rows per query")

	// Behavior flags
	cmd.Flags().Bool("no-redirect", false,
		"Treat the resolution as a revisit: list results without scheduling navigation")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent resolutions")
	cmd.Flags().Bool("no-history", false,
		"Do not record resolutions in the history database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikimark in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the optional config file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runResolve(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger with attribute redaction. The
// server's --log-json flag switches to the JSON handler; everything else
// logs text to stderr.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	return log.NewLogger(os.Stderr, cfg.Verbose)
}

// buildConfig creates a Config from cobra command flags.
//
// Precedence, lowest to highest: built-in defaults, the optional config
// file, flags the user set explicitly. Flags the user did not touch never
// override the file, which is why the explicit-change check guards every
// setting the file can also carry.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Resolutions are recorded unless the file or --no-history opts out.
	cfg.SaveHistory = true

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint, err = cmd.Flags().GetString("endpoint")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("language") {
		cfg.Language, err = cmd.Flags().GetString("language")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("timeout") {
		cfg.QueryTimeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("limit") {
		cfg.ResultLimit, err = cmd.Flags().GetInt("limit")
		if err != nil {
			return nil, err
		}
	}

	cfg.NoRedirect, err = cmd.Flags().GetBool("no-redirect")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// History lives in the XDG data directory unless the file overrode it
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Positional arguments are the tokens to resolve
	cfg.Tokens = args

	return cfg, nil
}

// applyConfigFile merges the optional config file into cfg.
// An explicitly specified path must exist; the default search locations are
// skipped silently when no file is present.
func applyConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitConfigPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := file.ApplyTo(cfg); err != nil {
		return fmt.Errorf("failed to apply config file %s: %w", configPath, err)
	}
	return nil
}

// runResolve executes the resolution.
func runResolve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Tokens) == 0 {
		return config.ErrNoToken
	}

	// Classify tokens the way the server classifies subdomain labels:
	// lowercased, as they would appear in a host.
	tokens := make([]model.Token, 0, len(cfg.Tokens))
	for _, raw := range cfg.Tokens {
		tokens = append(tokens, model.NewToken(strings.ToLower(strings.TrimSpace(raw))))
	}

	logger.Info("starting resolution",
		"tokens", cfg.Tokens,
		"endpoint", cfg.Endpoint,
		"language", cfg.Language,
		"batchSize", cfg.BatchSize,
		"saveHistory", cfg.SaveHistory,
	)

	client, err := sparql.NewClient(cfg.Endpoint,
		sparql.WithUserAgent(cfg.UserAgent),
		sparql.WithTimeout(cfg.QueryTimeout),
		sparql.WithQueryRate(cfg.QueryRate, cfg.QueryBurst),
		sparql.WithMaxBodySize(cfg.MaxBodySize),
	)
	if err != nil {
		return fmt.Errorf("failed to create query client: %w", err)
	}

	resolverOpts := []resolver.Option{
		resolver.WithLogger(logger),
		resolver.WithLanguage(cfg.Language),
		resolver.WithResultLimit(cfg.ResultLimit),
		resolver.WithRedirectDelay(cfg.RedirectDelay),
	}

	// Open the history database if recording is enabled
	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "path", db.Path())
		resolverOpts = append(resolverOpts, resolver.WithRecorder(db))
	}

	res := resolver.New(client, resolverOpts...)
	opts := resolver.Options{
		BackNavigation: cfg.NoRedirect,
		Language:       cfg.Language,
	}

	var resolutions []*resolver.Resolution
	if len(tokens) > 1 && cfg.BatchSize > 1 {
		batch := resolver.NewBatchResolver(res,
			resolver.WithConcurrency(cfg.BatchSize),
			resolver.WithBatchLogger(logger),
		)
		resolutions, err = batch.ResolveAll(ctx, tokens, opts)
		if err != nil {
			return err
		}
	} else {
		for _, token := range tokens {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Failures stay in the resolution and show up in the report;
			// remaining tokens still resolve.
			r, _ := res.Resolve(ctx, token, opts)
			resolutions = append(resolutions, r)
		}
	}

	return outputReport(cfg, resolutions)
}

// outputReport writes the resolutions in the requested format.
func outputReport(cfg *config.Config, resolutions []*resolver.Resolution) error {
	// Determine output destination
	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := newReportWriter(cfg, output)
	for _, res := range resolutions {
		if _, err := writer.Write(res); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// newReportWriter selects the report format from the config.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
