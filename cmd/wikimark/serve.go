package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wikimark/wikimark/internal/config"
	"github.com/wikimark/wikimark/internal/database"
	"github.com/wikimark/wikimark/internal/resolver"
	"github.com/wikimark/wikimark/internal/server"
	"github.com/wikimark/wikimark/internal/sparql"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the subdomain token resolver server",
		Long: `Serve runs the HTTP server that resolves subdomain tokens.

The server reads the token from the request Host header: a request for
douglas-adams.wikimark.net searches for "douglas adams", while
q42.wikimark.net looks up entity Q42 directly. Lookups redirect
immediately; searches show the match and navigate after a short,
cancelable delay.

The process shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default address
  wikimark serve

  # Serve a different domain on a different port
  wikimark serve --base-domain example.org --listen :3000

  # Point at a self-hosted query service, JSON logs for a collector
  wikimark serve --endpoint http://localhost:9999/sparql --log-json`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	// Server flags
	cmd.Flags().StringP("listen", "a", config.DefaultListenAddr,
		"HTTP listen address")
	cmd.Flags().StringP("base-domain", "d", config.DefaultBaseDomain,
		"Domain whose subdomains carry tokens")
	cmd.Flags().DurationP("delay", "w", config.DefaultRedirectDelay,
		"Wait before navigating from a search result page (0 disables)")

	// Query flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"SPARQL query service endpoint")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Default label and description language")
	cmd.Flags().DurationP("timeout", "t", config.DefaultQueryTimeout,
		"HTTP timeout for each query")
	cmd.Flags().IntP("limit", "n", config.DefaultResultLimit,
		"Maximum result rows per query")
	cmd.Flags().Float64("rate", config.DefaultQueryRate,
		"Sustained queries per second against the endpoint")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikimark in current or home directory)")

	// Logging and history
	cmd.Flags().Bool("log-json", false,
		"Log in JSON instead of text")
	cmd.Flags().Bool("no-history", false,
		"Do not record resolutions in the history database")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildServeConfig(cmd)
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
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig creates a Config from serve command flags.
// Precedence matches buildConfig: defaults, then the config file, then
// flags the user set explicitly.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SaveHistory = true

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr, err = cmd.Flags().GetString("listen")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("base-domain") {
		cfg.BaseDomain, err = cmd.Flags().GetString("base-domain")
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("delay") {
		cfg.RedirectDelay, err = cmd.Flags().GetDuration("delay")
		if err != nil {
			return nil, err
		}
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

	if cmd.Flags().Changed("rate") {
		cfg.QueryRate, err = cmd.Flags().GetFloat64("rate")
		if err != nil {
			return nil, err
		}
	}

	cfg.LogJSON, err = cmd.Flags().GetBool("log-json")
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

	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// runServe builds the resolver stack and runs the server until the context
// is canceled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
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

	srv, err := server.New(cfg, res, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
