package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wikimark/wikimark/internal/config"
	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/resolver"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// shutdownTimeout bounds the drain of in-flight requests on shutdown.
	shutdownTimeout = 10 * time.Second

	// readHeaderTimeout caps how long a client may take to send headers.
	readHeaderTimeout = 10 * time.Second
)

// TokenResolver resolves one classified token to its terminal resolution.
// *resolver.Resolver satisfies it; tests substitute a stub.
type TokenResolver interface {
	Resolve(ctx context.Context, token model.Token, opts resolver.Options) (*resolver.Resolution, error)
}

// Server answers subdomain resolution requests over HTTP. The Host header
// carries the token; request paths exist only for operational endpoints.
type Server struct {
	cfg       *config.Config
	resolver  TokenResolver
	logger    *slog.Logger
	languages *languageNegotiator
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for request and lifecycle logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a ready-to-run server around the given resolver.
func New(cfg *config.Config, tokenResolver TokenResolver, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	if tokenResolver == nil {
		return nil, ErrNoResolver
	}

	s := &Server{
		cfg:      cfg,
		resolver: tokenResolver,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	negotiator, err := newLanguageNegotiator(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", cfg.Language, err)
	}
	s.languages = negotiator

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(s.logger), countRequests())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/favicon.ico", s.handleFavicon)

	// Everything else is a resolution request: the token rides in the Host
	// header, not the path.
	engine.NoRoute(s.handleResolve)

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler backing the server, for tests and for
// embedding into an existing mux.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then drains in-flight requests before
// returning.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening",
			"addr", s.cfg.ListenAddr,
			"base_domain", s.cfg.BaseDomain,
			"endpoint", s.cfg.Endpoint,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
