package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/sparql"
)

// Resolver defaults. The config package carries the user-facing defaults;
// these exist so a bare New(executor) is usable on its own.
const (
	defaultLanguage      = "en"
	defaultResultLimit   = 20
	defaultRedirectDelay = 1000 * time.Millisecond
)

// QueryExecutor runs one query against the knowledge-graph endpoint and
// returns the flattened result rows in the endpoint's order.
// *sparql.Client implements it; tests substitute a stub.
type QueryExecutor interface {
	Query(ctx context.Context, query string) ([]sparql.Row, error)
}

// Recorder persists finished resolutions. Recording is write-only from the
// resolver's point of view: nothing is ever read back on the resolve path.
type Recorder interface {
	Record(ctx context.Context, res *Resolution) error
}

// Resolver orchestrates one resolution end to end: query construction,
// execution, normalization, decision, and history recording. It is safe for
// concurrent use; per-resolution state lives in the Resolution.
type Resolver struct {
	// executor runs queries against the endpoint.
	executor QueryExecutor

	// recorder receives finished resolutions. Nil disables history.
	recorder Recorder

	// logger is used for structured logging during resolution.
	logger *slog.Logger

	// language is the default label and description language. Callers may
	// override it per resolution.
	language string

	// limit caps the number of rows requested per query.
	limit int

	// delay is how long a search result page waits before navigating.
	delay time.Duration

	// now supplies the current time, injectable for deterministic tests.
	now func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecorder attaches a history recorder. Recording failures are logged
// and never fail the resolution.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// WithLogger sets a custom logger for the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLanguage sets the default label and description language.
func WithLanguage(lang string) Option {
	return func(r *Resolver) {
		if lang != "" {
			r.language = lang
		}
	}
}

// WithResultLimit sets the row cap requested per query.
func WithResultLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithRedirectDelay sets the navigation delay for search resolutions.
// Direct lookups always navigate immediately.
func WithRedirectDelay(delay time.Duration) Option {
	return func(r *Resolver) {
		if delay >= 0 {
			r.delay = delay
		}
	}
}

// WithClock sets the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Resolver around the given query executor.
func New(executor QueryExecutor, opts ...Option) *Resolver {
	r := &Resolver{
		executor: executor,
		language: defaultLanguage,
		limit:    defaultResultLimit,
		delay:    defaultRedirectDelay,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Options carries the per-resolution signals that arrive with a request.
type Options struct {
	// BackNavigation is true when the user returned to the result page
	// through browser history. It suppresses automatic navigation.
	BackNavigation bool

	// Language overrides the resolver's default label and description
	// language for this resolution. Empty keeps the default.
	Language string
}

// Resolve drives the token to its terminal state and returns the finished
// Resolution. The returned error is non-nil only for query execution
// failures and is also stored in Resolution.Err, so callers that act on
// Decision.Outcome alone may ignore it.
func (r *Resolver) Resolve(ctx context.Context, token model.Token, opts Options) (*Resolution, error) {
	lang := opts.Language
	if lang == "" {
		lang = r.language
	}

	res := &Resolution{
		ID:        uuid.NewString(),
		Token:     token,
		State:     StateAwaitingResult,
		Language:  lang,
		StartedAt: r.now(),
	}

	builder := sparql.NewBuilder(sparql.WithLanguage(lang), sparql.WithLimit(r.limit))
	var query string
	if token.IsLookup() {
		query = builder.LookupQuery(token.ID())
	} else {
		query = builder.SearchQuery(token.Term())
	}

	r.logger.Debug("executing query",
		"token", token.String(),
		"kind", token.Kind().String(),
		"language", lang,
		"query", query,
	)

	rows, err := r.executor.Query(ctx, query)
	if err != nil {
		res.State = StateResolved
		res.Err = fmt.Errorf("%w: token %q: %v", ErrQueryFailed, token.String(), err)
		res.Decision = Decision{Outcome: OutcomeFailed}
		res.Duration = r.now().Sub(res.StartedAt)

		r.logger.Error("resolution failed",
			"token", token.String(),
			"kind", token.Kind().String(),
			"error", err,
		)
		r.record(ctx, res)
		return res, res.Err
	}

	res.Entities = Normalize(rows)
	res.Decision = Decide(res.Entities, token.Kind(), opts.BackNavigation, r.delay)
	res.State = StateResolved
	res.Duration = r.now().Sub(res.StartedAt)

	r.logger.Info("token resolved",
		"token", token.String(),
		"kind", token.Kind().String(),
		"outcome", res.Decision.Outcome.String(),
		"rows", len(rows),
		"entities", res.Entities.Len(),
		"duration", res.Duration,
	)
	r.record(ctx, res)
	return res, nil
}

// record hands the finished resolution to the recorder, if any.
func (r *Resolver) record(ctx context.Context, res *Resolution) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, res); err != nil {
		r.logger.Error("failed to record resolution",
			"token", res.Token.String(),
			"error", err,
		)
	}
}
