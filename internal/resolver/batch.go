package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/wikimark/wikimark/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchResolver resolves multiple tokens concurrently with a bounded worker
// pool. A single Resolver is shared across workers; it is safe for
// concurrent use because all per-resolution state lives in the Resolution.
type BatchResolver struct {
	// resolver performs the individual resolutions.
	resolver *Resolver

	// concurrency is the maximum number of concurrent resolutions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchResolver.
type BatchOption func(*BatchResolver)

// WithBatchLogger sets a custom logger for batch resolution.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchResolver) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency sets the maximum number of concurrent resolutions.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchResolver) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchResolver creates a new BatchResolver around the given Resolver.
func NewBatchResolver(resolver *Resolver, opts ...BatchOption) *BatchResolver {
	b := &BatchResolver{
		resolver:    resolver,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// ResolveAll resolves multiple tokens concurrently. It respects the
// configured concurrency limit and context cancellation.
//
// The returned slice preserves the input order: results[i] is the resolution
// of tokens[i]. Every token yields a resolution, including failed ones; the
// failure is carried in Resolution.Err and Decision.Outcome. The error
// return is non-nil only when the batch was cancelled.
func (b *BatchResolver) ResolveAll(ctx context.Context, tokens []model.Token, opts Options) ([]*Resolution, error) {
	b.logger.Info("starting batch resolution",
		"total_tokens", len(tokens),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate the results slice to maintain order. Each goroutine
	// writes only its own index, so no further synchronization is needed.
	results := make([]*Resolution, len(tokens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, token := range tokens {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := b.resolver.Resolve(ctx, token, opts)
			results[i] = res

			if err != nil {
				b.logger.Warn("resolution failed",
					"token", token.String(),
					"error", err,
				)
				// Don't return the error to the errgroup - remaining tokens
				// should still resolve. The failure is recorded in the
				// resolution itself.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	b.logger.Info("batch resolution complete",
		"total_tokens", len(tokens),
		"elapsed", elapsed,
	)

	return results, err
}
