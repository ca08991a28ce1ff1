package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/sparql"
)

// batchExecutor is a goroutine-safe executor that fails queries containing
// failSubstring and answers everything else with the shared fixture rows.
type batchExecutor struct {
	mu            sync.Mutex
	calls         int
	failSubstring string
	failErr       error
}

func (b *batchExecutor) Query(_ context.Context, query string) ([]sparql.Row, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()

	if b.failSubstring != "" && strings.Contains(query, b.failSubstring) {
		return nil, b.failErr
	}
	return queryRows(), nil
}

func TestNewBatchResolver(t *testing.T) {
	t.Parallel()

	r := New(&batchExecutor{}, WithLogger(discardLogger()))

	t.Run("default concurrency", func(t *testing.T) {
		t.Parallel()

		b := NewBatchResolver(r)
		if b.concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", b.concurrency)
		}
	})

	t.Run("custom concurrency", func(t *testing.T) {
		t.Parallel()

		b := NewBatchResolver(r, WithConcurrency(8))
		if b.concurrency != 8 {
			t.Errorf("concurrency = %d, want 8", b.concurrency)
		}
	})

	t.Run("non-positive concurrency keeps the default", func(t *testing.T) {
		t.Parallel()

		b := NewBatchResolver(r, WithConcurrency(0))
		if b.concurrency != 4 {
			t.Errorf("concurrency = %d, want 4", b.concurrency)
		}
	})
}

func TestBatchResolver_ResolveAll_PreservesOrder(t *testing.T) {
	t.Parallel()

	executor := &batchExecutor{}
	r := New(executor, WithLogger(discardLogger()))
	b := NewBatchResolver(r, WithBatchLogger(discardLogger()), WithConcurrency(2))

	tokens := []model.Token{
		model.NewToken("q42"),
		model.NewToken("douglas-adams"),
		model.NewToken("q5"),
		model.NewToken("tea"),
	}

	results, err := b.ResolveAll(context.Background(), tokens, Options{})
	if err != nil {
		t.Fatalf("ResolveAll() error = %v, want nil", err)
	}

	if len(results) != len(tokens) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(tokens))
	}
	for i, res := range results {
		if res == nil {
			t.Fatalf("results[%d] = nil, want a resolution", i)
		}
		if !res.Token.Equals(tokens[i]) {
			t.Errorf("results[%d].Token = %q, want %q", i, res.Token.String(), tokens[i].String())
		}
	}
	if executor.calls != len(tokens) {
		t.Errorf("executor calls = %d, want %d", executor.calls, len(tokens))
	}
}

func TestBatchResolver_ResolveAll_FailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	executor := &batchExecutor{
		failSubstring: "broken",
		failErr:       errors.New("endpoint unreachable"),
	}
	r := New(executor, WithLogger(discardLogger()))
	b := NewBatchResolver(r, WithBatchLogger(discardLogger()))

	tokens := []model.Token{
		model.NewToken("q42"),
		model.NewToken("broken"),
		model.NewToken("tea"),
	}

	results, err := b.ResolveAll(context.Background(), tokens, Options{})
	if err != nil {
		t.Fatalf("ResolveAll() error = %v, want nil when only single tokens fail", err)
	}

	if results[0].Decision.Outcome != OutcomeNavigate {
		t.Errorf("results[0].Outcome = %v, want %v", results[0].Decision.Outcome, OutcomeNavigate)
	}
	if results[1].Decision.Outcome != OutcomeFailed {
		t.Errorf("results[1].Outcome = %v, want %v", results[1].Decision.Outcome, OutcomeFailed)
	}
	if !errors.Is(results[1].Err, ErrQueryFailed) {
		t.Errorf("results[1].Err = %v, want %v", results[1].Err, ErrQueryFailed)
	}
	if results[2].Decision.Outcome != OutcomeNavigate {
		t.Errorf("results[2].Outcome = %v, want %v", results[2].Decision.Outcome, OutcomeNavigate)
	}
}

func TestBatchResolver_ResolveAll_Cancellation(t *testing.T) {
	t.Parallel()

	executor := &batchExecutor{}
	r := New(executor, WithLogger(discardLogger()))
	b := NewBatchResolver(r, WithBatchLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tokens := []model.Token{
		model.NewToken("q42"),
		model.NewToken("tea"),
	}

	if _, err := b.ResolveAll(ctx, tokens, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("ResolveAll() error = %v, want %v", err, context.Canceled)
	}
}

func TestBatchResolver_ResolveAll_Empty(t *testing.T) {
	t.Parallel()

	r := New(&batchExecutor{}, WithLogger(discardLogger()))
	b := NewBatchResolver(r, WithBatchLogger(discardLogger()))

	results, err := b.ResolveAll(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("ResolveAll() error = %v, want nil", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}
