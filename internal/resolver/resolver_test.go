package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/sparql"
)

// stubExecutor returns canned rows and records the query it received.
type stubExecutor struct {
	rows     []sparql.Row
	err      error
	gotQuery string
	calls    int
}

func (s *stubExecutor) Query(_ context.Context, query string) ([]sparql.Row, error) {
	s.calls++
	s.gotQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

// stubRecorder collects recorded resolutions.
type stubRecorder struct {
	err error
	got []*Resolution
}

func (s *stubRecorder) Record(_ context.Context, res *Resolution) error {
	s.got = append(s.got, res)
	return s.err
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func queryRows() []sparql.Row {
	return []sparql.Row{
		{
			Entity:      "http://www.wikidata.org/entity/Q42",
			Label:       "Douglas Adams",
			Description: "English author",
			Destination: "https://douglasadams.com",
			RankCode:    "http://wikiba.se/ontology#PreferredRank",
		},
		{
			Entity:      "http://www.wikidata.org/entity/Q42",
			Label:       "Douglas Adams",
			Description: "English author",
			Destination: "http://douglasadams.example.onion/mirror",
			RankCode:    "http://wikiba.se/ontology#NormalRank",
		},
		{
			Entity:      "http://www.wikidata.org/entity/Q5",
			Label:       "human",
			Description: "common name of Homo sapiens",
			Destination: "https://example.com/human",
			RankCode:    "http://wikiba.se/ontology#NormalRank",
		},
	}
}

func TestResolver_Resolve_Lookup(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	executor := &stubExecutor{rows: queryRows()}
	recorder := &stubRecorder{}

	r := New(executor,
		WithRecorder(recorder),
		WithLogger(discardLogger()),
		WithClock(stepClock(start, 100*time.Millisecond)),
	)

	res, err := r.Resolve(context.Background(), model.NewToken("q42"), Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}

	if !strings.Contains(executor.gotQuery, "wd:Q42") {
		t.Error("lookup query should embed the uppercased identifier")
	}

	if res.ID == "" {
		t.Error("resolution should carry an ID")
	}
	if res.State != StateResolved {
		t.Errorf("State = %v, want %v", res.State, StateResolved)
	}
	if res.Language != "en" {
		t.Errorf("Language = %q, want %q", res.Language, "en")
	}
	if !res.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", res.StartedAt, start)
	}
	if res.Duration != 100*time.Millisecond {
		t.Errorf("Duration = %v, want %v", res.Duration, 100*time.Millisecond)
	}

	// The onion mirror row is dropped during normalization, so Q42 keeps a
	// single destination and the map holds two entities.
	if res.EntityCount() != 2 {
		t.Fatalf("EntityCount() = %d, want 2", res.EntityCount())
	}
	top, ok := res.Top()
	if !ok {
		t.Fatal("Top() returned no entity")
	}
	if len(top.Destinations) != 1 {
		t.Errorf("len(top.Destinations) = %d, want 1", len(top.Destinations))
	}

	if res.Decision.Outcome != OutcomeNavigate {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeNavigate)
	}
	if res.Decision.Delay != 0 {
		t.Errorf("Delay = %v, want 0 for a direct lookup", res.Decision.Delay)
	}
	if res.Decision.Target != "https://douglasadams.com" {
		t.Errorf("Target = %q, want %q", res.Decision.Target, "https://douglasadams.com")
	}

	if len(recorder.got) != 1 || recorder.got[0] != res {
		t.Error("recorder should receive the finished resolution")
	}
}

func TestResolver_Resolve_Search(t *testing.T) {
	t.Parallel()

	executor := &stubExecutor{rows: queryRows()}
	r := New(executor,
		WithLogger(discardLogger()),
		WithRedirectDelay(750*time.Millisecond),
	)

	res, err := r.Resolve(context.Background(), model.NewToken("douglas-adams"), Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}

	// Hyphens in the label turn into spaces in the search term.
	if !strings.Contains(executor.gotQuery, `mwapi:search "douglas adams"`) {
		t.Errorf("search query should embed the decoded term, got:\n%s", executor.gotQuery)
	}

	if res.Decision.Outcome != OutcomeNavigate {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeNavigate)
	}
	if res.Decision.Delay != 750*time.Millisecond {
		t.Errorf("Delay = %v, want %v", res.Decision.Delay, 750*time.Millisecond)
	}
}

func TestResolver_Resolve_BackNavigation(t *testing.T) {
	t.Parallel()

	executor := &stubExecutor{rows: queryRows()}
	r := New(executor, WithLogger(discardLogger()))

	res, err := r.Resolve(context.Background(), model.NewToken("douglas-adams"), Options{BackNavigation: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}

	if res.Decision.Outcome != OutcomeDisplay {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeDisplay)
	}
	if res.Decision.Target != "" {
		t.Errorf("Target = %q, want empty when navigation is suppressed", res.Decision.Target)
	}
}

func TestResolver_Resolve_LanguageOverride(t *testing.T) {
	t.Parallel()

	executor := &stubExecutor{rows: queryRows()}
	r := New(executor, WithLogger(discardLogger()), WithLanguage("en"))

	res, err := r.Resolve(context.Background(), model.NewToken("q42"), Options{Language: "de"})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}

	if res.Language != "de" {
		t.Errorf("Language = %q, want the per-request override %q", res.Language, "de")
	}
	if !strings.Contains(executor.gotQuery, `LANG(?label) = "de"`) {
		t.Error("query should filter labels by the overridden language")
	}
}

func TestResolver_Resolve_NoRows(t *testing.T) {
	t.Parallel()

	executor := &stubExecutor{rows: nil}
	r := New(executor, WithLogger(discardLogger()))

	res, err := r.Resolve(context.Background(), model.NewToken("qqqqq"), Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}

	if res.Decision.Outcome != OutcomeNotFound {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeNotFound)
	}
	if res.Entities == nil || !res.Entities.IsEmpty() {
		t.Error("an empty result set should still produce an empty entity map")
	}
}

func TestResolver_Resolve_QueryFailure(t *testing.T) {
	t.Parallel()

	queryErr := errors.New("endpoint unreachable")
	executor := &stubExecutor{err: queryErr}
	recorder := &stubRecorder{}
	r := New(executor, WithRecorder(recorder), WithLogger(discardLogger()))

	res, err := r.Resolve(context.Background(), model.NewToken("douglas-adams"), Options{})
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("Resolve() error = %v, want %v", err, ErrQueryFailed)
	}

	if res == nil {
		t.Fatal("Resolve() resolution = nil, want a failed resolution")
	}
	if res.Decision.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeFailed)
	}
	if res.State != StateResolved {
		t.Errorf("State = %v, want %v", res.State, StateResolved)
	}
	if !errors.Is(res.Err, ErrQueryFailed) {
		t.Errorf("res.Err = %v, want %v", res.Err, ErrQueryFailed)
	}
	if res.Entities != nil {
		t.Error("a failed resolution should carry no entity map")
	}

	// Failures are history too.
	if len(recorder.got) != 1 {
		t.Errorf("recorder received %d resolutions, want 1", len(recorder.got))
	}
}

func TestResolver_Resolve_RecorderFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	executor := &stubExecutor{rows: queryRows()}
	recorder := &stubRecorder{err: errors.New("disk full")}
	r := New(executor, WithRecorder(recorder), WithLogger(discardLogger()))

	res, err := r.Resolve(context.Background(), model.NewToken("q42"), Options{})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil despite recorder failure", err)
	}
	if res.Decision.Outcome != OutcomeNavigate {
		t.Errorf("Outcome = %v, want %v", res.Decision.Outcome, OutcomeNavigate)
	}
}
