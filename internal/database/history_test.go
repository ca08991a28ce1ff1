package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/resolver"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// navigateResolution builds a finished resolution with two entities.
func navigateResolution(id, token string) *resolver.Resolution {
	entities := model.NewEntityMap()
	entities.Put(&model.Entity{
		URI:         "http://www.wikidata.org/entity/Q42",
		Label:       "Douglas Adams",
		Description: "English writer",
		Destinations: []model.Destination{
			{URL: "https://douglasadams.com", Rank: model.RankPreferred},
		},
	})
	entities.Put(&model.Entity{
		URI:   "http://www.wikidata.org/entity/Q5",
		Label: "human",
		Destinations: []model.Destination{
			{URL: "https://human.example", Rank: model.RankNormal},
		},
	})

	return &resolver.Resolution{
		ID:       id,
		Token:    model.NewToken(token),
		State:    resolver.StateResolved,
		Language: "en",
		Entities: entities,
		Decision: resolver.Decision{
			Outcome: resolver.OutcomeNavigate,
			Target:  "https://douglasadams.com",
			Delay:   time.Second,
		},
		Duration: 120 * time.Millisecond,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, dbFileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns ErrDatabaseNotFound", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")

		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
		}

		// The directory must not be created as a side effect.
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if err := db1.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()
	})
}

func TestHistoryDB_Record(t *testing.T) {
	t.Parallel()

	t.Run("records and retrieves a resolution", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		res := navigateResolution("res-1", "douglas-adams")
		if err := db.Record(ctx, res); err != nil {
			t.Fatalf("failed to record resolution: %v", err)
		}

		rec, err := db.GetResolution(ctx, "res-1")
		if err != nil {
			t.Fatalf("failed to get resolution: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a record")
		}

		if rec.Token != "douglas-adams" {
			t.Errorf("expected token douglas-adams, got %q", rec.Token)
		}
		if rec.Kind != "search" {
			t.Errorf("expected kind search, got %q", rec.Kind)
		}
		if rec.Outcome != "navigate" {
			t.Errorf("expected outcome navigate, got %q", rec.Outcome)
		}
		if rec.EntityCount != 2 {
			t.Errorf("expected 2 entities, got %d", rec.EntityCount)
		}
		if rec.TopURI != "http://www.wikidata.org/entity/Q42" {
			t.Errorf("unexpected top URI %q", rec.TopURI)
		}
		if rec.TopLabel != "Douglas Adams" {
			t.Errorf("unexpected top label %q", rec.TopLabel)
		}
		if rec.Target != "https://douglasadams.com" {
			t.Errorf("unexpected target %q", rec.Target)
		}
		if rec.Delay != time.Second {
			t.Errorf("expected 1s delay, got %s", rec.Delay)
		}
		if rec.Duration != 120*time.Millisecond {
			t.Errorf("expected 120ms duration, got %s", rec.Duration)
		}
		if rec.CreatedAt.IsZero() {
			t.Error("expected a parseable created_at timestamp")
		}

		// The entity list round-trips through JSON in insertion order.
		if len(rec.Entities) != 2 {
			t.Fatalf("expected 2 entities in record, got %d", len(rec.Entities))
		}
		if rec.Entities[0].URI != "http://www.wikidata.org/entity/Q42" {
			t.Errorf("unexpected first entity %q", rec.Entities[0].URI)
		}
		if len(rec.Entities[0].Destinations) != 1 {
			t.Errorf("expected 1 destination, got %d", len(rec.Entities[0].Destinations))
		}
	})

	t.Run("records a failed resolution without entities", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		res := &resolver.Resolution{
			ID:       "res-failed",
			Token:    model.NewToken("q42"),
			State:    resolver.StateResolved,
			Language: "en",
			Decision: resolver.Decision{Outcome: resolver.OutcomeFailed},
			Err:      errors.New("endpoint returned non-success status: 502 Bad Gateway"),
			Duration: 45 * time.Millisecond,
		}
		if err := db.Record(ctx, res); err != nil {
			t.Fatalf("failed to record resolution: %v", err)
		}

		rec, err := db.GetResolution(ctx, "res-failed")
		if err != nil {
			t.Fatalf("failed to get resolution: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a record")
		}

		if rec.Outcome != "failed" {
			t.Errorf("expected outcome failed, got %q", rec.Outcome)
		}
		if rec.Kind != "lookup" {
			t.Errorf("expected kind lookup, got %q", rec.Kind)
		}
		if rec.Error == "" {
			t.Error("expected an error text")
		}
		if rec.EntityCount != 0 {
			t.Errorf("expected 0 entities, got %d", rec.EntityCount)
		}
		if rec.Entities != nil {
			t.Errorf("expected no entity list, got %d entities", len(rec.Entities))
		}
	})

	t.Run("get returns nil for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		rec, err := db.GetResolution(context.Background(), "no-such-id")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil record, got %+v", rec)
		}
	})
}

func TestResolutionRecord_Resolution(t *testing.T) {
	t.Parallel()

	t.Run("rebuilds a stored resolution", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.Record(ctx, navigateResolution("res-1", "douglas-adams")); err != nil {
			t.Fatalf("failed to record resolution: %v", err)
		}

		rec, err := db.GetResolution(ctx, "res-1")
		if err != nil {
			t.Fatalf("failed to get resolution: %v", err)
		}

		res, err := rec.Resolution()
		if err != nil {
			t.Fatalf("Resolution() error = %v", err)
		}

		if res.Token.String() != "douglas-adams" {
			t.Errorf("expected token douglas-adams, got %q", res.Token.String())
		}
		if res.Token.Kind() != model.TokenKindSearch {
			t.Errorf("expected search kind, got %v", res.Token.Kind())
		}
		if res.Decision.Outcome != resolver.OutcomeNavigate {
			t.Errorf("expected navigate outcome, got %v", res.Decision.Outcome)
		}
		if res.Decision.Target != "https://douglasadams.com" {
			t.Errorf("unexpected target %q", res.Decision.Target)
		}
		if res.Decision.Delay != time.Second {
			t.Errorf("expected 1s delay, got %s", res.Decision.Delay)
		}
		if res.Entities.Len() != 2 {
			t.Fatalf("expected 2 entities, got %d", res.Entities.Len())
		}

		top, ok := res.Entities.Top()
		if !ok || top.Label != "Douglas Adams" {
			t.Errorf("expected Douglas Adams on top, got %+v", top)
		}
		if len(top.Destinations) != 1 || top.Destinations[0].Rank != model.RankPreferred {
			t.Errorf("expected one preferred destination, got %+v", top.Destinations)
		}
	})

	t.Run("rebuilds a failed resolution", func(t *testing.T) {
		t.Parallel()

		rec := &ResolutionRecord{
			ID:      "res-failed",
			Token:   "q42",
			Kind:    "lookup",
			Outcome: "failed",
			Error:   "boom",
		}

		res, err := rec.Resolution()
		if err != nil {
			t.Fatalf("Resolution() error = %v", err)
		}
		if res.Decision.Outcome != resolver.OutcomeFailed {
			t.Errorf("expected failed outcome, got %v", res.Decision.Outcome)
		}
		if res.Err == nil || res.Err.Error() != "boom" {
			t.Errorf("expected the stored error text, got %v", res.Err)
		}
		if res.Entities.Len() != 0 {
			t.Errorf("expected an empty entity map, got %d entities", res.Entities.Len())
		}
	})

	t.Run("rejects an unknown stored outcome", func(t *testing.T) {
		t.Parallel()

		rec := &ResolutionRecord{ID: "res-x", Token: "q42", Outcome: "exploded"}
		if _, err := rec.Resolution(); !errors.Is(err, resolver.ErrUnknownOutcome) {
			t.Errorf("expected ErrUnknownOutcome, got %v", err)
		}
	})
}

func TestHistoryDB_ListResolutions(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T) *HistoryDB {
		t.Helper()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.Record(ctx, navigateResolution("res-1", "douglas-adams")); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if err := db.Record(ctx, navigateResolution("res-2", "q42")); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		failed := &resolver.Resolution{
			ID:       "res-3",
			Token:    model.NewToken("broken"),
			Language: "en",
			Decision: resolver.Decision{Outcome: resolver.OutcomeFailed},
			Err:      errors.New("boom"),
		}
		if err := db.Record(ctx, failed); err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		return db
	}

	t.Run("lists all records newest first", func(t *testing.T) {
		t.Parallel()

		db := seed(t)

		records, err := db.ListResolutions(context.Background(), "", "", 0)
		if err != nil {
			t.Fatalf("failed to list resolutions: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		if records[0].ID != "res-3" {
			t.Errorf("expected newest record first, got %q", records[0].ID)
		}
	})

	t.Run("filters by outcome", func(t *testing.T) {
		t.Parallel()

		db := seed(t)

		records, err := db.ListResolutions(context.Background(), "", "failed", 0)
		if err != nil {
			t.Fatalf("failed to list resolutions: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].ID != "res-3" {
			t.Errorf("expected res-3, got %q", records[0].ID)
		}
	})

	t.Run("filters by token", func(t *testing.T) {
		t.Parallel()

		db := seed(t)

		records, err := db.ListResolutions(context.Background(), "q42", "", 0)
		if err != nil {
			t.Fatalf("failed to list resolutions: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Token != "q42" {
			t.Errorf("expected token q42, got %q", records[0].Token)
		}
	})

	t.Run("applies the limit", func(t *testing.T) {
		t.Parallel()

		db := seed(t)

		records, err := db.ListResolutions(context.Background(), "", "", 2)
		if err != nil {
			t.Fatalf("failed to list resolutions: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("empty database lists nothing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		records, err := db.ListResolutions(context.Background(), "", "", 0)
		if err != nil {
			t.Fatalf("failed to list resolutions: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}

func TestHistoryDB_CountByOutcome(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, navigateResolution("res-1", "a")); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	if err := db.Record(ctx, navigateResolution("res-2", "b")); err != nil {
		t.Fatalf("failed to record: %v", err)
	}
	notFound := &resolver.Resolution{
		ID:       "res-3",
		Token:    model.NewToken("nothing"),
		Language: "en",
		Entities: model.NewEntityMap(),
		Decision: resolver.Decision{Outcome: resolver.OutcomeNotFound},
	}
	if err := db.Record(ctx, notFound); err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	counts, err := db.CountByOutcome(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}

	if counts["navigate"] != 2 {
		t.Errorf("expected 2 navigate records, got %d", counts["navigate"])
	}
	if counts["not_found"] != 1 {
		t.Errorf("expected 1 not_found record, got %d", counts["not_found"])
	}
}

func TestHistoryDB_PurgeOlderThan(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Record(ctx, navigateResolution("res-1", "a")); err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	// A freshly recorded resolution is newer than one hour, so nothing is
	// purged.
	purged, err := db.PurgeOlderThan(ctx, time.Hour)
	if err != nil {
		t.Fatalf("failed to purge: %v", err)
	}
	if purged != 0 {
		t.Errorf("expected 0 purged rows, got %d", purged)
	}

	// Zero age removes everything recorded up to now.
	purged, err = db.PurgeOlderThan(ctx, 0)
	if err != nil {
		t.Fatalf("failed to purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged row, got %d", purged)
	}

	records, err := db.ListResolutions(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("failed to list resolutions: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history after purge, got %d records", len(records))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "SQLite default format",
			input: "2026-08-25 10:30:00",
			want:  time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "ISO 8601 with Z",
			input: "2026-08-25T10:30:00Z",
			want:  time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparseable returns zero time",
			input: "not a timestamp",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
