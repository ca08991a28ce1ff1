package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/resolver"
)

// dbFileName is the SQLite file name inside the history directory.
const dbFileName = "wikimark.db"

// HistoryDB provides SQLite-based storage for finished resolutions.
// It manages connection pooling and provides methods for recording and
// querying the resolution history.
//
// Recording is write-only from the resolver's point of view: nothing is read
// back on the resolve path, so the history is an audit trail, not a query
// cache.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// writer contention between the server and a concurrent CLI invocation.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the SQLite database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Resolutions store one row per finished token resolution
	CREATE TABLE IF NOT EXISTS resolutions (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		kind TEXT NOT NULL,
		outcome TEXT NOT NULL,
		status TEXT NOT NULL,
		language TEXT NOT NULL,
		entity_count INTEGER NOT NULL DEFAULT 0,
		top_uri TEXT,
		top_label TEXT,
		target TEXT,
		delay_ms INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		entities_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_token ON resolutions(token);
	CREATE INDEX IF NOT EXISTS idx_resolutions_outcome ON resolutions(outcome);
	CREATE INDEX IF NOT EXISTS idx_resolutions_created ON resolutions(created_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ResolutionRecord is one stored resolution. The entity list is kept as JSON
// in the database and only decoded by GetResolution; listing queries return
// the flat columns alone.
type ResolutionRecord struct {
	// ID is the resolution identifier assigned by the resolver.
	ID string

	// Token is the raw token that was resolved.
	Token string

	// Kind is the token classification name ("lookup" or "search").
	Kind string

	// Outcome is the decision outcome name ("navigate", "display",
	// "not_found", "failed").
	Outcome string

	// Status is the user-facing status line at resolution time.
	Status string

	// Language is the label and description language the query used.
	Language string

	// EntityCount is the number of entities the resolution produced.
	EntityCount int

	// TopURI and TopLabel identify the designated top result, empty when the
	// resolution produced no entities.
	TopURI   string
	TopLabel string

	// Target is the navigation target URL, empty unless navigation was
	// scheduled.
	Target string

	// Delay is the navigation delay that applied.
	Delay time.Duration

	// Duration is the time from query submission to the terminal state.
	Duration time.Duration

	// Error is the terminal error text for failed resolutions.
	Error string

	// Entities is the normalized entity list in relevance order.
	// Populated by GetResolution only.
	Entities []*model.Entity

	// CreatedAt is when the resolution was recorded.
	CreatedAt time.Time
}

// Resolution rebuilds the resolver's view of a stored record so it can be
// re-rendered by the report writers. The entity map is only populated when
// the record came from GetResolution; listing queries leave it empty.
func (rec *ResolutionRecord) Resolution() (*resolver.Resolution, error) {
	outcome, err := resolver.ParseOutcome(rec.Outcome)
	if err != nil {
		return nil, fmt.Errorf("stored outcome: %w", err)
	}

	entities := model.NewEntityMap()
	for _, e := range rec.Entities {
		entities.Put(e)
	}

	res := &resolver.Resolution{
		ID:       rec.ID,
		Token:    model.NewToken(rec.Token),
		State:    resolver.StateResolved,
		Language: rec.Language,
		Entities: entities,
		Decision: resolver.Decision{
			Outcome: outcome,
			Target:  rec.Target,
			Delay:   rec.Delay,
		},
		StartedAt: rec.CreatedAt,
		Duration:  rec.Duration,
	}
	if rec.Error != "" {
		res.Err = errors.New(rec.Error)
	}
	return res, nil
}

// Record stores a finished resolution. It implements resolver.Recorder.
func (hdb *HistoryDB) Record(ctx context.Context, res *resolver.Resolution) error {
	var topURI, topLabel string
	if top, ok := res.Top(); ok {
		topURI = top.URI
		topLabel = top.Label
	}

	var errText string
	if res.Err != nil {
		errText = res.Err.Error()
	}

	var entitiesJSON string
	if res.Entities != nil && !res.Entities.IsEmpty() {
		data, err := json.Marshal(res.Entities)
		if err != nil {
			return fmt.Errorf("failed to serialize entities: %w", err)
		}
		entitiesJSON = string(data)
	}

	query := `
	INSERT INTO resolutions (
		id, token, kind, outcome, status, language, entity_count,
		top_uri, top_label, target, delay_ms, duration_ms, error, entities_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := hdb.db.ExecContext(ctx, query,
		res.ID,
		res.Token.String(),
		res.Token.Kind().String(),
		res.Decision.Outcome.String(),
		res.StatusText(),
		res.Language,
		res.EntityCount(),
		topURI,
		topLabel,
		res.Decision.Target,
		res.Decision.Delay.Milliseconds(),
		res.Duration.Milliseconds(),
		errText,
		entitiesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record resolution: %w", err)
	}

	return nil
}

// ListResolutions queries stored resolutions, newest first, with optional
// filters. Empty token and outcome match everything; limit <= 0 means no
// limit.
func (hdb *HistoryDB) ListResolutions(ctx context.Context, token, outcome string, limit int) ([]ResolutionRecord, error) {
	query := `
	SELECT id, token, kind, outcome, status, language, entity_count,
	       top_uri, top_label, target, delay_ms, duration_ms, error, created_at
	FROM resolutions
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if token != "" {
		query += " AND token = ?"
		args = append(args, token)
	}
	if outcome != "" {
		query += " AND outcome = ?"
		args = append(args, outcome)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var results []ResolutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetResolution retrieves one stored resolution by ID, including its entity
// list. It returns nil without an error when no such resolution exists.
func (hdb *HistoryDB) GetResolution(ctx context.Context, id string) (*ResolutionRecord, error) {
	query := `
	SELECT id, token, kind, outcome, status, language, entity_count,
	       top_uri, top_label, target, delay_ms, duration_ms, error, created_at,
	       entities_json
	FROM resolutions
	WHERE id = ?
	`

	var rec ResolutionRecord
	var delayMS, durationMS int64
	var timestamp string
	var entitiesJSON sql.NullString

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Token,
		&rec.Kind,
		&rec.Outcome,
		&rec.Status,
		&rec.Language,
		&rec.EntityCount,
		&rec.TopURI,
		&rec.TopLabel,
		&rec.Target,
		&delayMS,
		&durationMS,
		&rec.Error,
		&timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}

	rec.Delay = time.Duration(delayMS) * time.Millisecond
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = parseTimestamp(timestamp)

	if entitiesJSON.Valid && entitiesJSON.String != "" {
		if err := json.Unmarshal([]byte(entitiesJSON.String), &rec.Entities); err != nil {
			return nil, fmt.Errorf("failed to parse entities: %w", err)
		}
	}

	return &rec, nil
}

// CountByOutcome returns the number of stored resolutions per outcome name.
func (hdb *HistoryDB) CountByOutcome(ctx context.Context) (map[string]int, error) {
	query := `
	SELECT outcome, COUNT(*) FROM resolutions
	GROUP BY outcome
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count resolutions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}

// PurgeOlderThan deletes resolutions recorded more than age ago and returns
// how many rows were removed.
func (hdb *HistoryDB) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	query := `
	DELETE FROM resolutions
	WHERE created_at <= datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(age.Seconds()))

	result, err := hdb.db.ExecContext(ctx, query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to purge resolutions: %w", err)
	}

	return result.RowsAffected()
}

// scanRecord reads one listing row into a ResolutionRecord.
func scanRecord(rows *sql.Rows) (ResolutionRecord, error) {
	var rec ResolutionRecord
	var delayMS, durationMS int64
	var timestamp string

	err := rows.Scan(
		&rec.ID,
		&rec.Token,
		&rec.Kind,
		&rec.Outcome,
		&rec.Status,
		&rec.Language,
		&rec.EntityCount,
		&rec.TopURI,
		&rec.TopLabel,
		&rec.Target,
		&delayMS,
		&durationMS,
		&rec.Error,
		&timestamp,
	)
	if err != nil {
		return ResolutionRecord{}, fmt.Errorf("failed to scan resolution: %w", err)
	}

	rec.Delay = time.Duration(delayMS) * time.Millisecond
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = parseTimestamp(timestamp)
	return rec, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
