package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/feedlooker/internal/model"
)

// HistoryDB provides SQLite-based storage for discovery runs.
// It manages connection pooling and provides methods for saving and
// listing past runs.
//
// Design decision: We use one database file for all sites rather than a
// file per site. Discovery runs are small (a run row plus a handful of
// feed rows), and a single file keeps cross-site listing and backup
// trivial.
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
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "feedlooker.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
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

	// SQLite only supports one writer; extra connections just contend.
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

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per discovery run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_crawled INTEGER NOT NULL,
		feed_count INTEGER NOT NULL,
		timed_out INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root_url ON runs(root_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	-- Feeds store the discovered feeds of each run, in discovery order
	CREATE TABLE IF NOT EXISTS feeds (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		source TEXT NOT NULL,
		host TEXT,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_feeds_url ON feeds(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists one discovery run and its feeds.
// If the report has no RunID yet, a new one is assigned and written back,
// so callers can reference the stored run afterwards.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.DiscoveryReport) error {
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, root_url, started_at, duration_ms, pages_crawled, feed_count, timed_out)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.RootURL,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
		report.PagesCrawled,
		report.FeedCount(),
		boolToInt(report.TimedOut),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, feed := range report.Feeds {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO feeds (run_id, position, url, title, source, host)
		VALUES (?, ?, ?, ?, ?, ?)
		`,
			report.RunID,
			i,
			feed.URL,
			feed.Title,
			string(feed.Source),
			feed.Host,
		)
		if err != nil {
			return fmt.Errorf("failed to insert feed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunSummary contains summary information about a stored run.
// This is used for displaying history without loading the feeds.
type RunSummary struct {
	// RunID is the unique identifier of the run.
	RunID string

	// RootURL is the seed URL the run started from.
	RootURL string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is the wall-clock time the run took.
	Duration time.Duration

	// PagesCrawled is the number of pages fetched during the run.
	PagesCrawled int

	// FeedCount is the number of feeds the run found.
	FeedCount int

	// TimedOut reports whether the run was cut short.
	TimedOut bool
}

// ListRuns returns summaries of stored runs, newest first.
// When rootURL is non-empty, only runs for that seed are returned.
func (hdb *HistoryDB) ListRuns(ctx context.Context, rootURL string) ([]RunSummary, error) {
	query := `
	SELECT id, root_url, started_at, duration_ms, pages_crawled, feed_count, timed_out
	FROM runs
	`
	args := make([]interface{}, 0)
	if rootURL != "" {
		query += " WHERE root_url = ?"
		args = append(args, rootURL)
	}
	query += " ORDER BY started_at DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var s RunSummary
		var startedAt string
		var durationMS int64
		var timedOut int

		if err := rows.Scan(&s.RunID, &s.RootURL, &startedAt, &durationMS, &s.PagesCrawled, &s.FeedCount, &timedOut); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		s.StartedAt = parseTimestamp(startedAt)
		s.Duration = time.Duration(durationMS) * time.Millisecond
		s.TimedOut = timedOut != 0
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored run with its feeds by run ID.
// Returns nil without error when the run does not exist.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*model.DiscoveryReport, error) {
	var report model.DiscoveryReport
	var startedAt string
	var durationMS int64
	var timedOut int

	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, root_url, started_at, duration_ms, pages_crawled, timed_out
	FROM runs WHERE id = ?
	`, runID).Scan(&report.RunID, &report.RootURL, &startedAt, &durationMS, &report.PagesCrawled, &timedOut)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	report.StartedAt = parseTimestamp(startedAt)
	report.Duration = time.Duration(durationMS) * time.Millisecond
	report.TimedOut = timedOut != 0

	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url, title, source, host FROM feeds
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	report.Feeds = make([]model.Feed, 0)
	for rows.Next() {
		var f model.Feed
		var source string
		if err := rows.Scan(&f.URL, &f.Title, &source, &f.Host); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		f.Source = model.FeedSource(source)
		report.Feeds = append(report.Feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &report, nil
}

// boolToInt stores booleans as SQLite integers.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // How SaveRun stores timestamps
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
