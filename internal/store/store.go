// Package store persists analyzed summaries in a per-project SQLite cache,
// keyed by file path and content checksum, so unchanged headers are not
// re-analyzed across runs.
package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cscan/internal/analyzer"
	"cscan/internal/errors"
	"cscan/internal/logging"
)

// Store provides persistence for summaries in a SQLite database.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the cache database at <dir>/cache.db
func Open(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New(errors.CacheError, "failed to create cache directory", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.New(errors.CacheError, "failed to open cache database", err)
	}

	// Set pragmas for performance
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, errors.New(errors.CacheError, "failed to set pragma", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.New(errors.CacheError, "failed to initialize cache schema", err)
	}
	return store, nil
}

// initializeSchema creates the cache tables.
func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS summaries (
			path TEXT NOT NULL,
			checksum TEXT NOT NULL,
			summary TEXT NOT NULL,
			analyzed_at TEXT NOT NULL,
			PRIMARY KEY (path, checksum)
		);
		CREATE INDEX IF NOT EXISTS idx_summaries_analyzed ON summaries(analyzed_at);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			files INTEGER NOT NULL,
			diagnostics INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Get returns the cached summary for path at the given checksum, or nil on
// a cache miss.
func (s *Store) Get(path, checksum string) (*analyzer.HeaderSummary, error) {
	var raw string
	err := s.conn.QueryRow(
		"SELECT summary FROM summaries WHERE path = ? AND checksum = ?",
		path, checksum,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New(errors.CacheError, "failed to read cache entry", err)
	}

	var summary analyzer.HeaderSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		// A corrupt row is treated as a miss; it will be rewritten.
		s.logger.Warn("Discarding corrupt cache entry", map[string]interface{}{
			"path": path,
		})
		return nil, nil
	}
	return &summary, nil
}

// Put stores a summary, replacing any previous entry for the same path so
// stale checksums do not accumulate.
func (s *Store) Put(path, checksum string, summary *analyzer.HeaderSummary) error {
	if err := s.put(path, checksum, summary); err != nil {
		return errors.New(errors.CacheError, "failed to cache summary", err).
			WithDetails(map[string]interface{}{"path": path})
	}
	return nil
}

func (s *Store) put(path, checksum string, summary *analyzer.HeaderSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM summaries WHERE path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO summaries (path, checksum, summary, analyzed_at) VALUES (?, ?, ?, ?)",
		path, checksum, string(data), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordRun stores the metadata of a completed analysis run.
func (s *Store) RecordRun(run *analyzer.Run) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO runs (id, started_at, files, diagnostics) VALUES (?, ?, ?, ?)",
		run.ID, run.StartedAt.Format(time.RFC3339), len(run.Summaries), len(run.Diagnostics),
	)
	return err
}

// Status describes the cache contents.
type Status struct {
	Path      string `json:"path"`
	Summaries int    `json:"summaries"`
	Runs      int    `json:"runs"`
}

// Status reports how many summaries and runs the cache holds.
func (s *Store) Status() (*Status, error) {
	st := &Status{Path: s.dbPath}
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM summaries").Scan(&st.Summaries); err != nil {
		return nil, err
	}
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&st.Runs); err != nil {
		return nil, err
	}
	return st, nil
}

// Clear removes every cached summary and run record.
func (s *Store) Clear() error {
	_, err := s.conn.Exec("DELETE FROM summaries; DELETE FROM runs;")
	return err
}
