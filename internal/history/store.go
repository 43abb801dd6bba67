// Package history provides SQLite-backed persistence for report generations,
// backing the --history view.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides SQLite-backed persistence for generation records.
type Store struct {
	db *sql.DB
}

// Generation is one recorded report generation for one session.
type Generation struct {
	RunID       string    `json:"run_id,omitempty"`
	SessionID   string    `json:"session_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Days        int       `json:"days,omitempty"`
}

// Open opens (or creates) history.db inside the state directory dir.
func Open(dir string) (*Store, error) {
	db, err := sql.Open("sqlite3", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		days INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_generations_session
		ON generations(session_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts one generation row per session id, all stamped with the
// same run id and time.
func (s *Store) Record(runID string, sessionIDs []string, days int, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, id := range sessionIDs {
		if _, err := tx.Exec(
			`INSERT INTO generations (run_id, session_id, generated_at, days)
			 VALUES (?, ?, ?, ?)`,
			runID, id, at.UTC(), days,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert generation: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the most recent generations, oldest first, capped at limit.
func (s *Store) Recent(limit int) ([]Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, session_id, generated_at, days
		 FROM (
			SELECT id, run_id, session_id, generated_at, days
			FROM generations
			ORDER BY id DESC
			LIMIT ?
		 )
		 ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gens []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.RunID, &g.SessionID, &g.GeneratedAt, &g.Days); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		gens = append(gens, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return gens, nil
}
