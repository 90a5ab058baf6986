// Package persist keeps the attempt history in SQLite.
package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kayz/veoscene/internal/logger"
)

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by GetAttempt for an unknown id.
var ErrNotFound = errors.New("attempt not found")

// Store handles persistence of attempt metadata using SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new SQLite-backed store at the given path
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init creates the necessary tables if they don't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS attempts (
			id           TEXT PRIMARY KEY,
			created_at   TEXT NOT NULL,
			duration     INTEGER NOT NULL,
			scene_type   TEXT NOT NULL,
			provider     TEXT NOT NULL,
			model        TEXT NOT NULL,
			outcome      TEXT NOT NULL,
			message      TEXT,
			latency_ms   INTEGER NOT NULL DEFAULT 0,
			total_shots  INTEGER NOT NULL DEFAULT 0,
			flags        TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_attempts_created ON attempts(created_at);
		CREATE INDEX IF NOT EXISTS idx_attempts_outcome ON attempts(outcome);
	`)
	return err
}

// RecordAttempt stores a. An empty ID or CreatedAt is filled in.
func (s *Store) RecordAttempt(a *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO attempts (id, created_at, duration, scene_type, provider, model, outcome, message, latency_ms, total_shots, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.CreatedAt.UTC().Format(timeLayout), a.Duration, a.SceneType, a.Provider, a.Model,
		a.Outcome, a.Message, a.LatencyMS, a.TotalShots, toJSON(a.Flags))
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the newest attempts first. A non-positive limit means 50.
func (s *Store) ListAttempts(limit int) ([]*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, duration, scene_type, provider, model, outcome, message, latency_ms, total_shots, flags
		FROM attempts
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (s *Store) GetAttempt(id string) (*Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, created_at, duration, scene_type, provider, model, outcome, message, latency_ms, total_shots, flags
		FROM attempts
		WHERE id = ?
	`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Stats counts attempts per outcome, most frequent first.
func (s *Store) Stats() ([]OutcomeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT outcome, COUNT(*) FROM attempts GROUP BY outcome ORDER BY COUNT(*) DESC, outcome
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes attempts created before cutoff and returns how many were removed.
func (s *Store) PurgeOlderThan(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM attempts WHERE created_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge attempts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Debug("[Persist] purged %d attempts older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func scanAttempt(row scanner) (*Attempt, error) {
	var a Attempt
	var createdAt string
	var message, flags sql.NullString
	if err := row.Scan(&a.ID, &createdAt, &a.Duration, &a.SceneType, &a.Provider, &a.Model,
		&a.Outcome, &message, &a.LatencyMS, &a.TotalShots, &flags); err != nil {
		return nil, err
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		a.CreatedAt = t
	}
	a.Message = message.String
	if err := fromJSON(flags.String, &a.Flags); err != nil {
		return nil, fmt.Errorf("decode flags of attempt %s: %w", a.ID, err)
	}
	return &a, nil
}
