package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists resolution and session history.
type Store interface {
	// RecordResolution appends a lookup and returns its ID.
	RecordResolution(r Resolution) (int64, error)
	// ListResolutions returns the most recent lookups, newest first.
	ListResolutions(limit int) ([]Resolution, error)
	// SaveSession inserts or replaces a finished session.
	SaveSession(s Session) error
	// ListSessions returns the most recent sessions, newest first.
	ListSessions(limit int) ([]Session, error)
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordResolution(r Resolution) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO resolutions (query, root, folder_path, score, exact, success, file_count, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Query, r.Root, r.FolderPath, r.Score, r.Exact, r.Success, r.FileCount, r.Source, r.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert resolution: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) ListResolutions(limit int) ([]Resolution, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, query, root, folder_path, score, exact, success, file_count, source, created_at
		FROM resolutions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Resolution
	for rows.Next() {
		var r Resolution
		if err := rows.Scan(
			&r.ID, &r.Query, &r.Root, &r.FolderPath, &r.Score,
			&r.Exact, &r.Success, &r.FileCount, &r.Source, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveSession(sess Session) error {
	transcript := sess.Transcript
	if transcript == nil {
		transcript = []string{}
	}
	blob, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, agent, query, transcript, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   transcript = excluded.transcript,
		   ended_at = excluded.ended_at`,
		sess.ID, sess.Agent, sess.Query, string(blob), sess.StartedAt.UTC(), sess.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, agent, query, transcript, started_at, ended_at
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var blob string
		if err := rows.Scan(&sess.ID, &sess.Agent, &sess.Query, &blob, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(blob), &sess.Transcript); err != nil {
			return nil, fmt.Errorf("decode transcript for %s: %w", sess.ID, err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
