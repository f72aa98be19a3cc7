package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/signal-memory/internal/model"
)

// SQLiteStore implements KV and Journal using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ KV      = (*SQLiteStore)(nil)
	_ Journal = (*SQLiteStore)(nil)
)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id           TEXT PRIMARY KEY,
		created_at   TEXT NOT NULL,
		user_message TEXT NOT NULL,
		ai_response  TEXT NOT NULL,
		context_ref  TEXT,
		mode         TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_created ON interactions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = kv.version + 1, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Version returns how many times key has been written, or 0 if it was never set.
func (s *SQLiteStore) Version(ctx context.Context, key string) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

func (s *SQLiteStore) Append(ctx context.Context, rec model.InteractionRecord, keep int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var contextRef *string
	if len(rec.ContextRef) > 0 {
		c := string(rec.ContextRef)
		contextRef = &c
	}
	var mode *string
	if rec.Mode != "" {
		mode = &rec.Mode
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO interactions (id, created_at, user_message, ai_response, context_ref, mode)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.UserMessage, rec.AIResponse, contextRef, mode)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	if keep > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM interactions WHERE rowid NOT IN (
				SELECT rowid FROM interactions ORDER BY rowid DESC LIMIT ?)`, keep)
		if err != nil {
			return fmt.Errorf("trim interactions: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]model.InteractionRecord, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, user_message, ai_response, context_ref, mode FROM (
			SELECT rowid, * FROM interactions ORDER BY rowid DESC LIMIT ?
		 ) ORDER BY rowid ASC`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InteractionRecord
	for rows.Next() {
		rec, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInteraction(row scanner) (model.InteractionRecord, error) {
	var rec model.InteractionRecord
	var createdAt string
	var contextRef, mode sql.NullString

	err := row.Scan(&rec.ID, &createdAt, &rec.UserMessage, &rec.AIResponse, &contextRef, &mode)
	if err != nil {
		return rec, err
	}

	rec.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
	if contextRef.Valid {
		rec.ContextRef = []byte(contextRef.String)
	}
	if mode.Valid {
		rec.Mode = mode.String
	}
	return rec, nil
}
