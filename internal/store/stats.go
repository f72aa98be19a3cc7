package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string     `json:"db_path"`
	DBSizeBytes  int64      `json:"db_size_bytes"`
	Keys         []KeyStats `json:"keys"`
	Interactions int        `json:"interactions"`
}

// KeyStats holds per-key write information.
type KeyStats struct {
	Key       string `json:"key"`
	Version   int    `json:"version"`
	SizeBytes int    `json:"size_bytes"`
	UpdatedAt string `json:"updated_at"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&st.Interactions)

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, version, LENGTH(value), updated_at FROM kv ORDER BY key`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KeyStats
		if err := rows.Scan(&k.Key, &k.Version, &k.SizeBytes, &k.UpdatedAt); err != nil {
			return st, err
		}
		st.Keys = append(st.Keys, k)
	}

	return st, rows.Err()
}
