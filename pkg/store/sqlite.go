package store

import (
	"context"
	"database/sql"
	"sort"

	_ "modernc.org/sqlite"

	werrors "github.com/wrenchdag/wrench/pkg/errors"
)

// SQLiteStore is a third Result Store backend, over a single portable
// database file rather than a directory of JSON files. It uses
// modernc.org/sqlite, the pure-Go (CGo-free) SQLite driver already
// present in the example corpus, so the engine stays deployable as a
// single static binary (spec §4.1 requires the in-memory and
// filesystem backends; this is an additional third one).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed store
// at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The store's own serialization requirement (spec §4.1: "all
	// operations are serialized per store instance") makes a single
	// connection sufficient and avoids SQLITE_BUSY under concurrent
	// writers.
	db.SetMaxOpenConns(1)

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, key string, value []byte, overwrite bool) error {
	if !overwrite {
		res, err := s.db.ExecContext(ctx, `INSERT INTO kv(key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING`, key, value)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &werrors.KeyExistsError{Key: key}
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, rows.Err()
}
