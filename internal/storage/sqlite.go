package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a local sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrate before the main pool touches the file
	if _, err := MigrateLedgerSchema(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY between our own goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Record, error) {
	rec := Record{Key: key}
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT revision, payload, updated_at FROM ledger_records WHERE key = ?`, key).
		Scan(&rec.Revision, &payload, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record %s: %w", key, err)
	}
	rec.Payload = []byte(payload)
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error) {
	now := time.Now().UTC()
	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO ledger_records (key, revision, payload, updated_at) VALUES (?, 1, ?, ?)
			 ON CONFLICT(key) DO NOTHING`,
			key, string(payload), now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE ledger_records SET revision = revision + 1, payload = ?, updated_at = ?
			 WHERE key = ? AND revision = ?`,
			string(payload), now, key, expected)
	}
	if err != nil {
		return 0, fmt.Errorf("save record %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("save record %s: %w", key, err)
	}
	if n == 0 {
		return 0, ErrStaleRevision
	}
	return expected + 1, nil
}
