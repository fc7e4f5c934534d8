package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_records (
    key        TEXT PRIMARY KEY,
    revision   BIGINT NOT NULL,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps records in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url, checks the connection and creates the
// records table when missing.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (Record, error) {
	rec := Record{Key: key}
	err := s.pool.QueryRow(ctx,
		`SELECT revision, payload::text, updated_at FROM ledger_records WHERE key = $1`, key).
		Scan(&rec.Revision, &rec.Payload, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record %s: %w", key, err)
	}
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if expected == 0 {
		tag, err = s.pool.Exec(ctx,
			`INSERT INTO ledger_records (key, revision, payload, updated_at) VALUES ($1, 1, $2, NOW())
			 ON CONFLICT (key) DO NOTHING`,
			key, string(payload))
	} else {
		tag, err = s.pool.Exec(ctx,
			`UPDATE ledger_records SET revision = revision + 1, payload = $1, updated_at = NOW()
			 WHERE key = $2 AND revision = $3`,
			string(payload), key, expected)
	}
	if err != nil {
		return 0, fmt.Errorf("save record %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrStaleRevision
	}
	return expected + 1, nil
}
