// Package storage persists the ledger as an opaque record in a key-value
// store. Every record carries a revision; writes must name the revision they
// replace so a stale writer is rejected instead of silently overwriting.
package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultLedgerKey is the record key the ledger is stored under.
const DefaultLedgerKey = "budget-data"

var (
	ErrNotFound      = errors.New("record not found")
	ErrStaleRevision = errors.New("stale record revision")
)

// Record is a stored payload with its revision.
type Record struct {
	Key       string
	Revision  int64
	Payload   []byte
	UpdatedAt time.Time
}

// RecordStore loads and saves records by key.
//
// Save succeeds only when the stored revision equals expected (0 when the key
// does not exist yet) and returns the new revision. Otherwise it returns
// ErrStaleRevision and leaves the record unchanged.
type RecordStore interface {
	Load(ctx context.Context, key string) (Record, error)
	Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error)
	Close() error
}
