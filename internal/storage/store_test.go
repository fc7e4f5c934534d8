package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func exerciseStore(t *testing.T, s RecordStore, key string) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store: got %v, want ErrNotFound", err)
	}

	rev, err := s.Save(ctx, key, []byte(`{"version":1}`), 0)
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if rev != 1 {
		t.Errorf("first Save revision = %d, want 1", rev)
	}

	if _, err := s.Save(ctx, key, []byte(`{"version":2}`), 0); !errors.Is(err, ErrStaleRevision) {
		t.Errorf("insert over existing key: got %v, want ErrStaleRevision", err)
	}

	rev, err = s.Save(ctx, key, []byte(`{"version":3}`), 1)
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if rev != 2 {
		t.Errorf("second Save revision = %d, want 2", rev)
	}

	if _, err := s.Save(ctx, key, []byte(`{"version":4}`), 1); !errors.Is(err, ErrStaleRevision) {
		t.Errorf("stale Save: got %v, want ErrStaleRevision", err)
	}

	rec, err := s.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Revision != 2 {
		t.Errorf("Revision = %d, want 2", rec.Revision)
	}
	if string(rec.Payload) != `{"version":3}` {
		t.Errorf("Payload = %s, want the second write", rec.Payload)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s, DefaultLedgerKey)
}

func TestMemoryStore_PayloadIsCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	payload := []byte("abc")
	if _, err := s.Save(ctx, "k", payload, 0); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'x'
	rec, _ := s.Load(ctx, "k")
	if string(rec.Payload) != "abc" {
		t.Errorf("stored payload mutated through caller slice: %s", rec.Payload)
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Load(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load: got %v, want context.Canceled", err)
	}
	if _, err := s.Save(ctx, "k", nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Save: got %v, want context.Canceled", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "budget.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s, DefaultLedgerKey)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if _, err := s.Save(context.Background(), "k", []byte("persisted"), 0); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Migrations must be idempotent on an existing file
	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	rec, err := s.Load(context.Background(), "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(rec.Payload) != "persisted" || rec.Revision != 1 {
		t.Errorf("got %q rev %d", rec.Payload, rec.Revision)
	}
}

func TestMigrateLedgerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")

	for _, pass := range []string{"fresh file", "already migrated"} {
		t.Run(pass, func(t *testing.T) {
			v, err := MigrateLedgerSchema(dbPath)
			if err != nil {
				t.Fatalf("MigrateLedgerSchema: %v", err)
			}
			if v != (SchemaVersion{Version: 1}) {
				t.Errorf("version = %+v, want 1 clean", v)
			}
		})
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('ledger_records', ?)`,
		ledgerSchemaTable).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("found %d of ledger_records and %s", n, ledgerSchemaTable)
	}
}

func TestMigrateLedgerSchema_Dirty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")
	if _, err := MigrateLedgerSchema(dbPath); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE ` + ledgerSchemaTable + ` SET dirty = 1`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := NewSQLiteStore(dbPath); !errors.Is(err, ErrDirtySchema) {
		t.Fatalf("NewSQLiteStore on dirty schema: got %v, want ErrDirtySchema", err)
	}
}

// Postgres runs only against a disposable database.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("HOUSEBUDGET_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HOUSEBUDGET_TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStore(context.Background(), url)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s, fmt.Sprintf("test-%d", time.Now().UnixNano()))
}
