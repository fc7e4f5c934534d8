package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ledgerSchemaTable holds migrate's version row, kept apart from any other
// schema sharing the sqlite file.
const ledgerSchemaTable = "ledger_schema_migrations"

// ErrDirtySchema means an earlier ledger migration stopped halfway. The file
// needs a manual fix before the store can open it.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// SchemaVersion is the ledger migration a database ended on.
type SchemaVersion struct {
	Version uint
	Dirty   bool
}

// MigrateLedgerSchema applies pending ledger_records migrations to the
// sqlite file at dbPath and reports where the schema ended up.
func MigrateLedgerSchema(dbPath string) (SchemaVersion, error) {
	// Own connection: migrate closes it without touching the store's pool
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("open %s for migration: %w", dbPath, err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: ledgerSchemaTable})
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("ledger schema driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("ledger migrations source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("ledger migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return SchemaVersion{Version: uint(dirty.Version), Dirty: true},
				fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
		}
		return SchemaVersion{}, fmt.Errorf("apply ledger migrations: %w", err)
	}

	version, isDirty, err := m.Version()
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read ledger schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: isDirty}, nil
}
