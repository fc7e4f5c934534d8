package backend

import (
	"context"

	"housebudget/internal/amqp"
	"housebudget/internal/ledger"
	"housebudget/internal/sheets"
	"housebudget/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult bundles the adapters a process needs around the ledger
// service and the function that releases them.
type BackendResult struct {
	Store storage.RecordStore
	// Events is nil when no broker is configured or reachable.
	Events  *amqp.Client
	Reports sheets.ReportWriter
	Cleanup CleanupFunc
}

// Publisher returns Events as a ledger publisher, or nil without a broker.
func (r *BackendResult) Publisher() ledger.EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// Optional event broker
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Optional spreadsheet mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
