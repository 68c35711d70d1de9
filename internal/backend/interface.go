package backend

import (
	"context"

	"debtflow/internal/amqp"
	"debtflow/internal/ledger"
	"debtflow/internal/storage"
)

// CleanupFunc releases resources a backend holds.
type CleanupFunc func() error

// BackendResult bundles everything the HTTP layer needs from a backend.
// Records and Publisher are nil for backends that don't support them.
type BackendResult struct {
	Store   ledger.Store
	Records *storage.SQLiteRepository
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
