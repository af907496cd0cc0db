package backend

import (
	"context"

	"cuotas/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the snapshot store instance and optional cleanup function
type Result struct {
	Store   store.SnapshotStore
	Cleanup CleanupFunc
}

// Factory creates snapshot stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation
type Config struct {
	// Backend type
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
}

// Type represents the type of snapshot store backend
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
