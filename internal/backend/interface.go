package backend

import (
	"context"

	"fincontrol/internal/ports"
	"fincontrol/internal/storage"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is a ready-to-use store. SQLite is set only for the sqlite backend
// and carries the per-row sync versions used by the mirror workers.
type Result struct {
	Type    BackendType
	Store   ports.Store
	SQLite  *storage.SQLiteRepository
	Cleanup CleanupFunc
}

// Close runs Cleanup when present.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// IsShared reports whether separate processes opening this backend see the
// same data. The memory backend lives inside the API process.
func (bt BackendType) IsShared() bool {
	return bt == SQLiteBackend || bt == SheetsBackend
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, SheetsBackend}
}
