package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/storage"
	"fincontrol/internal/store/memory"
)

var errDown = errors.New("backend down")

type brokenStore struct {
	*memory.Store
}

func (brokenStore) ListCategories(context.Context) ([]core.Category, error) {
	return nil, errDown
}

func TestReadinessCheck(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ready.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	tests := []struct {
		name    string
		check   *ReadinessCheck
		wantErr error
	}{
		{name: "memory store", check: NewReadinessCheck(memory.New(), 0)},
		{name: "sqlite store pings", check: NewReadinessCheck(repo, time.Second)},
		{name: "failing probe", check: NewReadinessCheck(brokenStore{memory.New()}, time.Second), wantErr: errDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check.Ready(context.Background())
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Ready() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Ready() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadinessCheckClosedDatabase(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	repo.Close()

	if err := NewReadinessCheck(repo, time.Second).Ready(context.Background()); err == nil {
		t.Error("expected error for closed database")
	}
}
