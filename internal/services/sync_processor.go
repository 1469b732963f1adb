package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
	"fincontrol/internal/storage"
)

// SyncSource is the local store side of synchronization: rows carry a
// version and a sync status.
type SyncSource interface {
	GetPendingSyncTransactions(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	GetTransactionVersion(ctx context.Context, id string) (core.Transaction, int64, error)
	MarkSynced(ctx context.Context, id string, version int64) error
	MarkSyncError(ctx context.Context, id string) error
}

var _ SyncSource = (*storage.SQLiteRepository)(nil)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending rows (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of rows mirrored per poll (default: 10)
	BatchSize int
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    10,
	}
}

// SyncProcessor mirrors pending local transactions to the remote store. It
// backs up the message-driven worker: rows whose message was lost or whose
// sync failed are retried on every poll.
type SyncProcessor struct {
	source SyncSource
	mirror ports.TransactionMirror
	config SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(source SyncSource, mirror ports.TransactionMirror, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSyncProcessorConfig().BatchSize
	}
	return &SyncProcessor{source: source, mirror: mirror, config: config}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop to exit and waits for it or for ctx.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ProcessBatch(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch mirrors one batch of pending rows and returns how many were
// synced.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	pending, err := p.source.GetPendingSyncTransactions(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch pending transactions", "error", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}
	slog.DebugContext(ctx, "Processing sync batch", "count", len(pending))

	synced := 0
	for _, item := range pending {
		if ctx.Err() != nil {
			return synced
		}
		if err := p.SyncTransaction(ctx, item.ID, item.Version); err != nil {
			slog.WarnContext(ctx, "Sync failed", "id", item.ID, "version", item.Version, "error", err)
			continue
		}
		synced++
	}
	return synced
}

// SyncTransaction mirrors one transaction. Stale versions are skipped: a
// newer write has its own message or poll.
func (p *SyncProcessor) SyncTransaction(ctx context.Context, id string, version int64) error {
	tx, current, err := p.source.GetTransactionVersion(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction gone before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}
	if version > 0 && current > version {
		slog.DebugContext(ctx, "Skipping stale sync request", "id", id, "version", version, "current", current)
		return nil
	}

	if err := p.mirror.SaveTransaction(ctx, tx); err != nil {
		if markErr := p.source.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("mirror transaction %s: %w", id, err)
	}
	if err := p.source.MarkSynced(ctx, id, current); err != nil {
		slog.WarnContext(ctx, "Failed to mark transaction synced", "id", id, "error", err)
	}
	slog.InfoContext(ctx, "Transaction mirrored", "id", id, "version", current)
	return nil
}

// DeleteTransaction removes a transaction from the mirror. A row already
// absent there counts as deleted.
func (p *SyncProcessor) DeleteTransaction(ctx context.Context, id string) error {
	if err := p.mirror.DeleteTransaction(ctx, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("delete mirrored transaction %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Mirrored transaction deleted", "id", id)
	return nil
}
