// Package worker consumes transaction sync messages and mirrors local
// changes to the remote spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fincontrol/internal/amqp"
	"fincontrol/internal/ports"
	"fincontrol/internal/services"
)

// startupRounds bounds how many batches StartupSyncCheck drains.
const startupRounds = 5

// SyncWorker handles sync messages from AMQP and recovers rows whose
// message was lost.
type SyncWorker struct {
	processor *services.SyncProcessor
	local     ports.CategoryStore
	remote    ports.CategoryStore
}

var _ amqp.Handler = (*SyncWorker)(nil)

// NewSyncWorker creates a worker. local and remote may be nil, in which case
// categories are not seeded.
func NewSyncWorker(processor *services.SyncProcessor, local, remote ports.CategoryStore) *SyncWorker {
	return &SyncWorker{processor: processor, local: local, remote: remote}
}

// HandleSync mirrors the transaction named by msg.
func (w *SyncWorker) HandleSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "version", msg.Version)
	if err := w.processor.SyncTransaction(ctx, msg.ID, msg.Version); err != nil {
		return fmt.Errorf("sync transaction: %w", err)
	}
	return nil
}

// HandleDelete removes the transaction named by msg from the mirror.
func (w *SyncWorker) HandleDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID, "timestamp", msg.Timestamp)
	if err := w.processor.DeleteTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// StartupSyncCheck drains pending rows left over from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) int {
	total := 0
	for i := 0; i < startupRounds; i++ {
		n := w.processor.ProcessBatch(ctx)
		total += n
		if n == 0 {
			break
		}
	}
	if total == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
	} else {
		slog.InfoContext(ctx, "Startup sync completed", "synced", total)
	}
	return total
}

// SeedRemoteCategories copies the local categories to the remote store when
// the remote has none, so a fresh spreadsheet starts with the same set.
func (w *SyncWorker) SeedRemoteCategories(ctx context.Context) error {
	if w.local == nil || w.remote == nil {
		return nil
	}
	remote, err := w.remote.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list remote categories: %w", err)
	}
	if len(remote) > 0 {
		slog.InfoContext(ctx, "Remote categories present, skipping seed", "count", len(remote))
		return nil
	}
	local, err := w.local.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list local categories: %w", err)
	}
	for _, c := range local {
		if err := w.remote.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	slog.InfoContext(ctx, "Remote categories seeded", "count", len(local))
	return nil
}
