package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fincontrol/internal/core"
	"fincontrol/internal/metrics"
	"fincontrol/internal/ports"

	"github.com/google/uuid"
)

// ErrExtractorUnavailable is returned when details text is submitted but no
// extractor is configured.
var ErrExtractorUnavailable = errors.New("line-item extraction not configured")

// ErrExtraction wraps failures of the extraction collaborator.
var ErrExtraction = errors.New("line-item extraction failed")

// SyncPublisher announces local transaction changes to the sync worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

// versionedStore is implemented by stores that keep a per-row version for
// the sync worker.
type versionedStore interface {
	SaveTransactionVersioned(ctx context.Context, tx core.Transaction) (int64, error)
}

// TransactionInput is a transaction as submitted by a caller. DetailsText,
// when set, is sent to the extractor and replaces Details.
type TransactionInput struct {
	core.Transaction
	DetailsText string `json:"detailsText,omitempty"`
}

// TransactionService orchestrates transaction writes: validation, optional
// line-item extraction, card usage refresh and sync publishing.
type TransactionService struct {
	store     ports.Store
	extractor ports.Extractor
	publisher SyncPublisher
	onChange  func()
}

// TransactionOption configures a TransactionService.
type TransactionOption func(*TransactionService)

func WithExtractor(e ports.Extractor) TransactionOption {
	return func(s *TransactionService) { s.extractor = e }
}

func WithPublisher(p SyncPublisher) TransactionOption {
	return func(s *TransactionService) { s.publisher = p }
}

// WithChangeHook registers fn to run after every successful write.
func WithChangeHook(fn func()) TransactionOption {
	return func(s *TransactionService) { s.onChange = fn }
}

func NewTransactionService(store ports.Store, opts ...TransactionOption) *TransactionService {
	s := &TransactionService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Search returns the transactions matching term grouped by date, newest
// first. An empty term matches everything.
func (s *TransactionService) Search(ctx context.Context, term string) ([]metrics.DayGroup, error) {
	txs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return metrics.GroupByDate(metrics.Search(txs, term)), nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Create assigns an ID when missing, extracts line items from DetailsText
// and saves the transaction.
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx := in.Transaction
	if strings.TrimSpace(tx.ID) == "" {
		tx.ID = uuid.NewString()
	}
	if !tx.Recurrent {
		tx.Recurrence = ""
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if strings.TrimSpace(in.DetailsText) != "" {
		items, err := s.Extract(ctx, in.DetailsText)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Details = items
	}
	if err := s.save(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"type", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"details", len(tx.Details))
	return tx, nil
}

// Update overwrites an existing transaction.
func (s *TransactionService) Update(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	if _, err := s.store.GetTransaction(ctx, in.ID); err != nil {
		return core.Transaction{}, err
	}
	tx := in.Transaction
	if !tx.Recurrent {
		tx.Recurrence = ""
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if strings.TrimSpace(in.DetailsText) != "" {
		items, err := s.Extract(ctx, in.DetailsText)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Details = items
	}
	if err := s.save(ctx, tx); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID)
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetTransaction(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
		}
	}
	s.refreshCards(ctx)
	s.changed()
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// Extract runs the extractor on text.
func (s *TransactionService) Extract(ctx context.Context, text string) ([]core.LineItem, error) {
	if s.extractor == nil {
		return nil, ErrExtractorUnavailable
	}
	items, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return items, nil
}

func (s *TransactionService) save(ctx context.Context, tx core.Transaction) error {
	var version int64 = 1
	if vs, ok := s.store.(versionedStore); ok {
		v, err := vs.SaveTransactionVersioned(ctx, tx)
		if err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		version = v
	} else if err := s.store.SaveTransaction(ctx, tx); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, tx.ID, version); err != nil {
			// The local write succeeded; the sync poller picks the row up later.
			slog.ErrorContext(ctx, "Failed to publish sync message", "id", tx.ID, "version", version, "error", err)
		}
	}
	s.refreshCards(ctx)
	s.changed()
	return nil
}

// refreshCards recomputes the used amount of every card from the credit
// expenses tagged with it. Failures are logged; the transaction write has
// already succeeded.
func (s *TransactionService) refreshCards(ctx context.Context) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list cards for usage refresh", "error", err)
		return
	}
	if len(cards) == 0 {
		return
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to list transactions for usage refresh", "error", err)
		return
	}
	for i, card := range metrics.ReconcileCards(cards, txs) {
		if card.Used == cards[i].Used {
			continue
		}
		if err := s.store.SaveCard(ctx, card); err != nil {
			slog.WarnContext(ctx, "Failed to save card usage", "card_id", card.ID, "error", err)
		}
	}
}

func (s *TransactionService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
