package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// PendingSyncTransaction is the minimal data needed to enqueue a sync message.
type PendingSyncTransaction struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionFromRow(ctx, row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return transactionFromRow(ctx, row), nil
}

// SaveTransaction implements ports.TransactionStore.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := r.SaveTransactionVersioned(ctx, tx)
	return err
}

// SaveTransactionVersioned upserts the transaction, marks it pending sync and
// returns its new version.
func (r *SQLiteRepository) SaveTransactionVersioned(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	details := []byte("[]")
	if len(tx.Details) > 0 {
		var err error
		if details, err = json.Marshal(tx.Details); err != nil {
			return 0, fmt.Errorf("encode details: %w", err)
		}
	}
	version, err := r.queries.UpsertTransaction(ctx, UpsertTransactionParams{
		ID:             tx.ID,
		AmountCents:    tx.Amount.Cents,
		Description:    tx.Description,
		Category:       tx.Category,
		Type:           string(tx.Kind),
		Date:           tx.Date,
		PaymentMethod:  string(tx.Method),
		IsRecurrent:    tx.Recurrent,
		RecurrenceType: string(tx.Recurrence),
		RecurringFrom:  tx.RecurringFrom,
		CardID:         tx.CardID,
		Details:        string(details),
	})
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"version", version,
		"type", tx.Kind,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date)

	return version, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// GetPendingSyncTransactions returns transactions not yet mirrored remotely.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.queries.GetPendingSyncTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	out := make([]PendingSyncTransaction, len(rows))
	for i, row := range rows {
		out[i] = PendingSyncTransaction{ID: row.ID, Version: row.Version, CreatedAt: row.CreatedAt}
	}
	return out, nil
}

// GetTransactionVersion returns the transaction together with its version.
func (r *SQLiteRepository) GetTransactionVersion(ctx context.Context, id string) (core.Transaction, int64, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, 0, ports.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, 0, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return transactionFromRow(ctx, row), row.Version, nil
}

// MarkSynced marks the given version as mirrored. A newer version written in
// the meantime stays pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id, version); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id, "version", version)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{ID: c.ID, Name: c.Name, Icon: c.IconName, Color: c.Color, Kind: core.Kind(c.Type)}
	}
	return out, nil
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertCategory(ctx, Category{ID: c.ID, Name: c.Name, IconName: c.Icon, Color: c.Color, Type: string(c.Kind)})
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category row. Transactions reference categories
// by name and are left untouched.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, len(rows))
	for i, g := range rows {
		out[i] = goalFromRow(g)
	}
	return out, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	g, err := r.queries.GetGoal(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	return goalFromRow(g), nil
}

func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertGoal(ctx, Goal{
		ID:                     g.ID,
		Name:                   g.Name,
		TargetAmountCents:      g.Target.Cents,
		CurrentAmountCents:     g.Current.Cents,
		Deadline:               g.Deadline,
		MonthlyAllocationCents: g.MonthlyAllocation.Cents,
		Icon:                   g.Icon,
	})
	if err != nil {
		return fmt.Errorf("save goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	n, err := r.queries.DeleteGoal(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.queries.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	out := make([]core.CreditCard, len(rows))
	for i, c := range rows {
		out[i] = cardFromRow(c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetCard(ctx context.Context, id string) (core.CreditCard, error) {
	c, err := r.queries.GetCard(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, ports.ErrNotFound
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("get card %s: %w", id, err)
	}
	return cardFromRow(c), nil
}

func (r *SQLiteRepository) SaveCard(ctx context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := r.queries.UpsertCard(ctx, CreditCard{
		ID:         c.ID,
		Name:       c.Name,
		Bank:       c.Bank,
		LimitCents: c.Limit.Cents,
		UsedCents:  c.Used.Cents,
		ClosingDay: int64(c.ClosingDay),
		DueDay:     int64(c.DueDay),
		Color:      c.Color,
	})
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, id string) error {
	n, err := r.queries.DeleteCard(ctx, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context) (core.UserProfile, error) {
	p, err := r.queries.GetProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultProfile(), nil
	}
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return core.UserProfile{
		Name:               p.Name,
		Email:              p.Email,
		Avatar:             p.Avatar,
		MonthlyIncomeLimit: core.Money{Cents: p.MonthlyIncomeLimitCents},
		MemberSince:        p.MemberSince,
	}, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.UserProfile) error {
	err := r.queries.UpsertProfile(ctx, Profile{
		Name:                    p.Name,
		Email:                   p.Email,
		Avatar:                  p.Avatar,
		MonthlyIncomeLimitCents: p.MonthlyIncomeLimit.Cents,
		MemberSince:             p.MemberSince,
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func transactionFromRow(ctx context.Context, row Transaction) core.Transaction {
	tx := core.Transaction{
		ID:            row.ID,
		Amount:        core.Money{Cents: row.AmountCents},
		Description:   row.Description,
		Category:      row.Category,
		Kind:          core.Kind(row.Type),
		Date:          row.Date,
		Method:        core.PaymentMethod(row.PaymentMethod),
		Recurrent:     row.IsRecurrent,
		Recurrence:    core.RecurrenceType(row.RecurrenceType),
		RecurringFrom: row.RecurringFrom,
		CardID:        row.CardID,
	}
	if row.Details != "" && row.Details != "[]" {
		if err := json.Unmarshal([]byte(row.Details), &tx.Details); err != nil {
			slog.WarnContext(ctx, "Ignoring unreadable transaction details", "id", row.ID, "error", err)
		}
	}
	return tx
}

func goalFromRow(g Goal) core.Goal {
	return core.Goal{
		ID:                g.ID,
		Name:              g.Name,
		Target:            core.Money{Cents: g.TargetAmountCents},
		Current:           core.Money{Cents: g.CurrentAmountCents},
		Deadline:          g.Deadline,
		MonthlyAllocation: core.Money{Cents: g.MonthlyAllocationCents},
		Icon:              g.Icon,
	}
}

func cardFromRow(c CreditCard) core.CreditCard {
	return core.CreditCard{
		ID:         c.ID,
		Name:       c.Name,
		Bank:       c.Bank,
		Limit:      core.Money{Cents: c.LimitCents},
		Used:       core.Money{Cents: c.UsedCents},
		ClosingDay: int(c.ClosingDay),
		DueDay:     int(c.DueDay),
		Color:      c.Color,
	}
}
