package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, amount_cents, description, category, type, date, payment_method,
	is_recurrent, recurrence_type, recurring_from, card_id, details, version, sync_status,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var t Transaction
	err := row.Scan(
		&t.ID, &t.AmountCents, &t.Description, &t.Category, &t.Type, &t.Date, &t.PaymentMethod,
		&t.IsRecurrent, &t.RecurrenceType, &t.RecurringFrom, &t.CardID, &t.Details, &t.Version, &t.SyncStatus,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
ORDER BY date DESC, rowid DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions
WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const upsertTransaction = `INSERT INTO transactions (
	id, amount_cents, description, category, type, date, payment_method,
	is_recurrent, recurrence_type, recurring_from, card_id, details
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	amount_cents = excluded.amount_cents,
	description = excluded.description,
	category = excluded.category,
	type = excluded.type,
	date = excluded.date,
	payment_method = excluded.payment_method,
	is_recurrent = excluded.is_recurrent,
	recurrence_type = excluded.recurrence_type,
	recurring_from = excluded.recurring_from,
	card_id = excluded.card_id,
	details = excluded.details,
	version = transactions.version + 1,
	sync_status = 'pending',
	updated_at = CURRENT_TIMESTAMP
RETURNING version`

type UpsertTransactionParams struct {
	ID             string
	AmountCents    int64
	Description    string
	Category       string
	Type           string
	Date           string
	PaymentMethod  string
	IsRecurrent    bool
	RecurrenceType string
	RecurringFrom  string
	CardID         string
	Details        string
}

// UpsertTransaction returns the row version after the write.
func (q *Queries) UpsertTransaction(ctx context.Context, arg UpsertTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertTransaction,
		arg.ID, arg.AmountCents, arg.Description, arg.Category, arg.Type, arg.Date, arg.PaymentMethod,
		arg.IsRecurrent, arg.RecurrenceType, arg.RecurringFrom, arg.CardID, arg.Details,
	)
	var version int64
	err := row.Scan(&version)
	return version, err
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPendingSyncTransactions = `SELECT id, version, created_at
FROM transactions
WHERE sync_status IN ('pending', 'error')
ORDER BY created_at ASC
LIMIT ?`

type GetPendingSyncTransactionsRow struct {
	ID        string
	Version   int64
	CreatedAt time.Time
}

func (q *Queries) GetPendingSyncTransactions(ctx context.Context, limit int64) ([]GetPendingSyncTransactionsRow, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetPendingSyncTransactionsRow
	for rows.Next() {
		var i GetPendingSyncTransactionsRow
		if err := rows.Scan(&i.ID, &i.Version, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const markTransactionSynced = `UPDATE transactions SET sync_status = 'synced' WHERE id = ? AND version = ?`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id string, version int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id, version)
	return err
}

const markTransactionSyncError = `UPDATE transactions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}

const listCategories = `SELECT id, name, icon_name, color, type FROM categories ORDER BY rowid`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.IconName, &i.Color, &i.Type); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertCategory = `INSERT INTO categories (id, name, icon_name, color, type) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	icon_name = excluded.icon_name,
	color = excluded.color,
	type = excluded.type`

func (q *Queries) UpsertCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, upsertCategory, arg.ID, arg.Name, arg.IconName, arg.Color, arg.Type)
	return err
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const goalColumns = `id, name, target_amount_cents, current_amount_cents, deadline, monthly_allocation_cents, icon`

func scanGoal(row rowScanner) (Goal, error) {
	var g Goal
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmountCents, &g.CurrentAmountCents, &g.Deadline, &g.MonthlyAllocationCents, &g.Icon)
	return g, err
}

const listGoals = `SELECT ` + goalColumns + ` FROM goals ORDER BY rowid`

func (q *Queries) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const getGoal = `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`

func (q *Queries) GetGoal(ctx context.Context, id string) (Goal, error) {
	return scanGoal(q.db.QueryRowContext(ctx, getGoal, id))
}

const upsertGoal = `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	target_amount_cents = excluded.target_amount_cents,
	current_amount_cents = excluded.current_amount_cents,
	deadline = excluded.deadline,
	monthly_allocation_cents = excluded.monthly_allocation_cents,
	icon = excluded.icon`

func (q *Queries) UpsertGoal(ctx context.Context, arg Goal) error {
	_, err := q.db.ExecContext(ctx, upsertGoal,
		arg.ID, arg.Name, arg.TargetAmountCents, arg.CurrentAmountCents, arg.Deadline, arg.MonthlyAllocationCents, arg.Icon)
	return err
}

const deleteGoal = `DELETE FROM goals WHERE id = ?`

func (q *Queries) DeleteGoal(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteGoal, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const cardColumns = `id, name, bank, limit_cents, used_cents, closing_day, due_day, color`

func scanCard(row rowScanner) (CreditCard, error) {
	var c CreditCard
	err := row.Scan(&c.ID, &c.Name, &c.Bank, &c.LimitCents, &c.UsedCents, &c.ClosingDay, &c.DueDay, &c.Color)
	return c, err
}

const listCards = `SELECT ` + cardColumns + ` FROM credit_cards ORDER BY rowid`

func (q *Queries) ListCards(ctx context.Context) ([]CreditCard, error) {
	rows, err := q.db.QueryContext(ctx, listCards)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCard = `SELECT ` + cardColumns + ` FROM credit_cards WHERE id = ?`

func (q *Queries) GetCard(ctx context.Context, id string) (CreditCard, error) {
	return scanCard(q.db.QueryRowContext(ctx, getCard, id))
}

const upsertCard = `INSERT INTO credit_cards (` + cardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	bank = excluded.bank,
	limit_cents = excluded.limit_cents,
	used_cents = excluded.used_cents,
	closing_day = excluded.closing_day,
	due_day = excluded.due_day,
	color = excluded.color`

func (q *Queries) UpsertCard(ctx context.Context, arg CreditCard) error {
	_, err := q.db.ExecContext(ctx, upsertCard,
		arg.ID, arg.Name, arg.Bank, arg.LimitCents, arg.UsedCents, arg.ClosingDay, arg.DueDay, arg.Color)
	return err
}

const deleteCard = `DELETE FROM credit_cards WHERE id = ?`

func (q *Queries) DeleteCard(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCard, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getProfile = `SELECT name, email, avatar, monthly_income_limit_cents, member_since FROM profiles WHERE id = 1`

func (q *Queries) GetProfile(ctx context.Context) (Profile, error) {
	var p Profile
	err := q.db.QueryRowContext(ctx, getProfile).Scan(&p.Name, &p.Email, &p.Avatar, &p.MonthlyIncomeLimitCents, &p.MemberSince)
	return p, err
}

const upsertProfile = `INSERT INTO profiles (id, name, email, avatar, monthly_income_limit_cents, member_since)
VALUES (1, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	email = excluded.email,
	avatar = excluded.avatar,
	monthly_income_limit_cents = excluded.monthly_income_limit_cents,
	member_since = excluded.member_since`

func (q *Queries) UpsertProfile(ctx context.Context, arg Profile) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, arg.Name, arg.Email, arg.Avatar, arg.MonthlyIncomeLimitCents, arg.MemberSince)
	return err
}
