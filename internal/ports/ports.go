// Package ports declares the collaborators the application talks to: record
// stores, the remote mirror used by the sync worker and the line-item
// extractor.
package ports

import (
	"context"
	"errors"

	"fincontrol/internal/core"
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// SaveTransaction creates the transaction or overwrites the one with
		// the same ID.
		SaveTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	// CategoryStore deletes categories without touching transactions that
	// reference them by name.
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		SaveCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		SaveGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, id string) error
	}

	CardStore interface {
		ListCards(ctx context.Context) ([]core.CreditCard, error)
		GetCard(ctx context.Context, id string) (core.CreditCard, error)
		SaveCard(ctx context.Context, c core.CreditCard) error
		DeleteCard(ctx context.Context, id string) error
	}

	ProfileStore interface {
		GetProfile(ctx context.Context) (core.UserProfile, error)
		SaveProfile(ctx context.Context, p core.UserProfile) error
	}

	// Store is the full persistence collaborator.
	Store interface {
		TransactionStore
		CategoryStore
		GoalStore
		CardStore
		ProfileStore
	}

	// TransactionMirror receives transaction changes replicated from the
	// primary store.
	TransactionMirror interface {
		SaveTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	// Extractor turns free text into itemized line items.
	Extractor interface {
		Extract(ctx context.Context, text string) ([]core.LineItem, error)
	}
)
