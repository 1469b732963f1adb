package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fincontrol/internal/core"
	"fincontrol/internal/metrics"
	"fincontrol/internal/ports"

	"github.com/google/uuid"
)

// CatalogService manages the records transactions refer to: categories,
// credit cards, goals and the user profile.
type CatalogService struct {
	store    ports.Store
	onChange func()
	now      func() time.Time
}

func NewCatalogService(store ports.Store, onChange func()) *CatalogService {
	return &CatalogService{store: store, onChange: onChange, now: time.Now}
}

func (s *CatalogService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *CatalogService) Categories(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// SaveCategory creates or replaces a category. Transactions keep referring
// to categories by name, so renaming one does not relabel them.
func (s *CatalogService) SaveCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}
	if err := s.store.SaveCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Category saved", "id", c.ID, "name", c.Name, "type", c.Kind)
	return c, nil
}

// DeleteCategory removes a category. Transactions that use its name are
// left untouched.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.changed()
	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (s *CatalogService) Cards(ctx context.Context) ([]core.CreditCard, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// SaveCard creates or replaces a card. Its used amount is derived from the
// credit expenses tagged with it, never taken from the caller.
func (s *CatalogService) SaveCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = uuid.NewString()
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("list transactions: %w", err)
	}
	c.Used = metrics.DerivedCardUsage(c, txs)
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, fmt.Errorf("validate card: %w", err)
	}
	if err := s.store.SaveCard(ctx, c); err != nil {
		return core.CreditCard{}, fmt.Errorf("save card: %w", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Card saved", "id", c.ID, "name", c.Name, "limit_cents", c.Limit.Cents)
	return c, nil
}

func (s *CatalogService) DeleteCard(ctx context.Context, id string) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return err
	}
	s.changed()
	slog.InfoContext(ctx, "Card deleted", "id", id)
	return nil
}

func (s *CatalogService) Goals(ctx context.Context) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *CatalogService) SaveGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if strings.TrimSpace(g.ID) == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Goal saved", "id", g.ID, "name", g.Name, "target_cents", g.Target.Cents)
	return g, nil
}

func (s *CatalogService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.changed()
	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// Deposit adds amount to a goal's current amount and returns the goal with
// its recomputed progress.
func (s *CatalogService) Deposit(ctx context.Context, id string, amount core.Money) (metrics.GoalProgress, error) {
	g, err := s.store.GetGoal(ctx, id)
	if err != nil {
		return metrics.GoalProgress{}, err
	}
	g, err = metrics.Deposit(g, amount)
	if err != nil {
		return metrics.GoalProgress{}, fmt.Errorf("deposit: %w", err)
	}
	if err := s.store.SaveGoal(ctx, g); err != nil {
		return metrics.GoalProgress{}, fmt.Errorf("save goal: %w", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Goal deposit",
		"id", g.ID,
		"amount_cents", amount.Cents,
		"current_cents", g.Current.Cents)
	return metrics.Progress(g, s.now()), nil
}

func (s *CatalogService) Profile(ctx context.Context) (core.UserProfile, error) {
	p, err := s.store.GetProfile(ctx)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *CatalogService) SaveProfile(ctx context.Context, p core.UserProfile) (core.UserProfile, error) {
	if p.MonthlyIncomeLimit.Cents < 0 {
		return core.UserProfile{}, core.ErrInvalidAmount
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return core.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	s.changed()
	slog.InfoContext(ctx, "Profile saved", "monthly_limit_cents", p.MonthlyIncomeLimit.Cents)
	return p, nil
}
