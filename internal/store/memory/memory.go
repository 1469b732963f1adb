// Package memory is a key-value blob store: every collection lives in memory
// and, when a directory is configured, is written wholesale to its own JSON
// file after each change.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fincontrol/internal/core"
	"fincontrol/internal/ports"
)

// Blob keys, one file per collection.
const (
	KeyTransactions = "fc_transactions"
	KeyCategories   = "fc_categories"
	KeyGoals        = "fc_goals"
	KeyCards        = "fc_cards"
	KeyProfile      = "fc_profile"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	dir     string
	txs     []core.Transaction
	cats    []core.Category
	goals   []core.Goal
	cards   []core.CreditCard
	profile core.UserProfile
}

// New returns a store that keeps everything in memory only.
func New() *Store {
	return &Store{cats: core.DefaultCategories(), profile: core.DefaultProfile()}
}

// NewFromDir loads the collections stored in dir. Missing files fall back to
// the default categories and profile. The directory is created if needed.
func NewFromDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s := New()
	s.dir = dir
	loads := []struct {
		key string
		dst any
	}{
		{KeyTransactions, &s.txs},
		{KeyCategories, &s.cats},
		{KeyGoals, &s.goals},
		{KeyCards, &s.cards},
		{KeyProfile, &s.profile},
	}
	for _, l := range loads {
		if err := s.load(l.key, l.dst); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, ports.ErrNotFound
}

// SaveTransaction overwrites an existing transaction in place or puts a new
// one in front, so the stored list stays newest first.
func (s *Store) SaveTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []core.Transaction
	if i := indexOf(s.txs, tx.ID, func(t core.Transaction) string { return t.ID }); i >= 0 {
		next = replaced(s.txs, i, tx)
	} else {
		next = append([]core.Transaction{tx}, s.txs...)
	}
	if err := s.persist(KeyTransactions, next); err != nil {
		return err
	}
	s.txs = next
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.txs, id, func(t core.Transaction) string { return t.ID })
	if i < 0 {
		return ports.ErrNotFound
	}
	next := append(s.txs[:i:i], s.txs[i+1:]...)
	if err := s.persist(KeyTransactions, next); err != nil {
		return err
	}
	s.txs = next
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) SaveCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []core.Category
	if i := indexOf(s.cats, c.ID, func(c core.Category) string { return c.ID }); i >= 0 {
		next = replaced(s.cats, i, c)
	} else {
		next = append(s.cats[:len(s.cats):len(s.cats)], c)
	}
	if err := s.persist(KeyCategories, next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

// DeleteCategory removes the category only; transactions keep its name.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.cats, id, func(c core.Category) string { return c.ID })
	if i < 0 {
		return ports.ErrNotFound
	}
	next := append(s.cats[:i:i], s.cats[i+1:]...)
	if err := s.persist(KeyCategories, next); err != nil {
		return err
	}
	s.cats = next
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.goals, id, func(g core.Goal) string { return g.ID }); i >= 0 {
		return s.goals[i], nil
	}
	return core.Goal{}, ports.ErrNotFound
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []core.Goal
	if i := indexOf(s.goals, g.ID, func(g core.Goal) string { return g.ID }); i >= 0 {
		next = replaced(s.goals, i, g)
	} else {
		next = append(s.goals[:len(s.goals):len(s.goals)], g)
	}
	if err := s.persist(KeyGoals, next); err != nil {
		return err
	}
	s.goals = next
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.goals, id, func(g core.Goal) string { return g.ID })
	if i < 0 {
		return ports.ErrNotFound
	}
	next := append(s.goals[:i:i], s.goals[i+1:]...)
	if err := s.persist(KeyGoals, next); err != nil {
		return err
	}
	s.goals = next
	return nil
}

func (s *Store) ListCards(_ context.Context) ([]core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditCard(nil), s.cards...), nil
}

func (s *Store) GetCard(_ context.Context, id string) (core.CreditCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.cards, id, func(c core.CreditCard) string { return c.ID }); i >= 0 {
		return s.cards[i], nil
	}
	return core.CreditCard{}, ports.ErrNotFound
}

func (s *Store) SaveCard(_ context.Context, c core.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var next []core.CreditCard
	if i := indexOf(s.cards, c.ID, func(c core.CreditCard) string { return c.ID }); i >= 0 {
		next = replaced(s.cards, i, c)
	} else {
		next = append(s.cards[:len(s.cards):len(s.cards)], c)
	}
	if err := s.persist(KeyCards, next); err != nil {
		return err
	}
	s.cards = next
	return nil
}

func (s *Store) DeleteCard(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.cards, id, func(c core.CreditCard) string { return c.ID })
	if i < 0 {
		return ports.ErrNotFound
	}
	next := append(s.cards[:i:i], s.cards[i+1:]...)
	if err := s.persist(KeyCards, next); err != nil {
		return err
	}
	s.cards = next
	return nil
}

func (s *Store) GetProfile(_ context.Context) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(KeyProfile, p); err != nil {
		return err
	}
	s.profile = p
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) load(key string, dst any) error {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist writes the whole collection under key. Callers hold s.mu and
// publish the new collection only after it succeeds.
func (s *Store) persist(key string, v any) error {
	if s.dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// replaced returns a copy of items with items[i] set to v.
func replaced[T any](items []T, i int, v T) []T {
	next := append([]T(nil), items...)
	next[i] = v
	return next
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}
