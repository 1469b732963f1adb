package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fincontrol/internal/cache"
	"fincontrol/internal/core"
	"fincontrol/internal/metrics"
	"fincontrol/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Analysis is the month-by-month view with its extremes.
type Analysis struct {
	Months []metrics.Bucket `json:"months"`
	Best   *metrics.Bucket  `json:"best,omitempty"`
	Worst  *metrics.Bucket  `json:"worst,omitempty"`
	Totals metrics.Totals   `json:"totals"`
}

// DashboardService loads a snapshot of every collection and derives the
// dashboard from it. Results are cached per option set until Invalidate is
// called or the TTL passes.
type DashboardService struct {
	store   ports.Store
	opts    metrics.Options
	cache   *cache.LRUCache[metrics.Dashboard]
	cleaner *cache.Manager
	now     func() time.Time

	// generation is bumped by Invalidate. A dashboard is cached only if no
	// invalidation happened while it was being computed.
	generation atomic.Uint64
}

const dashboardCacheSize = 32

// NewDashboardService creates the service. A non-positive ttl disables
// caching.
func NewDashboardService(store ports.Store, opts metrics.Options, ttl time.Duration) *DashboardService {
	s := &DashboardService{store: store, opts: opts, now: time.Now}
	if ttl > 0 {
		s.cache = cache.NewLRUCache[metrics.Dashboard](dashboardCacheSize, ttl)
		s.cleaner = cache.NewManager()
		s.cleaner.Register(s.cache)
		s.cleaner.StartCleanup(ttl)
	}
	return s
}

// Snapshot reads all five collections concurrently.
func (s *DashboardService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		cats, err := s.store.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})
	g.Go(func() error {
		goals, err := s.store.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		snap.Goals = goals
		return nil
	})
	g.Go(func() error {
		cards, err := s.store.ListCards(gctx)
		if err != nil {
			return fmt.Errorf("list cards: %w", err)
		}
		snap.Cards = cards
		return nil
	})
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		snap.Profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// Dashboard returns the dashboard for the given overrides. Zero fields in
// override fall back to the service options.
func (s *DashboardService) Dashboard(ctx context.Context, override metrics.Options) (metrics.Dashboard, error) {
	opts := s.merge(override)
	key := fmt.Sprintf("%d/%d/%d/%s", opts.Months, opts.Top, opts.Recent, core.NormalizeName(opts.ReserveCategory))
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}

	gen := s.generation.Load()
	start := time.Now()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return metrics.Dashboard{}, err
	}
	d := metrics.BuildDashboard(snap, s.now(), opts)
	if s.cache != nil && s.generation.Load() == gen {
		s.cache.Set(key, d)
	}
	slog.DebugContext(ctx, "Dashboard computed",
		"transactions", len(snap.Transactions),
		"months", opts.Months,
		"elapsed", time.Since(start))
	return d, nil
}

// Analysis buckets the last months of transactions and picks the best and
// worst month by balance.
func (s *DashboardService) Analysis(ctx context.Context, months int) (Analysis, error) {
	if months <= 0 {
		months = s.merge(metrics.Options{}).Months
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return Analysis{}, fmt.Errorf("list transactions: %w", err)
	}
	buckets := metrics.WindowBuckets(txs, s.now(), months)
	a := Analysis{Months: buckets, Totals: metrics.ComputeTotals(txs)}
	if best, ok := metrics.BestMonth(buckets); ok {
		a.Best = &best
	}
	if worst, ok := metrics.WorstMonth(buckets); ok {
		a.Worst = &worst
	}
	return a, nil
}

// Invalidate drops cached dashboards. It is safe to call on a service
// without a cache.
func (s *DashboardService) Invalidate() {
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Close stops the cache sweeper.
func (s *DashboardService) Close() {
	if s.cleaner != nil {
		s.cleaner.Stop()
		s.cleaner = nil
	}
}

func (s *DashboardService) merge(o metrics.Options) metrics.Options {
	base := s.opts
	if o.Months > 0 {
		base.Months = o.Months
	}
	if o.Top > 0 {
		base.Top = o.Top
	}
	if o.Recent > 0 {
		base.Recent = o.Recent
	}
	if o.ReserveCategory != "" {
		base.ReserveCategory = o.ReserveCategory
	}
	if base.Months <= 0 {
		base.Months = metrics.DefaultOptions.Months
	}
	if base.Top <= 0 {
		base.Top = metrics.DefaultOptions.Top
	}
	if base.Recent <= 0 {
		base.Recent = metrics.DefaultOptions.Recent
	}
	if base.ReserveCategory == "" {
		base.ReserveCategory = metrics.DefaultOptions.ReserveCategory
	}
	return base
}
