package adapters

import (
	"context"
	"fmt"
	"time"

	"fincontrol/internal/ports"
)

// Pinger is implemented by stores with a cheap liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck adapts a store to the readiness probe used by /readyz.
// Stores without Ping are probed by listing categories, the smallest
// collection every backend keeps.
type ReadinessCheck struct {
	store   ports.Store
	timeout time.Duration
}

func NewReadinessCheck(store ports.Store, timeout time.Duration) *ReadinessCheck {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ReadinessCheck{store: store, timeout: timeout}
}

func (c *ReadinessCheck) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if p, ok := c.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping store: %w", err)
		}
		return nil
	}
	if _, err := c.store.ListCategories(ctx); err != nil {
		return fmt.Errorf("probe store: %w", err)
	}
	return nil
}
