package testutil

import (
	"context"
	"testing"
)

// Lifecycle is anything with a start and stop step, such as an engine.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// THelper provides testing.T integration for fixture setup.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T to provide helper methods.
func T(t *testing.T) *THelper {
	t.Helper()
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to Start and Stop.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Start starts c and stops it when the test ends.
func (h *THelper) Start(c Lifecycle) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("start: %v", err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("stop: %v", err)
		}
	})
}
