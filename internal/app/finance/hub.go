package finance

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// ─── Mutation Hub ───────────────────────────────────────────────────────────
// Every ledger mutation publishes here; balance watchers recompute on each
// signal. Signals are conflated: a slow subscriber sees at least one more
// recompute after the latest mutation, not one per mutation.

// Hub broadcasts ledger-changed signals to subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Publish signals all subscribers that the ledger changed. Never blocks.
func (h *Hub) Publish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending signal
		}
	}
}

// subscribe registers a signal channel, returning it with an unsubscribe func.
func (h *Hub) subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// ─── Balance Streams ────────────────────────────────────────────────────────

// WatchGlobalBalance streams the global balance: the current value
// immediately, then a fresh value after every ledger mutation. The channel
// closes when ctx is done.
func (e *Engine) WatchGlobalBalance(ctx context.Context) <-chan decimal.Decimal {
	return e.watch(ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return e.GlobalBalance(ctx)
	})
}

// WatchUserBalance streams one resident's balance the same way.
func (e *Engine) WatchUserBalance(ctx context.Context, userID string) <-chan decimal.Decimal {
	return e.watch(ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return e.UserBalance(ctx, userID)
	})
}

func (e *Engine) watch(ctx context.Context, compute func(context.Context) (decimal.Decimal, error)) <-chan decimal.Decimal {
	out := make(chan decimal.Decimal, 1)
	signals, unsubscribe := e.hub.subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		emit := func() {
			value, err := compute(ctx)
			if err != nil {
				if ctx.Err() == nil {
					e.log.Warn().Err(err).Msg("balance recompute failed")
				}
				return
			}
			select {
			case out <- value:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				emit()
			}
		}
	}()
	return out
}
