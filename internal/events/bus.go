// Package events provides the in-process domain event bus. Dispatch is
// two-phase: pre-commit handlers run before the aggregate is persisted and
// may veto the mutation by returning an error; post-commit handlers run
// after persistence and drive notifications. Handler errors in the second
// phase are logged, never propagated — a failed email must not roll back a
// committed state change.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-membership/internal/domain"
)

// Handler processes one domain event. Handlers registered pre-commit double
// as a secondary validation pipeline.
type Handler func(ctx context.Context, ev domain.Event) error

// Bus is an in-process pub/sub of domain events. Registration is expected at
// wiring time but is safe at any point.
type Bus struct {
	mu   sync.RWMutex
	pre  []Handler
	post []Handler
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers a pre-commit handler. A non-nil return from any
// pre-commit handler aborts the operation before persistence.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pre = append(b.pre, h)
}

// SubscribeAfter registers a post-commit handler.
func (b *Bus) SubscribeAfter(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.post = append(b.post, h)
}

// Validate runs every pre-commit handler over every event, stopping at the
// first error.
func (b *Bus) Validate(ctx context.Context, evs []domain.Event) error {
	b.mu.RLock()
	handlers := b.pre
	b.mu.RUnlock()
	for _, ev := range evs {
		for _, h := range handlers {
			if err := h(ctx, ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Publish runs every post-commit handler over every event. Errors are
// logged and swallowed.
func (b *Bus) Publish(ctx context.Context, evs []domain.Event) {
	b.mu.RLock()
	handlers := b.post
	b.mu.RUnlock()
	for _, ev := range evs {
		for _, h := range handlers {
			if err := h(ctx, ev); err != nil {
				slog.Warn("post-commit event handler failed", "event", typeName(ev), "err", err)
			}
		}
	}
}

// On adapts a typed handler function to Handler; events of other types pass
// through untouched.
func On[T domain.Event](fn func(ctx context.Context, ev T) error) Handler {
	return func(ctx context.Context, ev domain.Event) error {
		typed, ok := ev.(T)
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	}
}

func typeName(ev domain.Event) string {
	return fmt.Sprintf("%T", ev)
}
