package core

import (
	"sync"

	"github.com/google/uuid"
)

// Token identifies a registered subscriber so it can be unregistered later.
// Minted from uuid rather than a counter so tokens stay valid across bus
// restarts and carry no ordering meaning of their own.
type Token string

func newToken() Token {
	return Token(uuid.New().String())
}

// Bus is a typed, in-order event dispatcher. One Bus instance carries one
// event type; callers compose multiple buses (ConnectionChanged,
// StatusChanged, ...) rather than type-switching on a shared envelope.
//
// Delivery is in-order per publishing goroutine: Publish invokes every live
// subscriber synchronously, in registration order, before returning. A
// background task that wants posted-order delivery to the UI thread should
// publish from a single goroutine, exactly as the device link's reader task
// does.
type Bus[T any] struct {
	mu   sync.Mutex
	subs map[Token]func(T)
	// order preserves registration order; subs alone does not (map
	// iteration order is unspecified in Go).
	order []Token
}

// NewBus constructs an empty event bus for event type T.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[Token]func(T))}
}

// Subscribe registers fn and returns an opaque token usable with
// Unsubscribe. fn must not block; slow consumers should queue internally.
func (b *Bus[T]) Subscribe(fn func(T)) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := newToken()
	b.subs[tok] = fn
	b.order = append(b.order, tok)
	return tok
}

// Unsubscribe removes a previously registered subscriber. Unsubscribing an
// unknown or already-removed token is a no-op.
func (b *Bus[T]) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[tok]; !ok {
		return
	}
	delete(b.subs, tok)
	for i, t := range b.order {
		if t == tok {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers event to every currently registered subscriber, in
// registration order. The subscriber list is copied out under the lock and
// invoked outside it, so a subscriber may call Subscribe/Unsubscribe on the
// same bus without deadlocking.
func (b *Bus[T]) Publish(event T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.order))
	for _, tok := range b.order {
		fns = append(fns, b.subs[tok])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// Len reports the current subscriber count, mainly for tests.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}
