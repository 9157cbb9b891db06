package core

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ShapeIDAllocator mints monotonically increasing 64-bit shape ids, stable
// for the lifetime of a design. Zero is never issued, so it is safe to use
// as a "no shape" sentinel.
type ShapeIDAllocator struct {
	next int64
}

// NewShapeIDAllocator returns an allocator whose first Next() is 1.
func NewShapeIDAllocator() *ShapeIDAllocator {
	return &ShapeIDAllocator{next: 0}
}

// Next returns the next unused shape id.
func (a *ShapeIDAllocator) Next() int64 {
	return atomic.AddInt64(&a.next, 1)
}

// Observe advances the allocator so that subsequent Next() calls never
// collide with id, used when recycling ids during undo of an AddShape so the
// redo path can hand the same id back out.
func (a *ShapeIDAllocator) Observe(id int64) {
	for {
		cur := atomic.LoadInt64(&a.next)
		if id <= cur {
			return
		}
		if atomic.CompareAndSwapInt64(&a.next, cur, id) {
			return
		}
	}
}

// NewOpaqueID mints a uuid-backed identifier for everything that is not a
// ShapeId: device session ids, batch job ids, subscriber tokens minted
// outside the event bus helper.
func NewOpaqueID() string {
	return uuid.New().String()
}
