// Package design owns the document model: the shape store, selection,
// spatial index, undo/redo history, clipboard, and viewport. It is the
// single-owner side of the "ownership with observers" pattern: mutation
// is sequential on the owning thread, and everything else observes through
// events (see internal/core.Bus).
package design

import (
	"errors"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

// Sentinel causes for the typed errors operations return. Neither is
// fatal to the document: the operation is rejected and state is unchanged.
var (
	ErrShapeNotFound   = errors.New("shape not found")
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Store is an ordered sequence of top-level shape ids (bottom-to-top draw
// order) plus the ShapeId -> Shape mapping. It owns every shape
// exclusively; nothing outside design holds a Shape reference across a
// mutation.
type Store struct {
	order  []int64 // top-level (parent-less) ids, bottom-to-top
	shapes map[int64]shape.Shape
	alloc  *core.ShapeIDAllocator
}

// NewStore returns an empty document store.
func NewStore() *Store {
	return &Store{shapes: make(map[int64]shape.Shape), alloc: core.NewShapeIDAllocator()}
}

// NextID mints the next shape id, for callers constructing a shape.Shape to
// hand to Add.
func (s *Store) NextID() int64 { return s.alloc.Next() }

// ObserveID advances the allocator past id so NextID never hands it out.
// Shapes inserted through add (including an undo of a remove) are observed
// there already.
func (s *Store) ObserveID(id int64) { s.alloc.Observe(id) }

// Get returns the shape with id, or ErrShapeNotFound.
func (s *Store) Get(id int64) (shape.Shape, error) {
	sh, ok := s.shapes[id]
	if !ok {
		return nil, core.New(core.KindInputValidation, "Store.Get", "shape not found", ErrShapeNotFound)
	}
	return sh, nil
}

// add inserts sh into the flat map and, if it has no parent group, appends
// its id to the top-level order.
func (s *Store) add(sh shape.Shape) {
	s.shapes[sh.ID()] = sh
	if _, hasParent := sh.ParentGroup(); !hasParent {
		s.order = append(s.order, sh.ID())
	}
	s.alloc.Observe(sh.ID())
}

// remove deletes id from the flat map and the top-level order if present.
func (s *Store) remove(id int64) {
	delete(s.shapes, id)
	s.dropFromOrder(id)
}

// dropFromOrder strips id from the top-level order without touching the
// flat map, used when a shape becomes a group member (it stays addressable
// by id, it just no longer draws at the top level).
func (s *Store) dropFromOrder(id int64) {
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// restoreToOrder appends id back to the top-level order, used when a group
// member is reparented back to top level (ungroup, or undo of group).
func (s *Store) restoreToOrder(id int64) {
	s.order = append(s.order, id)
}

// TopLevelOrder returns the current top-level draw order, bottom-to-top.
func (s *Store) TopLevelOrder() []int64 {
	return append([]int64(nil), s.order...)
}

// AllIDs returns every shape id in the store, in no particular order.
func (s *Store) AllIDs() []int64 {
	ids := make([]int64, 0, len(s.shapes))
	for id := range s.shapes {
		ids = append(ids, id)
	}
	return ids
}

// Len reports the total number of shapes (at any nesting depth).
func (s *Store) Len() int { return len(s.shapes) }
