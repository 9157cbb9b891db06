package design

import "github.com/gcodekit5/gcodekit5/internal/geo"

// Selection is a set of ShapeIds with a designated primary (the last one
// selected, used as the anchor for property edits that apply "to the
// primary" when multiple shapes disagree).
type Selection struct {
	ids     map[int64]bool
	primary int64
	hasAny  bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[int64]bool)}
}

func (sel *Selection) IDs() []int64 {
	out := make([]int64, 0, len(sel.ids))
	for id := range sel.ids {
		out = append(out, id)
	}
	return out
}

func (sel *Selection) Contains(id int64) bool { return sel.ids[id] }

func (sel *Selection) Len() int { return len(sel.ids) }

func (sel *Selection) IsEmpty() bool { return len(sel.ids) == 0 }

// Primary returns the designated primary selection and whether one exists.
func (sel *Selection) Primary() (int64, bool) { return sel.primary, sel.hasAny }

// Select replaces the selection with ids, designating the last entry (or
// the only entry) as primary.
func (sel *Selection) Select(ids ...int64) {
	sel.ids = make(map[int64]bool, len(ids))
	sel.hasAny = false
	for _, id := range ids {
		sel.ids[id] = true
		sel.primary = id
		sel.hasAny = true
	}
}

// Add extends the selection with ids, updating primary to the last one.
func (sel *Selection) Add(ids ...int64) {
	for _, id := range ids {
		sel.ids[id] = true
		sel.primary = id
		sel.hasAny = true
	}
}

// Deselect removes ids from the selection. If the primary was removed, a
// new arbitrary primary is chosen from whatever remains (or cleared).
func (sel *Selection) Deselect(ids ...int64) {
	for _, id := range ids {
		delete(sel.ids, id)
	}
	if !sel.ids[sel.primary] {
		sel.hasAny = false
		for id := range sel.ids {
			sel.primary = id
			sel.hasAny = true
			break
		}
	}
}

// Clear empties the selection.
func (sel *Selection) Clear() {
	sel.ids = make(map[int64]bool)
	sel.hasAny = false
}

// Snapshot returns a copy usable as a ChangeSelection undo record's
// before/after payload.
func (sel *Selection) Snapshot() []int64 { return sel.IDs() }

// Restore replaces the current selection with a previously captured
// snapshot; as with Select, the last id becomes primary (snapshots from
// Snapshot have no stable order; callers that care about which one is
// primary should track it separately).
func (sel *Selection) Restore(ids []int64) { sel.Select(ids...) }

// UnionBounds computes the union bounding rect of the selected shapes,
// looking each one up in store. Unknown ids are skipped.
func UnionBounds(store *Store, ids []int64) geo.Rect {
	r := geo.EmptyRect()
	for _, id := range ids {
		sh, err := store.Get(id)
		if err != nil {
			continue
		}
		r = r.Union(sh.Bounds())
	}
	return r
}

// SpansMultipleGroups reports whether the given ids belong to more than one
// distinct parent (including "no parent", i.e. top-level).
func SpansMultipleGroups(store *Store, ids []int64) bool {
	seen := make(map[int64]bool)
	none := false
	for _, id := range ids {
		sh, err := store.Get(id)
		if err != nil {
			continue
		}
		if pg, ok := sh.ParentGroup(); ok {
			seen[pg] = true
		} else {
			none = true
		}
	}
	count := len(seen)
	if none {
		count++
	}
	return count > 1
}
