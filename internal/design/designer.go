package design

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

// pasteOffsetMM is how far pasted/duplicated shapes are nudged from their
// source, so paste/duplicate never lands a shape exactly on top of its
// origin where it would be invisible and unselectable without a nudge.
const pasteOffsetMM = 10.0

// Designer is the single-owner document controller: every public method
// here is one user-facing operation, and every one that mutates state
// pushes exactly one Command onto history and publishes exactly one Event.
// It runs unlocked on a single (UI) thread; background tasks (device link,
// file I/O) hand results back across a channel and are applied here rather
// than touching Designer fields directly.
type Designer struct {
	store     *Store
	selection *Selection
	index     *SpatialIndex
	history   *History
	viewport  Viewport
	clipboard []shape.Shape

	aspectLocked bool
	lockedRatio  float64

	Events *core.Bus[Event]
}

// NewDesigner returns an empty document with default viewport and no
// selection or history.
func NewDesigner() *Designer {
	return &Designer{
		store:     NewStore(),
		selection: NewSelection(),
		index:     NewSpatialIndex(),
		history:   newHistory(),
		viewport:  DefaultViewport(),
		Events:    core.NewBus[Event](),
	}
}

// apply runs cmd.Apply, pushes it to history, invalidates the spatial
// index, and publishes a ShapesChanged event. Every mutating public method
// funnels through this so undo/redo stays exhaustive.
func (d *Designer) apply(cmd Command, ids []int64) {
	cmd.Apply(d)
	d.history.push(cmd)
	d.index.Invalidate()
	d.Events.Publish(Event{Kind: EventShapesChanged, ShapeIDs: ids})
}

// Store exposes read-only document access to CAM/export/render consumers.
func (d *Designer) Store() *Store { return d.store }

// Selection exposes the current selection for rendering/property panels.
func (d *Designer) Selection() *Selection { return d.selection }

// Viewport returns the current zoom/pan state.
func (d *Designer) Viewport() Viewport { return d.viewport }

// SetViewport replaces the viewport. Viewport changes are view state, not
// document edits: they are not undoable and do not touch history.
func (d *Designer) SetViewport(v Viewport) {
	d.viewport = v
	d.Events.Publish(Event{Kind: EventViewportChanged})
}

// AspectLocked reports whether uniform scaling is currently enforced.
func (d *Designer) AspectLocked() bool { return d.aspectLocked }

// SetAspectLocked toggles uniform-scale lock. Turning it on captures the
// primary selection's current width/height ratio so the next scale
// operation can hold it; turning it off simply stops enforcing it.
func (d *Designer) SetAspectLocked(locked bool) {
	d.aspectLocked = locked
	if !locked {
		return
	}
	id, ok := d.selection.Primary()
	if !ok {
		return
	}
	sh, err := d.store.Get(id)
	if err != nil {
		return
	}
	b := sh.Bounds()
	if b.Height() != 0 {
		d.lockedRatio = b.Width() / b.Height()
	}
}

// LockedRatio returns the width/height ratio captured when aspect lock was
// enabled, for a transform tool to hold while dragging a scale handle.
func (d *Designer) LockedRatio() float64 { return d.lockedRatio }

// AddShape inserts sh (already carrying a Store.NextID()-minted id) as a
// new top-level shape.
func (d *Designer) AddShape(sh shape.Shape) {
	d.apply(&addShapeCmd{sh: sh}, []int64{sh.ID()})
}

// RemoveShapes deletes the given shapes. Unknown ids are silently skipped
// rather than failing the whole operation, so a stale selection referencing
// an already-removed shape never blocks deleting the rest.
func (d *Designer) RemoveShapes(ids []int64) {
	var removed []shape.Shape
	for _, id := range ids {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		removed = append(removed, sh)
	}
	if len(removed) == 0 {
		return
	}
	d.selection.Deselect(ids...)
	d.apply(&removeShapesCmd{removed: removed}, ids)
}

// ShapeMutator edits a cloned copy of a shape in place; ModifyShape commits
// the result as a single undoable step.
type ShapeMutator func(sh shape.Shape)

// ModifyShape applies mutate to a clone of the shape with id and commits it
// as the new value, recording the prior value for undo. Returns
// ErrShapeNotFound if id is unknown.
func (d *Designer) ModifyShape(id int64, mutate ShapeMutator) error {
	before, err := d.store.Get(id)
	if err != nil {
		return err
	}
	after := before.Clone()
	mutate(after)
	d.apply(&modifyShapeCmd{id: id, before: before, after: after}, []int64{id})
	if g, ok := before.(*shape.Group); ok {
		d.recomputeGroupBounds(g.ID())
	}
	if pg, hasParent := after.ParentGroup(); hasParent {
		d.recomputeGroupBounds(pg)
	}
	return nil
}

// Select replaces the selection with ids.
func (d *Designer) Select(ids ...int64) {
	before := d.selection.Snapshot()
	d.selection.Select(ids...)
	d.commitSelection(before)
}

// AddToSelection extends the current selection with ids.
func (d *Designer) AddToSelection(ids ...int64) {
	before := d.selection.Snapshot()
	d.selection.Add(ids...)
	d.commitSelection(before)
}

// Deselect removes ids from the selection.
func (d *Designer) Deselect(ids ...int64) {
	before := d.selection.Snapshot()
	d.selection.Deselect(ids...)
	d.commitSelection(before)
}

// SelectAll selects every top-level shape (groups select as a unit; a
// group's members are not independently selectable while grouped).
func (d *Designer) SelectAll() {
	before := d.selection.Snapshot()
	d.selection.Select(d.store.TopLevelOrder()...)
	d.commitSelection(before)
}

// ClearSelection empties the selection.
func (d *Designer) ClearSelection() {
	before := d.selection.Snapshot()
	d.selection.Clear()
	d.commitSelection(before)
}

func (d *Designer) commitSelection(before []int64) {
	after := d.selection.Snapshot()
	d.history.push(&selectionCmd{before: before, after: after})
	d.Events.Publish(Event{Kind: EventSelectionChanged, ShapeIDs: after})
}

// Group collapses the given shapes into a new Group shape, preserving each
// member's relative position. Requires at least two shapes; fewer returns
// an input-validation error.
func (d *Designer) Group(ids []int64) (int64, error) {
	if len(ids) < 2 {
		return 0, core.New(core.KindInputValidation, "Designer.Group", "at least two shapes required", ErrInvalidGeometry)
	}
	priorParent := make(map[int64]*int64, len(ids))
	for _, id := range ids {
		sh, err := d.store.Get(id)
		if err != nil {
			return 0, err
		}
		if pg, ok := sh.ParentGroup(); ok {
			p := pg
			priorParent[id] = &p
		} else {
			priorParent[id] = nil
		}
	}
	gid := d.store.NextID()
	g := shape.NewGroup(gid, append([]int64(nil), ids...))
	d.selection.Deselect(ids...)
	d.apply(&groupCmd{group: g, memberIDs: ids, priorParent: priorParent}, append(append([]int64(nil), ids...), gid))
	d.selection.Select(gid)
	return gid, nil
}

// Ungroup dissolves the group with id gid, restoring its members to their
// prior parentage (top-level, or a containing outer group).
func (d *Designer) Ungroup(gid int64) error {
	sh, err := d.store.Get(gid)
	if err != nil {
		return err
	}
	g, ok := sh.(*shape.Group)
	if !ok {
		return core.New(core.KindInputValidation, "Designer.Ungroup", "shape is not a group", ErrInvalidGeometry)
	}
	members := g.MemberIDs()
	priorParent := make(map[int64]*int64, len(members))
	for _, id := range members {
		priorParent[id] = nil // the group was their only parent
	}
	d.selection.Deselect(gid)
	d.apply(&ungroupCmd{group: g, memberIDs: members, priorParent: priorParent}, append(append([]int64(nil), members...), gid))
	d.selection.Select(members...)
	return nil
}

// recomputeGroupBounds refreshes the cached bounds of group gid from its
// current members. A non-group or unknown id is a silent no-op, since this
// is called speculatively after any parent-touching mutation.
func (d *Designer) recomputeGroupBounds(gid int64) {
	sh, err := d.store.Get(gid)
	if err != nil {
		return
	}
	g, ok := sh.(*shape.Group)
	if !ok {
		return
	}
	g.SetCachedBounds(UnionBounds(d.store, g.MemberIDs()))
}

// reorderKind selects which z-order shuffle Reorder performs.
type reorderKind int

const (
	BringToFront reorderKind = iota
	SendToBack
	BringForward
	SendBackward
)

// Reorder re-packs the draw order among the siblings of the given ids
// (top-level shapes reorder among top-level shapes; group members reorder
// within their group), applying kind once to the whole selected set.
func (d *Designer) Reorder(ids []int64, kind reorderKind) {
	if len(ids) == 0 {
		return
	}
	parentGroup, siblings := d.siblingOrder(ids[0])
	before := append([]int64(nil), siblings...)

	selected := make(map[int64]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var after []int64
	switch kind {
	case BringToFront:
		after = moveToEnd(siblings, selected)
	case SendToBack:
		after = moveToFront(siblings, selected)
	case BringForward:
		after = shiftOne(siblings, selected, 1)
	case SendBackward:
		after = shiftOne(siblings, selected, -1)
	}

	d.apply(&reorderCmd{parentGroup: parentGroup, before: before, after: after}, after)
}

// siblingOrder returns the parent group id (nil for top-level) and the
// draw-order sequence that id shares with its siblings.
func (d *Designer) siblingOrder(id int64) (*int64, []int64) {
	sh, err := d.store.Get(id)
	if err != nil {
		return nil, d.store.TopLevelOrder()
	}
	pg, ok := sh.ParentGroup()
	if !ok {
		return nil, d.store.TopLevelOrder()
	}
	parent, err := d.store.Get(pg)
	if err != nil {
		return nil, d.store.TopLevelOrder()
	}
	if g, ok := parent.(*shape.Group); ok {
		return &pg, append([]int64(nil), g.MemberIDs()...)
	}
	return nil, d.store.TopLevelOrder()
}

func moveToEnd(order []int64, selected map[int64]bool) []int64 {
	var rest, moved []int64
	for _, id := range order {
		if selected[id] {
			moved = append(moved, id)
		} else {
			rest = append(rest, id)
		}
	}
	return append(rest, moved...)
}

func moveToFront(order []int64, selected map[int64]bool) []int64 {
	var rest, moved []int64
	for _, id := range order {
		if selected[id] {
			moved = append(moved, id)
		} else {
			rest = append(rest, id)
		}
	}
	return append(moved, rest...)
}

// shiftOne moves each selected id one slot toward the end (dir=1) or start
// (dir=-1), swapping with its unselected neighbor. Selected ids already at
// the boundary stay put.
func shiftOne(order []int64, selected map[int64]bool, dir int) []int64 {
	out := append([]int64(nil), order...)
	if dir > 0 {
		for i := len(out) - 2; i >= 0; i-- {
			if selected[out[i]] && !selected[out[i+1]] {
				out[i], out[i+1] = out[i+1], out[i]
			}
		}
	} else {
		for i := 1; i < len(out); i++ {
			if selected[out[i]] && !selected[out[i-1]] {
				out[i], out[i-1] = out[i-1], out[i]
			}
		}
	}
	return out
}

// Copy snapshots the given shapes onto the internal clipboard.
func (d *Designer) Copy(ids []int64) {
	var clip []shape.Shape
	for _, id := range ids {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		clip = append(clip, sh.Clone())
	}
	d.clipboard = clip
}

// Cut copies then removes the given shapes.
func (d *Designer) Cut(ids []int64) {
	d.Copy(ids)
	d.RemoveShapes(ids)
}

// Paste inserts the clipboard contents as new top-level shapes, offset by
// pasteOffsetMM on both axes so the paste never lands exactly on its
// source, and selects the newly pasted shapes.
func (d *Designer) Paste() []int64 {
	return d.insertOffsetCopies(d.clipboard)
}

// Duplicate is Copy immediately followed by Paste of the given ids, the
// common "duplicate in place" editor action.
func (d *Designer) Duplicate(ids []int64) []int64 {
	var src []shape.Shape
	for _, id := range ids {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		src = append(src, sh.Clone())
	}
	return d.insertOffsetCopies(src)
}

func (d *Designer) insertOffsetCopies(src []shape.Shape) []int64 {
	if len(src) == 0 {
		return nil
	}
	offset := geo.Transform2D{TX: pasteOffsetMM, TY: pasteOffsetMM, ScaleX: 1, ScaleY: 1}
	var added []shape.Shape
	var newIDs []int64
	for _, sh := range src {
		cp := sh.Clone()
		cp.ClearParentGroup()
		cp.ApplyTransform(offset)
		nid := d.store.NextID()
		cp.SetID(nid)
		added = append(added, cp)
		newIDs = append(newIDs, nid)
	}
	d.apply(&addShapesCmd{added: added}, newIDs)
	d.selection.Select(newIDs...)
	return newIDs
}

// Undo reverts the most recent command, if any.
func (d *Designer) Undo() bool {
	cmd, ok := d.history.popUndo()
	if !ok {
		return false
	}
	cmd.Revert(d)
	d.index.Invalidate()
	d.Events.Publish(Event{Kind: EventShapesChanged})
	return true
}

// Redo re-applies the most recently undone command, if any.
func (d *Designer) Redo() bool {
	cmd, ok := d.history.popRedo()
	if !ok {
		return false
	}
	cmd.Apply(d)
	d.index.Invalidate()
	d.Events.Publish(Event{Kind: EventShapesChanged})
	return true
}

// CanUndo / CanRedo report whether Undo / Redo would do anything.
func (d *Designer) CanUndo() bool { return d.history.canUndo() }
func (d *Designer) CanRedo() bool { return d.history.canRedo() }

// BooleanOp replaces the shapes named by ids with a single new Path carrying
// the result of op, per the boolean transition rule. Requires at least two
// shapes selected.
func (d *Designer) BooleanOp(op geo.BoolOp, ids []int64, toleranceMM float64) (int64, error) {
	if len(ids) < 2 {
		return 0, core.New(core.KindInputValidation, "Designer.BooleanOp", "at least two shapes required", ErrInvalidGeometry)
	}
	var operands []shape.Shape
	for _, id := range ids {
		sh, err := d.store.Get(id)
		if err != nil {
			return 0, err
		}
		operands = append(operands, sh)
	}
	nid := d.store.NextID()
	result := shape.BooleanMany(op, operands, toleranceMM, nid)

	d.selection.Deselect(ids...)
	affected := append(append([]int64(nil), ids...), nid)
	d.apply(&booleanOpCmd{removed: operands, result: result}, affected)
	d.selection.Select(nid)
	return nid, nil
}

// HitTest finds the topmost shape at p, within toleranceMM, consulting the
// spatial index.
func (d *Designer) HitTest(p geo.Point2D, toleranceMM float64) (int64, bool) {
	return d.index.HitTest(d.store, p, toleranceMM)
}

// Query returns every shape id whose bounds may intersect region.
func (d *Designer) Query(region geo.Rect) []int64 {
	return d.index.Query(d.store, region)
}
