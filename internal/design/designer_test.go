package design

import (
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/geo"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

func rect(d *Designer, w, h float64) *shape.Rectangle {
	return shape.NewRectangle(d.store.NextID(), w, h)
}

func TestAddShapePublishesEventAndIsUndoable(t *testing.T) {
	d := NewDesigner()
	var seen []Event
	d.Events.Subscribe(func(e Event) { seen = append(seen, e) })

	r := rect(d, 10, 20)
	d.AddShape(r)

	if d.Store().Len() != 1 {
		t.Fatalf("expected 1 shape, got %d", d.Store().Len())
	}
	if len(seen) != 1 || seen[0].Kind != EventShapesChanged {
		t.Fatalf("expected one ShapesChanged event, got %v", seen)
	}

	if !d.Undo() {
		t.Fatal("undo should succeed")
	}
	if d.Store().Len() != 0 {
		t.Fatalf("expected 0 shapes after undo, got %d", d.Store().Len())
	}

	if !d.Redo() {
		t.Fatal("redo should succeed")
	}
	if d.Store().Len() != 1 {
		t.Fatalf("expected 1 shape after redo, got %d", d.Store().Len())
	}
}

func TestRemoveShapesSkipsUnknownIDs(t *testing.T) {
	d := NewDesigner()
	r := rect(d, 5, 5)
	d.AddShape(r)

	d.RemoveShapes([]int64{r.ID(), 9999})
	if d.Store().Len() != 0 {
		t.Fatalf("expected shape removed, got %d remaining", d.Store().Len())
	}
}

func TestModifyShapeRecordsUndoableEdit(t *testing.T) {
	d := NewDesigner()
	r := rect(d, 5, 5)
	d.AddShape(r)

	err := d.ModifyShape(r.ID(), func(sh shape.Shape) {
		sh.(*shape.Rectangle).Width = 50
	})
	if err != nil {
		t.Fatalf("modify failed: %v", err)
	}

	got, _ := d.Store().Get(r.ID())
	if got.(*shape.Rectangle).Width != 50 {
		t.Fatalf("expected width 50, got %v", got.(*shape.Rectangle).Width)
	}

	d.Undo()
	got, _ = d.Store().Get(r.ID())
	if got.(*shape.Rectangle).Width != 5 {
		t.Fatalf("expected width restored to 5, got %v", got.(*shape.Rectangle).Width)
	}
}

func TestModifyShapeUnknownIDReturnsError(t *testing.T) {
	d := NewDesigner()
	err := d.ModifyShape(12345, func(shape.Shape) {})
	if err == nil {
		t.Fatal("expected ErrShapeNotFound")
	}
}

func TestSelectionTracksPrimaryAndPublishesEvent(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 1, 1)
	b := rect(d, 1, 1)
	d.AddShape(a)
	d.AddShape(b)

	var kinds []EventKind
	d.Events.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	d.Select(a.ID(), b.ID())
	primary, ok := d.Selection().Primary()
	if !ok || primary != b.ID() {
		t.Fatalf("expected primary %d, got %d (ok=%v)", b.ID(), primary, ok)
	}

	found := false
	for _, k := range kinds {
		if k == EventSelectionChanged {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a SelectionChanged event")
	}
}

func TestGroupRequiresAtLeastTwoShapes(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 1, 1)
	d.AddShape(a)

	_, err := d.Group([]int64{a.ID()})
	if err == nil {
		t.Fatal("expected error grouping a single shape")
	}
}

func TestGroupAndUngroupRoundTrip(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 1, 1)
	b := rect(d, 1, 1)
	d.AddShape(a)
	d.AddShape(b)

	gid, err := d.Group([]int64{a.ID(), b.ID()})
	if err != nil {
		t.Fatalf("group failed: %v", err)
	}
	if len(d.Store().TopLevelOrder()) != 1 {
		t.Fatalf("expected 1 top-level shape after grouping, got %d", len(d.Store().TopLevelOrder()))
	}
	memberA, _ := d.Store().Get(a.ID())
	pg, hasParent := memberA.ParentGroup()
	if !hasParent || pg != gid {
		t.Fatalf("expected shape a parented to group %d, got %d (hasParent=%v)", gid, pg, hasParent)
	}

	if err := d.Ungroup(gid); err != nil {
		t.Fatalf("ungroup failed: %v", err)
	}
	if len(d.Store().TopLevelOrder()) != 2 {
		t.Fatalf("expected 2 top-level shapes after ungroup, got %d", len(d.Store().TopLevelOrder()))
	}
	memberA, _ = d.Store().Get(a.ID())
	if _, hasParent := memberA.ParentGroup(); hasParent {
		t.Fatal("expected shape a to have no parent after ungroup")
	}
}

func TestGroupUndoRestoresOriginalShapes(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 1, 1)
	b := rect(d, 1, 1)
	d.AddShape(a)
	d.AddShape(b)

	if _, err := d.Group([]int64{a.ID(), b.ID()}); err != nil {
		t.Fatalf("group failed: %v", err)
	}
	d.Undo()

	if len(d.Store().TopLevelOrder()) != 2 {
		t.Fatalf("expected 2 top-level shapes after undoing group, got %d", len(d.Store().TopLevelOrder()))
	}
}

func TestReorderBringToFront(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 1, 1)
	b := rect(d, 1, 1)
	c := rect(d, 1, 1)
	d.AddShape(a)
	d.AddShape(b)
	d.AddShape(c)

	d.Reorder([]int64{a.ID()}, BringToFront)
	order := d.Store().TopLevelOrder()
	if order[len(order)-1] != a.ID() {
		t.Fatalf("expected a at front (end of order), got %v", order)
	}

	d.Undo()
	order = d.Store().TopLevelOrder()
	if order[0] != a.ID() {
		t.Fatalf("expected a restored to original position, got %v", order)
	}
}

func TestDuplicateOffsetsByTenMM(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 10, 10)
	d.AddShape(a)
	origBounds := a.Bounds()

	newIDs := d.Duplicate([]int64{a.ID()})
	if len(newIDs) != 1 {
		t.Fatalf("expected 1 duplicated shape, got %d", len(newIDs))
	}
	dup, _ := d.Store().Get(newIDs[0])
	dupBounds := dup.Bounds()

	if dupBounds.MinX-origBounds.MinX != pasteOffsetMM {
		t.Fatalf("expected duplicate offset by %v mm, got %v", pasteOffsetMM, dupBounds.MinX-origBounds.MinX)
	}
	if dup.ID() == a.ID() {
		t.Fatal("duplicate must carry a distinct id")
	}
}

func TestCopyPasteOffsetsAndSelectsNewShapes(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 10, 10)
	d.AddShape(a)

	d.Copy([]int64{a.ID()})
	newIDs := d.Paste()
	if len(newIDs) != 1 {
		t.Fatalf("expected 1 pasted shape, got %d", len(newIDs))
	}
	if !d.Selection().Contains(newIDs[0]) {
		t.Fatal("expected pasted shape to be selected")
	}
	if d.Store().Len() != 2 {
		t.Fatalf("expected 2 shapes in store, got %d", d.Store().Len())
	}
}

func TestBooleanOpRequiresTwoShapes(t *testing.T) {
	d := NewDesigner()
	a := rect(d, 10, 10)
	d.AddShape(a)

	_, err := d.BooleanOp(geo.OpUnion, []int64{a.ID()}, 0.1)
	if err == nil {
		t.Fatal("expected error for boolean op with fewer than two shapes")
	}
}

func TestBooleanOpCollapsesToSinglePathAndIsUndoable(t *testing.T) {
	d := NewDesigner()
	a := shape.NewRectangle(d.store.NextID(), 10, 10)
	b := shape.NewRectangle(d.store.NextID(), 10, 10)
	b.SetTransform(geo.Transform2D{TX: 5, ScaleX: 1, ScaleY: 1})
	d.AddShape(a)
	d.AddShape(b)

	nid, err := d.BooleanOp(geo.OpUnion, []int64{a.ID(), b.ID()}, 0.5)
	if err != nil {
		t.Fatalf("boolean op failed: %v", err)
	}
	if d.Store().Len() != 1 {
		t.Fatalf("expected boolean result to replace both operands, got %d shapes", d.Store().Len())
	}
	result, _ := d.Store().Get(nid)
	if result.Kind() != shape.KindPath {
		t.Fatalf("expected boolean result to be a Path, got %v", result.Kind())
	}

	if !d.Undo() {
		t.Fatal("undo should succeed")
	}
	if d.Store().Len() != 2 {
		t.Fatalf("expected 2 original shapes restored after undo, got %d", d.Store().Len())
	}
}

func TestHitTestFindsTopmostShape(t *testing.T) {
	d := NewDesigner()
	a := shape.NewRectangle(d.store.NextID(), 10, 10)
	b := shape.NewRectangle(d.store.NextID(), 10, 10)
	d.AddShape(a)
	d.AddShape(b)
	b.SetZOrder(5)

	id, found := d.HitTest(geo.Point2D{X: 5, Y: 5}, 0.1)
	if !found {
		t.Fatal("expected a hit at (5,5)")
	}
	if id != b.ID() {
		t.Fatalf("expected topmost shape %d (highest z-order), got %d", b.ID(), id)
	}
}

func TestAspectLockCapturesRatio(t *testing.T) {
	d := NewDesigner()
	a := shape.NewRectangle(d.store.NextID(), 20, 10)
	d.AddShape(a)
	d.Select(a.ID())

	d.SetAspectLocked(true)
	if !d.AspectLocked() {
		t.Fatal("expected aspect lock enabled")
	}
	if d.LockedRatio() != 2 {
		t.Fatalf("expected locked ratio 2, got %v", d.LockedRatio())
	}
}

func TestUndoEmptyHistoryReturnsFalse(t *testing.T) {
	d := NewDesigner()
	if d.Undo() {
		t.Fatal("undo on empty history should return false")
	}
}

func TestHistoryBoundedAtMaxDepth(t *testing.T) {
	d := NewDesigner()
	for i := 0; i < maxHistory+10; i++ {
		r := rect(d, 1, 1)
		d.AddShape(r)
	}
	if len(d.history.undo) != maxHistory {
		t.Fatalf("expected undo stack capped at %d, got %d", maxHistory, len(d.history.undo))
	}
}
