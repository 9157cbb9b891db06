package design

import "github.com/gcodekit5/gcodekit5/internal/shape"

// addShapeCmd records adding a single shape. Revert removes it again; the
// id is recycled (the allocator is advanced past it on Apply but never
// rewound, so a redo after undo hands the identical id back out, per
// spec's Add/Remove id-recycling requirement).
type addShapeCmd struct {
	sh shape.Shape
}

func (c *addShapeCmd) Apply(d *Designer)  { d.store.add(c.sh) }
func (c *addShapeCmd) Revert(d *Designer) { d.store.remove(c.sh.ID()) }
func (c *addShapeCmd) Label() string      { return "Add Shape" }

// addShapesCmd records adding one or more shapes as a single undo step,
// used by Paste/Duplicate so inserting a multi-shape clipboard is one Undo.
type addShapesCmd struct {
	added []shape.Shape
}

func (c *addShapesCmd) Apply(d *Designer) {
	for _, sh := range c.added {
		d.store.add(sh)
	}
}
func (c *addShapesCmd) Revert(d *Designer) {
	for _, sh := range c.added {
		d.store.remove(sh.ID())
	}
}
func (c *addShapesCmd) Label() string { return "Paste" }

// removeShapesCmd records removing one or more shapes. Revert re-adds them
// in their original top-level order.
type removeShapesCmd struct {
	removed []shape.Shape
}

func (c *removeShapesCmd) Apply(d *Designer) {
	for _, sh := range c.removed {
		d.store.remove(sh.ID())
	}
}
func (c *removeShapesCmd) Revert(d *Designer) {
	for _, sh := range c.removed {
		d.store.add(sh)
	}
}
func (c *removeShapesCmd) Label() string { return "Remove Shapes" }

// modifyShapeCmd records replacing one shape's value with another (same
// id): a property edit, a transform bake, or a reparent.
type modifyShapeCmd struct {
	id            int64
	before, after shape.Shape
}

func (c *modifyShapeCmd) Apply(d *Designer)  { d.store.shapes[c.id] = c.after }
func (c *modifyShapeCmd) Revert(d *Designer) { d.store.shapes[c.id] = c.before }
func (c *modifyShapeCmd) Label() string      { return "Modify Shape" }

// selectionCmd records a ChangeSelection operation.
type selectionCmd struct {
	before, after []int64
}

func (c *selectionCmd) Apply(d *Designer)  { d.selection.Select(c.after...) }
func (c *selectionCmd) Revert(d *Designer) { d.selection.Select(c.before...) }
func (c *selectionCmd) Label() string      { return "Change Selection" }

// groupCmd records grouping a set of shapes under a new Group shape.
type groupCmd struct {
	group       *shape.Group
	memberIDs   []int64
	priorParent map[int64]*int64 // nil entry means "was top-level"
}

func (c *groupCmd) Apply(d *Designer) {
	d.store.add(c.group)
	for _, id := range c.memberIDs {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		sh.SetParentGroup(c.group.ID())
		d.store.dropFromOrder(id)
	}
	d.recomputeGroupBounds(c.group.ID())
}

func (c *groupCmd) Revert(d *Designer) {
	for _, id := range c.memberIDs {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		if prior := c.priorParent[id]; prior != nil {
			sh.SetParentGroup(*prior)
		} else {
			sh.ClearParentGroup()
			d.store.restoreToOrder(id)
		}
	}
	d.store.remove(c.group.ID())
}
func (c *groupCmd) Label() string { return "Group" }

// ungroupCmd records dissolving a group back to its prior member parentage.
type ungroupCmd struct {
	group       *shape.Group
	memberIDs   []int64
	priorParent map[int64]*int64
}

func (c *ungroupCmd) Apply(d *Designer) {
	for _, id := range c.memberIDs {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		if prior := c.priorParent[id]; prior != nil {
			sh.SetParentGroup(*prior)
		} else {
			sh.ClearParentGroup()
			d.store.restoreToOrder(id)
		}
	}
	d.store.remove(c.group.ID())
}

func (c *ungroupCmd) Revert(d *Designer) {
	d.store.add(c.group)
	for _, id := range c.memberIDs {
		sh, err := d.store.Get(id)
		if err != nil {
			continue
		}
		sh.SetParentGroup(c.group.ID())
		d.store.dropFromOrder(id)
	}
	d.recomputeGroupBounds(c.group.ID())
}
func (c *ungroupCmd) Label() string { return "Ungroup" }

// booleanOpCmd records a boolean operation as a single undo step: the
// operand shapes are removed and the result shape is added atomically, so
// one Undo fully restores the pre-operation selection of separate shapes.
type booleanOpCmd struct {
	removed []shape.Shape
	result  shape.Shape
}

func (c *booleanOpCmd) Apply(d *Designer) {
	for _, sh := range c.removed {
		d.store.remove(sh.ID())
	}
	d.store.add(c.result)
}

func (c *booleanOpCmd) Revert(d *Designer) {
	d.store.remove(c.result.ID())
	for _, sh := range c.removed {
		d.store.add(sh)
	}
}
func (c *booleanOpCmd) Label() string { return "Boolean Operation" }

// reorderCmd records a full before/after re-sequencing of one sibling set
// (a group's member list, or the store's top-level order). parentGroup is
// nil when the siblings are top-level.
type reorderCmd struct {
	parentGroup   *int64
	before, after []int64
}

func (c *reorderCmd) Apply(d *Designer)  { d.installSiblingOrder(c.parentGroup, c.after) }
func (c *reorderCmd) Revert(d *Designer) { d.installSiblingOrder(c.parentGroup, c.before) }
func (c *reorderCmd) Label() string      { return "Reorder" }

// installSiblingOrder writes order as the draw sequence and assigns dense
// z-orders 0..n-1 matching it, so z-order and list position never diverge.
func (d *Designer) installSiblingOrder(parentGroup *int64, order []int64) {
	if parentGroup == nil {
		d.store.order = order
	} else if parent, err := d.store.Get(*parentGroup); err == nil {
		if g, ok := parent.(*shape.Group); ok {
			g.SetMemberIDs(order)
		}
	}
	for i, id := range order {
		if sh, ok := d.store.shapes[id]; ok {
			sh.SetZOrder(i)
		}
	}
}
