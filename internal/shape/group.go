package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// Group is a pure organizational node: it carries no geometry of its own.
// Its members live as ordinary flat entries in the owning ShapeStore and
// point back at it via ParentGroup; Group only remembers which ids belong
// to it (in z-order) and a cached bounds rect the owning designer state
// recomputes whenever membership or a member's geometry changes.
//
// This keeps the shape forest a flat map (ShapeId -> Shape) plus parent
// pointers, rather than a tree of owned children, so undo/redo of
// Group/Ungroup only ever touches ParentGroup fields and this member list.
type Group struct {
	base
	Members       []int64
	cachedBounds  geo.Rect
}

func NewGroup(id int64, members []int64) *Group {
	return &Group{base: newBase(id), Members: members, cachedBounds: geo.EmptyRect()}
}

func (g *Group) Kind() Kind { return KindGroup }

// MemberIDs returns the child shape ids, bottom-to-top.
func (g *Group) MemberIDs() []int64 { return g.Members }

// SetMemberIDs replaces the member list, used by group/ungroup/reorder.
func (g *Group) SetMemberIDs(ids []int64) { g.Members = ids }

// SetCachedBounds stores the union bounds of the group's resolved members;
// the owning designer state recomputes this after any mutation that could
// change it (member added/removed, member transformed).
func (g *Group) SetCachedBounds(r geo.Rect) { g.cachedBounds = r }

func (g *Group) RenderPath(toleranceMM float64) geo.Path { return nil }

func (g *Group) AsCSG(toleranceMM float64) []geo.Polygon { return nil }

func (g *Group) Bounds() geo.Rect { return g.cachedBounds }

func (g *Group) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return g.cachedBounds.ExpandedBy(toleranceMM).Contains(p)
}

func (g *Group) Properties() []Property {
	return []Property{{Name: "member_count", Kind: PropFloat, Value: float64(len(g.Members))}}
}

func (g *Group) Clone() Shape {
	cp := *g
	cp.Members = append([]int64(nil), g.Members...)
	return &cp
}
