// Package shape implements the typed parametric shape variants (Rectangle,
// Circle, Ellipse, Line, Path, Text, Group, Image) that sit on top of the
// geometry kernel. Each variant is a closed algebraic case exposing the same
// capability set; new shapes are additive and force exhaustive handling at
// call sites that switch on Kind.
package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// Kind tags which variant a Shape is.
type Kind int

const (
	KindRectangle Kind = iota
	KindCircle
	KindEllipse
	KindLine
	KindPath
	KindText
	KindGroup
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindGroup:
		return "group"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// FillKind and StrokeKind are display-only attributes; they never affect
// CSG or toolpath generation.
type FillKind int

const (
	FillNone FillKind = iota
	FillSolid
)

// Style carries the display-only stroke/fill attributes. CAM and geometry
// code never reads Style; it exists purely for a consuming renderer.
type Style struct {
	StrokeColor  string
	StrokeWidthPx float64
	Fill         FillKind
	FillColor    string
}

// PropertyKind identifies the editor widget a Property should use.
type PropertyKind int

const (
	PropFloat PropertyKind = iota
	PropString
	PropBool
)

// Property describes one editable, typed field of a shape for a properties
// panel. Min/Max are only meaningful when Kind == PropFloat.
type Property struct {
	Name  string
	Kind  PropertyKind
	Value any
	Min   float64
	Max   float64
}

// Shape is the uniform capability set every variant implements. It is a
// closed set by convention (switch over Kind()), not an open interface
// meant for external implementations.
type Shape interface {
	ID() int64
	// SetID reassigns the shape's id, used when a Clone is about to be
	// inserted as a distinct shape (paste, duplicate, ungroup-into-new-ids).
	SetID(int64)
	Kind() Kind
	Transform() geo.Transform2D
	SetTransform(geo.Transform2D)
	ParentGroup() (int64, bool)
	SetParentGroup(id int64)
	ClearParentGroup()
	ZOrder() int
	SetZOrder(int)
	Style() Style
	SetStyle(Style)

	// RenderPath produces a display polyline for the shape at the given
	// tessellation tolerance (mm).
	RenderPath(toleranceMM float64) geo.Path
	// AsCSG produces the polygonal region (outer + holes, world space) used
	// by boolean operations and CAM generators.
	AsCSG(toleranceMM float64) []geo.Polygon
	// Bounds returns the axis-aligned bounding rect of the transformed
	// shape, using a parametric closed form where possible.
	Bounds() geo.Rect
	// HitTest reports whether p lies within tolerance of the shape's stroke
	// or interior.
	HitTest(p geo.Point2D, toleranceMM float64) bool
	// ApplyTransform bakes t on top of the shape's existing transform
	// (composition, never replacement), preserving parametric purity.
	ApplyTransform(t geo.Transform2D)
	// Properties enumerates editable fields with typed ranges.
	Properties() []Property
	// Clone returns a copy with the same id. Contour and member slices are
	// copied; contour point data and Image bitmaps are shared.
	Clone() Shape
}

// base holds the fields common to every variant; concrete shapes embed it.
type base struct {
	id          int64
	transform   geo.Transform2D
	parentGroup int64
	hasParent   bool
	style       Style
	zOrder      int
}

func newBase(id int64) base {
	return base{id: id, transform: geo.Identity()}
}

func (b *base) ID() int64                  { return b.id }
func (b *base) SetID(id int64)             { b.id = id }
func (b *base) Transform() geo.Transform2D { return b.transform }
func (b *base) SetTransform(t geo.Transform2D) { b.transform = t }
func (b *base) ParentGroup() (int64, bool) { return b.parentGroup, b.hasParent }
func (b *base) SetParentGroup(id int64)    { b.parentGroup = id; b.hasParent = true }
func (b *base) ClearParentGroup()          { b.parentGroup = 0; b.hasParent = false }
func (b *base) ZOrder() int                { return b.zOrder }
func (b *base) SetZOrder(z int)            { b.zOrder = z }
func (b *base) Style() Style               { return b.style }
func (b *base) SetStyle(s Style)           { b.style = s }
func (b *base) ApplyTransform(t geo.Transform2D) {
	b.transform = geo.Compose(b.transform, t)
}
