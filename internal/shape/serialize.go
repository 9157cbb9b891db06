package shape

import (
	"encoding/json"
	"fmt"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Record is the on-disk representation of one Shape: the fields common to
// every variant (base) plus a Kind-tagged, variant-specific Params blob.
// This is the value shape the design file format's save/load round-trips
// through; the document's outer structure (groups, z-order, metadata) is
// owned by the document serializer, but per-shape round-trip lives here
// since it is shape-kernel territory.
type Record struct {
	ID          int64           `json:"id"`
	Kind        Kind            `json:"kind"`
	Transform   geo.Transform2D `json:"transform"`
	ParentGroup *int64          `json:"parent_group,omitempty"`
	ZOrder      int             `json:"z_order"`
	Style       Style           `json:"style"`
	Params      json.RawMessage `json:"params"`
}

type rectParams struct {
	Width, Height, CornerRadius float64
}
type circleParams struct{ Radius float64 }
type ellipseParams struct{ RadiusX, RadiusY float64 }
type lineParams struct{ X2, Y2 float64 }
type pathParams struct {
	Closed   bool
	Contours []geo.Polygon
}
type textParams struct {
	Content  string
	FontSize float64
}
type groupParams struct{ Members []int64 }
type imageParams struct{ Width, Height float64 }

// ToRecord captures s into its serializable Record.
func ToRecord(s Shape) (Record, error) {
	rec := Record{
		ID:        s.ID(),
		Kind:      s.Kind(),
		Transform: s.Transform(),
		ZOrder:    s.ZOrder(),
		Style:     s.Style(),
	}
	if pg, ok := s.ParentGroup(); ok {
		rec.ParentGroup = &pg
	}

	var params any
	switch v := s.(type) {
	case *Rectangle:
		params = rectParams{v.Width, v.Height, v.CornerRadius}
	case *Circle:
		params = circleParams{v.Radius}
	case *Ellipse:
		params = ellipseParams{v.RadiusX, v.RadiusY}
	case *Line:
		params = lineParams{v.X2, v.Y2}
	case *Path:
		params = pathParams{v.Closed, v.Contours}
	case *Text:
		params = textParams{v.Content, v.FontSize}
	case *Group:
		params = groupParams{v.Members}
	case *Image:
		// Bitmap data is excluded from the design document format (it is
		// the settings-persistence-format boundary the core does not own);
		// only placed size round-trips.
		params = imageParams{v.Width, v.Height}
	default:
		return Record{}, fmt.Errorf("shape: unknown variant %T", s)
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return Record{}, fmt.Errorf("shape: marshal params: %w", err)
	}
	rec.Params = raw
	return rec, nil
}

// FromRecord reconstructs a Shape from its Record.
func FromRecord(rec Record) (Shape, error) {
	var s Shape
	switch rec.Kind {
	case KindRectangle:
		var p rectParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		r := NewRectangle(rec.ID, p.Width, p.Height)
		r.CornerRadius = p.CornerRadius
		s = r
	case KindCircle:
		var p circleParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewCircle(rec.ID, p.Radius)
	case KindEllipse:
		var p ellipseParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewEllipse(rec.ID, p.RadiusX, p.RadiusY)
	case KindLine:
		var p lineParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewLine(rec.ID, p.X2, p.Y2)
	case KindPath:
		var p pathParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		ps := NewPath(rec.ID, p.Contours)
		ps.Closed = p.Closed
		s = ps
	case KindText:
		var p textParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewText(rec.ID, p.Content, p.FontSize)
	case KindGroup:
		var p groupParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewGroup(rec.ID, p.Members)
	case KindImage:
		var p imageParams
		if err := json.Unmarshal(rec.Params, &p); err != nil {
			return nil, err
		}
		s = NewImage(rec.ID, p.Width, p.Height, nil)
	default:
		return nil, fmt.Errorf("shape: unknown kind %d", rec.Kind)
	}

	s.SetTransform(rec.Transform)
	s.SetZOrder(rec.ZOrder)
	s.SetStyle(rec.Style)
	if rec.ParentGroup != nil {
		s.SetParentGroup(*rec.ParentGroup)
	}
	return s, nil
}
