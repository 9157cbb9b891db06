package shape

import (
	"image"
	"math"

	"github.com/gcodekit5/gcodekit5/internal/geo"
)

// Image is a placed raster, used as the input to bitmap engraving. The
// pixel data itself is opaque to the designer/geometry layers (it is never
// tessellated or boolean'd); only its placed bounding rect participates in
// layout, selection, and hit-testing. CAM bitmap engraving reads Bitmap
// directly.
type Image struct {
	base
	Width, Height float64 // placed size in mm
	Bitmap        image.Image
}

func NewImage(id int64, width, height float64, bitmap image.Image) *Image {
	return &Image{base: newBase(id), Width: width, Height: height, Bitmap: bitmap}
}

func (im *Image) Kind() Kind { return KindImage }

func (im *Image) localRect() geo.Path {
	return geo.Path{geo.Pt(0, 0), geo.Pt(im.Width, 0), geo.Pt(im.Width, im.Height), geo.Pt(0, im.Height)}
}

func (im *Image) RenderPath(toleranceMM float64) geo.Path {
	return im.localRect().Transformed(im.transform)
}

func (im *Image) AsCSG(toleranceMM float64) []geo.Polygon {
	return []geo.Polygon{{Outer: im.RenderPath(toleranceMM)}}
}

func (im *Image) Bounds() geo.Rect {
	return geo.BoundsOfPoints(geo.ApplyAll(im.localRect(), im.transform))
}

func (im *Image) HitTest(p geo.Point2D, toleranceMM float64) bool {
	return hitTestPolygon(im.RenderPath(0.1), p, toleranceMM)
}

func (im *Image) Properties() []Property {
	return []Property{
		{Name: "width", Kind: PropFloat, Value: im.Width, Min: 0, Max: math.Inf(1)},
		{Name: "height", Kind: PropFloat, Value: im.Height, Min: 0, Max: math.Inf(1)},
	}
}

func (im *Image) Clone() Shape {
	cp := *im
	return &cp
}
