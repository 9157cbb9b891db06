package geo

import (
	"math"
	"testing"
)

func TestRotatePointIsIdempotentUnder360(t *testing.T) {
	p := Pt(10, 0)
	c := Pt(0, 0)
	r := RotatePoint(p, c, 360)
	if math.Abs(r.X-p.X) > 1e-9 || math.Abs(r.Y-p.Y) > 1e-9 {
		t.Errorf("expected rotation by 360 to be identity, got %v", r)
	}
}

func TestRotatePointInverse(t *testing.T) {
	p := Pt(12.3, -4.5)
	c := Pt(1, 1)
	for _, theta := range []float64{0, 15, 90, 180, 270, -90, 720, -720} {
		got := RotatePoint(RotatePoint(p, c, theta), c, -theta)
		if got.Distance(p) > 1e-9 {
			t.Errorf("theta=%v: expected %v, got %v", theta, p, got)
		}
	}
}

func TestBoundsAfterTransformContainsTransformedBounds(t *testing.T) {
	pts := []Point2D{Pt(0, 0), Pt(100, 0), Pt(100, 50), Pt(0, 50)}
	tr := Transform2D{TX: 5, TY: -3, RotationDeg: 15, ScaleX: 1, ScaleY: 1}

	boundsThenTransform := BoundsOfPoints(ApplyAll([]Point2D{
		{X: BoundsOfPoints(pts).MinX, Y: BoundsOfPoints(pts).MinY},
		{X: BoundsOfPoints(pts).MaxX, Y: BoundsOfPoints(pts).MaxY},
	}, tr))
	transformThenBounds := BoundsOfPoints(ApplyAll(pts, tr))

	if transformThenBounds.MinX > boundsThenTransform.MinX+1e-4 || transformThenBounds.MaxX < boundsThenTransform.MaxX-1e-4 {
		t.Errorf("rotated bounds should be at least as large as the corner-mapped box")
	}
}

func TestRectangleRotated15DegreeBounds(t *testing.T) {
	// 100x50 rectangle at origin, rotated 15 degrees about its own origin
	// corner: MinX = -50 sin15, MaxX = 100 cos15, MaxY = 100 sin15 + 50 cos15.
	pts := []Point2D{Pt(0, 0), Pt(100, 0), Pt(100, 50), Pt(0, 50)}
	rotated := make([]Point2D, len(pts))
	for i, p := range pts {
		rotated[i] = RotatePoint(p, Pt(0, 0), 15)
	}
	b := BoundsOfPoints(rotated)
	sin, cos := math.Sin(15*math.Pi/180), math.Cos(15*math.Pi/180)
	if math.Abs(b.MinX-(-50*sin)) > 1e-4 {
		t.Errorf("MinX = %v, want %v", b.MinX, -50*sin)
	}
	if math.Abs(b.MaxX-100*cos) > 1e-4 {
		t.Errorf("MaxX = %v, want %v", b.MaxX, 100*cos)
	}
	if math.Abs(b.MinY) > 1e-4 {
		t.Errorf("MinY = %v, want 0", b.MinY)
	}
	if math.Abs(b.MaxY-(100*sin+50*cos)) > 1e-4 {
		t.Errorf("MaxY = %v, want %v", b.MaxY, 100*sin+50*cos)
	}
}

func TestBooleanUnionOfDisjointRectanglesProducesTwoPolygons(t *testing.T) {
	a := []Polygon{{Outer: Path{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}}}
	b := []Polygon{{Outer: Path{Pt(100, 0), Pt(110, 0), Pt(110, 10), Pt(100, 10)}}}
	result := Boolean(OpUnion, a, b)
	if len(result) != 2 {
		t.Fatalf("expected 2 polygons for disjoint union, got %d", len(result))
	}
}

func TestBooleanIntersectionOfDisjointIsEmpty(t *testing.T) {
	a := []Polygon{{Outer: Path{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}}}
	b := []Polygon{{Outer: Path{Pt(100, 0), Pt(110, 0), Pt(110, 10), Pt(100, 10)}}}
	result := Boolean(OpIntersection, a, b)
	if len(result) != 0 {
		t.Fatalf("expected empty intersection, got %d polygons", len(result))
	}
}

func TestBooleanUnionAreaApproximatesExpected(t *testing.T) {
	square := []Polygon{{Outer: Path{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}}}
	circleCenter := Pt(100, 50)
	circle := Path(TessellateCircle(circleCenter, 30, 0.2))
	circlePoly := []Polygon{{Outer: circle}}

	result := Boolean(OpUnion, square, circlePoly)
	total := 0.0
	for _, p := range result {
		total += p.Outer.Area()
	}
	// Expected area is less than square+circle (they overlap along the edge)
	// and within a generous tolerance of the rasterization resolution.
	expectedUpperBound := 100.0*100.0 + math.Pi*30*30
	if total > expectedUpperBound*1.05 {
		t.Errorf("union area %v exceeds plausible upper bound %v", total, expectedUpperBound)
	}
	if total < 100.0*100.0*0.9 {
		t.Errorf("union area %v implausibly small", total)
	}
}

func TestParseLengthFractionalImperial(t *testing.T) {
	cases := map[string]float64{
		"1 1/2": 38.1,
		"1/4":   6.35,
		"1.":    25.4,
	}
	for in, want := range cases {
		got, err := ParseLength(in, 1)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", in, err)
		}
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("ParseLength(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOffsetPreservesVertexCount(t *testing.T) {
	square := Path{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	offset := Offset(square, 2)
	if len(offset) != len(square) {
		t.Errorf("expected offset to preserve vertex count, got %d want %d", len(offset), len(square))
	}
}
