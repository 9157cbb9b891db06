package importer

import (
	"strings"
	"testing"

	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

func importString(t *testing.T, svg string) Result {
	t.Helper()
	return importSVGStream(strings.NewReader(svg), core.NewShapeIDAllocator())
}

func TestImportSVGPrimitives(t *testing.T) {
	res := importString(t, `<svg xmlns="http://www.w3.org/2000/svg">
  <rect x="0" y="0" width="100" height="50"/>
  <circle cx="10" cy="10" r="5"/>
  <ellipse cx="0" cy="0" rx="8" ry="4"/>
  <line x1="0" y1="0" x2="10" y2="10"/>
  <polygon points="0,0 10,0 10,10"/>
  <polyline points="0,0 5,5 10,0"/>
</svg>`)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Shapes) != 6 {
		t.Fatalf("expected 6 shapes, got %d", len(res.Shapes))
	}
	for _, s := range res.Shapes {
		if s.Kind() != shape.KindPath {
			t.Errorf("imported primitives become Path shapes, got %v", s.Kind())
		}
	}
	// The rect becomes a closed 100x50 region.
	b := res.Shapes[0].Bounds()
	if b.Width() != 100 || b.Height() != 50 {
		t.Errorf("rect bounds: %+v", b)
	}
}

func TestImportSVGPathData(t *testing.T) {
	res := importString(t, `<svg><path d="M 0 0 L 40 0 L 40 30 Z"/></svg>`)
	if len(res.Shapes) != 1 {
		t.Fatalf("expected 1 shape, errors %v warnings %v", res.Errors, res.Warnings)
	}
	b := res.Shapes[0].Bounds()
	if b.Width() != 40 || b.Height() != 30 {
		t.Errorf("triangle bounds: %+v", b)
	}
}

func TestImportSVGRelativePathCommands(t *testing.T) {
	res := importString(t, `<svg><path d="m 10 10 l 20 0 l 0 20 z"/></svg>`)
	if len(res.Shapes) != 1 {
		t.Fatalf("expected 1 shape, errors: %v", res.Errors)
	}
	b := res.Shapes[0].Bounds()
	if b.MinX != 10 || b.MaxX != 30 || b.MinY != 10 || b.MaxY != 30 {
		t.Errorf("relative path bounds: %+v", b)
	}
}

func TestImportSVGCurves(t *testing.T) {
	res := importString(t, `<svg><path d="M 0 0 C 0 10 10 10 10 0"/></svg>`)
	if len(res.Shapes) != 1 {
		t.Fatalf("expected 1 shape, errors: %v", res.Errors)
	}
	// The tessellated curve has interior points between the endpoints.
	p, ok := res.Shapes[0].(*shape.Path)
	if !ok {
		t.Fatal("expected a Path shape")
	}
	if len(p.RenderPath(0.05)) <= 2 {
		t.Error("cubic bezier should tessellate into multiple segments")
	}
}

func TestImportSVGText(t *testing.T) {
	res := importString(t, `<svg><text x="5" y="10" font-size="12">Hello</text></svg>`)
	if len(res.Shapes) != 1 {
		t.Fatalf("expected 1 shape, errors: %v", res.Errors)
	}
	txt, ok := res.Shapes[0].(*shape.Text)
	if !ok {
		t.Fatalf("expected Text shape, got %T", res.Shapes[0])
	}
	if txt.Content != "Hello" || txt.FontSize != 12 {
		t.Errorf("text fields: %+v", txt)
	}
}

func TestImportSVGUnsupportedElementWarns(t *testing.T) {
	res := importString(t, `<svg>
  <rect width="10" height="10"/>
  <filter id="f"><feGaussianBlur/></filter>
</svg>`)
	if len(res.Shapes) != 1 {
		t.Fatalf("rect should import, errors: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "filter") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning about <filter>, got %v", res.Warnings)
	}
}

func TestImportSVGEmptyErrors(t *testing.T) {
	res := importString(t, `<svg></svg>`)
	if !res.Failed() {
		t.Error("an SVG with no supported elements should fail")
	}
}

func TestTokenizePathDataNegativeNumbers(t *testing.T) {
	toks := tokenizePathData("M10-5L-3.5-2")
	want := []string{"M", "10", "-5", "L", "-3.5", "-2"}
	if len(toks) != len(want) {
		t.Fatalf("tokens %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, toks[i], want[i])
		}
	}
}
