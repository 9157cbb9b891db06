// Package importer converts external vector files (DXF, SVG) into Path
// shapes and batch job lists (CSV, Excel) into CAM job descriptions.
// Imports are forgiving: unsupported entities are skipped with a warning
// and malformed job rows are skipped with a per-row error, never aborting
// the whole file.
package importer

import (
	"github.com/gcodekit5/gcodekit5/internal/core"
	"github.com/gcodekit5/gcodekit5/internal/shape"
)

// Result holds the outcome of a vector import: the shapes produced plus
// per-entity warnings and file-level errors. Errors leave the document
// unchanged; warnings accompany a partial import.
type Result struct {
	Shapes   []shape.Shape
	Warnings []string
	Errors   []string
}

// Failed reports whether the import produced nothing usable.
func (r Result) Failed() bool {
	return len(r.Shapes) == 0 && len(r.Errors) > 0
}

// IDSource mints shape ids for imported shapes; the designer's allocator
// satisfies it.
type IDSource interface {
	Next() int64
}

var _ IDSource = (*core.ShapeIDAllocator)(nil)
