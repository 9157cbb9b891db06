package shape

import "github.com/gcodekit5/gcodekit5/internal/geo"

// Boolean applies op to a and b's CSG projections and returns the result as
// a new Path shape carrying newID. Per the boolean transition rule, the
// result is always Path regardless of the operands' original variant;
// original identity is lost, matching standard vector-editor behavior.
func Boolean(op geo.BoolOp, a, b Shape, toleranceMM float64, newID int64) *Path {
	result := geo.Boolean(op, a.AsCSG(toleranceMM), b.AsCSG(toleranceMM))
	return NewPath(newID, result)
}

// BooleanMany folds Boolean over shapes in order, left to right.
func BooleanMany(op geo.BoolOp, shapes []Shape, toleranceMM float64, newID int64) *Path {
	if len(shapes) == 0 {
		return NewPath(newID, nil)
	}
	acc := shapes[0].AsCSG(toleranceMM)
	for _, s := range shapes[1:] {
		acc = geo.Boolean(op, acc, s.AsCSG(toleranceMM))
	}
	return NewPath(newID, acc)
}
