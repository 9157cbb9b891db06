package gcode

import "math"

// radiusToCenter resolves an R-form arc (G2/G3 ... R<radius>) to a center
// point left of the from->to chord for a positive r and right of it for a
// negative r. For a counter-clockwise arc that keeps the swept angle at or
// below a half turn for a positive R (the GRBL/LinuxCNC convention) and
// above a half turn for a negative R; applyLine negates R for clockwise
// arcs so the same holds for G2.
func radiusToCenter(from, to Point3D, r float64, plane Plane) Point3D {
	var fx, fy, tx, ty float64
	switch plane {
	case PlaneXY:
		fx, fy, tx, ty = from.X, from.Y, to.X, to.Y
	case PlaneXZ:
		fx, fy, tx, ty = from.X, from.Z, to.X, to.Z
	case PlaneYZ:
		fx, fy, tx, ty = from.Y, from.Z, to.Y, to.Z
	}

	dx, dy := tx-fx, ty-fy
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return from
	}
	absR := math.Abs(r)
	h := math.Sqrt(math.Max(0, absR*absR-(chord/2)*(chord/2)))

	mx, my := (fx+tx)/2, (fy+ty)/2
	// perpendicular unit vector to the chord
	ux, uy := -dy/chord, dx/chord
	sign := 1.0
	if r < 0 {
		sign = -1.0
	}
	cx := mx + sign*h*ux
	cy := my + sign*h*uy

	switch plane {
	case PlaneXY:
		return Point3D{X: cx, Y: cy, Z: from.Z}
	case PlaneXZ:
		return Point3D{X: cx, Y: from.Y, Z: cy}
	default: // PlaneYZ
		return Point3D{X: from.X, Y: cx, Z: cy}
	}
}

// ArcAngles returns the start and end angle (radians, plane-local) of an
// arc command and its swept angle, positive for CCW and negative for CW,
// with magnitude in (0, 2*pi]; a full circle gives exactly 2*pi.
func ArcAngles(cmd GCommand) (start, end, swept float64) {
	fx, fy, tx, ty, cx, cy := planeCoords(cmd)
	start = math.Atan2(fy-cy, fx-cx)
	end = math.Atan2(ty-cy, tx-cx)
	if cmd.CW {
		swept = start - end
	} else {
		swept = end - start
	}
	for swept < 0 {
		swept += 2 * math.Pi
	}
	// Identical start and end with a nonzero radius is a full circle, not
	// a zero-length arc.
	if swept < 1e-12 {
		swept = 2 * math.Pi
	}
	if cmd.CW {
		swept = -swept
	}
	return start, end, swept
}

func planeCoords(cmd GCommand) (fx, fy, tx, ty, cx, cy float64) {
	switch cmd.Plane {
	case PlaneXY:
		return cmd.From.X, cmd.From.Y, cmd.To.X, cmd.To.Y, cmd.Center.X, cmd.Center.Y
	case PlaneXZ:
		return cmd.From.X, cmd.From.Z, cmd.To.X, cmd.To.Z, cmd.Center.X, cmd.Center.Z
	default: // PlaneYZ
		return cmd.From.Y, cmd.From.Z, cmd.To.Y, cmd.To.Z, cmd.Center.Y, cmd.Center.Z
	}
}

// TessellateArc discretizes an arc command into a polyline in its plane's
// 3D space, at roughly toleranceMM chordal deviation, for rendering and CAM
// traversal.
func TessellateArc(cmd GCommand, toleranceMM float64) []Point3D {
	_, _, swept := ArcAngles(cmd)
	radius := math.Hypot(cmd.From.X-cmd.Center.X, cmd.From.Y-cmd.Center.Y)
	if cmd.Plane != PlaneXY {
		radius = math.Hypot(planeRadiusComponents(cmd))
	}
	if radius < 1e-9 {
		return []Point3D{cmd.From, cmd.To}
	}
	if toleranceMM <= 0 {
		toleranceMM = 0.01
	}
	maxStepAngle := 2 * math.Acos(1-math.Min(toleranceMM/radius, 1))
	if maxStepAngle <= 0 || math.IsNaN(maxStepAngle) {
		maxStepAngle = math.Pi / 32
	}
	steps := int(math.Ceil(math.Abs(swept) / maxStepAngle))
	if steps < 1 {
		steps = 1
	}

	start, _, _ := ArcAngles(cmd)
	pts := make([]Point3D, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		angle := start + swept*t
		pts = append(pts, pointOnArc(cmd, angle, t))
	}
	return pts
}

func planeRadiusComponents(cmd GCommand) (a, b float64) {
	fx, fy, _, _, cx, cy := planeCoords(cmd)
	return fx - cx, fy - cy
}

func pointOnArc(cmd GCommand, angle, t float64) Point3D {
	r := math.Hypot(planeRadiusComponents(cmd))
	zFrom, zTo := helixBounds(cmd)
	z := zFrom + (zTo-zFrom)*t
	switch cmd.Plane {
	case PlaneXY:
		return Point3D{X: cmd.Center.X + r*math.Cos(angle), Y: cmd.Center.Y + r*math.Sin(angle), Z: z}
	case PlaneXZ:
		return Point3D{X: cmd.Center.X + r*math.Cos(angle), Y: z, Z: cmd.Center.Z + r*math.Sin(angle)}
	default: // PlaneYZ
		return Point3D{X: z, Y: cmd.Center.Y + r*math.Cos(angle), Z: cmd.Center.Z + r*math.Sin(angle)}
	}
}

// helixBounds returns the out-of-plane axis's from/to value, so an arc with
// a differing Z at from/to (a helix) interpolates linearly across steps.
func helixBounds(cmd GCommand) (from, to float64) {
	switch cmd.Plane {
	case PlaneXY:
		return cmd.From.Z, cmd.To.Z
	case PlaneXZ:
		return cmd.From.Y, cmd.To.Y
	default:
		return cmd.From.X, cmd.To.X
	}
}
