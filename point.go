package vmap

import "math"

// Point is a screen-space position with an optional depth and texture
// coordinate. U and V are only meaningful for mesh points.
type Point struct {
	X, Y, Z float64
	U, V    float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q in the XY plane.
// Z and the texture coordinate of p are preserved.
func (p Point) Add(q Point) Point {
	p.X += q.X
	p.Y += q.Y
	return p
}

// Sub returns p minus q in the XY plane.
func (p Point) Sub(q Point) Point {
	p.X -= q.X
	p.Y -= q.Y
	return p
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	p.X *= s
	p.Y *= s
	return p
}

// Translate returns p moved by (dx, dy).
func (p Point) Translate(dx, dy float64) Point {
	p.X += dx
	p.Y += dy
	return p
}

// Distance returns the planar distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp interpolates every field between p and q.
// t=0 returns p, t=1 returns q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		Z: p.Z + (q.Z-p.Z)*t,
		U: p.U + (q.U-p.U)*t,
		V: p.V + (q.V-p.V)*t,
	}
}

// XY returns the point with only its planar position.
func (p Point) XY() Point {
	return Point{X: p.X, Y: p.Y}
}

// Mean returns the arithmetic mean of the planar positions.
func Mean(pts ...Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}
}
