package vmap

import "math"

// ControlPoint is a Bezier surface corner with its two handles.
//
// Handle0 and Handle1 shape the two boundary curves meeting at the corner:
// corner 0 (top-left) uses Handle0 toward corner 3 and Handle1 toward
// corner 1; corner 1 uses Handle0 toward corner 0 and Handle1 toward
// corner 2; corner 2 uses Handle0 toward corner 1 and Handle1 toward
// corner 3; corner 3 uses Handle0 toward corner 2 and Handle1 toward
// corner 0.
type ControlPoint struct {
	Point
	Handle0 Point
	Handle1 Point
}

// Handle returns handle k (0 or 1).
func (cp ControlPoint) Handle(k int) Point {
	if k == 0 {
		return cp.Handle0
	}
	return cp.Handle1
}

// Translate moves the corner and both handles.
func (cp ControlPoint) Translate(dx, dy float64) ControlPoint {
	return ControlPoint{
		Point:   cp.Point.Translate(dx, dy),
		Handle0: cp.Handle0.Translate(dx, dy),
		Handle1: cp.Handle1.Translate(dx, dy),
	}
}

// cubic evaluates a one-dimensional cubic Bezier at t.
func cubic(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

// cubicPoint evaluates a planar cubic Bezier at t.
func cubicPoint(p0, p1, p2, p3 Point, t float64) Point {
	return Point{
		X: cubic(p0.X, p1.X, p2.X, p3.X, t),
		Y: cubic(p0.Y, p1.Y, p2.Y, p3.Y, t),
	}
}

// PatchGrid samples a Bezier patch on a (res+1) x (res+1) lattice.
//
// For row parameter t = j/res the left edge (corner 0 to corner 3) and the
// right edge (corner 1 to corner 2) give the row end points. The row is a
// cubic between them whose inner controls blend the top handles toward the
// bottom handles by 1-t. An orthographic dome correction scaled by hForce
// and vForce is added to every point.
//
// Point (i, j) is stored at index j*(res+1)+i with texture coordinate
// (i/res, j/res) inside win.
func PatchGrid(c [4]ControlPoint, res, hForce, vForce int, win TextureWindow) []Point {
	n := res + 1
	pts := make([]Point, n*n)
	r := float64(res)
	half := float64(res / 2)
	step := math.Pi / r

	for j := 0; j <= res; j++ {
		t := float64(j) / r
		start := cubicPoint(c[0].Point, c[0].Handle0, c[3].Handle1, c[3].Point, t)
		end := cubicPoint(c[1].Point, c[1].Handle1, c[2].Handle0, c[2].Point, t)
		ctl0 := c[0].Handle1.Sub(c[3].Handle0).Mul(1 - t).Add(c[3].Handle0)
		ctl1 := c[1].Handle0.Sub(c[2].Handle1).Mul(1 - t).Add(c[2].Handle1)

		for i := 0; i <= res; i++ {
			s := float64(i) / r
			p := cubicPoint(start, ctl0, ctl1, end, s)

			xfix := math.Cos((float64(j)-half)*step) *
				math.Sin(float64(i)*step-half*step) * float64(hForce)
			yfix := (math.Cos(half*step)*math.Sin(float64(j)*step) -
				math.Sin(half*step)*math.Cos(float64(j)*step)*
					math.Cos(float64(i)*step-half*step)) * float64(vForce)

			p.X += xfix
			p.Y += yfix
			p.U, p.V = win.uv(s, t)
			pts[j*n+i] = p
		}
	}
	return pts
}
