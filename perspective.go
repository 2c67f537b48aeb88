package vmap

import "math"

// Perspective is a planar projective transform (homography). It maps the
// unit square (0,0) (1,0) (1,1) (0,1) onto an arbitrary quadrilateral.
//
// A point (u, v) maps to
//
//	x = (a11*u + a21*v + a31) / (a13*u + a23*v + a33)
//	y = (a12*u + a22*v + a32) / (a13*u + a23*v + a33)
type Perspective struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// SquareToQuad computes the transform taking the unit square corners to
// q[0] (top-left), q[1] (top-right), q[2] (bottom-right) and q[3]
// (bottom-left). Parallelograms take the affine shortcut.
func SquareToQuad(q [4]Point) Perspective {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return Perspective{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return Perspective{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// Apply maps a unit-square coordinate to the destination quad.
func (pt Perspective) Apply(u, v float64) Point {
	w := pt.a13*u + pt.a23*v + pt.a33
	return Point{
		X: (pt.a11*u + pt.a21*v + pt.a31) / w,
		Y: (pt.a12*u + pt.a22*v + pt.a32) / w,
	}
}

// Determinant returns the determinant of the 3x3 matrix.
func (pt Perspective) Determinant() float64 {
	return pt.a11*(pt.a22*pt.a33-pt.a23*pt.a32) -
		pt.a21*(pt.a12*pt.a33-pt.a13*pt.a32) +
		pt.a31*(pt.a12*pt.a23-pt.a13*pt.a22)
}

// Singular reports whether the transform cannot be inverted, which happens
// when the destination quad is degenerate (collinear or coincident corners).
func (pt Perspective) Singular() bool {
	d := pt.Determinant()
	return math.IsNaN(d) || math.IsInf(d, 0) || math.Abs(d) < 1e-12
}

// Folded reports whether the vanishing line of the transform touches the
// unit square. The grid of a folded transform passes through infinity, which
// happens for non-convex destination quads.
func (pt Perspective) Folded() bool {
	w := [4]float64{pt.a33, pt.a13 + pt.a33, pt.a13 + pt.a23 + pt.a33, pt.a23 + pt.a33}
	for _, wi := range w[1:] {
		if wi*w[0] <= 0 || !finite(wi) {
			return true
		}
	}
	return w[0] == 0 || !finite(w[0])
}

// adjoint returns the transpose of the cofactor matrix. It is the inverse up
// to a scale factor, which cancels in the projective division.
func (pt Perspective) adjoint() Perspective {
	return Perspective{
		a11: pt.a22*pt.a33 - pt.a23*pt.a32,
		a21: pt.a23*pt.a31 - pt.a21*pt.a33,
		a31: pt.a21*pt.a32 - pt.a22*pt.a31,
		a12: pt.a13*pt.a32 - pt.a12*pt.a33,
		a22: pt.a11*pt.a33 - pt.a13*pt.a31,
		a32: pt.a12*pt.a31 - pt.a11*pt.a32,
		a13: pt.a12*pt.a23 - pt.a13*pt.a22,
		a23: pt.a13*pt.a21 - pt.a11*pt.a23,
		a33: pt.a11*pt.a22 - pt.a12*pt.a21,
	}
}

// Inverse maps a screen position back into unit-square space.
// It returns ErrTransformSingular for degenerate quads and for points on
// the transform's vanishing line.
func (pt Perspective) Inverse(x, y float64) (Point, error) {
	if pt.Singular() {
		return Point{}, ErrTransformSingular
	}
	p := pt.adjoint().Apply(x, y)
	if !finite(p.X) || !finite(p.Y) {
		return Point{}, ErrTransformSingular
	}
	return p, nil
}

// Grid samples the transform on a (res+1) x (res+1) lattice. Point (i, j)
// is stored at index j*(res+1)+i and carries the texture coordinate of its
// lattice position inside win. Both endpoints 0 and 1 are always sampled.
func (pt Perspective) Grid(res int, win TextureWindow) []Point {
	n := res + 1
	pts := make([]Point, n*n)
	for j := 0; j < n; j++ {
		pv := float64(j) / float64(res)
		for i := 0; i < n; i++ {
			pu := float64(i) / float64(res)
			p := pt.Apply(pu, pv)
			p.U, p.V = win.uv(pu, pv)
			pts[j*n+i] = p
		}
	}
	return pts
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
