package vmap

import "math"

// Polygon is a closed boundary. The last point connects back to the first.
type Polygon []Point

// Contains reports whether (x, y) lies inside the polygon using the
// even-odd rule.
func (pg Polygon) Contains(x, y float64) bool {
	n := len(pg)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := pg[i], pg[j]
		if (pi.Y > y) != (pj.Y > y) {
			xCross := pj.X + (y-pj.Y)*(pi.X-pj.X)/(pi.Y-pj.Y)
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Bounds returns the axis-aligned bounding box.
func (pg Polygon) Bounds() Rect {
	if len(pg) == 0 {
		return Rect{}
	}
	r := Rect{Min: pg[0].XY(), Max: pg[0].XY()}
	for _, p := range pg[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Area returns the absolute enclosed area (shoelace formula).
func (pg Polygon) Area() float64 {
	var sum float64
	n := len(pg)
	for i := 0; i < n; i++ {
		a, b := pg[i], pg[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// IntersectsRect reports whether the polygon and r share any area.
func (pg Polygon) IntersectsRect(r Rect) bool {
	if len(pg) < 3 || !pg.Bounds().Overlaps(r) {
		return false
	}
	for _, p := range pg {
		if r.Contains(p) {
			return true
		}
	}
	rc := r.Corners()
	for _, c := range rc {
		if pg.Contains(c.X, c.Y) {
			return true
		}
	}
	n := len(pg)
	for i := 0; i < n; i++ {
		a, b := pg[i], pg[(i+1)%n]
		for k := 0; k < 4; k++ {
			if segmentsIntersect(a, b, rc[k], rc[(k+1)%4]) {
				return true
			}
		}
	}
	return false
}

func orientation(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
