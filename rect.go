package vmap

// Rect is an axis-aligned rectangle with Min at the top-left.
type Rect struct {
	Min, Max Point
}

// NewRect creates a rectangle spanning two points in any order.
func NewRect(p1, p2 Point) Rect {
	r := Rect{Min: p1.XY(), Max: p2.XY()}
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps reports whether two rectangles share any area or edge.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X &&
		r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Corners returns the rectangle corners clockwise from Min.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		Pt(r.Min.X, r.Min.Y),
		Pt(r.Max.X, r.Min.Y),
		Pt(r.Max.X, r.Max.Y),
		Pt(r.Min.X, r.Max.Y),
	}
}
