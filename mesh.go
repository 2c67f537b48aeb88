package vmap

// Cell is one mesh tile as four distinct vertices in the order top-left,
// top-right, bottom-right, bottom-left. Vertices are copied per cell so a
// renderer can draw each cell without index buffers.
type Cell [4]Point

// Mesh is the sampled (res+1) x (res+1) grid of a surface together with
// its derived cells and boundary. A Mesh is immutable once built; surfaces
// replace it on every geometry change, so it can be shared with readers on
// other goroutines.
type Mesh struct {
	res     int
	points  []Point
	cells   []Cell
	outline Polygon
}

// newMesh takes ownership of pts, which must hold (res+1)^2 points with
// (i, j) at index j*(res+1)+i.
func newMesh(res int, pts []Point) *Mesh {
	m := &Mesh{res: res, points: pts}
	m.cells = make([]Cell, 0, res*res)
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			m.cells = append(m.cells, Cell{
				m.At(i, j),
				m.At(i+1, j),
				m.At(i+1, j+1),
				m.At(i, j+1),
			})
		}
	}
	m.outline = m.boundary()
	return m
}

// Resolution returns the number of cells per axis.
func (m *Mesh) Resolution() int { return m.res }

// At returns grid point (i, j). i runs left to right, j top to bottom.
func (m *Mesh) At(i, j int) Point {
	return m.points[j*(m.res+1)+i]
}

// Points returns a copy of the grid in row-major order.
func (m *Mesh) Points() []Point {
	return append([]Point(nil), m.points...)
}

// Cells returns the duplicated-vertex cells in row-major order.
// The slice is shared and must not be modified.
func (m *Mesh) Cells() []Cell { return m.cells }

// Outline returns the closed boundary of the grid.
// The slice is shared and must not be modified.
func (m *Mesh) Outline() Polygon { return m.outline }

// boundary walks the top row left to right, the right column top to
// bottom, the bottom row right to left and the left column bottom to top.
func (m *Mesh) boundary() Polygon {
	r := m.res
	pg := make(Polygon, 0, 4*r)
	for i := 0; i < r; i++ {
		pg = append(pg, m.At(i, 0).XY())
	}
	for i := 0; i < r; i++ {
		pg = append(pg, m.At(r, i).XY())
	}
	for i := 0; i < r; i++ {
		pg = append(pg, m.At(r-i, r).XY())
	}
	for i := 0; i < r; i++ {
		pg = append(pg, m.At(0, r-i).XY())
	}
	return pg
}
