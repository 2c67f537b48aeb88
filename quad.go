package vmap

// QuadSurface is a perspective-mapped quadrilateral.
type QuadSurface struct {
	surfaceBase
	corners   [4]Point
	transform Perspective
}

// NewQuadSurface creates a quad with explicit corners in the order
// top-left, top-right, bottom-right, bottom-left. res is clamped to
// [1, MaxResolution].
func NewQuadSurface(id, res int, corners [4]Point) *QuadSurface {
	s := &QuadSurface{surfaceBase: newSurfaceBase(id, quadResolution(res))}
	s.rebuild = s.update
	for i, c := range corners {
		s.corners[i] = c.XY()
	}
	s.update()
	return s
}

// SpawnQuadSurface creates a DefaultSize square quad centered on (x, y).
func SpawnQuadSurface(id, res int, x, y float64) *QuadSurface {
	return NewQuadSurface(id, res, spawnCorners(x, y))
}

// Kind returns KindQuad.
func (s *QuadSurface) Kind() Kind { return KindQuad }

// Corner returns corner i (0-3).
func (s *QuadSurface) Corner(i int) Point { return s.corners[i] }

// Corners returns all four corners.
func (s *QuadSurface) Corners() [4]Point { return s.corners }

// SetCorner moves corner i to (x, y).
func (s *QuadSurface) SetCorner(i int, x, y float64) {
	s.corners[i] = Pt(x, y)
	s.update()
}

// SetCorners sets all corners from x0, y0, ..., x3, y3.
func (s *QuadSurface) SetCorners(c [8]float64) {
	for i := range s.corners {
		s.corners[i] = Pt(c[2*i], c[2*i+1])
	}
	s.update()
}

// MoveCorner translates corner i by (dx, dy).
func (s *QuadSurface) MoveCorner(i int, dx, dy float64) {
	s.corners[i] = s.corners[i].Translate(dx, dy)
	s.update()
}

// Translate moves the whole surface by (dx, dy).
func (s *QuadSurface) Translate(dx, dy float64) {
	for i := range s.corners {
		s.corners[i] = s.corners[i].Translate(dx, dy)
	}
	s.update()
}

// Center returns the mean of the four corners.
func (s *QuadSurface) Center() Point { return Mean(s.corners[:]...) }

// RotateCorners relabels the corners by one slot.
func (s *QuadSurface) RotateCorners(dir Rotation) {
	s.corners = rotated(s.corners, dir)
	s.update()
}

// SetResolution sets the number of cells per axis within [1, MaxResolution].
func (s *QuadSurface) SetResolution(res int) {
	s.res = quadResolution(res)
	s.update()
}

func quadResolution(res int) int { return min(max(res, 1), MaxResolution) }

// IncreaseResolution adds one cell per axis.
func (s *QuadSurface) IncreaseResolution() { s.SetResolution(s.res + 1) }

// DecreaseResolution removes one cell per axis, stopping at 1.
func (s *QuadSurface) DecreaseResolution() {
	if s.res > 1 {
		s.SetResolution(s.res - 1)
	}
}

// ActiveCornerIndex returns the corner within radius of (x, y), CornerInside
// when the point is inside the outline, or CornerNone.
func (s *QuadSurface) ActiveCornerIndex(x, y, radius float64) int {
	return activeCornerIndex(s, x, y, radius)
}

// Transform returns the current square-to-quad transform.
func (s *QuadSurface) Transform() Perspective { return s.transform }

// ScreenToSurface maps a screen position into unit-square coordinates.
// A degenerate quad yields the origin.
func (s *QuadSurface) ScreenToSurface(x, y float64) Point {
	p, err := s.transform.Inverse(x, y)
	if err != nil {
		Logger().Debug("vmap: inverse mapping fell back to origin",
			"surface", s.id, "err", err)
		return Point{}
	}
	return p
}

// LongestSide returns the longest corner-to-corner edge.
func (s *QuadSurface) LongestSide() float64 { return longestSide(s.corners) }

// update resamples the grid and re-syncs the corners from the realized
// grid extremes.
func (s *QuadSurface) update() {
	s.transform = SquareToQuad(s.corners)
	if s.transform.Singular() || s.transform.Folded() {
		s.bilinear()
		return
	}
	pts := s.transform.Grid(s.res, s.window)
	for _, p := range pts {
		if !finite(p.X) || !finite(p.Y) {
			s.bilinear()
			return
		}
	}
	m := newMesh(s.res, pts)
	s.mesh = m
	r := s.res
	for i, p := range [4]Point{m.At(0, 0), m.At(r, 0), m.At(r, r), m.At(0, r)} {
		s.corners[i] = p.XY()
	}
}

// bilinear replaces the mesh with the bilinear grid and keeps the corners.
func (s *QuadSurface) bilinear() {
	Logger().Debug("vmap: quad cannot be mapped in perspective, using bilinear grid", "surface", s.id)
	s.mesh = newMesh(s.res, bilinearGrid(s.corners, s.res, s.window))
}

// bilinearGrid interpolates the corners directly. It stands in for the
// perspective grid when the quad is degenerate so the mesh stays finite.
func bilinearGrid(c [4]Point, res int, win TextureWindow) []Point {
	n := res + 1
	pts := make([]Point, n*n)
	for j := 0; j < n; j++ {
		pv := float64(j) / float64(res)
		for i := 0; i < n; i++ {
			pu := float64(i) / float64(res)
			p := c[0].Lerp(c[1], pu).Lerp(c[3].Lerp(c[2], pu), pv).XY()
			p.U, p.V = win.uv(pu, pv)
			pts[j*n+i] = p
		}
	}
	return pts
}
