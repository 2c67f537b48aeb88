package vmap

// ForceStep is the increment applied by the force adjusters.
const ForceStep = 2

// BezierSurface is a bicubic patch defined by four corners and eight
// handles, with an optional dome correction.
type BezierSurface struct {
	surfaceBase
	points       [4]ControlPoint
	hForce       int
	vForce       int
	activeHandle int
}

// NewBezierSurface creates a patch from explicit control points. res is
// rounded up to an even value of at least 2 and at most MaxResolution.
func NewBezierSurface(id, res int, points [4]ControlPoint) *BezierSurface {
	s := &BezierSurface{
		surfaceBase:  newSurfaceBase(id, bezierResolution(res)),
		points:       points,
		activeHandle: CornerNone,
	}
	s.rebuild = s.update
	s.update()
	return s
}

// SpawnBezierSurface creates a DefaultSize square patch centered on (x, y)
// with handles at 30% of the edge length along each edge.
func SpawnBezierSurface(id, res int, x, y float64) *BezierSurface {
	c := spawnCorners(x, y)
	o := DefaultSize * 0.3
	return NewBezierSurface(id, res, [4]ControlPoint{
		{Point: c[0], Handle0: c[0].Translate(0, o), Handle1: c[0].Translate(o, 0)},
		{Point: c[1], Handle0: c[1].Translate(-o, 0), Handle1: c[1].Translate(0, o)},
		{Point: c[2], Handle0: c[2].Translate(0, -o), Handle1: c[2].Translate(-o, 0)},
		{Point: c[3], Handle0: c[3].Translate(o, 0), Handle1: c[3].Translate(0, -o)},
	})
}

func bezierResolution(res int) int {
	res = min(res, MaxResolution)
	if res%2 != 0 {
		res++
	}
	return max(res, 2)
}

// Kind returns KindBezier.
func (s *BezierSurface) Kind() Kind { return KindBezier }

// Corner returns the position of corner i (0-3).
func (s *BezierSurface) Corner(i int) Point { return s.points[i].Point }

// Corners returns the four corner positions.
func (s *BezierSurface) Corners() [4]Point {
	var c [4]Point
	for i, cp := range s.points {
		c[i] = cp.Point
	}
	return c
}

// ControlPoints returns the corners with their handles.
func (s *BezierSurface) ControlPoints() [4]ControlPoint { return s.points }

// SetCorner moves corner i to (x, y). Its handles stay where they are.
func (s *BezierSurface) SetCorner(i int, x, y float64) {
	s.points[i].Point = Pt(x, y)
	s.update()
}

// SetCorners sets the corner positions from x0, y0, ..., x3, y3.
// Handles are not moved.
func (s *BezierSurface) SetCorners(c [8]float64) {
	for i := range s.points {
		s.points[i].Point = Pt(c[2*i], c[2*i+1])
	}
	s.update()
}

// MoveCorner translates corner i together with both of its handles.
func (s *BezierSurface) MoveCorner(i int, dx, dy float64) {
	s.points[i] = s.points[i].Translate(dx, dy)
	s.update()
}

// Translate moves every corner and handle by (dx, dy).
func (s *BezierSurface) Translate(dx, dy float64) {
	for i := range s.points {
		s.points[i] = s.points[i].Translate(dx, dy)
	}
	s.update()
}

// Center returns the mean of the four corners.
func (s *BezierSurface) Center() Point {
	c := s.Corners()
	return Mean(c[:]...)
}

// RotateCorners relabels the corner positions by one slot. Handles keep
// their slots and are not rotated with the corners, so a rotated patch
// generally bends differently than before.
func (s *BezierSurface) RotateCorners(dir Rotation) {
	r := rotated(s.Corners(), dir)
	for i := range s.points {
		s.points[i].Point = r[i]
	}
	s.update()
}

// Handle returns handle h (0-7): handle h%2 of corner h/2.
func (s *BezierSurface) Handle(h int) Point {
	return s.points[h/2].Handle(h % 2)
}

// SetHandle moves handle h (0-7) to (x, y).
func (s *BezierSurface) SetHandle(h int, x, y float64) {
	cp := &s.points[h/2]
	if h%2 == 0 {
		cp.Handle0 = Pt(x, y)
	} else {
		cp.Handle1 = Pt(x, y)
	}
	s.update()
}

// MoveHandle translates handle h (0-7) by (dx, dy).
func (s *BezierSurface) MoveHandle(h int, dx, dy float64) {
	p := s.Handle(h)
	s.SetHandle(h, p.X+dx, p.Y+dy)
}

// ActiveHandleIndex returns the first handle within radius of (x, y), or
// CornerNone.
func (s *BezierSurface) ActiveHandleIndex(x, y, radius float64) int {
	p := Pt(x, y)
	for h := 0; h < 8; h++ {
		if s.Handle(h).Distance(p) < radius {
			return h
		}
	}
	return CornerNone
}

// ActiveHandle returns the handle being dragged, or CornerNone.
func (s *BezierSurface) ActiveHandle() int { return s.activeHandle }

func (s *BezierSurface) setActiveHandle(h int) { s.activeHandle = h }

// HorizontalForce returns the horizontal dome correction.
func (s *BezierSurface) HorizontalForce() int { return s.hForce }

// VerticalForce returns the vertical dome correction.
func (s *BezierSurface) VerticalForce() int { return s.vForce }

// SetForces sets both dome corrections. Any integer is allowed.
func (s *BezierSurface) SetForces(h, v int) {
	s.hForce, s.vForce = h, v
	s.update()
}

func (s *BezierSurface) IncreaseHorizontalForce() { s.SetForces(s.hForce+ForceStep, s.vForce) }
func (s *BezierSurface) DecreaseHorizontalForce() { s.SetForces(s.hForce-ForceStep, s.vForce) }
func (s *BezierSurface) IncreaseVerticalForce()   { s.SetForces(s.hForce, s.vForce+ForceStep) }
func (s *BezierSurface) DecreaseVerticalForce()   { s.SetForces(s.hForce, s.vForce-ForceStep) }

// SetResolution sets the number of cells per axis, rounded up to an even
// value within [2, MaxResolution].
func (s *BezierSurface) SetResolution(res int) {
	s.res = bezierResolution(res)
	s.update()
}

// IncreaseResolution adds two cells per axis.
func (s *BezierSurface) IncreaseResolution() { s.SetResolution(s.res + 2) }

// DecreaseResolution removes two cells per axis, stopping at 2.
func (s *BezierSurface) DecreaseResolution() {
	if s.res-2 >= 2 {
		s.SetResolution(s.res - 2)
	}
}

// ActiveCornerIndex returns the corner within radius of (x, y), CornerInside
// when the point is inside the outline, or CornerNone.
func (s *BezierSurface) ActiveCornerIndex(x, y, radius float64) int {
	return activeCornerIndex(s, x, y, radius)
}

// ScreenToSurface maps a screen position into unit-square coordinates by
// locating the containing mesh cell and inverting its perspective. Points
// outside the patch yield the origin.
func (s *BezierSurface) ScreenToSurface(x, y float64) Point {
	r := float64(s.res)
	for k, c := range s.mesh.Cells() {
		quad := [4]Point{c[0].XY(), c[1].XY(), c[2].XY(), c[3].XY()}
		if !Polygon(quad[:]).Contains(x, y) {
			continue
		}
		local, err := SquareToQuad(quad).Inverse(x, y)
		if err != nil {
			continue
		}
		i, j := k%s.res, k/s.res
		return Pt((float64(i)+local.X)/r, (float64(j)+local.Y)/r)
	}
	Logger().Debug("vmap: inverse mapping fell back to origin", "surface", s.id)
	return Point{}
}

// LongestSide returns the longest corner-to-corner edge.
func (s *BezierSurface) LongestSide() float64 { return longestSide(s.Corners()) }

func (s *BezierSurface) update() {
	s.mesh = newMesh(s.res, PatchGrid(s.points, s.res, s.hForce, s.vForce, s.window))
}
