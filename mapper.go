package vmap

import (
	"fmt"
	"image/color"
	"slices"
)

// Threshold defaults and limits, in pixels.
const (
	DefaultSnapDistance    = 30
	DefaultSelectionRadius = 15

	minSnapDistance    = 6
	maxSnapDistance    = 60
	minSelectionRadius = 16
	maxSelectionRadius = 60
	thresholdStep      = 2
)

// SpawnResolution is the resolution of surfaces spawned from the keyboard.
const SpawnResolution = 3

// Mapper owns an ordered collection of surfaces and turns pointer and key
// events into surface edits. List order is z-order: the last surface is
// drawn on top and hit first.
//
// A Mapper is not safe for concurrent use. Hosts that render or serve
// requests on other goroutines hand out Snapshots instead.
type Mapper struct {
	width, height int
	opts          mapperOptions

	surfaces []Surface
	selected []Surface
	nextID   int
	mode     Mode

	grouping bool
	ctrlDown bool
	altDown  bool
	dragging bool
	noLasso  bool
	origin   *Point
	lasso    *Rect
	pointer  Point

	snap            bool
	snapDistance    float64
	selectionRadius float64
}

// NewMapper creates an empty Mapper for a canvas of the given size in
// calibrate mode with snapping enabled.
func NewMapper(width, height int, opts ...MapperOption) *Mapper {
	o := defaultMapperOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.images == nil {
		o.images = NewFileImageLoader(o.layoutDir)
	}
	return &Mapper{
		width:           width,
		height:          height,
		opts:            o,
		mode:            ModeCalibrate,
		snap:            true,
		snapDistance:    o.snapDistance,
		selectionRadius: o.selectionRadius,
	}
}

// Size returns the canvas size.
func (m *Mapper) Size() (width, height int) { return m.width, m.height }

// SetSize changes the canvas size used by Render.
func (m *Mapper) SetSize(width, height int) { m.width, m.height = width, height }

// Images returns the loader resolving texture filenames.
func (m *Mapper) Images() ImageLoader { return m.opts.images }

// NextID returns the id the next created surface will get.
func (m *Mapper) NextID() int { return m.nextID }

// AddQuad spawns a DefaultSize quad centered on (x, y).
func (m *Mapper) AddQuad(x, y float64, res int) *QuadSurface {
	s := SpawnQuadSurface(m.nextID, res, x, y)
	m.add(s)
	return s
}

// AddQuadCorners creates a quad with explicit corners.
func (m *Mapper) AddQuadCorners(corners [4]Point, res int) *QuadSurface {
	s := NewQuadSurface(m.nextID, res, corners)
	m.add(s)
	return s
}

// AddBezier spawns a DefaultSize Bezier patch centered on (x, y).
func (m *Mapper) AddBezier(x, y float64, res int) *BezierSurface {
	s := SpawnBezierSurface(m.nextID, res, x, y)
	m.add(s)
	return s
}

// AddBezierPoints creates a Bezier patch with explicit control points.
func (m *Mapper) AddBezierPoints(points [4]ControlPoint, res int) *BezierSurface {
	s := NewBezierSurface(m.nextID, res, points)
	m.add(s)
	return s
}

func (m *Mapper) add(s Surface) {
	if c, ok := m.paletteColor(s.ID()); ok {
		s.SetColor(c)
	}
	s.SetMode(m.mode)
	m.surfaces = append(m.surfaces, s)
	m.nextID = max(m.nextID, s.ID()+1)
	Logger().Info("vmap: surface added", "surface", s.ID(), "kind", s.Kind())
}

// Surface returns the surface with the given id.
func (m *Mapper) Surface(id int) (Surface, bool) {
	i := m.index(id)
	if i < 0 {
		return nil, false
	}
	return m.surfaces[i], true
}

func (m *Mapper) index(id int) int {
	return slices.IndexFunc(m.surfaces, func(s Surface) bool { return s.ID() == id })
}

// Surfaces returns the surfaces in z-order, bottom first.
func (m *Mapper) Surfaces() []Surface { return slices.Clone(m.surfaces) }

// Len returns the number of surfaces.
func (m *Mapper) Len() int { return len(m.surfaces) }

// RemoveSurface removes one surface. Locked surfaces are refused with
// ErrSurfaceLocked.
func (m *Mapper) RemoveSurface(id int) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("vmap: remove %d: %w", id, ErrSurfaceNotFound)
	}
	s := m.surfaces[i]
	if s.Locked() {
		return fmt.Errorf("vmap: remove %d: %w", id, ErrSurfaceLocked)
	}
	m.deselect(s)
	m.surfaces = slices.Delete(m.surfaces, i, i+1)
	m.afterRemove()
	Logger().Info("vmap: surface removed", "surface", id)
	return nil
}

// RemoveSelected removes every selected surface. If any of them is locked
// nothing is removed and ErrSurfaceLocked is returned.
func (m *Mapper) RemoveSelected() error {
	for _, s := range m.selected {
		if s.Locked() {
			return fmt.Errorf("vmap: remove selection: surface %d: %w", s.ID(), ErrSurfaceLocked)
		}
	}
	ids := m.SelectedIDs()
	m.surfaces = slices.DeleteFunc(m.surfaces, func(s Surface) bool { return s.Selected() })
	m.selected = nil
	m.grouping = false
	m.afterRemove()
	if len(ids) > 0 {
		Logger().Info("vmap: surfaces removed", "surfaces", ids)
	}
	return nil
}

func (m *Mapper) afterRemove() {
	if len(m.surfaces) == 0 {
		m.nextID = 0
	}
}

// Clear removes every surface regardless of locks and resets selection.
func (m *Mapper) Clear() {
	m.surfaces = nil
	m.selected = nil
	m.grouping = false
	m.nextID = 0
}

// BringToFront moves a surface to the top of the z-order.
func (m *Mapper) BringToFront(id int) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("vmap: bring %d to front: %w", id, ErrSurfaceNotFound)
	}
	s := m.surfaces[i]
	m.surfaces = append(slices.Delete(m.surfaces, i, i+1), s)
	return nil
}

// Mode returns the global mode.
func (m *Mapper) Mode() Mode { return m.mode }

// SetMode sets the global mode and mirrors it onto every surface.
func (m *Mapper) SetMode(mode Mode) {
	m.mode = mode
	for _, s := range m.surfaces {
		s.SetMode(mode)
	}
}

// SetModeCalibrate switches to calibrate mode.
func (m *Mapper) SetModeCalibrate() { m.SetMode(ModeCalibrate) }

// SetModeRender switches to render mode.
func (m *Mapper) SetModeRender() { m.SetMode(ModeRender) }

// ToggleMode switches between calibrate and render mode.
func (m *Mapper) ToggleMode() {
	if m.mode == ModeCalibrate {
		m.SetMode(ModeRender)
	} else {
		m.SetMode(ModeCalibrate)
	}
}

// SnapEnabled reports whether corners snap on release.
func (m *Mapper) SnapEnabled() bool { return m.snap }

// SetSnapEnabled turns corner snapping on or off.
func (m *Mapper) SetSnapEnabled(on bool) { m.snap = on }

// ToggleSnap flips corner snapping.
func (m *Mapper) ToggleSnap() { m.snap = !m.snap }

// SnapDistance returns the snap distance in pixels.
func (m *Mapper) SnapDistance() float64 { return m.snapDistance }

// SetSnapDistance sets the snap distance in pixels.
func (m *Mapper) SetSnapDistance(d float64) { m.snapDistance = d }

// SelectionRadius returns the corner hit radius in pixels.
func (m *Mapper) SelectionRadius() float64 { return m.selectionRadius }

// SetSelectionRadius sets the corner hit radius in pixels.
func (m *Mapper) SetSelectionRadius(r float64) { m.selectionRadius = r }

// Grouping reports whether multi-surface selection is active.
func (m *Mapper) Grouping() bool { return m.grouping }

// Lasso returns the current selection rectangle, if a lasso drag is in
// progress.
func (m *Mapper) Lasso() (Rect, bool) {
	if m.lasso == nil {
		return Rect{}, false
	}
	return *m.lasso, true
}

// Pointer returns the last known pointer position.
func (m *Mapper) Pointer() Point { return m.pointer }

// Selected returns the selected surfaces.
func (m *Mapper) Selected() []Surface { return slices.Clone(m.selected) }

// SelectedIDs returns the ids of the selected surfaces.
func (m *Mapper) SelectedIDs() []int {
	ids := make([]int, len(m.selected))
	for i, s := range m.selected {
		ids[i] = s.ID()
	}
	return ids
}

// Select adds a surface to the selection. With additive false the
// previous selection is cleared first.
func (m *Mapper) Select(id int, additive bool) error {
	s, ok := m.Surface(id)
	if !ok {
		return fmt.Errorf("vmap: select %d: %w", id, ErrSurfaceNotFound)
	}
	if additive {
		m.addSelected(s)
		m.grouping = len(m.selected) > 1
	} else {
		m.selectOnly(s)
	}
	return nil
}

// ClearSelection deselects everything and ends grouping.
func (m *Mapper) ClearSelection() {
	for _, s := range m.selected {
		s.base().setSelected(false)
	}
	m.selected = nil
	m.grouping = false
}

func (m *Mapper) selectOnly(s Surface) {
	for _, o := range m.selected {
		o.base().setSelected(false)
	}
	m.selected = []Surface{s}
	s.base().setSelected(true)
}

func (m *Mapper) addSelected(s Surface) {
	s.base().setSelected(true)
	if !slices.Contains(m.selected, s) {
		m.selected = append(m.selected, s)
	}
}

func (m *Mapper) deselect(s Surface) {
	s.base().setSelected(false)
	m.selected = slices.DeleteFunc(m.selected, func(o Surface) bool { return o.ID() == s.ID() })
}

// ShakeAll starts a shake on every surface.
func (m *Mapper) ShakeAll(strength, speed float64, falloff int) {
	for _, s := range m.surfaces {
		s.SetShake(strength, speed, falloff)
	}
}

// Tick advances per-frame animation state and reports whether any surface
// was animating.
func (m *Mapper) Tick() bool {
	moved := false
	for _, s := range m.surfaces {
		if s.Shaking() {
			moved = true
		}
		s.Tick()
	}
	return moved
}

// paletteColor returns the calibration color for an id.
func (m *Mapper) paletteColor(id int) (color.NRGBA, bool) {
	if len(m.opts.palette) == 0 {
		return color.NRGBA{}, false
	}
	return m.opts.palette[id%len(m.opts.palette)], true
}
