package vmap

import (
	"errors"
	"unicode"
)

// handleEditor is implemented by surfaces with draggable handles.
type handleEditor interface {
	ActiveHandleIndex(x, y, radius float64) int
	ActiveHandle() int
	MoveHandle(h int, dx, dy float64)
	setActiveHandle(h int)
}

// forceEditor is implemented by surfaces with dome correction.
type forceEditor interface {
	IncreaseHorizontalForce()
	DecreaseHorizontalForce()
	IncreaseVerticalForce()
	DecreaseVerticalForce()
}

// HandleEvent dispatches an event to PointerEvent or KeyEvent.
func (m *Mapper) HandleEvent(ev Event) {
	if ev.Kind.IsPointer() {
		m.PointerEvent(ev)
	} else {
		m.KeyEvent(ev)
	}
}

// PointerEvent applies a pointer or wheel event. Outside calibrate mode only
// the pointer position is tracked.
func (m *Mapper) PointerEvent(ev Event) {
	if m.mode == ModeCalibrate {
		switch ev.Kind {
		case EventPointerDown:
			m.pointerDown(ev.X, ev.Y)
		case EventPointerDrag:
			m.pointerDrag(ev.X, ev.Y, ev.Button)
		case EventPointerUp:
			m.pointerUp(ev.X, ev.Y)
		case EventWheel:
			m.wheel(ev.Delta)
		}
	}
	if ev.Kind != EventWheel {
		m.pointer = Pt(ev.X, ev.Y)
	}
}

// pointerDown hit-tests surfaces from the top down. The first hit wins
// unless grouping, in which case every hit surface is considered.
func (m *Mapper) pointerDown(x, y float64) {
	o := Pt(x, y)
	m.origin = &o
	m.noLasso = false

	for i := len(m.surfaces) - 1; i >= 0; i-- {
		s := m.surfaces[i]
		active := CornerNone
		if !s.Hidden() {
			active = s.ActiveCornerIndex(x, y, m.selectionRadius)
		}
		s.base().setActivePoint(active)
		if active >= 0 && active < 4 {
			s.SetSelectedCorner(active)
		}
		handle := CornerNone
		if h, ok := s.(handleEditor); ok {
			if !s.Hidden() {
				handle = h.ActiveHandleIndex(x, y, m.selectionRadius)
			}
			h.setActiveHandle(handle)
		}
		if active == CornerNone && handle == CornerNone {
			continue
		}

		if m.grouping && !m.ctrlDown && !s.Selected() {
			m.ClearSelection()
		}
		m.noLasso = true
		switch {
		case m.ctrlDown && m.grouping:
			if s.Selected() {
				m.deselect(s)
				s.base().setActivePoint(CornerNone)
				if h, ok := s.(handleEditor); ok {
					h.setActiveHandle(CornerNone)
				}
			} else {
				m.addSelected(s)
			}
		case !m.grouping:
			m.selectOnly(s)
		}
		if !m.grouping {
			break
		}
	}

	if m.grouping {
		whole := false
		for _, s := range m.selected {
			if s.ActivePoint() == CornerInside {
				whole = true
				break
			}
		}
		if whole {
			for _, s := range m.selected {
				s.base().setActivePoint(CornerInside)
			}
		}
	}
}

// pointerDrag moves active handles, corners or whole surfaces, or grows
// the lasso when nothing was grabbed. The right button drags at a tenth of
// the pointer speed.
func (m *Mapper) pointerDrag(x, y float64, b Button) {
	dx, dy := x-m.pointer.X, y-m.pointer.Y
	if b == ButtonRight {
		dx, dy = dx*0.1, dy*0.1
	}

	moved := false
	for _, s := range m.surfaces {
		if s.Locked() {
			continue
		}
		if h, ok := s.(handleEditor); ok && h.ActiveHandle() != CornerNone {
			h.MoveHandle(h.ActiveHandle(), dx, dy)
			continue
		}
		switch a := s.ActivePoint(); {
		case a == CornerInside:
			if (m.grouping && m.altDown) || len(m.selected) == 1 {
				s.Translate(dx, dy)
				moved = true
			}
		case a != CornerNone:
			s.MoveCorner(a, dx, dy)
			moved = true
		}
	}
	if moved || m.altDown {
		m.noLasso = true
	}

	if !m.noLasso && m.origin != nil {
		r := NewRect(*m.origin, Pt(x, y))
		m.lasso = &r
		for _, s := range m.surfaces {
			if !s.Hidden() && s.Outline().IntersectsRect(r) {
				m.addSelected(s)
				m.grouping = true
			} else if !m.ctrlDown {
				m.deselect(s)
			}
		}
	}
	m.dragging = true
}

// pointerUp snaps dragged corners, clears active points and deselects
// everything after a plain click on empty space.
func (m *Mapper) pointerUp(x, y float64) {
	if m.snap {
		m.snapCorners()
	}

	hits := 0
	for _, s := range m.surfaces {
		s.base().setActivePoint(CornerNone)
		if h, ok := s.(handleEditor); ok {
			h.setActiveHandle(CornerNone)
		}
		if !s.Hidden() && s.ActiveCornerIndex(x, y, m.selectionRadius) != CornerNone {
			hits++
		}
	}
	if m.dragging {
		hits++
	}
	if hits == 0 {
		m.ClearSelection()
	}

	m.origin = nil
	m.lasso = nil
	m.dragging = false
	m.noLasso = false
}

// snapCorners moves the active corner of every selected, unlocked surface
// onto the nearest corner of another surface within the snap distance.
func (m *Mapper) snapCorners() {
	for _, s := range m.selected {
		a := s.ActivePoint()
		if a == CornerNone || a == CornerInside || s.Locked() {
			continue
		}
		c := s.Corner(a)
		best := m.snapDistance
		var target Point
		found := false
		for _, o := range m.surfaces {
			if o.ID() == s.ID() {
				continue
			}
			for _, oc := range o.Corners() {
				if d := c.Distance(oc); d < best {
					best, target, found = d, oc, true
				}
			}
		}
		if found {
			s.SetCorner(a, target.X, target.Y)
		}
	}
}

// wheel adjusts the snap distance while ctrl is held, otherwise the
// selection radius, by one step within fixed limits.
func (m *Mapper) wheel(delta int) {
	if m.ctrlDown {
		m.snapDistance = stepWithin(m.snapDistance, delta, minSnapDistance, maxSnapDistance)
	} else {
		m.selectionRadius = stepWithin(m.selectionRadius, delta, minSelectionRadius, maxSelectionRadius)
	}
}

// stepWithin moves v one threshold step in the direction of delta. A value
// already outside [lo, hi] is never pushed further out or snapped inward
// against the direction of travel.
func stepWithin(v float64, delta int, lo, hi float64) float64 {
	switch {
	case delta > 0 && v < hi:
		return min(v+thresholdStep, hi)
	case delta < 0 && v > lo:
		return max(v-thresholdStep, lo)
	}
	return v
}

// KeyEvent applies a key event. Only the mode toggle key ('c') and
// modifier tracking work outside calibrate mode.
func (m *Mapper) KeyEvent(ev Event) {
	switch ev.Kind {
	case EventKeyUp:
		switch ev.Key {
		case KeyCtrl:
			m.ctrlDown = false
		case KeyAlt:
			m.altDown = false
		}
		return
	case EventKeyDown:
	default:
		return
	}

	switch ev.Key {
	case KeyCtrl:
		m.ctrlDown = true
		m.grouping = true
		return
	case KeyAlt:
		m.altDown = true
		return
	case KeyRune:
		if unicode.ToLower(ev.Rune) == 'c' {
			m.ToggleMode()
			return
		}
	}
	if m.mode != ModeCalibrate {
		return
	}

	switch ev.Key {
	case KeyUp:
		m.nudge(0, -1)
	case KeyDown:
		m.nudge(0, 1)
	case KeyLeft:
		m.nudge(-1, 0)
	case KeyRight:
		m.nudge(1, 0)
	case KeyDelete, KeyBackspace:
		if err := m.RemoveSelected(); err != nil {
			Logger().Warn("vmap: removal refused", "err", err)
		}
	case KeyEscape:
		m.ClearSelection()
	case KeyRune:
		m.runeDown(unicode.ToLower(ev.Rune))
	}
}

func (m *Mapper) runeDown(r rune) {
	switch r {
	case '1', '2', '3', '4':
		if len(m.selected) == 1 {
			m.selected[0].SetSelectedCorner(int(r - '1'))
		}
	case 'o':
		m.eachSelected(Surface.IncreaseResolution)
	case 'p':
		m.eachSelected(Surface.DecreaseResolution)
	case 'u':
		m.eachForce(forceEditor.IncreaseHorizontalForce)
	case 'i':
		m.eachForce(forceEditor.DecreaseHorizontalForce)
	case 'j':
		m.eachForce(forceEditor.IncreaseVerticalForce)
	case 'k':
		m.eachForce(forceEditor.DecreaseVerticalForce)
	case 'r':
		m.eachSelected(func(s Surface) { s.RotateCorners(Clockwise) })
	case 'e':
		m.eachSelected(func(s Surface) { s.RotateCorners(CounterClockwise) })
	case 't':
		for _, s := range m.selected {
			s.ToggleLocked()
		}
	case 'h':
		for _, s := range m.selected {
			s.SetHidden(!s.Hidden())
		}
	case 'f':
		for _, id := range m.SelectedIDs() {
			_ = m.BringToFront(id)
		}
	case 'n':
		m.ToggleSnap()
	case 's':
		if err := m.Save(m.opts.layoutFile); err != nil {
			Logger().Error("vmap: save failed", "err", err)
		}
	case 'l':
		if _, err := m.Load(m.opts.layoutFile); err != nil {
			msg := "vmap: load failed"
			if errors.Is(err, ErrLayoutMissing) {
				msg = "vmap: no layout to load"
			}
			Logger().Warn(msg, "err", err)
		}
	case 'a':
		m.AddQuad(m.pointer.X, m.pointer.Y, SpawnResolution)
	case 'z':
		m.AddBezier(m.pointer.X, m.pointer.Y, SpawnResolution)
	}
}

// eachSelected applies fn to every selected, unlocked surface.
func (m *Mapper) eachSelected(fn func(Surface)) {
	for _, s := range m.selected {
		if !s.Locked() {
			fn(s)
		}
	}
}

func (m *Mapper) eachForce(fn func(forceEditor)) {
	m.eachSelected(func(s Surface) {
		if f, ok := s.(forceEditor); ok {
			fn(f)
		}
	})
}

// nudge moves the selected corner of every selected, unlocked surface.
func (m *Mapper) nudge(dx, dy float64) {
	m.eachSelected(func(s Surface) {
		if c := s.SelectedCorner(); c != CornerNone {
			s.MoveCorner(c, dx, dy)
		}
	})
}
