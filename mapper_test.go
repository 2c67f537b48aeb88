package vmap

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestMapper(t *testing.T, opts ...MapperOption) *Mapper {
	t.Helper()
	opts = append([]MapperOption{WithLayoutDir(t.TempDir())}, opts...)
	return NewMapper(800, 600, opts...)
}

func press(m *Mapper, x, y float64) {
	m.HandleEvent(NewPointerEvent(EventPointerDown, x, y, ButtonLeft))
}

func drag(m *Mapper, x, y float64) {
	m.HandleEvent(NewPointerEvent(EventPointerDrag, x, y, ButtonLeft))
}

func release(m *Mapper, x, y float64) {
	m.HandleEvent(NewPointerEvent(EventPointerUp, x, y, ButtonLeft))
}

func click(m *Mapper, x, y float64) {
	press(m, x, y)
	release(m, x, y)
}

func key(m *Mapper, k Key) {
	m.HandleEvent(NewKeyEvent(EventKeyDown, k))
}

func keyUp(m *Mapper, k Key) {
	m.HandleEvent(NewKeyEvent(EventKeyUp, k))
}

func typeRunes(m *Mapper, s string) {
	for _, r := range s {
		m.HandleEvent(NewRuneEvent(r))
	}
}

func TestMapperAddAssignsIDs(t *testing.T) {
	m := newTestMapper(t)
	a := m.AddQuad(100, 100, 3)
	b := m.AddBezier(300, 100, 3)
	if a.ID() != 0 || b.ID() != 1 || m.NextID() != 2 {
		t.Fatalf("ids = %d, %d next %d", a.ID(), b.ID(), m.NextID())
	}
	if b.Resolution() != 4 {
		t.Errorf("bezier resolution = %d, want 4", b.Resolution())
	}
	if a.Color() != DefaultPalette[0] || b.Color() != DefaultPalette[1] {
		t.Errorf("palette colors = %v, %v", a.Color(), b.Color())
	}
	if got, ok := m.Surface(1); !ok || got != Surface(b) {
		t.Errorf("Surface(1) = %v, %v", got, ok)
	}
	if _, ok := m.Surface(7); ok {
		t.Error("Surface(7) found")
	}
}

func TestCornerDrag(t *testing.T) {
	m := newTestMapper(t)
	s := m.AddQuad(100, 100, 3)

	press(m, 52, 52)
	if s.ActivePoint() != 0 || !s.Selected() {
		t.Fatalf("active = %d selected = %v", s.ActivePoint(), s.Selected())
	}
	drag(m, 62, 62)
	release(m, 62, 62)

	if got := s.Corner(0); !pointsEqual(got, Pt(60, 60), 1e-9) {
		t.Errorf("corner 0 = %v, want (60, 60)", got)
	}
	if got := s.Corner(2); !pointsEqual(got, Pt(150, 150), 1e-9) {
		t.Errorf("corner 2 moved to %v", got)
	}
	if s.ActivePoint() != CornerNone {
		t.Errorf("active point after release = %d", s.ActivePoint())
	}
	if s.SelectedCorner() != 0 {
		t.Errorf("SelectedCorner() = %d, want 0", s.SelectedCorner())
	}
	if diff := cmp.Diff([]int{0}, m.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestInsideDragTranslates(t *testing.T) {
	tests := []struct {
		name   string
		button Button
		want   Point
	}{
		{"left", ButtonLeft, Pt(60, 55)},
		{"right button", ButtonRight, Pt(51, 50.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t)
			s := m.AddQuad(100, 100, 2)
			press(m, 100, 100)
			m.HandleEvent(NewPointerEvent(EventPointerDrag, 110, 105, tt.button))
			release(m, 110, 105)
			if got := s.Corner(0); !pointsEqual(got, tt.want, 1e-9) {
				t.Errorf("corner 0 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLockedSurfaceDoesNotMove(t *testing.T) {
	m := newTestMapper(t)
	s := m.AddQuad(100, 100, 2)
	s.SetLocked(true)
	before := s.Corners()

	press(m, 52, 52)
	drag(m, 80, 80)
	release(m, 80, 80)
	press(m, 100, 100)
	drag(m, 120, 120)
	release(m, 120, 120)

	if s.Corners() != before {
		t.Errorf("locked surface moved: %v", s.Corners())
	}
}

func TestClickOnEmptySpaceDeselects(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	click(m, 100, 100)
	if len(m.Selected()) != 1 {
		t.Fatalf("selection after click = %v", m.SelectedIDs())
	}
	click(m, 500, 500)
	if len(m.Selected()) != 0 {
		t.Errorf("selection after empty click = %v", m.SelectedIDs())
	}
}

func TestTopmostSurfaceWins(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	top := m.AddQuad(120, 120, 2)
	click(m, 110, 110)
	if diff := cmp.Diff([]int{top.ID()}, m.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}

	top.SetHidden(true)
	click(m, 110, 110)
	if diff := cmp.Diff([]int{0}, m.SelectedIDs()); diff != "" {
		t.Errorf("hidden surface was hit (-want +got):\n%s", diff)
	}
}

func TestCtrlClickTogglesSelection(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	m.AddQuad(300, 100, 2)

	key(m, KeyCtrl)
	if !m.Grouping() {
		t.Fatal("ctrl did not enable grouping")
	}
	click(m, 100, 100)
	click(m, 300, 100)
	if diff := cmp.Diff([]int{0, 1}, m.SelectedIDs()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	click(m, 100, 100)
	if diff := cmp.Diff([]int{1}, m.SelectedIDs()); diff != "" {
		t.Errorf("ctrl click did not toggle (-want +got):\n%s", diff)
	}
}

func TestGroupMoveNeedsAlt(t *testing.T) {
	m := newTestMapper(t)
	a := m.AddQuad(100, 100, 2)
	b := m.AddQuad(300, 100, 2)
	key(m, KeyCtrl)
	click(m, 100, 100)
	click(m, 300, 100)
	keyUp(m, KeyCtrl)

	press(m, 100, 100)
	drag(m, 110, 100)
	release(m, 110, 100)
	if got := a.Corner(0); !pointsEqual(got, Pt(50, 50), 1e-9) {
		t.Fatalf("group moved without alt: %v", got)
	}

	key(m, KeyAlt)
	press(m, 100, 100)
	drag(m, 110, 100)
	release(m, 110, 100)
	keyUp(m, KeyAlt)
	if got := a.Corner(0); !pointsEqual(got, Pt(60, 50), 1e-9) {
		t.Errorf("a corner 0 = %v, want (60, 50)", got)
	}
	if got := b.Corner(0); !pointsEqual(got, Pt(260, 50), 1e-9) {
		t.Errorf("b corner 0 = %v, want (260, 50)", got)
	}
	if len(m.Selected()) != 2 {
		t.Errorf("group lost after move: %v", m.SelectedIDs())
	}
}

func TestLassoSelects(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	m.AddQuad(300, 100, 2)
	m.AddQuad(100, 400, 2)

	press(m, 0, 0)
	drag(m, 400, 200)
	r, ok := m.Lasso()
	if !ok {
		t.Fatal("no lasso during drag")
	}
	if diff := cmp.Diff(NewRect(Pt(0, 0), Pt(400, 200)), r); diff != "" {
		t.Errorf("lasso mismatch (-want +got):\n%s", diff)
	}
	release(m, 400, 200)

	if diff := cmp.Diff([]int{0, 1}, m.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if !m.Grouping() {
		t.Error("lasso did not enable grouping")
	}
	if _, ok := m.Lasso(); ok {
		t.Error("lasso kept after release")
	}
}

func TestLassoShrinkDeselects(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	m.AddQuad(300, 100, 2)

	press(m, 0, 0)
	drag(m, 400, 200)
	drag(m, 200, 200)
	release(m, 200, 200)

	if diff := cmp.Diff([]int{0}, m.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapOnRelease(t *testing.T) {
	tests := []struct {
		name string
		snap bool
		want Point
	}{
		{"enabled", true, Pt(170, 50)},
		{"disabled", false, Pt(160, 52)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t)
			a := m.AddQuad(100, 100, 2)
			m.AddQuadCorners([4]Point{Pt(170, 50), Pt(270, 50), Pt(270, 150), Pt(170, 150)}, 2)
			m.SetSnapEnabled(tt.snap)

			press(m, 150, 50)
			drag(m, 160, 52)
			release(m, 160, 52)

			if got := a.Corner(1); !pointsEqual(got, tt.want, 1e-9) {
				t.Errorf("corner 1 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapPicksNearest(t *testing.T) {
	m := newTestMapper(t)
	a := m.AddQuad(100, 100, 2)
	m.AddQuadCorners([4]Point{Pt(175, 40), Pt(275, 40), Pt(275, 140), Pt(175, 140)}, 2)
	m.AddQuadCorners([4]Point{Pt(165, 55), Pt(265, 55), Pt(265, 155), Pt(165, 155)}, 2)

	press(m, 150, 50)
	drag(m, 160, 50)
	release(m, 160, 50)

	if got := a.Corner(1); !pointsEqual(got, Pt(165, 55), 1e-9) {
		t.Errorf("corner 1 = %v, want (165, 55)", got)
	}
}

func TestRemoveSelected(t *testing.T) {
	m := newTestMapper(t)
	a := m.AddQuad(100, 100, 2)
	m.AddQuad(300, 100, 2)
	m.AddQuad(500, 100, 2)
	key(m, KeyCtrl)
	click(m, 100, 100)
	click(m, 300, 100)
	a.SetLocked(true)

	if err := m.RemoveSelected(); !errors.Is(err, ErrSurfaceLocked) {
		t.Fatalf("RemoveSelected() error = %v, want ErrSurfaceLocked", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d after refused removal", m.Len())
	}

	a.SetLocked(false)
	key(m, KeyDelete)
	if m.Len() != 1 || len(m.Selected()) != 0 {
		t.Fatalf("Len() = %d selected = %v", m.Len(), m.SelectedIDs())
	}
	if m.NextID() != 3 {
		t.Errorf("NextID() = %d, want 3", m.NextID())
	}

	if err := m.RemoveSurface(2); err != nil {
		t.Fatalf("RemoveSurface(2) error = %v", err)
	}
	if m.NextID() != 0 {
		t.Errorf("NextID() = %d after emptying, want 0", m.NextID())
	}
}

func TestRemoveSurfaceErrors(t *testing.T) {
	m := newTestMapper(t)
	s := m.AddQuad(100, 100, 2)
	s.SetLocked(true)
	if err := m.RemoveSurface(s.ID()); !errors.Is(err, ErrSurfaceLocked) {
		t.Errorf("locked removal error = %v", err)
	}
	if err := m.RemoveSurface(42); !errors.Is(err, ErrSurfaceNotFound) {
		t.Errorf("missing removal error = %v", err)
	}
	m.Clear()
	if m.Len() != 0 || m.NextID() != 0 {
		t.Errorf("Clear() left %d surfaces, next id %d", m.Len(), m.NextID())
	}
}

func TestBringToFront(t *testing.T) {
	m := newTestMapper(t)
	for i := 0; i < 3; i++ {
		m.AddQuad(float64(100+i*10), 100, 2)
	}
	if err := m.BringToFront(0); err != nil {
		t.Fatal(err)
	}
	var ids []int
	for _, s := range m.Surfaces() {
		ids = append(ids, s.ID())
	}
	if diff := cmp.Diff([]int{1, 2, 0}, ids); diff != "" {
		t.Errorf("z-order mismatch (-want +got):\n%s", diff)
	}
	if err := m.BringToFront(9); !errors.Is(err, ErrSurfaceNotFound) {
		t.Errorf("BringToFront(9) error = %v", err)
	}
}

func TestModeKeys(t *testing.T) {
	m := newTestMapper(t)
	s := m.AddQuad(100, 100, 2)

	typeRunes(m, "c")
	if m.Mode() != ModeRender || s.Mode() != ModeRender {
		t.Fatalf("modes after toggle = %v, %v", m.Mode(), s.Mode())
	}

	m.HandleEvent(NewPointerEvent(EventPointerMove, 400, 300, ButtonNone))
	typeRunes(m, "a")
	if m.Len() != 1 {
		t.Errorf("spawn key worked in render mode")
	}
	click(m, 100, 100)
	if len(m.Selected()) != 0 {
		t.Errorf("pointer selected in render mode")
	}

	typeRunes(m, "C")
	if m.Mode() != ModeCalibrate {
		t.Errorf("upper-case C did not toggle")
	}
	typeRunes(m, "az")
	if m.Len() != 3 {
		t.Fatalf("Len() = %d after spawning", m.Len())
	}
	all := m.Surfaces()
	if all[1].Kind() != KindQuad || all[1].Resolution() != SpawnResolution {
		t.Errorf("spawned quad = %v res %d", all[1].Kind(), all[1].Resolution())
	}
	if all[2].Kind() != KindBezier || !pointsEqual(all[2].Center(), Pt(400, 300), 1e-9) {
		t.Errorf("spawned bezier = %v at %v", all[2].Kind(), all[2].Center())
	}
}

func TestEditKeys(t *testing.T) {
	m := newTestMapper(t)
	s := m.AddQuad(100, 100, 2)
	b := m.AddBezier(300, 100, 2)
	click(m, 100, 100)

	typeRunes(m, "oo")
	if s.Resolution() != 4 {
		t.Errorf("resolution = %d, want 4", s.Resolution())
	}
	typeRunes(m, "p")
	if s.Resolution() != 3 {
		t.Errorf("resolution = %d, want 3", s.Resolution())
	}

	typeRunes(m, "3")
	key(m, KeyRight)
	key(m, KeyDown)
	if got := s.Corner(2); !pointsEqual(got, Pt(151, 151), 1e-9) {
		t.Errorf("nudged corner = %v, want (151, 151)", got)
	}

	typeRunes(m, "r")
	if got := s.Corner(0); !pointsEqual(got, Pt(150, 50), 1e-9) {
		t.Errorf("rotated corner 0 = %v", got)
	}

	typeRunes(m, "t")
	typeRunes(m, "o")
	if !s.Locked() || s.Resolution() != 3 {
		t.Errorf("locked = %v resolution = %d", s.Locked(), s.Resolution())
	}
	typeRunes(m, "t")

	typeRunes(m, "h")
	if !s.Hidden() {
		t.Error("h did not hide")
	}
	typeRunes(m, "h")

	click(m, 300, 100)
	typeRunes(m, "uujk")
	if b.HorizontalForce() != 4 || b.VerticalForce() != 0 {
		t.Errorf("forces = %d, %d", b.HorizontalForce(), b.VerticalForce())
	}

	typeRunes(m, "n")
	if m.SnapEnabled() {
		t.Error("n did not toggle snap")
	}

	key(m, KeyEscape)
	if len(m.Selected()) != 0 {
		t.Errorf("escape left selection %v", m.SelectedIDs())
	}
}

func TestFrontKey(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	m.AddQuad(300, 100, 2)
	click(m, 100, 100)
	typeRunes(m, "f")
	if got := m.Surfaces()[1].ID(); got != 0 {
		t.Errorf("top surface = %d, want 0", got)
	}
}

func TestSaveLoadKeys(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	typeRunes(m, "s")
	m.Clear()
	typeRunes(m, "l")
	if m.Len() != 1 {
		t.Errorf("Len() = %d after load key", m.Len())
	}
}

func TestWheelThresholds(t *testing.T) {
	m := newTestMapper(t)
	wheel := func(delta int) {
		m.HandleEvent(Event{Kind: EventWheel, Delta: delta})
	}

	wheel(-1)
	if m.SelectionRadius() != DefaultSelectionRadius {
		t.Errorf("radius pushed below limit: %v", m.SelectionRadius())
	}
	wheel(1)
	if m.SelectionRadius() != 17 {
		t.Errorf("radius = %v, want 17", m.SelectionRadius())
	}
	for i := 0; i < 50; i++ {
		wheel(1)
	}
	if m.SelectionRadius() != maxSelectionRadius {
		t.Errorf("radius = %v, want %v", m.SelectionRadius(), maxSelectionRadius)
	}

	key(m, KeyCtrl)
	wheel(1)
	if m.SnapDistance() != 32 {
		t.Errorf("snap distance = %v, want 32", m.SnapDistance())
	}
	for i := 0; i < 50; i++ {
		wheel(-1)
	}
	if m.SnapDistance() != minSnapDistance {
		t.Errorf("snap distance = %v, want %v", m.SnapDistance(), minSnapDistance)
	}
}

func TestStepWithin(t *testing.T) {
	tests := []struct {
		v     float64
		delta int
		want  float64
	}{
		{30, 1, 32},
		{59, 1, 60},
		{60, 1, 60},
		{15, -1, 15},
		{70, -1, 68},
		{70, 1, 70},
		{17, -1, 16},
	}
	for _, tt := range tests {
		if got := stepWithin(tt.v, tt.delta, 16, 60); got != tt.want {
			t.Errorf("stepWithin(%v, %d) = %v, want %v", tt.v, tt.delta, got, tt.want)
		}
	}
}

func TestShakeAll(t *testing.T) {
	m := newTestMapper(t)
	m.AddQuad(100, 100, 2)
	m.AddBezier(300, 100, 2)
	m.ShakeAll(50, 300, 100)

	moved := false
	for i := 0; i < 200; i++ {
		m.Tick()
		for _, s := range m.Surfaces() {
			if s.Z() != 0 {
				moved = true
			}
		}
	}
	if !moved {
		t.Error("shake never displaced a surface")
	}
	for _, s := range m.Surfaces() {
		if s.Shaking() {
			t.Errorf("surface %d still shaking", s.ID())
		}
	}
}

func TestModeMirrorsOntoNewSurfaces(t *testing.T) {
	m := newTestMapper(t)
	m.SetModeRender()
	s := m.AddQuad(100, 100, 2)
	if s.Mode() != ModeRender {
		t.Errorf("new surface mode = %v", s.Mode())
	}
	m.SetModeCalibrate()
	if s.Mode() != ModeCalibrate {
		t.Errorf("mirrored mode = %v", s.Mode())
	}
}

// TestSelectionConsistency feeds random input and checks that the
// selection list always agrees with the per-surface flags.
func TestSelectionConsistency(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	m := newTestMapper(t)
	for i := 0; i < 4; i++ {
		m.AddQuad(float64(100+i*150), 150, 2)
	}
	coord := func() (float64, float64) {
		return rng.Float64() * 800, rng.Float64() * 400
	}

	for step := 0; step < 2000; step++ {
		switch rng.IntN(8) {
		case 0:
			x, y := coord()
			press(m, x, y)
		case 1:
			x, y := coord()
			drag(m, x, y)
		case 2:
			x, y := coord()
			release(m, x, y)
		case 3:
			key(m, KeyCtrl)
		case 4:
			keyUp(m, KeyCtrl)
		case 5:
			key(m, KeyEscape)
		case 6:
			typeRunes(m, "h")
		case 7:
			if m.Len() < 3 {
				x, y := coord()
				m.AddQuad(x, y, 2)
			}
		}

		sel := m.Selected()
		for _, s := range m.Surfaces() {
			if s.Selected() != slices.Contains(sel, s) {
				t.Fatalf("step %d: surface %d flag %v disagrees with list %v",
					step, s.ID(), s.Selected(), m.SelectedIDs())
			}
		}
		ids := m.SelectedIDs()
		slices.Sort(ids)
		if len(slices.Compact(ids)) != len(sel) {
			t.Fatalf("step %d: duplicate selection %v", step, m.SelectedIDs())
		}
	}
}
