package vmap

import (
	"image/color"
	"slices"
)

// SurfaceState is an immutable copy of one surface.
type SurfaceState struct {
	ID              int           `json:"id"`
	Kind            Kind          `json:"-"`
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	Resolution      int           `json:"res"`
	Corners         [4]Point      `json:"corners"`
	Handles         []Point       `json:"handles,omitempty"`
	HorizontalForce int           `json:"horizontalForce,omitempty"`
	VerticalForce   int           `json:"verticalForce,omitempty"`
	Locked          bool          `json:"locked"`
	Hidden          bool          `json:"hidden"`
	Selected        bool          `json:"selected"`
	SelectedCorner  int           `json:"selectedCorner"`
	Color           color.NRGBA   `json:"color"`
	Z               float64       `json:"z"`
	TextureFile     string        `json:"filename,omitempty"`
	MaskFile        string        `json:"mask,omitempty"`
	Window          TextureWindow `json:"window"`
	Blend           EdgeBlend     `json:"blend"`
	Area            float64       `json:"area"`
	Outline         Polygon       `json:"outline"`
	Mesh            *Mesh         `json:"-"`
}

// Snapshot is an immutable copy of a Mapper's visible state. It may be read
// and rendered from any goroutine while the Mapper keeps changing.
type Snapshot struct {
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Mode         Mode           `json:"-"`
	ModeName     string         `json:"mode"`
	Surfaces     []SurfaceState `json:"surfaces"`
	Selected     []int          `json:"selected"`
	Grouping     bool           `json:"grouping"`
	Lasso        *Rect          `json:"lasso,omitempty"`
	Pointer      Point          `json:"pointer"`
	CursorRadius float64        `json:"cursorRadius"`
	Snap         bool           `json:"snap"`
	Background   string         `json:"background,omitempty"`
}

// Snapshot copies the current state. Meshes are shared since they are
// never modified after creation.
func (m *Mapper) Snapshot() *Snapshot {
	snap := &Snapshot{
		Width:        m.width,
		Height:       m.height,
		Mode:         m.mode,
		ModeName:     m.mode.String(),
		Surfaces:     make([]SurfaceState, 0, len(m.surfaces)),
		Selected:     m.SelectedIDs(),
		Grouping:     m.grouping,
		Pointer:      m.pointer,
		CursorRadius: m.selectionRadius,
		Snap:         m.snap,
		Background:   m.opts.background,
	}
	if m.ctrlDown {
		snap.CursorRadius = m.snapDistance
	}
	if m.lasso != nil {
		r := *m.lasso
		snap.Lasso = &r
	}
	for _, s := range m.surfaces {
		snap.Surfaces = append(snap.Surfaces, stateOf(s))
	}
	return snap
}

func stateOf(s Surface) SurfaceState {
	st := SurfaceState{
		ID:             s.ID(),
		Kind:           s.Kind(),
		Type:           s.Kind().String(),
		Name:           s.Name(),
		Resolution:     s.Resolution(),
		Corners:        s.Corners(),
		Locked:         s.Locked(),
		Hidden:         s.Hidden(),
		Selected:       s.Selected(),
		SelectedCorner: s.SelectedCorner(),
		Color:          s.Color(),
		Z:              s.Z(),
		TextureFile:    s.TextureFile(),
		MaskFile:       s.MaskFile(),
		Window:         s.TextureWindow(),
		Blend:          s.EdgeBlend(),
		Area:           s.Area(),
		Outline:        slices.Clone(s.Outline()),
		Mesh:           s.Mesh(),
	}
	switch s := s.(type) {
	case *QuadSurface:
	case *BezierSurface:
		st.Handles = make([]Point, 8)
		for h := range st.Handles {
			st.Handles[h] = s.Handle(h)
		}
		st.HorizontalForce = s.HorizontalForce()
		st.VerticalForce = s.VerticalForce()
	}
	return st
}

// Surface returns the state of the surface with the given id.
func (s *Snapshot) Surface(id int) (SurfaceState, bool) {
	for _, st := range s.Surfaces {
		if st.ID == id {
			return st, true
		}
	}
	return SurfaceState{}, false
}
