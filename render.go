package vmap

import (
	"image"
	"image/color"
)

// Overlay colors.
var (
	gridColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 24}
	meshColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 60}
	handleColor = color.NRGBA{R: 255, G: 255, B: 255, A: 160}
	lockedColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	activeColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	lassoStroke = color.NRGBA{R: 255, G: 255, B: 255, A: 200}
	lassoFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 30}
	cursorColor = color.NRGBA{R: 255, G: 255, B: 255, A: 120}
)

const (
	labelSize     = 14
	cornerSize    = 5
	handleSize    = 3
	gridDivisions = 32
)

// Render draws the current state into c.
func (m *Mapper) Render(c Canvas) error {
	return m.Snapshot().Render(c, m.opts.images)
}

// Render draws the snapshot into c. In render mode only textured surfaces
// are drawn; calibrate mode adds the background, grid and editing overlay.
// Images that fail to load are logged and drawn as flat color.
func (s *Snapshot) Render(c Canvas, images ImageLoader) error {
	if err := c.BeginFrame(s.Width, s.Height); err != nil {
		return err
	}
	calibrate := s.Mode == ModeCalibrate
	if calibrate {
		s.drawBackground(c, images)
	}
	for i := range s.Surfaces {
		st := &s.Surfaces[i]
		if st.Hidden {
			continue
		}
		drawTextured(c, st, images)
		if calibrate {
			drawOverlay(c, st)
		}
	}
	if calibrate {
		if s.Lasso != nil {
			corners := s.Lasso.Corners()
			c.DrawPolygon(corners[:], Style{Stroke: lassoStroke, Fill: lassoFill, Width: 1})
		}
		c.DrawCircle(s.Pointer, s.CursorRadius, Style{Stroke: cursorColor, Width: 1})
	}
	return c.EndFrame()
}

func (s *Snapshot) drawBackground(c Canvas, images ImageLoader) {
	if s.Background != "" {
		if img := loadOptional(images, s.Background); img != nil {
			c.DrawImage(img, Rect{Max: Pt(float64(s.Width), float64(s.Height))})
		}
	}
	w, h := float64(s.Width), float64(s.Height)
	step := w / gridDivisions
	if step <= 0 {
		return
	}
	style := Style{Stroke: gridColor, Width: 1}
	for x := step; x < w; x += step {
		c.DrawLine(Pt(x, 0), Pt(x, h), style)
	}
	for y := step; y < h; y += step {
		c.DrawLine(Pt(0, y), Pt(w, y), style)
	}
}

func drawTextured(c Canvas, st *SurfaceState, images ImageLoader) {
	tex := loadOptional(images, st.TextureFile)
	mask := loadOptional(images, st.MaskFile)
	for _, cell := range st.Mesh.Cells() {
		for k := range cell {
			cell[k].Z += st.Z
		}
		c.DrawTexturedQuad(TexturedQuad{
			Vertices: cell,
			Texture:  tex,
			Mask:     mask,
			Blend:    st.Blend,
			Fill:     st.Color,
		})
	}
}

func drawOverlay(c Canvas, st *SurfaceState) {
	m := st.Mesh
	r := m.Resolution()
	mesh := Style{Stroke: meshColor, Width: 1}
	for k := 1; k < r; k++ {
		for j := 0; j < r; j++ {
			c.DrawLine(m.At(k, j), m.At(k, j+1), mesh)
			c.DrawLine(m.At(j, k), m.At(j+1, k), mesh)
		}
	}

	edge := st.Color
	if st.Locked {
		edge = lockedColor
	}
	outline := Style{Stroke: edge, Width: 1}
	if st.Selected {
		outline.Width = 2
		outline.Fill = color.NRGBA{R: edge.R, G: edge.G, B: edge.B, A: 40}
	}
	c.DrawPolygon(st.Outline, outline)

	if len(st.Handles) == 8 {
		hs := Style{Stroke: handleColor, Width: 1}
		for h, p := range st.Handles {
			c.DrawLine(st.Corners[h/2], p, hs)
			c.DrawPoint(p, handleSize, handleColor)
		}
	}
	for i, p := range st.Corners {
		col := color.Color(edge)
		if st.Selected && i == st.SelectedCorner {
			col = activeColor
		}
		c.DrawPoint(p, cornerSize, col)
	}
	c.DrawText(st.Name, Mean(st.Corners[:]...), labelSize, activeColor)
}

func loadOptional(images ImageLoader, name string) image.Image {
	if name == "" || images == nil {
		return nil
	}
	img, err := images.LoadImage(name)
	if err != nil {
		Logger().Debug("vmap: image unavailable", "name", name, "err", err)
		return nil
	}
	return img
}
