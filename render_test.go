package vmap_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/recording"
)

func render(t *testing.T, m *vmap.Mapper) *recording.Recording {
	t.Helper()
	rec := recording.NewRecorder()
	if err := m.Render(rec); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return rec.Last()
}

func TestRenderModeDrawsTexturedCellsOnly(t *testing.T) {
	m := vmap.NewMapper(640, 480, vmap.WithLayoutDir(t.TempDir()))
	m.AddQuad(100, 100, 3)
	m.AddBezier(300, 100, 2)
	m.SetModeRender()

	frame := render(t, m)
	if got := frame.Count(recording.CmdDrawTexturedQuad); got != 9+4 {
		t.Errorf("textured quads = %d, want 13", got)
	}
	for _, ct := range []recording.CommandType{
		recording.CmdDrawLine, recording.CmdDrawPoint, recording.CmdDrawText, recording.CmdDrawCircle,
	} {
		if n := frame.Count(ct); n != 0 {
			t.Errorf("render mode drew %d %v commands", n, ct)
		}
	}
	if frame.Width() != 640 || frame.Height() != 480 {
		t.Errorf("frame size = %dx%d", frame.Width(), frame.Height())
	}
}

func TestCalibrateModeDrawsOverlay(t *testing.T) {
	m := vmap.NewMapper(640, 480, vmap.WithLayoutDir(t.TempDir()))
	q := m.AddQuad(100, 100, 2)
	q.SetName("left wall")
	m.AddBezier(300, 100, 2)

	frame := render(t, m)
	texts := frame.Texts()
	if len(texts) != 2 || texts[0] != "left wall" || texts[1] != "1" {
		t.Errorf("labels = %v", texts)
	}
	if got := frame.Count(recording.CmdDrawPolygon); got != 2 {
		t.Errorf("outlines = %d, want 2", got)
	}
	// four corners per surface plus eight handles on the Bezier
	if got := frame.Count(recording.CmdDrawPoint); got != 4+4+8 {
		t.Errorf("points = %d, want 16", got)
	}
	if got := frame.Count(recording.CmdDrawCircle); got != 1 {
		t.Errorf("cursor circles = %d, want 1", got)
	}
}

func TestHiddenSurfaceIsSkipped(t *testing.T) {
	m := vmap.NewMapper(640, 480, vmap.WithLayoutDir(t.TempDir()))
	m.AddQuad(100, 100, 2).SetHidden(true)
	frame := render(t, m)
	if n := frame.Count(recording.CmdDrawTexturedQuad); n != 0 {
		t.Errorf("hidden surface drew %d cells", n)
	}
	if n := len(frame.Texts()); n != 0 {
		t.Errorf("hidden surface drew %d labels", n)
	}
}

func TestRenderResolvesTextures(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	loads := 0
	loader := vmap.ImageLoaderFunc(func(name string) (image.Image, error) {
		loads++
		if name == "wall.png" {
			return tex, nil
		}
		return nil, errors.New("not found")
	})
	m := vmap.NewMapper(640, 480, vmap.WithImageLoader(loader))
	a := m.AddQuad(100, 100, 1)
	a.SetTextureFile("wall.png")
	a.SetZ(5)
	b := m.AddQuad(300, 100, 1)
	b.SetTextureFile("missing.png")
	m.SetModeRender()

	frame := render(t, m)
	cells := frame.Filter(recording.CmdDrawTexturedQuad)
	if len(cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(cells))
	}
	first := cells[0].(recording.DrawTexturedQuadCommand).Quad
	if first.Texture != tex {
		t.Error("texture not passed to canvas")
	}
	if first.Vertices[0].Z != 5 {
		t.Errorf("vertex z = %v, want 5", first.Vertices[0].Z)
	}
	second := cells[1].(recording.DrawTexturedQuadCommand).Quad
	if second.Texture != nil || second.Fill != color.Color(b.Color()) {
		t.Errorf("missing texture fallback = %v, %v", second.Texture, second.Fill)
	}
	if loads != 2 {
		t.Errorf("loader called %d times, want 2", loads)
	}
}

func TestLassoIsDrawn(t *testing.T) {
	m := vmap.NewMapper(640, 480, vmap.WithLayoutDir(t.TempDir()))
	m.HandleEvent(vmap.NewPointerEvent(vmap.EventPointerDown, 10, 10, vmap.ButtonLeft))
	m.HandleEvent(vmap.NewPointerEvent(vmap.EventPointerDrag, 50, 60, vmap.ButtonLeft))

	frame := render(t, m)
	polys := frame.Filter(recording.CmdDrawPolygon)
	if len(polys) != 1 {
		t.Fatalf("polygons = %d, want 1", len(polys))
	}
	if pts := polys[0].(recording.DrawPolygonCommand).Points; len(pts) != 4 || pts[2] != vmap.Pt(50, 60) {
		t.Errorf("lasso = %v", pts)
	}
}
