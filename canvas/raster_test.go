package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/recording"
)

func solid(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func cell(x0, y0, x1, y1 float64) vmap.Cell {
	return vmap.Cell{
		{X: x0, Y: y0, U: 0, V: 0},
		{X: x1, Y: y0, U: 1, V: 0},
		{X: x1, Y: y1, U: 1, V: 1},
		{X: x0, Y: y1, U: 0, V: 1},
	}
}

func pixel(t *testing.T, r *Raster, x, y int) color.NRGBA {
	t.Helper()
	img, err := r.Image()
	if err != nil {
		t.Fatal(err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func near(a, b uint8) bool {
	return math.Abs(float64(a)-float64(b)) <= 8
}

func frame(t *testing.T, r *Raster, w, h int, draw func()) {
	t.Helper()
	if err := r.BeginFrame(w, h); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	draw()
	if err := r.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

func TestRasterNoFrame(t *testing.T) {
	r := NewRaster()
	if _, err := r.Image(); err != ErrNoFrame {
		t.Errorf("Image() error = %v, want ErrNoFrame", err)
	}
	if err := r.BeginFrame(0, 10); err == nil {
		t.Error("BeginFrame(0, 10) succeeded")
	}
}

func TestRasterBackground(t *testing.T) {
	r := NewRaster(WithBackground(color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
	frame(t, r, 16, 16, func() {})
	got := pixel(t, r, 8, 8)
	if !near(got.R, 10) || !near(got.G, 20) || !near(got.B, 30) {
		t.Errorf("background = %v", got)
	}
}

func TestRasterFlatCell(t *testing.T) {
	r := NewRaster()
	frame(t, r, 64, 64, func() {
		r.DrawTexturedQuad(vmap.TexturedQuad{
			Vertices: cell(8, 8, 56, 56),
			Fill:     color.NRGBA{G: 255, A: 255},
		})
	})
	if got := pixel(t, r, 32, 32); !near(got.G, 255) || !near(got.R, 0) {
		t.Errorf("center = %v, want green", got)
	}
	if got := pixel(t, r, 2, 2); !near(got.G, 0) {
		t.Errorf("outside = %v, want background", got)
	}
}

func TestRasterTexturedCell(t *testing.T) {
	r := NewRaster()
	tex := solid(color.NRGBA{R: 255, A: 255}, 8, 8)
	frame(t, r, 64, 64, func() {
		r.DrawTexturedQuad(vmap.TexturedQuad{Vertices: cell(8, 8, 56, 56), Texture: tex})
	})
	for _, p := range []image.Point{{32, 32}, {16, 48}, {48, 16}} {
		if got := pixel(t, r, p.X, p.Y); !near(got.R, 255) || !near(got.B, 0) {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}
	if got := pixel(t, r, 60, 60); !near(got.R, 0) {
		t.Errorf("outside = %v, want background", got)
	}
}

func TestRasterEdgeBlend(t *testing.T) {
	r := NewRaster()
	tex := solid(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, 32, 8)
	frame(t, r, 64, 32, func() {
		r.DrawTexturedQuad(vmap.TexturedQuad{
			Vertices: cell(0, 0, 64, 32),
			Texture:  tex,
			Blend:    vmap.EdgeBlend{Left: true, LeftWidth: 0.5},
		})
	})
	left, right := pixel(t, r, 4, 16), pixel(t, r, 60, 16)
	if left.R >= right.R {
		t.Errorf("left %v not darker than right %v", left, right)
	}
	if !near(right.R, 255) {
		t.Errorf("right = %v, want white", right)
	}
}

func TestRasterMask(t *testing.T) {
	r := NewRaster()
	tex := solid(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, 8, 8)
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.Pix[1] = 255
	frame(t, r, 64, 32, func() {
		r.DrawTexturedQuad(vmap.TexturedQuad{Vertices: cell(0, 0, 64, 32), Texture: tex, Mask: mask})
	})
	if got := pixel(t, r, 8, 16); !near(got.R, 0) {
		t.Errorf("masked half = %v, want black", got)
	}
	if got := pixel(t, r, 56, 16); !near(got.R, 255) {
		t.Errorf("unmasked half = %v, want white", got)
	}
	if r.textures.Len() != 1 {
		t.Errorf("prepared textures = %d, want 1", r.textures.Len())
	}
}

func TestRasterOverlayOrder(t *testing.T) {
	r := NewRaster()
	tex := solid(color.NRGBA{B: 255, A: 255}, 4, 4)
	frame(t, r, 64, 64, func() {
		r.DrawTexturedQuad(vmap.TexturedQuad{Vertices: cell(0, 0, 64, 64), Texture: tex})
		r.DrawPolygon([]vmap.Point{vmap.Pt(16, 16), vmap.Pt(48, 16), vmap.Pt(48, 48), vmap.Pt(16, 48)},
			vmap.Style{Fill: color.NRGBA{R: 255, A: 255}})
	})
	if got := pixel(t, r, 32, 32); !near(got.R, 255) || !near(got.B, 0) {
		t.Errorf("overlay under texture: %v", got)
	}
	if got := pixel(t, r, 4, 4); !near(got.B, 255) {
		t.Errorf("texture missing: %v", got)
	}
}

func TestRasterProject(t *testing.T) {
	r := NewRaster()
	frame(t, r, 200, 100, func() {})
	p := vmap.Point{X: 150, Y: 50}
	if got := r.project(p); got != p {
		t.Errorf("project(z=0) = %v", got)
	}
	p.Z = 10
	got := r.project(p)
	if got.X <= 150 || got.Y != 50 {
		t.Errorf("project(z=10) = %v, want pushed outward on x", got)
	}
	p.Z = -10
	if got := r.project(p); got.X >= 150 {
		t.Errorf("project(z=-10) = %v, want pulled inward", got)
	}
}

func TestAffine(t *testing.T) {
	src := [3]vmap.Point{vmap.Pt(0, 0), vmap.Pt(10, 0), vmap.Pt(0, 10)}
	dst := [3]vmap.Point{vmap.Pt(5, 5), vmap.Pt(25, 5), vmap.Pt(5, 35)}
	a, ok := affine(src, dst)
	if !ok {
		t.Fatal("affine() failed")
	}
	for i := range src {
		x := a[0]*src[i].X + a[1]*src[i].Y + a[2]
		y := a[3]*src[i].X + a[4]*src[i].Y + a[5]
		if math.Abs(x-dst[i].X) > 1e-9 || math.Abs(y-dst[i].Y) > 1e-9 {
			t.Errorf("point %d -> (%v, %v), want %v", i, x, y, dst[i])
		}
	}
	if _, ok := affine([3]vmap.Point{{}, {}, {}}, dst); ok {
		t.Error("affine() accepted a degenerate source")
	}
}

func TestRasterMapperFrame(t *testing.T) {
	m := vmap.NewMapper(320, 240, vmap.WithLayoutDir(t.TempDir()))
	m.AddQuad(100, 100, 3)
	m.AddBezier(220, 120, 4)

	r := NewRaster()
	if err := m.Render(r); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 240 {
		t.Errorf("png size = %v", img.Bounds())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRasterRegistered(t *testing.T) {
	c, err := recording.NewCanvas("raster", 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*Raster); !ok {
		t.Errorf("NewCanvas(raster) = %T", c)
	}
}
