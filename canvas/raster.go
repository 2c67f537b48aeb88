package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/internal/cache"
	"github.com/gogpu/vmap/recording"
)

// ErrNoFrame is returned by output methods before the first frame.
var ErrNoFrame = errors.New("canvas: no frame rendered")

func init() {
	recording.Register("raster", func(width, height int) (vmap.Canvas, error) {
		return NewRaster(), nil
	})
}

// Raster is a vmap.Canvas backed by a gg.Context. The context is created
// by the first BeginFrame and resized when the frame size changes.
//
// A Raster is not safe for concurrent use.
type Raster struct {
	opts rasterOptions
	dc   *gg.Context

	// layer collects textured cells until the next overlay primitive, so
	// that z-order between cells and overlays is kept.
	layer *image.NRGBA
	dirty image.Rectangle

	textures *cache.Cache[textureKey, image.Image]
	source   *text.FontSource
	faces    map[float64]text.Face

	err error
}

var _ vmap.Canvas = (*Raster)(nil)

// NewRaster creates a Raster.
func NewRaster(opts ...RasterOption) *Raster {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Raster{
		opts:     o,
		textures: cache.New[textureKey, image.Image](o.cacheSize),
		faces:    make(map[float64]text.Face),
	}
}

// BeginFrame implements vmap.Canvas.
func (r *Raster) BeginFrame(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas: invalid frame size %dx%d", width, height)
	}
	switch {
	case r.dc == nil:
		r.dc = gg.NewContext(width, height)
	case r.dc.Width() != width || r.dc.Height() != height:
		if err := r.dc.Resize(width, height); err != nil {
			return fmt.Errorf("canvas: %w", err)
		}
	}
	if r.layer == nil || r.layer.Rect.Dx() != width || r.layer.Rect.Dy() != height {
		r.layer = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	r.dirty = image.Rectangle{}
	r.err = nil
	r.dc.ClearWithColor(gg.FromColor(r.opts.background))
	return nil
}

// EndFrame implements vmap.Canvas. It reports the first drawing error of
// the frame.
func (r *Raster) EndFrame() error {
	r.flush()
	return r.err
}

// Image returns the last rendered frame.
func (r *Raster) Image() (image.Image, error) {
	if r.dc == nil {
		return nil, ErrNoFrame
	}
	return r.dc.Image(), nil
}

// EncodePNG writes the last rendered frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if r.dc == nil {
		return ErrNoFrame
	}
	return r.dc.EncodePNG(w)
}

// SavePNG writes the last rendered frame to a PNG file.
func (r *Raster) SavePNG(path string) error {
	if r.dc == nil {
		return ErrNoFrame
	}
	return r.dc.SavePNG(path)
}

// Close releases the gg context.
func (r *Raster) Close() error {
	if r.dc == nil {
		return nil
	}
	err := r.dc.Close()
	r.dc = nil
	return err
}

// DrawImage implements vmap.Canvas.
func (r *Raster) DrawImage(img image.Image, dst vmap.Rect) {
	if img == nil {
		return
	}
	r.flush()
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             dst.Min.X,
		Y:             dst.Min.Y,
		DstWidth:      dst.Width(),
		DstHeight:     dst.Height(),
		Interpolation: gg.InterpBilinear,
		Opacity:       1.0,
		BlendMode:     gg.BlendNormal,
	})
}

// DrawTexturedQuad implements vmap.Canvas.
func (r *Raster) DrawTexturedQuad(q vmap.TexturedQuad) {
	var v [4]vmap.Point
	for i, p := range q.Vertices {
		v[i] = r.project(p)
	}
	if q.Texture == nil {
		r.flush()
		r.path(v[:])
		r.fill(q.Fill)
		return
	}
	tex := r.prepare(q.Texture, q.Mask, q.Blend)
	r.drawTriangle(tex, [3]vmap.Point{v[0], v[1], v[2]}, [3]vmap.Point{q.Vertices[0], q.Vertices[1], q.Vertices[2]})
	r.drawTriangle(tex, [3]vmap.Point{v[0], v[2], v[3]}, [3]vmap.Point{q.Vertices[0], q.Vertices[2], q.Vertices[3]})
}

// DrawLine implements vmap.Canvas.
func (r *Raster) DrawLine(a, b vmap.Point, s vmap.Style) {
	if s.Stroke == nil {
		return
	}
	r.flush()
	r.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	r.stroke(s)
}

// DrawPoint implements vmap.Canvas. The point is a filled square of the
// given edge length.
func (r *Raster) DrawPoint(p vmap.Point, size float64, c color.Color) {
	r.flush()
	r.dc.DrawRectangle(p.X-size/2, p.Y-size/2, size, size)
	r.fill(c)
}

// DrawPolygon implements vmap.Canvas.
func (r *Raster) DrawPolygon(pts []vmap.Point, s vmap.Style) {
	if len(pts) < 2 {
		return
	}
	r.flush()
	r.path(pts)
	r.paint(s)
}

// DrawCircle implements vmap.Canvas.
func (r *Raster) DrawCircle(center vmap.Point, radius float64, s vmap.Style) {
	if radius <= 0 {
		return
	}
	r.flush()
	r.dc.DrawCircle(center.X, center.Y, radius)
	r.paint(s)
}

// DrawText implements vmap.Canvas. The text is centered on at.
func (r *Raster) DrawText(s string, at vmap.Point, size float64, c color.Color) {
	face, err := r.face(size)
	if err != nil {
		r.fail(err)
		return
	}
	r.flush()
	r.dc.SetFont(face)
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, 0.5)
}

func (r *Raster) face(size float64) (text.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	if r.source == nil {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("canvas: load font: %w", err)
		}
		r.source = src
	}
	f := r.source.Face(size)
	r.faces[size] = f
	return f, nil
}

// project applies the depth of a vertex as a perspective scale about the
// frame center. Positive Z moves toward the viewer.
func (r *Raster) project(p vmap.Point) vmap.Point {
	if p.Z == 0 {
		return p
	}
	w, h := float64(r.dc.Width()), float64(r.dc.Height())
	f := (h / 2) / math.Tan(r.opts.fov/2)
	if f-p.Z <= 0 {
		return p
	}
	s := f / (f - p.Z)
	out := p
	out.X = w/2 + (p.X-w/2)*s
	out.Y = h/2 + (p.Y-h/2)*s
	return out
}

func (r *Raster) path(pts []vmap.Point) {
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
}

func (r *Raster) paint(s vmap.Style) {
	switch {
	case s.Fill != nil && s.Stroke != nil:
		r.dc.SetColor(s.Fill)
		r.fail(r.dc.FillPreserve())
		r.stroke(s)
	case s.Fill != nil:
		r.fill(s.Fill)
	case s.Stroke != nil:
		r.stroke(s)
	default:
		r.dc.ClearPath()
	}
}

func (r *Raster) fill(c color.Color) {
	if c == nil {
		r.dc.ClearPath()
		return
	}
	r.dc.SetColor(c)
	r.fail(r.dc.Fill())
}

func (r *Raster) stroke(s vmap.Style) {
	r.dc.SetColor(s.Stroke)
	r.dc.SetLineWidth(max(s.Width, 1))
	r.fail(r.dc.Stroke())
}

func (r *Raster) fail(err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("canvas: %w", err)
	}
}

// flush composites pending textured cells onto the context.
func (r *Raster) flush() {
	if r.dirty.Empty() {
		return
	}
	sub := r.layer.SubImage(r.dirty).(*image.NRGBA)
	r.dc.DrawImage(gg.ImageBufFromImage(sub), float64(r.dirty.Min.X), float64(r.dirty.Min.Y))
	draw.Draw(r.layer, r.dirty, image.Transparent, image.Point{}, draw.Src)
	r.dirty = image.Rectangle{}
}
