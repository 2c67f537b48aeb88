package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/gogpu/vmap"
)

// textureKey identifies a prepared texture. Images are compared by
// identity, so texture and mask must be pointer-backed images such as the
// ones returned by the image decoders.
type textureKey struct {
	texture image.Image
	mask    image.Image
	blend   vmap.EdgeBlend
}

// prepare returns the texture with the mask luminance and edge blend
// folded into its alpha. Plain textures are returned unchanged.
func (r *Raster) prepare(tex, mask image.Image, blend vmap.EdgeBlend) image.Image {
	if mask == nil && !blend.Left && !blend.Right {
		return tex
	}
	key := textureKey{texture: tex, mask: mask, blend: blend}
	if img, ok := r.textures.Get(key); ok {
		return img
	}
	img := applyAlpha(tex, mask, blend)
	r.textures.Set(key, img)
	return img
}

func applyAlpha(tex, mask image.Image, blend vmap.EdgeBlend) *image.NRGBA {
	b := tex.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), tex, b.Min, draw.Src)

	var mb image.Rectangle
	if mask != nil {
		mb = mask.Bounds()
	}
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := blend.Alpha((float64(x) + 0.5) / w)
			if mask != nil && !mb.Empty() {
				mx := mb.Min.X + int((float64(x)+0.5)/w*float64(mb.Dx()))
				my := mb.Min.Y + int((float64(y)+0.5)/h*float64(mb.Dy()))
				g := color.GrayModel.Convert(mask.At(mx, my)).(color.Gray)
				a *= float64(g.Y) / 255
			}
			i := out.PixOffset(x, y) + 3
			out.Pix[i] = uint8(math.Round(float64(out.Pix[i]) * a))
		}
	}
	return out
}

// drawTriangle warps the texture region under uv onto the screen triangle
// dst and composites it into the cell layer.
func (r *Raster) drawTriangle(tex image.Image, dst, uv [3]vmap.Point) {
	tb := tex.Bounds()
	var src [3]vmap.Point
	for i, p := range uv {
		src[i] = vmap.Pt(
			float64(tb.Min.X)+p.U*float64(tb.Dx()),
			float64(tb.Min.Y)+p.V*float64(tb.Dy()),
		)
	}
	s2d, ok := affine(src, dst)
	if !ok {
		return
	}

	bounds := triangleBounds(dst).Intersect(r.layer.Rect)
	if bounds.Empty() {
		return
	}
	warped := image.NewRGBA(bounds)
	draw.BiLinear.Transform(warped, s2d, tex, tb, draw.Src, nil)

	mask := image.NewAlpha(bounds)
	var z vector.Rasterizer
	z.Reset(bounds.Dx(), bounds.Dy())
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	z.MoveTo(float32(dst[0].X-ox), float32(dst[0].Y-oy))
	z.LineTo(float32(dst[1].X-ox), float32(dst[1].Y-oy))
	z.LineTo(float32(dst[2].X-ox), float32(dst[2].Y-oy))
	z.ClosePath()
	z.Draw(mask, bounds, image.Opaque, image.Point{})

	draw.DrawMask(r.layer, bounds, warped, bounds.Min, mask, bounds.Min, draw.Over)
	r.dirty = r.dirty.Union(bounds)
}

// affine solves for the transform taking the three src points onto the
// three dst points.
func affine(src, dst [3]vmap.Point) (f64.Aff3, bool) {
	s1, s2 := src[1].Sub(src[0]), src[2].Sub(src[0])
	d1, d2 := dst[1].Sub(dst[0]), dst[2].Sub(dst[0])
	det := s1.X*s2.Y - s2.X*s1.Y
	if math.Abs(det) < 1e-12 {
		return f64.Aff3{}, false
	}
	// inverse of [s1 s2]
	i00, i01 := s2.Y/det, -s2.X/det
	i10, i11 := -s1.Y/det, s1.X/det

	a00 := d1.X*i00 + d2.X*i10
	a01 := d1.X*i01 + d2.X*i11
	a10 := d1.Y*i00 + d2.Y*i10
	a11 := d1.Y*i01 + d2.Y*i11
	return f64.Aff3{
		a00, a01, dst[0].X - a00*src[0].X - a01*src[0].Y,
		a10, a11, dst[0].Y - a10*src[0].X - a11*src[0].Y,
	}, true
}

func triangleBounds(t [3]vmap.Point) image.Rectangle {
	minX := math.Min(t[0].X, math.Min(t[1].X, t[2].X))
	minY := math.Min(t[0].Y, math.Min(t[1].Y, t[2].Y))
	maxX := math.Max(t[0].X, math.Max(t[1].X, t[2].X))
	maxY := math.Max(t[0].Y, math.Max(t[1].Y, t[2].Y))
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}
