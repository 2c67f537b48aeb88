package vmap

import (
	"image"
	"image/color"
)

// Style describes how an overlay primitive is painted. A nil Stroke or
// Fill skips that part.
type Style struct {
	Stroke color.Color
	Fill   color.Color
	Width  float64
}

// TexturedQuad is one mesh cell with its texture. Vertices carry screen
// position in X, Y and Z and texture coordinates in U, V. When Texture is
// nil the cell is filled with Fill.
type TexturedQuad struct {
	Vertices Cell
	Texture  image.Image
	Mask     image.Image
	Blend    EdgeBlend
	Fill     color.Color
}

// Canvas is the drawing surface a Mapper renders into. Calls between
// BeginFrame and EndFrame are made from the goroutine that called Render.
type Canvas interface {
	BeginFrame(width, height int) error
	EndFrame() error

	DrawImage(img image.Image, dst Rect)
	DrawTexturedQuad(q TexturedQuad)
	DrawLine(a, b Point, s Style)
	DrawPoint(p Point, size float64, c color.Color)
	DrawPolygon(pts []Point, s Style)
	DrawCircle(center Point, radius float64, s Style)
	DrawText(text string, at Point, size float64, c color.Color)
}
