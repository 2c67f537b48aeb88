package canvas

import (
	"image/color"
	"math"
)

// RasterOption configures a Raster during creation.
type RasterOption func(*rasterOptions)

type rasterOptions struct {
	background color.Color
	fov        float64
	cacheSize  int
}

func defaultOptions() rasterOptions {
	return rasterOptions{
		background: color.Black,
		fov:        math.Pi / 3,
		cacheSize:  32,
	}
}

// WithBackground sets the color every frame starts from.
func WithBackground(c color.Color) RasterOption {
	return func(o *rasterOptions) {
		o.background = c
	}
}

// WithFieldOfView sets the vertical field of view, in radians, used to
// project vertex depth. Larger angles exaggerate depth.
func WithFieldOfView(rad float64) RasterOption {
	return func(o *rasterOptions) {
		if rad > 0 && rad < math.Pi {
			o.fov = rad
		}
	}
}

// WithTextureCacheSize sets how many masked or edge-blended textures are
// kept between frames.
func WithTextureCacheSize(n int) RasterOption {
	return func(o *rasterOptions) {
		o.cacheSize = max(n, 1)
	}
}
