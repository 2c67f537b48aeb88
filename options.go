package vmap

import "image/color"

// MapperOption configures a Mapper during creation.
//
// Example:
//
//	m := vmap.NewMapper(1920, 1080,
//	    vmap.WithLayoutDir("layouts"),
//	    vmap.WithSnapDistance(20),
//	)
type MapperOption func(*mapperOptions)

type mapperOptions struct {
	snapDistance    float64
	selectionRadius float64
	layoutDir       string
	layoutFile      string
	images          ImageLoader
	palette         []color.NRGBA
	background      string
}

// DefaultPalette holds the calibration colors assigned to new surfaces as
// palette[id % len(palette)].
var DefaultPalette = []color.NRGBA{
	{R: 0x4e, G: 0xa5, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x7a, B: 0x45, A: 0xff},
	{R: 0x6b, G: 0xd9, B: 0x68, A: 0xff},
	{R: 0xf2, G: 0xc9, B: 0x4c, A: 0xff},
	{R: 0xc7, G: 0x7d, B: 0xff, A: 0xff},
	{R: 0x4d, G: 0xd6, B: 0xc8, A: 0xff},
}

func defaultMapperOptions() mapperOptions {
	return mapperOptions{
		snapDistance:    DefaultSnapDistance,
		selectionRadius: DefaultSelectionRadius,
		layoutDir:       ".",
		layoutFile:      "layout.xml",
		palette:         DefaultPalette,
	}
}

// WithSnapDistance sets the corner snap distance in pixels.
func WithSnapDistance(d float64) MapperOption {
	return func(o *mapperOptions) {
		o.snapDistance = d
	}
}

// WithSelectionRadius sets the corner hit radius in pixels.
func WithSelectionRadius(r float64) MapperOption {
	return func(o *mapperOptions) {
		o.selectionRadius = r
	}
}

// WithLayoutDir sets the directory that relative layout names resolve to.
func WithLayoutDir(dir string) MapperOption {
	return func(o *mapperOptions) {
		o.layoutDir = dir
	}
}

// WithLayoutFile sets the layout name used by the save and load keys.
func WithLayoutFile(name string) MapperOption {
	return func(o *mapperOptions) {
		o.layoutFile = name
	}
}

// WithImageLoader sets the loader used to resolve texture, mask and
// background filenames. The default is a FileImageLoader.
func WithImageLoader(l ImageLoader) MapperOption {
	return func(o *mapperOptions) {
		o.images = l
	}
}

// WithPalette sets the calibration colors. An empty palette leaves new
// surfaces white.
func WithPalette(p []color.NRGBA) MapperOption {
	return func(o *mapperOptions) {
		o.palette = p
	}
}

// WithBackground sets an image drawn under the calibration overlay.
func WithBackground(filename string) MapperOption {
	return func(o *mapperOptions) {
		o.background = filename
	}
}
