// Package canvas renders vmap frames to pixels with gg.
//
// Raster implements vmap.Canvas on top of a gg.Context. Overlay
// primitives (lines, outlines, markers, labels) go through gg's path
// renderer. Textured mesh cells are warped with golang.org/x/image/draw:
// each cell is split into two triangles, each triangle is mapped with the
// affine transform fixed by its three texture coordinates, and clipped to
// the triangle with a coverage mask from golang.org/x/image/vector.
//
// Importing the package registers the "raster" canvas with the recording
// registry:
//
//	import _ "github.com/gogpu/vmap/canvas"
//
//	c, _ := recording.NewCanvas("raster", 1920, 1080)
//
// Building with the gpu tag and importing github.com/gogpu/gg/gpu lets
// gg accelerate the path rendering; textured cells stay on the CPU.
package canvas
