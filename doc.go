// Package vmap is a projection-mapping calibration engine.
//
// # Overview
//
// A Mapper owns an ordered set of surfaces. Each surface maps a rectangular
// texture onto an irregular screen region and keeps a dense mesh of that
// mapping for rendering, hit-testing and persistence. Two variants exist:
//
//   - QuadSurface: a perspective (homography) mapping of the unit square
//     onto four free corners.
//   - BezierSurface: a bicubic patch shaped by four corners with two
//     handles each, plus an optional dome correction.
//
// # Quick Start
//
//	m := vmap.NewMapper(1920, 1080, vmap.WithLayoutDir("layouts"))
//	q := m.AddQuad(400, 300, 3)
//	q.SetTextureFile("wall.png")
//
//	// Feed host input.
//	m.HandleEvent(vmap.NewPointerEvent(vmap.EventPointerDown, 350, 250, vmap.ButtonLeft))
//
//	// Draw a frame.
//	if err := m.Render(canvas); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Persist the calibration.
//	if err := m.Save("layout.xml"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Coordinate System
//
// Screen coordinates have the origin at the top-left, X to the right and Y
// down. Corners are ordered top-left, top-right, bottom-right,
// bottom-left. Mesh point (i, j) has i along the top edge and j along the
// left edge; texture coordinates U and V are normalized to [0, 1].
//
// # Calibration Input
//
// Pointer and key events arrive as the host-neutral Event type. A press
// grabs a corner, a Bezier handle or a whole surface; dragging moves it,
// or draws a selection lasso when nothing was grabbed. Holding ctrl
// toggles surfaces in and out of a group, alt allows moving a whole group,
// and releasing a corner near another surface's corner snaps onto it.
//
// # Concurrency
//
// A Mapper is owned by one goroutine. Snapshot returns an immutable copy
// that other goroutines can render or serialize; the session package
// provides the owning loop.
package vmap
