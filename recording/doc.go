// Package recording captures vmap frames as typed draw commands.
//
// A Recorder implements vmap.Canvas. Instead of rasterizing, it appends
// one command per call, so a frame can be inspected in tests, counted, or
// replayed later onto any other Canvas.
//
// # Basic Usage
//
//	rec := recording.NewRecorder()
//	if err := mapper.Render(rec); err != nil {
//	    return err
//	}
//	frame := rec.Last()
//	quads := frame.Count(recording.CmdDrawTexturedQuad)
//
// # Playback
//
// A Recording replays onto any Canvas, including the ones registered by
// name:
//
//	import _ "github.com/gogpu/vmap/canvas" // registers "raster"
//
//	c, err := recording.NewCanvas("raster", 1920, 1080)
//	if err != nil {
//	    return err
//	}
//	err = frame.Playback(c)
//
// # Canvas Registration
//
// Canvases are registered using the database/sql driver pattern. A
// package registers its factory from init and callers select it by name.
//
// Recorders are not safe for concurrent use. Recordings are immutable and
// may be shared.
package recording
