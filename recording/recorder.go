package recording

import (
	"errors"
	"image"
	"image/color"
	"slices"

	"github.com/gogpu/vmap"
)

// ErrFrameOpen is returned by BeginFrame when the previous frame was not
// ended, and by EndFrame when no frame is open.
var ErrFrameOpen = errors.New("recording: unbalanced frame")

// Recorder captures drawing operations as commands. Each BeginFrame /
// EndFrame pair yields one Recording; the most recent ones are kept.
//
// Example:
//
//	rec := recording.NewRecorder()
//	_ = mapper.Render(rec)
//	for _, cmd := range rec.Last().Commands() {
//	    fmt.Println(cmd.Type())
//	}
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	commands []Command
	open     bool
	width    int
	height   int
	frames   []*Recording
	keep     int
}

// NewRecorder creates a Recorder that keeps the last frame.
func NewRecorder() *Recorder {
	return NewRecorderKeeping(1)
}

// NewRecorderKeeping creates a Recorder that keeps the last n frames.
func NewRecorderKeeping(n int) *Recorder {
	return &Recorder{
		commands: make([]Command, 0, 256),
		keep:     max(n, 1),
	}
}

var _ vmap.Canvas = (*Recorder)(nil)

// BeginFrame implements vmap.Canvas.
func (r *Recorder) BeginFrame(width, height int) error {
	if r.open {
		return ErrFrameOpen
	}
	r.open = true
	r.width, r.height = width, height
	r.commands = r.commands[:0]
	r.record(BeginFrameCommand{Width: width, Height: height})
	return nil
}

// EndFrame implements vmap.Canvas. It seals the frame into a Recording.
func (r *Recorder) EndFrame() error {
	if !r.open {
		return ErrFrameOpen
	}
	r.record(EndFrameCommand{})
	r.open = false
	frame := &Recording{
		width:    r.width,
		height:   r.height,
		commands: slices.Clone(r.commands),
	}
	r.frames = append(r.frames, frame)
	if len(r.frames) > r.keep {
		r.frames = slices.Delete(r.frames, 0, len(r.frames)-r.keep)
	}
	return nil
}

// DrawImage implements vmap.Canvas.
func (r *Recorder) DrawImage(img image.Image, dst vmap.Rect) {
	r.record(DrawImageCommand{Image: img, Dst: dst})
}

// DrawTexturedQuad implements vmap.Canvas.
func (r *Recorder) DrawTexturedQuad(q vmap.TexturedQuad) {
	r.record(DrawTexturedQuadCommand{Quad: q})
}

// DrawLine implements vmap.Canvas.
func (r *Recorder) DrawLine(a, b vmap.Point, s vmap.Style) {
	r.record(DrawLineCommand{A: a, B: b, Style: s})
}

// DrawPoint implements vmap.Canvas.
func (r *Recorder) DrawPoint(p vmap.Point, size float64, c color.Color) {
	r.record(DrawPointCommand{P: p, Size: size, Color: c})
}

// DrawPolygon implements vmap.Canvas. The points are copied.
func (r *Recorder) DrawPolygon(pts []vmap.Point, s vmap.Style) {
	r.record(DrawPolygonCommand{Points: slices.Clone(pts), Style: s})
}

// DrawCircle implements vmap.Canvas.
func (r *Recorder) DrawCircle(center vmap.Point, radius float64, s vmap.Style) {
	r.record(DrawCircleCommand{Center: center, Radius: radius, Style: s})
}

// DrawText implements vmap.Canvas.
func (r *Recorder) DrawText(text string, at vmap.Point, size float64, c color.Color) {
	r.record(DrawTextCommand{Text: text, At: at, Size: size, Color: c})
}

func (r *Recorder) record(cmd Command) {
	r.commands = append(r.commands, cmd)
}

// Frames returns the kept recordings, oldest first.
func (r *Recorder) Frames() []*Recording {
	return slices.Clone(r.frames)
}

// Last returns the most recent recording, or nil before the first frame
// has ended.
func (r *Recorder) Last() *Recording {
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// --------------------------------------------------------------------------
// Recording
// --------------------------------------------------------------------------

// Recording is an immutable container for one frame of commands.
// It can be replayed to any vmap.Canvas.
type Recording struct {
	width, height int
	commands      []Command
}

// Width returns the frame width.
func (r *Recording) Width() int {
	return r.width
}

// Height returns the frame height.
func (r *Recording) Height() int {
	return r.height
}

// Commands returns the recorded commands.
// The slice is shared and must not be modified.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Count returns the number of commands of type t.
func (r *Recording) Count(t CommandType) int {
	n := 0
	for _, cmd := range r.commands {
		if cmd.Type() == t {
			n++
		}
	}
	return n
}

// Filter returns the commands of type t in recording order.
func (r *Recording) Filter(t CommandType) []Command {
	var out []Command
	for _, cmd := range r.commands {
		if cmd.Type() == t {
			out = append(out, cmd)
		}
	}
	return out
}

// Texts returns the labels drawn in the frame.
func (r *Recording) Texts() []string {
	var out []string
	for _, cmd := range r.commands {
		if c, ok := cmd.(DrawTextCommand); ok {
			out = append(out, c.Text)
		}
	}
	return out
}

// Playback replays the recording to the given canvas.
func (r *Recording) Playback(c vmap.Canvas) error {
	for _, cmd := range r.commands {
		switch cmd := cmd.(type) {
		case BeginFrameCommand:
			if err := c.BeginFrame(cmd.Width, cmd.Height); err != nil {
				return err
			}
		case EndFrameCommand:
			if err := c.EndFrame(); err != nil {
				return err
			}
		case DrawImageCommand:
			c.DrawImage(cmd.Image, cmd.Dst)
		case DrawTexturedQuadCommand:
			c.DrawTexturedQuad(cmd.Quad)
		case DrawLineCommand:
			c.DrawLine(cmd.A, cmd.B, cmd.Style)
		case DrawPointCommand:
			c.DrawPoint(cmd.P, cmd.Size, cmd.Color)
		case DrawPolygonCommand:
			c.DrawPolygon(cmd.Points, cmd.Style)
		case DrawCircleCommand:
			c.DrawCircle(cmd.Center, cmd.Radius, cmd.Style)
		case DrawTextCommand:
			c.DrawText(cmd.Text, cmd.At, cmd.Size, cmd.Color)
		}
	}
	return nil
}
