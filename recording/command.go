package recording

import (
	"image"
	"image/color"

	"github.com/gogpu/vmap"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one vmap.Canvas method.
type CommandType uint8

const (
	// Frame commands
	CmdBeginFrame CommandType = iota // Start of a frame
	CmdEndFrame                      // End of a frame

	// Drawing commands
	CmdDrawImage        // Draw an image into a rectangle
	CmdDrawTexturedQuad // Draw one textured mesh cell
	CmdDrawLine         // Draw a line segment
	CmdDrawPoint        // Draw a point marker
	CmdDrawPolygon      // Draw a closed polygon
	CmdDrawCircle       // Draw a circle
	CmdDrawText         // Draw a text label
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdBeginFrame:       "BeginFrame",
	CmdEndFrame:         "EndFrame",
	CmdDrawImage:        "DrawImage",
	CmdDrawTexturedQuad: "DrawTexturedQuad",
	CmdDrawLine:         "DrawLine",
	CmdDrawPoint:        "DrawPoint",
	CmdDrawPolygon:      "DrawPolygon",
	CmdDrawCircle:       "DrawCircle",
	CmdDrawText:         "DrawText",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Frame Commands
// --------------------------------------------------------------------------

// BeginFrameCommand starts a frame of the given size.
type BeginFrameCommand struct {
	Width, Height int
}

// Type implements Command.
func (BeginFrameCommand) Type() CommandType { return CmdBeginFrame }

// EndFrameCommand ends a frame.
type EndFrameCommand struct{}

// Type implements Command.
func (EndFrameCommand) Type() CommandType { return CmdEndFrame }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// DrawImageCommand draws Image scaled into Dst.
type DrawImageCommand struct {
	Image image.Image
	Dst   vmap.Rect
}

// Type implements Command.
func (DrawImageCommand) Type() CommandType { return CmdDrawImage }

// DrawTexturedQuadCommand draws one mesh cell.
type DrawTexturedQuadCommand struct {
	Quad vmap.TexturedQuad
}

// Type implements Command.
func (DrawTexturedQuadCommand) Type() CommandType { return CmdDrawTexturedQuad }

// DrawLineCommand draws the segment A-B.
type DrawLineCommand struct {
	A, B  vmap.Point
	Style vmap.Style
}

// Type implements Command.
func (DrawLineCommand) Type() CommandType { return CmdDrawLine }

// DrawPointCommand draws a square marker of Size pixels at P.
type DrawPointCommand struct {
	P     vmap.Point
	Size  float64
	Color color.Color
}

// Type implements Command.
func (DrawPointCommand) Type() CommandType { return CmdDrawPoint }

// DrawPolygonCommand draws a closed polygon.
type DrawPolygonCommand struct {
	Points []vmap.Point
	Style  vmap.Style
}

// Type implements Command.
func (DrawPolygonCommand) Type() CommandType { return CmdDrawPolygon }

// DrawCircleCommand draws a circle.
type DrawCircleCommand struct {
	Center vmap.Point
	Radius float64
	Style  vmap.Style
}

// Type implements Command.
func (DrawCircleCommand) Type() CommandType { return CmdDrawCircle }

// DrawTextCommand draws a label centered on At.
type DrawTextCommand struct {
	Text  string
	At    vmap.Point
	Size  float64
	Color color.Color
}

// Type implements Command.
func (DrawTextCommand) Type() CommandType { return CmdDrawText }
