package vmap

import (
	"image/color"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Active point values reported by hit-testing.
const (
	// CornerNone means no part of the surface is under the pointer.
	CornerNone = -1
	// CornerInside means the pointer is inside the surface but not on a
	// corner; the whole surface is the drag target.
	CornerInside = 2000
)

// DefaultSize is the edge length of a surface spawned at a point.
const DefaultSize = 100

// MaxResolution is the largest number of mesh cells per axis. It is even so
// that it is also a valid Bezier resolution.
const MaxResolution = 128

// Kind identifies a surface variant.
type Kind uint8

const (
	// KindQuad is a perspective-mapped quadrilateral.
	KindQuad Kind = iota
	// KindBezier is a bicubic patch with per-corner handles.
	KindBezier
)

var kindNames = [...]string{
	KindQuad:   "quad",
	KindBezier: "bezier",
}

// String returns the layout document name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind parses a layout type attribute. Both the names and the legacy
// numeric codes 0 and 1 are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "quad", "0":
		return KindQuad, nil
	case "bezier", "1":
		return KindBezier, nil
	}
	return 0, ErrUnknownSurfaceType
}

// Mode gates whether calibration overlays are drawn.
type Mode uint8

const (
	// ModeRender draws textured output only.
	ModeRender Mode = iota
	// ModeCalibrate draws outlines, handles and labels for editing.
	ModeCalibrate
)

// String returns "render" or "calibrate".
func (m Mode) String() string {
	if m == ModeCalibrate {
		return "calibrate"
	}
	return "render"
}

// ParseMode parses "render" or "calibrate".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "render":
		return ModeRender, true
	case "calibrate":
		return ModeCalibrate, true
	}
	return 0, false
}

// Rotation is the direction of a corner relabeling.
type Rotation uint8

const (
	// Clockwise moves every corner label one slot back: new[i] = old[i+1].
	Clockwise Rotation = iota
	// CounterClockwise moves every corner label one slot forward:
	// new[i] = old[i-1].
	CounterClockwise
)

// TextureWindow selects the part of the texture mapped onto a surface,
// in normalized texture units.
type TextureWindow struct {
	Offset Point
	Size   Point
}

// FullTexture maps the whole texture.
var FullTexture = TextureWindow{Size: Pt(1, 1)}

func (w TextureWindow) uv(pu, pv float64) (u, v float64) {
	return w.Offset.X + pu*w.Size.X, w.Offset.Y + pv*w.Size.Y
}

// EdgeBlend fades the left and/or right texture edge to transparent over
// the given widths (normalized u units) for overlapping projectors.
type EdgeBlend struct {
	Left, Right           bool
	LeftWidth, RightWidth float64
}

// Alpha returns the blend factor for texture coordinate u.
func (b EdgeBlend) Alpha(u float64) float64 {
	a := 1.0
	if b.Left && b.LeftWidth > 0 && u < b.LeftWidth {
		a = math.Min(a, math.Max(u, 0)/b.LeftWidth)
	}
	if b.Right && b.RightWidth > 0 && u > 1-b.RightWidth {
		a = math.Min(a, math.Max(1-u, 0)/b.RightWidth)
	}
	return a
}

// Surface is a calibrated mapping region. The variant set is closed:
// *QuadSurface and *BezierSurface are the only implementations.
//
// Every geometry mutator regenerates the mesh before returning, so Mesh and
// Outline always reflect the current control points.
type Surface interface {
	ID() int
	Kind() Kind
	Name() string
	SetName(name string)

	Corner(i int) Point
	Corners() [4]Point
	SetCorner(i int, x, y float64)
	SetCorners(c [8]float64)
	MoveCorner(i int, dx, dy float64)
	Translate(dx, dy float64)
	Center() Point
	RotateCorners(dir Rotation)

	Resolution() int
	SetResolution(res int)
	IncreaseResolution()
	DecreaseResolution()

	Mesh() *Mesh
	Outline() Polygon
	IsInside(x, y float64) bool
	ActiveCornerIndex(x, y, radius float64) int
	ScreenToSurface(x, y float64) Point
	Area() float64
	LongestSide() float64

	Locked() bool
	SetLocked(locked bool)
	ToggleLocked()
	Hidden() bool
	SetHidden(hidden bool)
	Selected() bool
	ActivePoint() int
	SelectedCorner() int
	SetSelectedCorner(i int)

	Mode() Mode
	SetMode(m Mode)
	ToggleMode()
	Color() color.NRGBA
	SetColor(c color.NRGBA)

	Z() float64
	SetZ(z float64)
	SetShake(strength, speed float64, falloff int)
	Shaking() bool
	Tick()

	TextureFile() string
	SetTextureFile(name string)
	MaskFile() string
	SetMaskFile(name string)
	TextureWindow() TextureWindow
	SetTextureWindow(w TextureWindow)
	EdgeBlend() EdgeBlend
	SetEdgeBlend(b EdgeBlend)

	base() *surfaceBase
}

// surfaceBase holds the state shared by both variants.
type surfaceBase struct {
	id      int
	name    string
	res     int
	mesh    *Mesh
	rebuild func()

	locked         bool
	hidden         bool
	selected       bool
	activePoint    int
	selectedCorner int
	mode           Mode
	color          color.NRGBA

	z             float64
	shaking       bool
	shakeStrength float64
	shakeSpeed    float64
	shakeFalloff  int
	shakeAngle    float64

	textureFile string
	maskFile    string
	window      TextureWindow
	blend       EdgeBlend
}

func newSurfaceBase(id, res int) surfaceBase {
	return surfaceBase{
		id:             id,
		name:           strconv.Itoa(id),
		res:            res,
		activePoint:    CornerNone,
		selectedCorner: CornerNone,
		mode:           ModeCalibrate,
		color:          color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		window:         FullTexture,
	}
}

func (b *surfaceBase) base() *surfaceBase { return b }

// ID returns the identifier, unique within one Mapper.
func (b *surfaceBase) ID() int { return b.id }

// Name returns the display name. It defaults to the decimal id.
func (b *surfaceBase) Name() string { return b.name }

// SetName sets the display name in Unicode NFC form.
// An empty name restores the default.
func (b *surfaceBase) SetName(name string) {
	if name == "" {
		name = strconv.Itoa(b.id)
	}
	b.name = norm.NFC.String(name)
}

// Resolution returns the number of mesh cells per axis.
func (b *surfaceBase) Resolution() int { return b.res }

// Mesh returns the current mesh.
func (b *surfaceBase) Mesh() *Mesh { return b.mesh }

// Outline returns the boundary polygon of the current mesh.
func (b *surfaceBase) Outline() Polygon { return b.mesh.Outline() }

// IsInside reports whether (x, y) lies within the outline.
func (b *surfaceBase) IsInside(x, y float64) bool {
	return b.mesh.Outline().Contains(x, y)
}

// Area returns the area enclosed by the outline.
func (b *surfaceBase) Area() float64 { return b.mesh.Outline().Area() }

func (b *surfaceBase) Locked() bool          { return b.locked }
func (b *surfaceBase) SetLocked(locked bool) { b.locked = locked }
func (b *surfaceBase) ToggleLocked()         { b.locked = !b.locked }
func (b *surfaceBase) Hidden() bool          { return b.hidden }
func (b *surfaceBase) SetHidden(hidden bool) { b.hidden = hidden }

// Selected reports selection. Selection is owned by the Mapper.
func (b *surfaceBase) Selected() bool         { return b.selected }
func (b *surfaceBase) setSelected(sel bool)   { b.selected = sel }
func (b *surfaceBase) ActivePoint() int       { return b.activePoint }
func (b *surfaceBase) setActivePoint(i int)   { b.activePoint = i }
func (b *surfaceBase) SelectedCorner() int    { return b.selectedCorner }
func (b *surfaceBase) Mode() Mode             { return b.mode }
func (b *surfaceBase) SetMode(m Mode)         { b.mode = m }
func (b *surfaceBase) Color() color.NRGBA     { return b.color }
func (b *surfaceBase) SetColor(c color.NRGBA) { b.color = c }
func (b *surfaceBase) Z() float64             { return b.z }
func (b *surfaceBase) SetZ(z float64)         { b.z = z }
func (b *surfaceBase) Shaking() bool          { return b.shaking }

// SetSelectedCorner marks corner i (0-3) as the keyboard nudge target.
// Out-of-range values clear it.
func (b *surfaceBase) SetSelectedCorner(i int) {
	if i < 0 || i > 3 {
		i = CornerNone
	}
	b.selectedCorner = i
}

// ToggleMode switches between calibrate and render.
func (b *surfaceBase) ToggleMode() {
	if b.mode == ModeCalibrate {
		b.mode = ModeRender
	} else {
		b.mode = ModeCalibrate
	}
}

// SetShake starts a decaying sinusoidal Z displacement. falloff is clamped
// to [1, 1000] and stored as 1000-falloff; each Tick multiplies the
// strength by the stored value / 1000.
func (b *surfaceBase) SetShake(strength, speed float64, falloff int) {
	falloff = min(max(falloff, 1), 1000)
	b.shaking = true
	b.shakeStrength = strength
	b.shakeSpeed = speed
	b.shakeFalloff = 1000 - falloff
	b.shakeAngle = 0
}

// Tick advances the shake by one frame. The shake stops once its strength
// drops below 1.
func (b *surfaceBase) Tick() {
	if !b.shaking {
		return
	}
	b.shakeAngle += b.shakeSpeed / 1000
	b.shakeStrength *= float64(b.shakeFalloff) / 1000
	b.z = math.Sin(b.shakeAngle) * b.shakeStrength
	if b.shakeStrength < 1 {
		b.shaking = false
	}
}

// TextureFile returns the texture filename, empty when none is set.
func (b *surfaceBase) TextureFile() string          { return b.textureFile }
func (b *surfaceBase) SetTextureFile(name string)   { b.textureFile = name }
func (b *surfaceBase) MaskFile() string             { return b.maskFile }
func (b *surfaceBase) SetMaskFile(name string)      { b.maskFile = name }
func (b *surfaceBase) TextureWindow() TextureWindow { return b.window }
func (b *surfaceBase) EdgeBlend() EdgeBlend         { return b.blend }
func (b *surfaceBase) SetEdgeBlend(e EdgeBlend)     { b.blend = e }

// SetTextureWindow changes the mapped texture region and rebuilds the mesh
// texture coordinates.
func (b *surfaceBase) SetTextureWindow(w TextureWindow) {
	b.window = w
	b.rebuild()
}

func activeCornerIndex(s Surface, x, y, radius float64) int {
	p := Pt(x, y)
	for i, c := range s.Corners() {
		if c.Distance(p) < radius {
			return i
		}
	}
	if s.IsInside(x, y) {
		return CornerInside
	}
	return CornerNone
}

func longestSide(c [4]Point) float64 {
	var longest float64
	for i := range c {
		longest = math.Max(longest, c[i].Distance(c[(i+1)%4]))
	}
	return longest
}

func rotated[T any](src [4]T, dir Rotation) [4]T {
	var dst [4]T
	for i := range dst {
		if dir == Clockwise {
			dst[i] = src[(i+1)%4]
		} else {
			dst[i] = src[(i+3)%4]
		}
	}
	return dst
}

func spawnCorners(x, y float64) [4]Point {
	h := DefaultSize * 0.5
	return [4]Point{
		Pt(x-h, y-h),
		Pt(x+h, y-h),
		Pt(x+h, y+h),
		Pt(x-h, y+h),
	}
}
