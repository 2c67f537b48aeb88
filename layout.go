package vmap

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Format is a layout document encoding.
type Format uint8

const (
	FormatXML      Format = iota // <ProjectionMap> document
	FormatJSON                   // {"surfaces": [...]} document
	FormatXMLZstd                // zstd-compressed XML
	FormatJSONZstd               // zstd-compressed JSON
)

// FormatFor picks the encoding from a file name: .xml, .json, .xml.zst or
// .json.zst.
func FormatFor(name string) (Format, error) {
	lower := strings.ToLower(name)
	compressed := strings.HasSuffix(lower, ".zst")
	lower = strings.TrimSuffix(lower, ".zst")
	switch filepath.Ext(lower) {
	case ".xml":
		if compressed {
			return FormatXMLZstd, nil
		}
		return FormatXML, nil
	case ".json":
		if compressed {
			return FormatJSONZstd, nil
		}
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// LoadResult reports how many surfaces a load reconstructed and how many
// malformed entries it skipped.
type LoadResult struct {
	Loaded  int
	Skipped int
}

type layoutDoc struct {
	XMLName  xml.Name       `xml:"ProjectionMap" json:"-"`
	Surfaces []surfaceEntry `xml:"surface" json:"surfaces"`
}

type surfaceEntry struct {
	Filename        *string        `xml:"filename,attr" json:"filename"`
	Type            string         `xml:"type,attr" json:"type"`
	ID              int            `xml:"id,attr" json:"id"`
	Name            string         `xml:"name,attr" json:"name"`
	Res             int            `xml:"res,attr" json:"res"`
	Lock            int            `xml:"lock,attr" json:"lock"`
	Hidden          int            `xml:"hidden,attr,omitempty" json:"hidden,omitempty"`
	Color           string         `xml:"color,attr,omitempty" json:"color,omitempty"`
	Mask            string         `xml:"mask,attr,omitempty" json:"mask,omitempty"`
	HorizontalForce *int           `xml:"horizontalForce,attr" json:"horizontalForce,omitempty"`
	VerticalForce   *int           `xml:"verticalForce,attr" json:"verticalForce,omitempty"`
	Corners         []indexedPoint `xml:"cornerpoint" json:"cornerpoints"`
	Handles         []indexedPoint `xml:"bezierpoint" json:"bezierpoints,omitempty"`
	Texture         *textureEntry  `xml:"texture" json:"texture,omitempty"`
	Blend           *blendEntry    `xml:"blend" json:"blend,omitempty"`
}

type indexedPoint struct {
	I int     `xml:"i,attr" json:"i"`
	X float64 `xml:"x,attr" json:"x"`
	Y float64 `xml:"y,attr" json:"y"`
}

type textureEntry struct {
	X float64 `xml:"x,attr" json:"x"`
	Y float64 `xml:"y,attr" json:"y"`
	W float64 `xml:"w,attr" json:"w"`
	H float64 `xml:"h,attr" json:"h"`
}

type blendEntry struct {
	Left       int     `xml:"left,attr" json:"left"`
	Right      int     `xml:"right,attr" json:"right"`
	LeftWidth  float64 `xml:"leftWidth,attr" json:"leftWidth"`
	RightWidth float64 `xml:"rightWidth,attr" json:"rightWidth"`
}

// Save writes the layout to name, resolved against the layout directory.
// The encoding follows the file extension.
func (m *Mapper) Save(name string) error {
	f, err := FormatFor(name)
	if err != nil {
		return err
	}
	path := m.layoutPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("vmap: save %s: %w", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vmap: save %s: %w", path, err)
	}
	if err := m.WriteLayout(file, f); err != nil {
		_ = file.Close()
		return fmt.Errorf("vmap: save %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("vmap: save %s: %w", path, err)
	}
	Logger().Info("vmap: layout saved", "path", path, "surfaces", len(m.surfaces))
	return nil
}

// Load replaces the layout with the document in name. A missing file
// returns ErrLayoutMissing and an unreadable document ErrLayoutMalformed;
// in both cases the Mapper is unchanged. Malformed surface entries are
// skipped and counted.
func (m *Mapper) Load(name string) (LoadResult, error) {
	f, err := FormatFor(name)
	if err != nil {
		return LoadResult{}, err
	}
	path := m.layoutPath(name)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return LoadResult{}, fmt.Errorf("vmap: load %s: %w", path, ErrLayoutMissing)
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("vmap: load %s: %w", path, err)
	}
	defer file.Close()

	res, err := m.ReadLayout(file, f)
	if err != nil {
		return res, fmt.Errorf("vmap: load %s: %w", path, err)
	}
	Logger().Info("vmap: layout loaded", "path", path, "loaded", res.Loaded, "skipped", res.Skipped)
	return res, nil
}

// LayoutFile is the file used by the save and load keys.
func (m *Mapper) LayoutFile() string { return m.opts.layoutFile }

func (m *Mapper) layoutPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(m.opts.layoutDir, name)
}

// WriteLayout encodes the layout to w.
func (m *Mapper) WriteLayout(w io.Writer, f Format) error {
	doc := layoutDoc{Surfaces: make([]surfaceEntry, 0, len(m.surfaces))}
	for _, s := range m.surfaces {
		doc.Surfaces = append(doc.Surfaces, encodeSurface(s))
	}

	switch f {
	case FormatXML, FormatJSON:
		return encodeDoc(w, doc, f)
	case FormatXMLZstd, FormatJSONZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := encodeDoc(zw, doc, f); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	}
	return ErrUnknownFormat
}

func encodeDoc(w io.Writer, doc layoutDoc, f Format) error {
	if f == FormatJSON || f == FormatJSONZstd {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadLayout decodes a layout from r and replaces the current surfaces.
func (m *Mapper) ReadLayout(r io.Reader, f Format) (LoadResult, error) {
	var doc layoutDoc
	switch f {
	case FormatXML, FormatJSON:
		if err := decodeDoc(r, &doc, f); err != nil {
			return LoadResult{}, err
		}
	case FormatXMLZstd, FormatJSONZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return LoadResult{}, fmt.Errorf("%w: %w", ErrLayoutMalformed, err)
		}
		defer zr.Close()
		if err := decodeDoc(zr, &doc, f); err != nil {
			return LoadResult{}, err
		}
	default:
		return LoadResult{}, ErrUnknownFormat
	}
	return m.apply(doc), nil
}

func decodeDoc(r io.Reader, doc *layoutDoc, f Format) error {
	var err error
	if f == FormatJSON || f == FormatJSONZstd {
		err = json.NewDecoder(r).Decode(doc)
	} else {
		err = xml.NewDecoder(r).Decode(doc)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLayoutMalformed, err)
	}
	return nil
}

// apply replaces the collection with the decoded surfaces and advances the
// id counter past the largest loaded id.
func (m *Mapper) apply(doc layoutDoc) LoadResult {
	m.Clear()
	m.origin, m.lasso, m.dragging = nil, nil, false

	var res LoadResult
	seen := make(map[int]bool, len(doc.Surfaces))
	for k, e := range doc.Surfaces {
		if seen[e.ID] {
			res.Skipped++
			Logger().Warn("vmap: skipping layout entry", "index", k, "err",
				fmt.Errorf("%w: duplicate id %d", ErrLayoutMalformed, e.ID))
			continue
		}
		s, err := decodeSurface(e)
		if err != nil {
			res.Skipped++
			Logger().Warn("vmap: skipping layout entry", "index", k, "err", err)
			continue
		}
		seen[e.ID] = true
		if e.Color == "" {
			if c, ok := m.paletteColor(s.ID()); ok {
				s.SetColor(c)
			}
		}
		s.SetMode(m.mode)
		m.surfaces = append(m.surfaces, s)
		m.nextID = max(m.nextID, s.ID()+1)
		res.Loaded++
	}
	return res
}

func encodeSurface(s Surface) surfaceEntry {
	e := surfaceEntry{
		Type:   s.Kind().String(),
		ID:     s.ID(),
		Name:   s.Name(),
		Res:    s.Resolution(),
		Lock:   boolInt(s.Locked()),
		Hidden: boolInt(s.Hidden()),
		Color:  hexColor(s.Color()),
		Mask:   s.MaskFile(),
	}
	if name := s.TextureFile(); name != "" {
		e.Filename = &name
	}
	for i, c := range s.Corners() {
		e.Corners = append(e.Corners, indexedPoint{I: i, X: c.X, Y: c.Y})
	}
	if w := s.TextureWindow(); w != FullTexture {
		e.Texture = &textureEntry{X: w.Offset.X, Y: w.Offset.Y, W: w.Size.X, H: w.Size.Y}
	}
	if b := s.EdgeBlend(); b != (EdgeBlend{}) {
		e.Blend = &blendEntry{
			Left: boolInt(b.Left), Right: boolInt(b.Right),
			LeftWidth: b.LeftWidth, RightWidth: b.RightWidth,
		}
	}

	switch s := s.(type) {
	case *QuadSurface:
	case *BezierSurface:
		h, v := s.HorizontalForce(), s.VerticalForce()
		e.HorizontalForce, e.VerticalForce = &h, &v
		for i := 0; i < 8; i++ {
			p := s.Handle(i)
			e.Handles = append(e.Handles, indexedPoint{I: i, X: p.X, Y: p.Y})
		}
	}
	return e
}

func decodeSurface(e surfaceEntry) (Surface, error) {
	kind, err := ParseKind(e.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: surface %d: %w", ErrLayoutMalformed, e.ID, err)
	}
	if e.Res > MaxResolution {
		return nil, fmt.Errorf("%w: surface %d: res %d exceeds %d", ErrLayoutMalformed, e.ID, e.Res, MaxResolution)
	}
	corners, err := indexedPoints(e.Corners, 4)
	if err != nil {
		return nil, fmt.Errorf("%w: surface %d corners: %w", ErrLayoutMalformed, e.ID, err)
	}

	var s Surface
	switch kind {
	case KindQuad:
		s = NewQuadSurface(e.ID, e.Res, [4]Point(corners))
	case KindBezier:
		handles, err := indexedPoints(e.Handles, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: surface %d handles: %w", ErrLayoutMalformed, e.ID, err)
		}
		var cps [4]ControlPoint
		for i := range cps {
			cps[i] = ControlPoint{Point: corners[i], Handle0: handles[2*i], Handle1: handles[2*i+1]}
		}
		b := NewBezierSurface(e.ID, e.Res, cps)
		var h, v int
		if e.HorizontalForce != nil {
			h = *e.HorizontalForce
		}
		if e.VerticalForce != nil {
			v = *e.VerticalForce
		}
		b.SetForces(h, v)
		s = b
	}

	s.SetLocked(e.Lock != 0)
	s.SetHidden(e.Hidden != 0)
	s.SetName(e.Name)
	if e.Filename != nil && *e.Filename != "null" {
		s.SetTextureFile(*e.Filename)
	}
	s.SetMaskFile(e.Mask)
	if c, ok := parseHexColor(e.Color); ok {
		s.SetColor(c)
	}
	if t := e.Texture; t != nil {
		s.SetTextureWindow(TextureWindow{Offset: Pt(t.X, t.Y), Size: Pt(t.W, t.H)})
	}
	if b := e.Blend; b != nil {
		s.SetEdgeBlend(EdgeBlend{
			Left: b.Left != 0, Right: b.Right != 0,
			LeftWidth: b.LeftWidth, RightWidth: b.RightWidth,
		})
	}
	return s, nil
}

// indexedPoints orders exactly n points by their index attribute.
func indexedPoints(in []indexedPoint, n int) ([]Point, error) {
	if len(in) != n {
		return nil, fmt.Errorf("got %d points, want %d", len(in), n)
	}
	out := make([]Point, n)
	set := make([]bool, n)
	for _, p := range in {
		if p.I < 0 || p.I >= n || set[p.I] {
			return nil, fmt.Errorf("bad or repeated index %d", p.I)
		}
		if !finite(p.X) || !finite(p.Y) {
			return nil, fmt.Errorf("point %d is not finite", p.I)
		}
		out[p.I] = Pt(p.X, p.Y)
		set[p.I] = true
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func parseHexColor(s string) (color.NRGBA, bool) {
	if len(s) != 9 || s[0] != '#' {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}
