package mobile

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/gogpu/vmap"
)

// Translator turns x/mobile events into vmap events. It remembers the held
// mouse button so plain motion can be told apart from drags.
//
// The zero value is ready to use. A Translator is not safe for concurrent
// use.
type Translator struct {
	held   vmap.Button
	width  int
	height int
}

// Size returns the last size reported by a size.Event.
func (t *Translator) Size() (width, height int) { return t.width, t.height }

// Translate converts one event. Unknown event types yield nil.
func (t *Translator) Translate(e any) []vmap.Event {
	switch e := e.(type) {
	case mouse.Event:
		return t.mouse(e)
	case touch.Event:
		return t.touch(e)
	case key.Event:
		return t.key(e)
	case size.Event:
		t.width, t.height = e.WidthPx, e.HeightPx
	}
	return nil
}

func (t *Translator) mouse(e mouse.Event) []vmap.Event {
	x, y := float64(e.X), float64(e.Y)
	if e.Button.IsWheel() {
		if e.Direction == mouse.DirRelease {
			return nil
		}
		delta := 1
		if e.Button == mouse.ButtonWheelDown || e.Button == mouse.ButtonWheelRight {
			delta = -1
		}
		return []vmap.Event{{Kind: vmap.EventWheel, X: x, Y: y, Delta: delta, Mods: mods(e.Modifiers)}}
	}

	ev := vmap.Event{X: x, Y: y, Button: button(e.Button), Mods: mods(e.Modifiers)}
	switch e.Direction {
	case mouse.DirPress:
		ev.Kind = vmap.EventPointerDown
		t.held = ev.Button
	case mouse.DirRelease:
		ev.Kind = vmap.EventPointerUp
		t.held = vmap.ButtonNone
	default:
		ev.Kind = vmap.EventPointerMove
		if t.held != vmap.ButtonNone {
			ev.Kind = vmap.EventPointerDrag
			ev.Button = t.held
		}
	}
	return []vmap.Event{ev}
}

// touch maps the first finger to the left button.
func (t *Translator) touch(e touch.Event) []vmap.Event {
	if e.Sequence != 0 {
		return nil
	}
	ev := vmap.Event{X: float64(e.X), Y: float64(e.Y), Button: vmap.ButtonLeft}
	switch e.Type {
	case touch.TypeBegin:
		ev.Kind = vmap.EventPointerDown
	case touch.TypeMove:
		ev.Kind = vmap.EventPointerDrag
	case touch.TypeEnd:
		ev.Kind = vmap.EventPointerUp
	default:
		return nil
	}
	return []vmap.Event{ev}
}

func (t *Translator) key(e key.Event) []vmap.Event {
	var kind vmap.EventKind
	switch e.Direction {
	case key.DirPress:
		kind = vmap.EventKeyDown
	case key.DirRelease:
		kind = vmap.EventKeyUp
	default:
		// Auto-repeat only matters for the arrow nudges.
		if !isArrow(e.Code) {
			return nil
		}
		kind = vmap.EventKeyDown
	}

	ev := vmap.Event{Kind: kind, Key: keyCode(e.Code), Mods: mods(e.Modifiers)}
	if ev.Key == vmap.KeyNone {
		if e.Rune <= 0 {
			return nil
		}
		ev.Key = vmap.KeyRune
		ev.Rune = e.Rune
	}
	return []vmap.Event{ev}
}

func button(b mouse.Button) vmap.Button {
	switch b {
	case mouse.ButtonLeft:
		return vmap.ButtonLeft
	case mouse.ButtonRight:
		return vmap.ButtonRight
	case mouse.ButtonMiddle:
		return vmap.ButtonMiddle
	}
	return vmap.ButtonNone
}

var keyCodes = map[key.Code]vmap.Key{
	key.CodeUpArrow:         vmap.KeyUp,
	key.CodeDownArrow:       vmap.KeyDown,
	key.CodeLeftArrow:       vmap.KeyLeft,
	key.CodeRightArrow:      vmap.KeyRight,
	key.CodeDeleteForward:   vmap.KeyDelete,
	key.CodeDeleteBackspace: vmap.KeyBackspace,
	key.CodeEscape:          vmap.KeyEscape,
	key.CodeLeftControl:     vmap.KeyCtrl,
	key.CodeRightControl:    vmap.KeyCtrl,
	key.CodeLeftAlt:         vmap.KeyAlt,
	key.CodeRightAlt:        vmap.KeyAlt,
	key.CodeLeftShift:       vmap.KeyShift,
	key.CodeRightShift:      vmap.KeyShift,
}

func keyCode(c key.Code) vmap.Key {
	return keyCodes[c]
}

func isArrow(c key.Code) bool {
	switch c {
	case key.CodeUpArrow, key.CodeDownArrow, key.CodeLeftArrow, key.CodeRightArrow:
		return true
	}
	return false
}

func mods(m key.Modifiers) vmap.Modifiers {
	var out vmap.Modifiers
	if m&key.ModControl != 0 {
		out |= vmap.ModCtrl
	}
	if m&key.ModAlt != 0 {
		out |= vmap.ModAlt
	}
	if m&key.ModShift != 0 {
		out |= vmap.ModShift
	}
	return out
}
