package vmap

import "strconv"

// EventKind identifies an input event.
type EventKind uint8

const (
	EventPointerDown EventKind = iota // Button pressed
	EventPointerDrag                  // Pointer moved with a button held
	EventPointerUp                    // Button released
	EventPointerMove                  // Pointer moved with no button held
	EventWheel                        // Scroll wheel step
	EventKeyDown                      // Key pressed
	EventKeyUp                        // Key released
)

var eventKindNames = [...]string{
	EventPointerDown: "PointerDown",
	EventPointerDrag: "PointerDrag",
	EventPointerUp:   "PointerUp",
	EventPointerMove: "PointerMove",
	EventWheel:       "Wheel",
	EventKeyDown:     "KeyDown",
	EventKeyUp:       "KeyUp",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// IsPointer reports whether the kind carries a pointer position.
func (k EventKind) IsPointer() bool { return k <= EventWheel }

// Button identifies a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModShift
)

// Has reports whether all modifiers in m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Key identifies a non-printable key. Printable keys use KeyRune together
// with Event.Rune.
type Key uint8

const (
	KeyNone Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyDelete
	KeyBackspace
	KeyEscape
	KeyCtrl
	KeyAlt
	KeyShift
)

// Event is a host-neutral input event.
//
// Pointer events use X, Y and Button; wheel events use Delta (positive
// away from the user). Key events use Key and Rune. Mods is informational;
// the Mapper tracks modifier state from KeyCtrl and KeyAlt key events.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Button Button
	Delta  int
	Key    Key
	Rune   rune
	Mods   Modifiers
}

// NewPointerEvent builds a pointer event at (x, y).
func NewPointerEvent(kind EventKind, x, y float64, b Button) Event {
	return Event{Kind: kind, X: x, Y: y, Button: b}
}

// NewRuneEvent builds a key-down event for a printable key.
func NewRuneEvent(r rune) Event {
	return Event{Kind: EventKeyDown, Key: KeyRune, Rune: r}
}

// NewKeyEvent builds a key event for a non-printable key.
func NewKeyEvent(kind EventKind, k Key) Event {
	return Event{Kind: kind, Key: k}
}
