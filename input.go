package guing

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// KeyAction is the kind of a raw keyboard event.
type KeyAction uint8

const (
	KeyActionDown KeyAction = iota
	KeyActionUp
	KeyActionChar
)

// MouseAction is the kind of a raw mouse event.
type MouseAction uint8

const (
	MouseActionPress MouseAction = iota
	MouseActionRelease
	MouseActionMove
	MouseActionWheel
)

// RawKeyEvent is a keyboard event as reported by the native source.
type RawKeyEvent struct {
	Key    ebiten.Key
	Rune   rune
	Action KeyAction
	Repeat bool
	Mods   KeyModifiers
	Time   time.Time
}

// RawMouseEvent is a mouse event as reported by the native source.
type RawMouseEvent struct {
	X, Y           float64
	Button         MouseButton
	Action         MouseAction
	WheelX, WheelY float64
	Mods           KeyModifiers
	Time           time.Time
}

// KeyPhase identifies a processed keyboard event.
type KeyPhase uint8

const (
	KeyDown KeyPhase = iota
	KeyUp
	KeyChar
)

func (p KeyPhase) String() string {
	switch p {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	case KeyChar:
		return "char"
	}
	return "unknown"
}

// KeyboardEvent is delivered to widgets after coarsening.
type KeyboardEvent struct {
	Key      ebiten.Key
	Rune     rune
	Phase    KeyPhase
	Repeated bool
	Mods     KeyModifiers
}

// MousePhase identifies a processed mouse event.
type MousePhase uint8

const (
	MouseMove MousePhase = iota
	MouseClick
	MouseDoubleClick
	MouseDragStart
	MouseDrag
	MouseDragEnd
	MouseWheel
)

func (p MousePhase) String() string {
	switch p {
	case MouseMove:
		return "move"
	case MouseClick:
		return "click"
	case MouseDoubleClick:
		return "double-click"
	case MouseDragStart:
		return "drag-start"
	case MouseDrag:
		return "drag"
	case MouseDragEnd:
		return "drag-end"
	case MouseWheel:
		return "wheel"
	}
	return "unknown"
}

// MouseEvent is delivered to widgets after coarsening. X and Y are absolute
// screen coordinates. For drag phases StartX/StartY hold the press point and
// DeltaX/DeltaY the movement since the previous drag event.
type MouseEvent struct {
	X, Y           float64
	Button         MouseButton
	Phase          MousePhase
	StartX, StartY float64
	DeltaX, DeltaY float64
	WheelX, WheelY float64
	Mods           KeyModifiers
}

// EventSink receives processed events from the input pipeline. Both methods
// are called from the pipeline goroutine.
type EventSink interface {
	ProcessKeyboardEvent(ev KeyboardEvent)
	ProcessMouseEvent(ev MouseEvent)
}

// HandleMouseEvent offers ev to the subtree and reports whether a widget
// consumed it. Children whose area contains the point are tried front to
// back before the widget's own OnMouse, unless InterceptMouse is set.
func (w *Widget) HandleMouseEvent(ev MouseEvent) bool {
	if !w.visible || w.PassThrough {
		return false
	}
	if w.InterceptMouse && w.OnMouse != nil && w.OnMouse(w, ev) {
		return true
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		c := w.children[i]
		if !c.visible || c.PassThrough {
			continue
		}
		cx, cy := c.Absolute()
		if !c.containsLocal(ev.X-cx, ev.Y-cy) {
			continue
		}
		if c.HandleMouseEvent(ev) {
			return true
		}
	}
	if !w.InterceptMouse && w.OnMouse != nil {
		return w.OnMouse(w, ev)
	}
	return false
}

// HandleKeyboardEvent offers ev to visible children front to back, then to
// the widget itself.
func (w *Widget) HandleKeyboardEvent(ev KeyboardEvent) bool {
	if !w.visible {
		return false
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		if w.children[i].HandleKeyboardEvent(ev) {
			return true
		}
	}
	if w.OnKeyboard != nil {
		return w.OnKeyboard(w, ev)
	}
	return false
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}
