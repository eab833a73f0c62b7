package guing

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultDragDeadZone = 4.0 // pixels

// GestureConfig holds the coarsening thresholds.
type GestureConfig struct {
	DoubleClickWindow   time.Duration
	DoubleClickDistance float64
	DragDeadZone        float64
}

// Coarsener turns raw press/release/move pairs into semantic gestures. It is
// a single-goroutine state machine owned by the pipeline.
type Coarsener struct {
	cfg GestureConfig
	now func() time.Time

	down           bool
	button         MouseButton
	startX, startY float64
	lastX, lastY   float64
	dragging       bool

	haveClick      bool
	clickButton    MouseButton
	clickAt        time.Time
	clickX, clickY float64

	held map[ebiten.Key]bool
	out  []MouseEvent
}

// NewCoarsener creates a coarsener with the given thresholds.
func NewCoarsener(cfg GestureConfig) *Coarsener {
	if cfg.DragDeadZone <= 0 {
		cfg.DragDeadZone = defaultDragDeadZone
	}
	return &Coarsener{
		cfg:  cfg,
		now:  time.Now,
		held: make(map[ebiten.Key]bool),
	}
}

// Dragging reports whether a drag gesture is in progress.
func (c *Coarsener) Dragging() bool {
	return c.dragging
}

// Mouse classifies one raw event. The returned slice is reused by the next
// call.
func (c *Coarsener) Mouse(ev RawMouseEvent) []MouseEvent {
	c.out = c.out[:0]
	at := ev.Time
	if at.IsZero() {
		at = c.now()
	}

	switch ev.Action {
	case MouseActionPress:
		if c.down {
			// A second button while one is held does not start a gesture.
			return c.out
		}
		c.down = true
		c.button = ev.Button
		c.startX, c.startY = ev.X, ev.Y
		c.lastX, c.lastY = ev.X, ev.Y
		c.dragging = false

	case MouseActionMove:
		if !c.down {
			c.emit(MouseEvent{X: ev.X, Y: ev.Y, Phase: MouseMove, Mods: ev.Mods})
			return c.out
		}
		if !c.dragging {
			if !c.beyondDeadZone(ev.X, ev.Y) {
				return c.out
			}
			c.dragging = true
			c.emit(c.dragEvent(MouseDragStart, c.startX, c.startY, ev.Mods))
			return c.out
		}
		c.emit(c.dragEvent(MouseDrag, ev.X, ev.Y, ev.Mods))

	case MouseActionRelease:
		if !c.down || ev.Button != c.button {
			return c.out
		}
		c.down = false
		if !c.dragging && c.beyondDeadZone(ev.X, ev.Y) {
			c.dragging = true
			c.emit(c.dragEvent(MouseDragStart, c.startX, c.startY, ev.Mods))
		}
		if c.dragging {
			c.dragging = false
			c.emit(c.dragEvent(MouseDragEnd, ev.X, ev.Y, ev.Mods))
			c.haveClick = false
			return c.out
		}
		c.emit(c.click(ev, at))

	case MouseActionWheel:
		c.emit(MouseEvent{
			X: ev.X, Y: ev.Y, Phase: MouseWheel,
			WheelX: ev.WheelX, WheelY: ev.WheelY, Mods: ev.Mods,
		})
	}
	return c.out
}

// click emits a click, or a double-click when the previous click of the same
// button landed within the time and distance window. A double-click consumes
// the click history so a third click starts over.
func (c *Coarsener) click(ev RawMouseEvent, at time.Time) MouseEvent {
	out := MouseEvent{X: ev.X, Y: ev.Y, Button: ev.Button, Phase: MouseClick, Mods: ev.Mods}
	if c.haveClick && c.clickButton == ev.Button &&
		at.Sub(c.clickAt) <= c.cfg.DoubleClickWindow &&
		math.Hypot(ev.X-c.clickX, ev.Y-c.clickY) <= c.cfg.DoubleClickDistance {
		out.Phase = MouseDoubleClick
		c.haveClick = false
		return out
	}
	c.haveClick = true
	c.clickButton = ev.Button
	c.clickAt = at
	c.clickX, c.clickY = ev.X, ev.Y
	return out
}

func (c *Coarsener) dragEvent(phase MousePhase, x, y float64, mods KeyModifiers) MouseEvent {
	ev := MouseEvent{
		X: x, Y: y, Button: c.button, Phase: phase,
		StartX: c.startX, StartY: c.startY,
		DeltaX: x - c.lastX, DeltaY: y - c.lastY,
		Mods: mods,
	}
	c.lastX, c.lastY = x, y
	return ev
}

func (c *Coarsener) beyondDeadZone(x, y float64) bool {
	dx, dy := x-c.startX, y-c.startY
	return dx*dx+dy*dy > c.cfg.DragDeadZone*c.cfg.DragDeadZone
}

func (c *Coarsener) emit(ev MouseEvent) {
	c.out = append(c.out, ev)
}

// Key classifies a raw keyboard event. A down event for a key that is
// already held is flagged as repeated.
func (c *Coarsener) Key(ev RawKeyEvent) KeyboardEvent {
	out := KeyboardEvent{Key: ev.Key, Rune: ev.Rune, Mods: ev.Mods, Repeated: ev.Repeat}
	switch ev.Action {
	case KeyActionDown:
		out.Phase = KeyDown
		if c.held[ev.Key] {
			out.Repeated = true
		}
		c.held[ev.Key] = true
	case KeyActionUp:
		out.Phase = KeyUp
		delete(c.held, ev.Key)
	case KeyActionChar:
		out.Phase = KeyChar
	}
	return out
}

// Reset drops any half-finished gesture and the click history.
func (c *Coarsener) Reset() {
	c.down = false
	c.dragging = false
	c.haveClick = false
	clear(c.held)
}
