package guing

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const tooltipOffset = 16

// ProcessKeyboardEvent queues ev for the next Update. Safe for concurrent use.
func (g *GUI) ProcessKeyboardEvent(ev KeyboardEvent) {
	g.qmu.Lock()
	g.keyQueue = append(g.keyQueue, ev)
	g.qmu.Unlock()
}

// ProcessMouseEvent queues ev for the next Update. Safe for concurrent use.
func (g *GUI) ProcessMouseEvent(ev MouseEvent) {
	g.qmu.Lock()
	g.mouseQueue = append(g.mouseQueue, ev)
	g.qmu.Unlock()
}

func (g *GUI) queuedInput() int {
	g.qmu.Lock()
	defer g.qmu.Unlock()
	return len(g.keyQueue) + len(g.mouseQueue)
}

// drainInput swaps the queues with the reusable buffers so the pipeline can
// keep appending while the frame dispatches.
func (g *GUI) drainInput() ([]KeyboardEvent, []MouseEvent) {
	g.qmu.Lock()
	keys, mouse := g.keyQueue, g.mouseQueue
	g.keyQueue, g.mouseQueue = g.keyBuf[:0], g.mouseBuf[:0]
	g.qmu.Unlock()
	g.keyBuf, g.mouseBuf = keys, mouse
	return keys, mouse
}

// --- Capture and focus ---

// SetExclusiveMouse routes every mouse event to w, bypassing hit testing,
// until it is called with nil or w leaves the tree or is hidden.
// Safe for concurrent use.
func (g *GUI) SetExclusiveMouse(w *Widget) {
	g.capMu.Lock()
	g.capture = w
	g.capMu.Unlock()
}

// ExclusiveMouse returns the widget holding mouse capture, or nil.
func (g *GUI) ExclusiveMouse() *Widget {
	g.capMu.Lock()
	defer g.capMu.Unlock()
	return g.capture
}

// SetFocus gives keyboard focus to w, or clears it when w is nil.
func (g *GUI) SetFocus(w *Widget) { g.focus = w }

// Focused returns the widget with keyboard focus, or nil.
func (g *GUI) Focused() *Widget { return g.focus }

// releaseWithin drops capture, focus, hover and any item drag held inside
// the subtree rooted at w.
func (g *GUI) releaseWithin(w *Widget) {
	g.capMu.Lock()
	if g.capture != nil && w.Contains(g.capture) {
		g.capture = nil
	}
	g.capMu.Unlock()
	if g.focus != nil && w.Contains(g.focus) {
		g.focus = nil
	}
	if g.hover != nil && w.Contains(g.hover) {
		g.hover = nil
		g.tooltip.SetVisible(false)
	}
	if g.dragOwner != nil && w.Contains(g.dragOwner) {
		g.dragOwner = nil
		g.decoder.Cancel()
	}
}

// --- Dispatch ---

func (g *GUI) dispatchKey(ev KeyboardEvent) {
	if f := g.focus; f != nil {
		if !f.Shown() || f.IsDisposed() {
			g.focus = nil
		} else if f.OnKeyboard != nil && f.OnKeyboard(f, ev) {
			return
		}
	}
	if g.root.HandleKeyboardEvent(ev) {
		return
	}
	if ev.Phase == KeyDown && ev.Key == ebiten.KeyEscape && g.decoder.Active() {
		g.dragOwner = nil
		g.decoder.Cancel()
	}
}

func (g *GUI) dispatchMouse(ev MouseEvent) {
	g.pointerX, g.pointerY = ev.X, ev.Y
	switch ev.Phase {
	case MouseMove, MouseDrag, MouseDragEnd:
		g.updateHover(ev.X, ev.Y)
	case MouseClick, MouseDoubleClick:
		if f := g.focus; f != nil && !f.Bounds().Contains(ev.X, ev.Y) {
			g.focus = nil
		}
	}

	if target := g.ExclusiveMouse(); target != nil {
		if target.OnMouse != nil {
			target.OnMouse(target, ev)
		}
		return
	}

	wasActive := g.decoder.Active()
	g.root.HandleMouseEvent(ev)

	switch ev.Phase {
	case MouseDragStart:
		if !wasActive && g.decoder.Active() {
			g.dragOwner = g.root.WidgetAt(ev.StartX, ev.StartY)
		}
	case MouseDragEnd:
		// Slot grids and the game view finish the drags they receive.
		if g.decoder.Active() {
			g.releaseDrag(ev.X, ev.Y)
		}
	}
	if !g.decoder.Active() {
		g.dragOwner = nil
	}
}

// updateHover tracks the widget under the pointer and shows the nearest
// tooltip of it or its ancestors.
func (g *GUI) updateHover(x, y float64) {
	h := g.root.WidgetAt(x, y)
	g.hover = h
	tip := ""
	for w := h; w != nil; w = w.Parent {
		if w.Tooltip != "" {
			tip = w.Tooltip
			break
		}
	}
	if tip == "" || g.decoder.Active() {
		g.tooltip.SetVisible(false)
		return
	}
	g.tooltip.SetText(tip)
	tx := min(x+tooltipOffset, g.width-g.tooltip.Width)
	ty := min(y+tooltipOffset, g.height-g.tooltip.Height)
	g.tooltip.SetPosition(max(tx, 0), max(ty, 0))
	g.tooltip.SetVisible(true)
}
