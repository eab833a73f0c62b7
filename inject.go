package guing

import "github.com/hajimehoshi/ebiten/v2"

// InjectPress queues a left-button press at the given screen coordinates.
// Injected events travel the same queues as native input, so they are
// coarsened and dispatched exactly like real mouse input.
func (p *Pipeline) InjectPress(x, y float64) {
	p.PushMouse(RawMouseEvent{X: x, Y: y, Button: MouseButtonLeft, Action: MouseActionPress})
}

// InjectMove queues a pointer move to the given screen coordinates. Between
// InjectPress and InjectRelease it drives a drag.
func (p *Pipeline) InjectMove(x, y float64) {
	p.PushMouse(RawMouseEvent{X: x, Y: y, Action: MouseActionMove})
}

// InjectRelease queues a left-button release at the given screen coordinates.
func (p *Pipeline) InjectRelease(x, y float64) {
	p.PushMouse(RawMouseEvent{X: x, Y: y, Button: MouseButtonLeft, Action: MouseActionRelease})
}

// InjectButton queues a press and release of any button at one point.
func (p *Pipeline) InjectButton(x, y float64, b MouseButton) {
	p.PushMouse(RawMouseEvent{X: x, Y: y, Button: b, Action: MouseActionPress})
	p.PushMouse(RawMouseEvent{X: x, Y: y, Button: b, Action: MouseActionRelease})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates.
func (p *Pipeline) InjectClick(x, y float64) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), steps
// linearly interpolated moves, and release at (toX, toY). At least one move
// is always queued so the drag starts before the release.
func (p *Pipeline) InjectDrag(fromX, fromY, toX, toY float64, steps int) {
	if steps < 1 {
		steps = 1
	}
	p.InjectPress(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	p.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel event at the given screen coordinates.
func (p *Pipeline) InjectWheel(x, y, dy float64) {
	p.PushMouse(RawMouseEvent{X: x, Y: y, Action: MouseActionWheel, WheelY: dy})
}

// InjectKey queues a key press and release.
func (p *Pipeline) InjectKey(k ebiten.Key, mods KeyModifiers) {
	p.PushKey(RawKeyEvent{Key: k, Action: KeyActionDown, Mods: mods})
	p.PushKey(RawKeyEvent{Key: k, Action: KeyActionUp, Mods: mods})
}

// InjectText queues one character event per rune of s.
func (p *Pipeline) InjectText(s string) {
	for _, r := range s {
		p.PushKey(RawKeyEvent{Rune: r, Action: KeyActionChar})
	}
}
