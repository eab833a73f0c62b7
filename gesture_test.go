package guing

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

var gestureTestConfig = GestureConfig{
	DoubleClickWindow:   400 * time.Millisecond,
	DoubleClickDistance: 4,
	DragDeadZone:        4,
}

// feed runs raw events through c and collects the phases emitted.
func feed(c *Coarsener, evs ...RawMouseEvent) []MouseEvent {
	var out []MouseEvent
	for _, ev := range evs {
		out = append(out, c.Mouse(ev)...)
	}
	return out
}

func phases(evs []MouseEvent) []MousePhase {
	out := make([]MousePhase, len(evs))
	for i, ev := range evs {
		out[i] = ev.Phase
	}
	return out
}

func samePhases(a, b []MousePhase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCoarsenerDragThenDoubleClick(t *testing.T) {
	t0 := time.Unix(1000, 0)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }
	c := NewCoarsener(gestureTestConfig)

	got := feed(c,
		RawMouseEvent{X: 100, Y: 100, Action: MouseActionPress, Time: at(0)},
		RawMouseEvent{X: 140, Y: 100, Action: MouseActionMove, Time: at(10)},
		RawMouseEvent{X: 140, Y: 100, Action: MouseActionRelease, Time: at(20)},
		RawMouseEvent{X: 200, Y: 200, Action: MouseActionPress, Time: at(100)},
		RawMouseEvent{X: 200, Y: 200, Action: MouseActionRelease, Time: at(110)},
		RawMouseEvent{X: 201, Y: 200, Action: MouseActionPress, Time: at(200)},
		RawMouseEvent{X: 201, Y: 200, Action: MouseActionRelease, Time: at(210)},
	)
	want := []MousePhase{MouseDragStart, MouseDragEnd, MouseClick, MouseDoubleClick}
	if !samePhases(phases(got), want) {
		t.Fatalf("phases = %v, want %v", phases(got), want)
	}
	if got[0].X != 100 || got[0].Y != 100 {
		t.Errorf("drag start at (%v, %v), want the press point", got[0].X, got[0].Y)
	}
	if got[1].X != 140 || got[1].StartX != 100 {
		t.Errorf("drag end at %v from %v, want 140 from 100", got[1].X, got[1].StartX)
	}
}

func TestCoarsenerDragMoves(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	got := feed(c,
		RawMouseEvent{X: 0, Y: 0, Action: MouseActionPress},
		RawMouseEvent{X: 2, Y: 0, Action: MouseActionMove}, // inside dead zone
		RawMouseEvent{X: 10, Y: 0, Action: MouseActionMove},
		RawMouseEvent{X: 20, Y: 0, Action: MouseActionMove},
		RawMouseEvent{X: 25, Y: 0, Action: MouseActionRelease},
	)
	want := []MousePhase{MouseDragStart, MouseDrag, MouseDragEnd}
	if !samePhases(phases(got), want) {
		t.Fatalf("phases = %v, want %v", phases(got), want)
	}
	if got[1].DeltaX != 20 {
		t.Errorf("first drag delta = %v, want 20 from the start point", got[1].DeltaX)
	}
	if c.Dragging() {
		t.Error("drag should be over after release")
	}
}

func TestCoarsenerJitterIsClick(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	got := feed(c,
		RawMouseEvent{X: 50, Y: 50, Action: MouseActionPress},
		RawMouseEvent{X: 52, Y: 51, Action: MouseActionMove},
		RawMouseEvent{X: 52, Y: 51, Action: MouseActionRelease},
	)
	if !samePhases(phases(got), []MousePhase{MouseClick}) {
		t.Errorf("phases = %v, want [click]", phases(got))
	}
}

func TestCoarsenerDoubleClickWindow(t *testing.T) {
	t0 := time.Unix(0, 0)
	tests := []struct {
		name     string
		gap      time.Duration
		dx       float64
		button   MouseButton
		wantLast MousePhase
	}{
		{"fast and close", 100 * time.Millisecond, 0, MouseButtonLeft, MouseDoubleClick},
		{"too slow", 500 * time.Millisecond, 0, MouseButtonLeft, MouseClick},
		{"too far", 100 * time.Millisecond, 10, MouseButtonLeft, MouseClick},
		{"other button", 100 * time.Millisecond, 0, MouseButtonRight, MouseClick},
	}
	for _, tt := range tests {
		c := NewCoarsener(gestureTestConfig)
		got := feed(c,
			RawMouseEvent{X: 0, Y: 0, Action: MouseActionPress, Time: t0},
			RawMouseEvent{X: 0, Y: 0, Action: MouseActionRelease, Time: t0},
			RawMouseEvent{X: tt.dx, Y: 0, Button: tt.button, Action: MouseActionPress, Time: t0.Add(tt.gap)},
			RawMouseEvent{X: tt.dx, Y: 0, Button: tt.button, Action: MouseActionRelease, Time: t0.Add(tt.gap)},
		)
		if len(got) != 2 || got[1].Phase != tt.wantLast {
			t.Errorf("%s: phases = %v, want last %v", tt.name, phases(got), tt.wantLast)
		}
	}
}

func TestCoarsenerTripleClick(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	t0 := time.Unix(0, 0)
	var evs []RawMouseEvent
	for i := range 3 {
		at := t0.Add(time.Duration(i*50) * time.Millisecond)
		evs = append(evs,
			RawMouseEvent{Action: MouseActionPress, Time: at},
			RawMouseEvent{Action: MouseActionRelease, Time: at},
		)
	}
	want := []MousePhase{MouseClick, MouseDoubleClick, MouseClick}
	if got := phases(feed(c, evs...)); !samePhases(got, want) {
		t.Errorf("phases = %v, want %v", got, want)
	}
}

func TestCoarsenerSecondButtonIgnored(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	got := feed(c,
		RawMouseEvent{Button: MouseButtonLeft, Action: MouseActionPress},
		RawMouseEvent{Button: MouseButtonRight, Action: MouseActionPress},
		RawMouseEvent{Button: MouseButtonRight, Action: MouseActionRelease},
		RawMouseEvent{Button: MouseButtonLeft, Action: MouseActionRelease},
	)
	if len(got) != 1 || got[0].Phase != MouseClick || got[0].Button != MouseButtonLeft {
		t.Errorf("got %v, want one left click", phases(got))
	}
}

func TestCoarsenerMoveAndWheel(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	got := feed(c,
		RawMouseEvent{X: 3, Y: 4, Action: MouseActionMove},
		RawMouseEvent{X: 3, Y: 4, Action: MouseActionWheel, WheelY: -1},
	)
	if !samePhases(phases(got), []MousePhase{MouseMove, MouseWheel}) {
		t.Fatalf("phases = %v", phases(got))
	}
	if got[1].WheelY != -1 {
		t.Errorf("WheelY = %v, want -1", got[1].WheelY)
	}
}

func TestCoarsenerKeyRepeat(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	down := RawKeyEvent{Key: ebiten.KeyA, Action: KeyActionDown}
	if ev := c.Key(down); ev.Phase != KeyDown || ev.Repeated {
		t.Errorf("first down = %+v", ev)
	}
	if ev := c.Key(down); !ev.Repeated {
		t.Error("second down without release should be a repeat")
	}
	c.Key(RawKeyEvent{Key: ebiten.KeyA, Action: KeyActionUp})
	if ev := c.Key(down); ev.Repeated {
		t.Error("down after release is not a repeat")
	}
	if ev := c.Key(RawKeyEvent{Rune: 'x', Action: KeyActionChar}); ev.Phase != KeyChar || ev.Rune != 'x' {
		t.Errorf("char = %+v", ev)
	}
}

func TestCoarsenerReset(t *testing.T) {
	c := NewCoarsener(gestureTestConfig)
	feed(c,
		RawMouseEvent{Action: MouseActionPress},
		RawMouseEvent{X: 50, Action: MouseActionMove},
	)
	if !c.Dragging() {
		t.Fatal("expected a drag in progress")
	}
	c.Reset()
	if c.Dragging() {
		t.Error("Reset should drop the drag")
	}
	if got := feed(c, RawMouseEvent{X: 50, Action: MouseActionRelease}); len(got) != 0 {
		t.Errorf("release after reset emitted %v", phases(got))
	}
}
