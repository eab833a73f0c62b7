package guing

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/time/rate"
)

// Key repeat timing in ticks.
const (
	keyRepeatDelay    = 30
	keyRepeatInterval = 4
)

var pollButtons = [...]MouseButton{MouseButtonLeft, MouseButtonRight, MouseButtonMiddle}

// EbitenSource reads ebiten's input state once per tick and pushes raw events
// into a pipeline. It must be polled from the ebiten Update callback.
type EbitenSource struct {
	// Scale divides cursor coordinates, matching Config.UIScale.
	Scale float64

	lastX, lastY int
	havePos      bool
	wheel        *rate.Limiter
	keyBuf       []ebiten.Key
	charBuf      []rune
}

// NewEbitenSource creates a source. Wheel events are limited to one every
// wheelInterval; zero disables limiting.
func NewEbitenSource(scale float64, wheelInterval time.Duration) *EbitenSource {
	s := &EbitenSource{Scale: scale}
	if wheelInterval > 0 {
		s.wheel = rate.NewLimiter(rate.Every(wheelInterval), 1)
	}
	return s
}

// Poll pushes every input change since the previous tick.
func (s *EbitenSource) Poll(p *Pipeline) {
	now := time.Now()
	mods := readModifiers()

	s.keyBuf = inpututil.AppendJustPressedKeys(s.keyBuf[:0])
	for _, k := range s.keyBuf {
		p.PushKey(RawKeyEvent{Key: k, Action: KeyActionDown, Mods: mods, Time: now})
	}
	s.keyBuf = inpututil.AppendPressedKeys(s.keyBuf[:0])
	for _, k := range s.keyBuf {
		d := inpututil.KeyPressDuration(k)
		if d > keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0 {
			p.PushKey(RawKeyEvent{Key: k, Action: KeyActionDown, Repeat: true, Mods: mods, Time: now})
		}
	}
	s.keyBuf = inpututil.AppendJustReleasedKeys(s.keyBuf[:0])
	for _, k := range s.keyBuf {
		p.PushKey(RawKeyEvent{Key: k, Action: KeyActionUp, Mods: mods, Time: now})
	}
	s.charBuf = ebiten.AppendInputChars(s.charBuf[:0])
	for _, r := range s.charBuf {
		p.PushKey(RawKeyEvent{Rune: r, Action: KeyActionChar, Mods: mods, Time: now})
	}

	cx, cy := ebiten.CursorPosition()
	scale := s.Scale
	if scale <= 0 {
		scale = 1
	}
	x, y := float64(cx)/scale, float64(cy)/scale

	// Moves go first so a press is classified at the latest position.
	if !s.havePos || cx != s.lastX || cy != s.lastY {
		if s.havePos {
			p.PushMouse(RawMouseEvent{X: x, Y: y, Action: MouseActionMove, Mods: mods, Time: now})
		}
		s.lastX, s.lastY, s.havePos = cx, cy, true
	}
	for _, b := range pollButtons {
		if inpututil.IsMouseButtonJustPressed(b.ebitenButton()) {
			p.PushMouse(RawMouseEvent{X: x, Y: y, Button: b, Action: MouseActionPress, Mods: mods, Time: now})
		}
		if inpututil.IsMouseButtonJustReleased(b.ebitenButton()) {
			p.PushMouse(RawMouseEvent{X: x, Y: y, Button: b, Action: MouseActionRelease, Mods: mods, Time: now})
		}
	}

	wx, wy := ebiten.Wheel()
	if wx == 0 && wy == 0 {
		return
	}
	if s.wheel != nil && !s.wheel.Allow() {
		return
	}
	p.PushMouse(RawMouseEvent{X: x, Y: y, Action: MouseActionWheel, WheelX: wx, WheelY: wy, Mods: mods, Time: now})
}
