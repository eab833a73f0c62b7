package guing

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween/ease"
)

// BubbleKind selects the colors of a chat bubble.
type BubbleKind uint8

const (
	BubbleNormal BubbleKind = iota
	BubbleWhisper
	BubbleYell
	BubbleThought
	BubbleAction
	BubbleNarrate
	BubbleMonster
)

const (
	bubblePad        = 6
	bubbleTail       = 10
	bubbleTailHalf   = 6
	maxChatBubbles   = 32
	bubbleBackground = 0.85
)

// bubbleColors returns border, background and text colors for a kind.
func bubbleColors(kind BubbleKind) (border, bg, fg Color) {
	white := Color{1, 1, 1, bubbleBackground}
	black := Color{0, 0, 0, 1}
	switch kind {
	case BubbleWhisper:
		return Color{0.5, 0.5, 0.5, 1}, Color{0.2, 0.2, 0.2, bubbleBackground}, ColorWhite
	case BubbleYell:
		return Color{1, 1, 0, 1}, white, black
	case BubbleThought:
		return Color{}, Color{0.5, 0.5, 0.5, bubbleBackground}, black
	case BubbleAction:
		return Color{0.5, 0, 0, 1}, white, black
	case BubbleNarrate:
		return Color{0, 0.5, 0, 1}, white, black
	case BubbleMonster:
		return Color{0.84, 0.84, 0.84, 1}, Color{0.28, 0.28, 0.28, bubbleBackground}, ColorWhite
	default:
		return ColorWhite, white, black
	}
}

// adjustBubbleRect places a width x height bubble above the tail tip (x, y)
// and clamps it into a sw x sh screen. It returns the clamped top-left
// corner and the tail tip shifted by the same amount. Far bubbles have no
// tail and sit directly on (x, y).
func adjustBubbleRect(x, y, width, height, sw, sh float64, far bool) (left, top, ax, ay float64) {
	bottom := y
	if !far {
		bottom = y - bubbleTail
	}
	left = x - width/2
	top = bottom - height
	origLeft, origTop := left, top

	if left+width > sw {
		left = sw - width
	}
	if left < 0 {
		left = 0
	}
	if top+height > sh {
		top = sh - height
	}
	if top < 0 {
		top = 0
	}
	return left, top, x + left - origLeft, y + top - origTop
}

// Bubble is one speech balloon.
type Bubble struct {
	*Widget
	Kind  BubbleKind
	lines []string
	font  Font
	far   bool
	// tail tip relative to the bubble
	tipX, tipY float64
}

// Lines returns the wrapped text.
func (b *Bubble) Lines() []string { return b.lines }

// Paint implements Painter.
func (b *Bubble) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	border, bg, fg := bubbleColors(b.Kind)
	r := w.Bounds()
	fillRect(dst, r, bg.WithAlpha(w.Alpha))
	if border.A > 0 {
		strokeRect(dst, r, 1, border.WithAlpha(w.Alpha))
	}
	if !b.far {
		tx, ty := r.X+b.tipX, r.Y+b.tipY
		c := border
		if c.A == 0 {
			c = bg
		}
		c = c.WithAlpha(w.Alpha)
		bottom := float32(r.Y + r.Height)
		vector.StrokeLine(dst, float32(tx-bubbleTailHalf), bottom, float32(tx), float32(ty), 1, c.toRGBA(), true)
		vector.StrokeLine(dst, float32(tx+bubbleTailHalf), bottom, float32(tx), float32(ty), 1, c.toRGBA(), true)
	}
	lh := b.font.LineHeight()
	y := r.Y + bubblePad
	for _, l := range b.lines {
		b.font.Draw(dst, l, r.X+bubblePad, y, fg.WithAlpha(w.Alpha))
		y += lh
	}
}

// ChatLayer shows speech bubbles above the game view. It is display only:
// input passes through to whatever lies below. Bubbles live for a fixed time,
// fade out and are removed at the end of the frame they finish in.
type ChatLayer struct {
	*Widget
	font     Font
	lifetime int64
	fade     int64
}

// NewChatLayer creates an empty layer covering width x height.
func NewChatLayer(cfg Config, font Font, width, height float64) *ChatLayer {
	l := &ChatLayer{
		Widget:   NewWidget("chat", width, height),
		font:     font,
		lifetime: int64(cfg.BubbleLifetimeMillis),
		fade:     int64(cfg.BubbleFadeMillis),
	}
	l.PassThrough = true
	l.DeferRemoval = true
	l.OnHide = func(*Widget) { l.Clear() }
	return l
}

// Say adds a bubble whose tail points at (x, y) in layer coordinates.
func (l *ChatLayer) Say(kind BubbleKind, text string, x, y float64, far bool) *Bubble {
	if text == "" {
		return nil
	}
	maxLine := max(l.Width/4-2*bubblePad, 32)
	lines := l.font.Wrap(text, maxLine)
	var tw float64
	for _, s := range lines {
		w, _ := l.font.Measure(s)
		tw = max(tw, w)
	}
	width := tw + 2*bubblePad
	height := float64(len(lines))*l.font.LineHeight() + 2*bubblePad

	left, top, ax, ay := adjustBubbleRect(x, y, width, height, l.Width, l.Height, far)
	b := &Bubble{
		Widget: NewWidget("bubble", width, height),
		Kind:   kind,
		lines:  lines,
		font:   l.font,
		far:    far,
		tipX:   ax - left,
		tipY:   ay - top,
	}
	b.Painter = b
	b.Transient = true
	b.X, b.Y = left, top

	if live := l.live(); len(live) >= maxChatBubbles {
		l.RemoveChild(live[0])
	}
	l.AddChild(b.Widget)
	t := TweenAlpha(b.Widget, 0, l.fade, ease.InQuad).After(l.lifetime)
	t.OnDone = func() {
		if b.Parent == l.Widget {
			l.RemoveChild(b.Widget)
		}
	}
	b.Animate(t)
	return b
}

// live returns bubbles not already queued for removal.
func (l *ChatLayer) live() []*Widget {
	out := make([]*Widget, 0, len(l.children))
outer:
	for _, c := range l.children {
		for _, r := range l.removals {
			if r == c {
				continue outer
			}
		}
		out = append(out, c)
	}
	return out
}

// Count returns the number of bubbles still showing.
func (l *ChatLayer) Count() int {
	return len(l.live())
}

// Clear removes every bubble immediately.
func (l *ChatLayer) Clear() {
	l.RemoveChildren()
}
