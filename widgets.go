package guing

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Panel paints a solid background with an optional border.
type Panel struct {
	*Widget
	Fill        Color
	Border      Color
	BorderWidth float64
}

// NewPanel creates a filled panel.
func NewPanel(name string, width, height float64, fill Color) *Panel {
	p := &Panel{Widget: NewWidget(name, width, height), Fill: fill}
	p.Painter = p
	return p
}

// Paint implements Painter.
func (p *Panel) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	b := w.Bounds()
	fillRect(dst, b, p.Fill.WithAlpha(w.Alpha))
	if p.BorderWidth > 0 {
		strokeRect(dst, b, p.BorderWidth, p.Border.WithAlpha(w.Alpha))
	}
}

func fillRect(dst *ebiten.Image, r Rect, c Color) {
	if c.A <= 0 || r.Empty() {
		return
	}
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c.toRGBA(), false)
}

func strokeRect(dst *ebiten.Image, r Rect, width float64, c Color) {
	if c.A <= 0 || r.Empty() {
		return
	}
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), float32(width), c.toRGBA(), false)
}

// Label paints one line of text.
type Label struct {
	*Widget
	Font  Font
	Color Color
	Align Align
	// AutoSize resizes the widget to the measured text on every change.
	AutoSize bool
	text     string
}

// NewLabel creates an auto-sized label.
func NewLabel(name string, font Font, s string) *Label {
	l := &Label{Widget: NewWidget(name, 0, 0), Font: font, Color: ColorWhite, AutoSize: true}
	l.Painter = l
	l.SetText(s)
	return l
}

// Text returns the label text.
func (l *Label) Text() string { return l.text }

// SetText replaces the text.
func (l *Label) SetText(s string) {
	l.text = s
	if l.AutoSize {
		w, h := l.Font.Measure(s)
		l.SetSize(w, max(h, l.Font.LineHeight()))
	}
}

// Paint implements Painter.
func (l *Label) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	b := w.Bounds()
	tw, _ := l.Font.Measure(l.text)
	x := b.X + l.Align.offset(b.Width-tw)
	l.Font.Draw(dst, l.text, x, b.Y, l.Color.WithAlpha(w.Alpha))
}

// Image paints a sprite inside the widget. The sprite's alignment also picks
// where in the widget its anchor sits, so a centered sprite is drawn at the
// widget's center. The Image owns its sprite.
type Image struct {
	*Widget
	sprite *Sprite
	// MaskHit restricts hit testing to the sprite's opaque pixels.
	MaskHit bool
}

// NewImage creates an image widget. sprite may be nil.
func NewImage(name string, width, height float64, sprite *Sprite) *Image {
	img := &Image{Widget: NewWidget(name, width, height)}
	img.Painter = img
	img.SetSprite(sprite)
	return img
}

// Sprite returns the displayed sprite.
func (img *Image) Sprite() *Sprite { return img.sprite }

// SetSprite replaces the sprite, releasing the previous one.
func (img *Image) SetSprite(s *Sprite) {
	if img.sprite != nil && img.sprite != s {
		img.sprite.Release()
	}
	img.sprite = s
	if img.MaskHit && s != nil {
		ax, ay := img.anchorIn()
		img.HitShape = SpriteHit{Sprite: s, X: ax, Y: ay}
	} else {
		img.HitShape = nil
	}
}

// anchorIn returns the sprite anchor relative to the widget's origin.
func (img *Image) anchorIn() (x, y float64) {
	if img.sprite == nil {
		return 0, 0
	}
	return img.sprite.HAlign.offset(img.Width), img.sprite.VAlign.offset(img.Height)
}

// Paint implements Painter.
func (img *Image) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	if img.sprite == nil {
		return
	}
	x, y := w.Absolute()
	ax, ay := img.anchorIn()
	img.sprite.Draw(dst, x+ax, y+ay, w.Alpha)
}

// Button is a clickable panel with a centered caption.
type Button struct {
	*Widget
	Fill    Color
	Caption *Label
	OnClick func()
}

// NewButton creates a button. OnClick runs on left clicks and double-clicks.
func NewButton(name string, width, height float64, font Font, caption string, onClick func()) *Button {
	b := &Button{
		Widget:  NewWidget(name, width, height),
		Fill:    Color{0.2, 0.2, 0.25, 0.9},
		OnClick: onClick,
	}
	b.Painter = b
	b.Caption = NewLabel(name+".caption", font, caption)
	b.Caption.PassThrough = true
	b.AddChild(b.Caption.Widget)
	b.Layout = LayoutFunc(func(w *Widget) {
		c := b.Caption
		c.X = (w.Width - c.Width) / 2
		c.Y = (w.Height - c.Height) / 2
	})
	b.OnMouse = func(_ *Widget, ev MouseEvent) bool {
		if ev.Button != MouseButtonLeft || (ev.Phase != MouseClick && ev.Phase != MouseDoubleClick) {
			return false
		}
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return b
}

// Paint implements Painter.
func (b *Button) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	r := w.Bounds()
	fillRect(dst, r, b.Fill.WithAlpha(w.Alpha))
	strokeRect(dst, r, 1, Color{0.6, 0.6, 0.7, w.Alpha})
}
