package guing

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Indicator is a horizontal bar (health, balance, spirit) whose displayed
// value eases toward the target. With FastDrop set, decreases are shown
// immediately so damage is never hidden behind an animation.
type Indicator struct {
	*Widget
	Fill       Color
	Background Color
	FastDrop   bool

	target   float64 // 0..1
	shown    float64 // 0..1, animated
	duration int64
	tween    *Tween
}

// NewIndicator creates a full bar.
func NewIndicator(name string, width, height float64, fill Color, cfg Config) *Indicator {
	ind := &Indicator{
		Widget:     NewWidget(name, width, height),
		Fill:       fill,
		Background: Color{0.1, 0.1, 0.1, 0.8},
		FastDrop:   cfg.FastDropBars,
		target:     1,
		shown:      1,
		duration:   int64(cfg.IndicatorMillis),
	}
	ind.Painter = ind
	ind.OnHide = func(*Widget) {
		// Hidden bars do not animate; show the final value when they return.
		ind.tween = nil
		ind.shown = ind.target
	}
	return ind
}

// Value returns the target fraction.
func (ind *Indicator) Value() float64 { return ind.target }

// Displayed returns the fraction currently drawn.
func (ind *Indicator) Displayed() float64 { return ind.shown }

// Set changes the target fraction, clamped to [0, 1].
func (ind *Indicator) Set(v float64) {
	v = clamp01(v)
	if v == ind.target {
		return
	}
	ind.target = v
	if ind.tween != nil {
		ind.tween.Stop()
		ind.tween = nil
	}
	if (ind.FastDrop && v < ind.shown) || !ind.Shown() {
		ind.shown = v
		return
	}
	ind.tween = ind.Animate(TweenValue(ind.Widget, &ind.shown, v, ind.duration, ease.OutQuad))
}

// SetRatio sets the target from a current/maximum pair, as the server
// reports them.
func (ind *Indicator) SetRatio(cur, maximum int) {
	if maximum <= 0 {
		ind.Set(0)
		return
	}
	ind.Set(float64(cur) / float64(maximum))
}

// Paint implements Painter.
func (ind *Indicator) Paint(dst *ebiten.Image, w *Widget, _ int64) {
	b := w.Bounds()
	fillRect(dst, b, ind.Background.WithAlpha(w.Alpha))
	fb := b
	fb.Width *= clamp01(ind.shown)
	fillRect(dst, fb, ind.Fill.WithAlpha(w.Alpha))
	strokeRect(dst, b, 1, Color{0, 0, 0, w.Alpha})
}
