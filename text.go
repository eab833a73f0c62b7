package guing

import (
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Font is the text face used by labels, the journal and chat bubbles.
type Font struct {
	Face text.Face
}

// NewFont creates a font of the given size from a face source. A nil source
// falls back to the built-in Go Regular face.
func NewFont(src *text.GoTextFaceSource, size float64) Font {
	if src == nil {
		src, _ = defaultFontSource()
	}
	if src == nil {
		return Font{}
	}
	return Font{Face: &text.GoTextFace{Source: src, Size: size}}
}

// Measure returns the rendered size of a single line.
func (f Font) Measure(s string) (w, h float64) {
	if f.Face == nil {
		return 0, 0
	}
	return text.Measure(s, f.Face, 0)
}

// LineHeight returns the distance between baselines.
func (f Font) LineHeight() float64 {
	if f.Face == nil {
		return 0
	}
	m := f.Face.Metrics()
	return math.Ceil(m.HAscent) + math.Ceil(m.HDescent) + math.Ceil(m.HLineGap)
}

// Draw renders one line with its top-left corner at (x, y).
func (f Font) Draw(dst *ebiten.Image, s string, x, y float64, c Color) {
	if f.Face == nil || dst == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	text.Draw(dst, s, f.Face, op)
}

// Wrap splits s into lines no wider than maxWidth. Words are kept intact
// when possible; a single word wider than maxWidth is broken across lines.
// Explicit newlines always start a new line.
func (f Font) Wrap(s string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if f.fits(cand, maxWidth) {
				cur = cand
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			if f.fits(w, maxWidth) {
				cur = w
				continue
			}
			var runes []rune
			for _, r := range w {
				runes = append(runes, r)
				if pw, _ := f.Measure(string(runes)); pw > maxWidth && len(runes) > 1 {
					lines = append(lines, string(runes[:len(runes)-1]))
					runes = runes[len(runes)-1:]
				}
			}
			cur = string(runes)
		}
		lines = append(lines, cur)
	}
	return lines
}

func (f Font) fits(s string, maxWidth float64) bool {
	w, _ := f.Measure(s)
	return w <= maxWidth
}
