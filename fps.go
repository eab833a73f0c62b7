package guing

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const fpsRefreshMillis = 500

// NewFPSWidget creates a debug overlay showing the current FPS and TPS. The
// text is re-rendered about twice a second into a private image.
func NewFPSWidget() *Widget {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	w := NewWidget("fps", 100, 32)
	w.PassThrough = true

	var img *ebiten.Image
	var sinceUpdate int64 = fpsRefreshMillis
	w.Painter = PainterFunc(func(dst *ebiten.Image, w *Widget, deltaMillis int64) {
		if img == nil {
			img = ebiten.NewImage(100, 32)
		}
		sinceUpdate += deltaMillis
		if sinceUpdate >= fpsRefreshMillis {
			sinceUpdate = 0
			img.Clear()
			img.Fill(color.RGBA{0, 0, 0, 128})
			ebitenutil.DebugPrint(img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
		}
		op := &ebiten.DrawImageOptions{}
		x, y := w.Absolute()
		op.GeoM.Translate(x, y)
		dst.DrawImage(img, op)
	})
	w.OnDispose = func(*Widget) {
		if img != nil {
			img.Deallocate()
			img = nil
		}
	}
	return w
}
