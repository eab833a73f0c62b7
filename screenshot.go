package guing

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Screenshot queues a labeled capture of the frame drawn by the next
// DrawFrame. Files land in Config.ScreenshotDir as
// <timestamp>_<n>_<label>.png. Render thread only.
func (g *GUI) Screenshot(label string) {
	g.screenshots = append(g.screenshots, label)
}

// flushScreenshots reads the finished frame back once and hands the pixels
// to a writer goroutine, so PNG encoding never stalls the frame.
func (g *GUI) flushScreenshots(screen *ebiten.Image) {
	if len(g.screenshots) == 0 || screen == nil {
		return
	}
	labels := append([]string(nil), g.screenshots...)
	g.screenshots = g.screenshots[:0]

	img := readFrame(screen)
	stamp := time.Now().Format("20060102_150405")
	dir := g.cfg.ScreenshotDir
	log := g.log.With(zap.String("dir", dir))

	g.shots.Add(1)
	go func() {
		defer g.shots.Done()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("screenshot directory unavailable", zap.Error(err))
			return
		}
		for i, label := range labels {
			name := fmt.Sprintf("%s_%02d_%s.png", stamp, i, sanitizeLabel(label))
			if err := writePNG(filepath.Join(dir, name), img); err != nil {
				log.Warn("screenshot failed", zap.String("label", label), zap.Error(err))
				continue
			}
			log.Debug("screenshot written", zap.String("file", name))
		}
	}()
}

// WaitScreenshots blocks until queued screenshot files are written.
func (g *GUI) WaitScreenshots() {
	g.shots.Wait()
}

// readFrame copies the screen into a straight-alpha image. Ebitengine hands
// back premultiplied pixels.
func readFrame(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(img.Pix)
	for px := img.Pix; len(px) >= 4; px = px[4:] {
		a := int(px[3])
		if a == 0 || a == 255 {
			continue
		}
		for c := range 3 {
			px[c] = uint8(min(int(px[c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel maps a label (or character name) to a file-name-safe ASCII
// string. Every other rune becomes an underscore; blank labels become
// "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
