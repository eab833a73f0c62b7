package guing

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite draws one of several atlas textures around an anchor point. The
// sprite owns its frame textures and removes them on Release.
type Sprite struct {
	frames  []*Texture
	current int

	HAlign, VAlign   Align
	OffsetX, OffsetY float64
	// Rotation in radians, clockwise around the anchor.
	Rotation float64
	Tint     Color

	op ebiten.DrawImageOptions
}

// NewSprite creates a sprite over the given frames, showing frame 0.
func NewSprite(frames ...*Texture) *Sprite {
	return &Sprite{frames: frames, Tint: ColorWhite}
}

// NumFrames returns the number of frames.
func (s *Sprite) NumFrames() int { return len(s.frames) }

// Frame returns the index of the displayed frame.
func (s *Sprite) Frame() int { return s.current }

// SetFrame selects the displayed frame. An index outside the frame list is a
// programming error and panics with ErrFrameIndex.
func (s *Sprite) SetFrame(i int) {
	if i < 0 || i >= len(s.frames) {
		panic(fmt.Errorf("frame %d of %d: %w", i, len(s.frames), ErrFrameIndex))
	}
	s.current = i
}

// Texture returns the texture of the displayed frame, or nil.
func (s *Sprite) Texture() *Texture {
	if s == nil || len(s.frames) == 0 {
		return nil
	}
	return s.frames[s.current]
}

// Size returns the untrimmed size of the displayed frame.
func (s *Sprite) Size() (w, h float64) {
	t := s.Texture()
	if t == nil {
		return 0, 0
	}
	return float64(t.region.OriginalW), float64(t.region.OriginalH)
}

// anchor returns how far the anchor sits from the sprite's top-left corner.
func (s *Sprite) anchor() (ax, ay float64) {
	w, h := s.Size()
	return s.HAlign.offset(w), s.VAlign.offset(h)
}

// Bounds returns the axis-aligned rectangle covered when the sprite is drawn
// at (x, y), ignoring rotation.
func (s *Sprite) Bounds(x, y float64) Rect {
	w, h := s.Size()
	ax, ay := s.anchor()
	return Rect{X: x + s.OffsetX - ax, Y: y + s.OffsetY - ay, Width: w, Height: h}
}

// Draw renders the current frame anchored at (x, y). A nil sprite or a frame
// whose atlas is not uploaded yet draws nothing.
func (s *Sprite) Draw(dst *ebiten.Image, x, y, alpha float64) {
	t := s.Texture()
	if t == nil || dst == nil {
		return
	}
	img := t.Image()
	if img == nil {
		return
	}
	r := t.region
	ax, ay := s.anchor()

	op := &s.op
	op.GeoM.Reset()
	if r.Rotated {
		// Stored 90 degrees clockwise: rotate back and shift down.
		op.GeoM.Rotate(-math.Pi / 2)
		op.GeoM.Translate(0, float64(r.Height))
	}
	op.GeoM.Translate(float64(r.OffsetX)-ax, float64(r.OffsetY)-ay)
	if s.Rotation != 0 {
		op.GeoM.Rotate(s.Rotation)
	}
	op.GeoM.Translate(x+s.OffsetX, y+s.OffsetY)

	op.ColorScale.Reset()
	a := float32(s.Tint.A * alpha)
	op.ColorScale.Scale(float32(s.Tint.R)*a, float32(s.Tint.G)*a, float32(s.Tint.B)*a, a)
	dst.DrawImage(img, op)
}

// Hit reports whether the point (px, py), relative to the anchor the sprite
// is drawn at, lands on an opaque pixel of the current frame.
func (s *Sprite) Hit(px, py float64) bool {
	t := s.Texture()
	if t == nil {
		return false
	}
	px -= s.OffsetX
	py -= s.OffsetY
	if s.Rotation != 0 {
		sin, cos := math.Sincos(-s.Rotation)
		px, py = px*cos-py*sin, px*sin+py*cos
	}
	ax, ay := s.anchor()
	lx := px + ax - float64(t.region.OffsetX)
	ly := py + ay - float64(t.region.OffsetY)
	if lx < 0 || ly < 0 {
		return false
	}
	return t.Opaque(int(lx), int(ly))
}

// Clone returns a sprite with the same settings and its own references on
// every frame.
func (s *Sprite) Clone() (*Sprite, error) {
	c := &Sprite{
		HAlign: s.HAlign, VAlign: s.VAlign,
		OffsetX: s.OffsetX, OffsetY: s.OffsetY,
		Rotation: s.Rotation, Tint: s.Tint,
		current: s.current,
	}
	for _, f := range s.frames {
		cf, err := f.Clone()
		if err != nil {
			c.Release()
			return nil, err
		}
		c.frames = append(c.frames, cf)
	}
	return c, nil
}

// Release removes every frame texture. Releasing twice is a no-op.
func (s *Sprite) Release() {
	if s == nil {
		return
	}
	for _, f := range s.frames {
		if !f.Removed() {
			f.Remove()
		}
	}
	s.frames = nil
	s.current = 0
}
