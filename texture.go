package guing

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Texture is a lightweight view of one atlas region. Each Texture holds one
// reference on its atlas until Remove is called.
type Texture struct {
	store  *AtlasStore
	handle AtlasHandle
	name   string
	region Region
	atlasW int
	atlasH int

	sub     *ebiten.Image
	mask    []byte
	removed bool
}

// Name returns the region name.
func (t *Texture) Name() string { return t.name }

// Region returns the region geometry.
func (t *Texture) Region() Region { return t.region }

// Atlas returns the handle of the owning atlas.
func (t *Texture) Atlas() AtlasHandle { return t.handle }

// Size returns the visual size of the region.
func (t *Texture) Size() (w, h int) { return t.region.Width, t.region.Height }

// UV returns the normalized texture coordinates of the region inside its
// atlas image.
func (t *Texture) UV() (u0, v0, u1, v1 float64) {
	if t.atlasW == 0 || t.atlasH == 0 {
		return 0, 0, 0, 0
	}
	r := t.region.rect()
	aw, ah := float64(t.atlasW), float64(t.atlasH)
	return float64(r.Min.X) / aw, float64(r.Min.Y) / ah, float64(r.Max.X) / aw, float64(r.Max.Y) / ah
}

// Image returns the region as a sub-image of the uploaded atlas, or nil
// while the upload task has not run yet. Must be called on the render thread.
func (t *Texture) Image() *ebiten.Image {
	if t.removed {
		return nil
	}
	if t.sub != nil {
		return t.sub
	}
	t.store.mu.Lock()
	a, err := t.store.lookup(t.handle)
	var gpu *ebiten.Image
	if err == nil {
		gpu = a.gpu
	}
	t.store.mu.Unlock()
	if gpu == nil {
		return nil
	}
	t.sub = gpu.SubImage(t.region.rect()).(*ebiten.Image)
	return t.sub
}

// Clone returns a new texture on the same region, taking another reference.
func (t *Texture) Clone() (*Texture, error) {
	if t.removed {
		panic(fmt.Errorf("clone %q: %w", t.name, ErrTextureReleased))
	}
	c, err := t.store.Texture(t.handle, t.name)
	if err != nil {
		return nil, err
	}
	c.mask = t.mask
	return c, nil
}

// Remove releases the texture's atlas reference. Calling Remove twice is a
// programming error and panics with ErrTextureReleased.
func (t *Texture) Remove() {
	if t.removed {
		panic(fmt.Errorf("remove %q: %w", t.name, ErrTextureReleased))
	}
	t.removed = true
	t.sub = nil
	if err := t.store.Release(t.handle); err != nil {
		t.store.log.Warn("texture release failed", zap.String("region", t.name), zap.Error(err))
	}
}

// Removed reports whether Remove was called.
func (t *Texture) Removed() bool { return t.removed }

// maskLen returns the number of bytes a one-bit-per-pixel mask needs.
func (t *Texture) maskLen() int {
	n := t.region.Width * t.region.Height
	return (n + 7) / 8
}

// SetTransparencyMask installs a one-bit-per-pixel opacity mask in row-major
// order, least significant bit first. bits must hold exactly
// ceil(width*height/8) bytes.
func (t *Texture) SetTransparencyMask(bits []byte) error {
	if len(bits) != t.maskLen() {
		return fmt.Errorf("mask for %q: got %d bytes, want %d: %w", t.name, len(bits), t.maskLen(), ErrMaskSize)
	}
	t.mask = bits
	return nil
}

// BuildMask derives the opacity mask from the atlas host pixels: any pixel
// with non-zero alpha is opaque. It fails with ErrNoHostData when the atlas
// was uploaded without keepData.
func (t *Texture) BuildMask() error {
	t.store.mu.Lock()
	a, err := t.store.lookup(t.handle)
	var host image.Image
	if err == nil {
		host = a.host
	}
	t.store.mu.Unlock()
	if err != nil {
		return err
	}
	if host == nil {
		return fmt.Errorf("mask for %q: %w", t.name, ErrNoHostData)
	}

	r := t.region
	bits := make([]byte, t.maskLen())
	origin := host.Bounds().Min
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			// Rotated regions are stored 90 degrees clockwise.
			px, py := r.X+x, r.Y+y
			if r.Rotated {
				px, py = r.X+r.Height-1-y, r.Y+x
			}
			_, _, _, alpha := host.At(origin.X+px, origin.Y+py).RGBA()
			if alpha == 0 {
				continue
			}
			i := y*r.Width + x
			bits[i/8] |= 1 << (i % 8)
		}
	}
	t.mask = bits
	return nil
}

// HasMask reports whether a transparency mask is installed.
func (t *Texture) HasMask() bool { return t.mask != nil }

// Opaque reports whether the pixel at (x, y), relative to the region's
// top-left corner, is opaque. Without a mask every in-bounds pixel is.
func (t *Texture) Opaque(x, y int) bool {
	r := t.region
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return false
	}
	if t.mask == nil {
		return true
	}
	i := y*r.Width + x
	return t.mask[i/8]&(1<<(i%8)) != 0
}
