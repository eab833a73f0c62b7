package guing

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Resources loads client assets. Implementations must be safe for
// concurrent use since atlases decode in parallel.
type Resources interface {
	LoadData(name string) ([]byte, error)
	LoadImage(name string) (image.Image, error)
	LoadFont(name string) (*text.GoTextFaceSource, error)
	LoadSound(name string) ([]byte, error)
	LoadSong(name string) ([]byte, error)
}

// FSResources serves assets from a file system with a fixed layout:
// fonts/, sounds/ and music/ below the root, everything else by path.
type FSResources struct {
	FS fs.FS
}

// LoadData implements Resources.
func (r FSResources) LoadData(name string) ([]byte, error) {
	data, err := fs.ReadFile(r.FS, name)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return data, nil
}

// LoadImage implements Resources. PNG, JPEG and GIF are supported.
func (r FSResources) LoadImage(name string) (image.Image, error) {
	data, err := r.LoadData(name)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", name, err)
	}
	return img, nil
}

// LoadFont implements Resources. The name "default" always resolves to the
// built-in Go Regular face.
func (r FSResources) LoadFont(name string) (*text.GoTextFaceSource, error) {
	if name == "" || name == "default" {
		return defaultFontSource()
	}
	data, err := r.LoadData(path.Join("fonts", name))
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", name, err)
	}
	return src, nil
}

// LoadSound implements Resources. Sounds are returned undecoded.
func (r FSResources) LoadSound(name string) ([]byte, error) {
	return r.LoadData(path.Join("sounds", name))
}

// LoadSong implements Resources. Songs are returned undecoded.
func (r FSResources) LoadSong(name string) ([]byte, error) {
	return r.LoadData(path.Join("music", name))
}

var (
	defaultFontOnce sync.Once
	defaultFont     *text.GoTextFaceSource
	defaultFontErr  error
)

// defaultFontSource parses the embedded Go Regular font once.
func defaultFontSource() (*text.GoTextFaceSource, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
	return defaultFont, defaultFontErr
}
