package guing

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Region describes a named sub-rectangle of an atlas image.
type Region struct {
	X, Y      int  // top-left corner within the atlas
	Width     int  // visual width (may differ from OriginalW if trimmed)
	Height    int  // visual height (may differ from OriginalH if trimmed)
	OriginalW int  // untrimmed width as authored
	OriginalH int  // untrimmed height as authored
	OffsetX   int  // horizontal trim offset
	OffsetY   int  // vertical trim offset
	Rotated   bool // stored 90 degrees clockwise in the atlas
}

// rect returns the rectangle the region occupies inside the atlas image.
func (r Region) rect() image.Rectangle {
	if r.Rotated {
		return image.Rect(r.X, r.Y, r.X+r.Height, r.Y+r.Width)
	}
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Atlas is one packed image plus its named regions. Atlases are owned by an
// AtlasStore and addressed through an AtlasHandle; callers never keep an
// *Atlas.
type Atlas struct {
	Name    string
	regions map[string]Region
	width   int
	height  int

	host     image.Image // decoded pixels, dropped after upload unless keepData
	keepData bool
	gpu      *ebiten.Image
	refs     int

	// OnUnload fires once, outside the store lock, when the load counter
	// drops to zero.
	OnUnload func(name string)
}

// Regions returns the region names. Order is unspecified.
func (a *Atlas) Regions() []string {
	names := make([]string, 0, len(a.regions))
	for n := range a.regions {
		names = append(names, n)
	}
	return names
}

// ParseAtlas parses TexturePacker JSON data. Both the hash format (a single
// "frames" object) and the array format ("textures" list) are accepted; the
// array format must describe exactly one page since an Atlas is one image.
func ParseAtlas(jsonData []byte) (map[string]Region, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("parse atlas JSON: %w", err)
	}

	regions := make(map[string]Region)
	switch {
	case probe.Textures != nil:
		var pages []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &pages); err != nil {
			return nil, fmt.Errorf("parse atlas textures array: %w", err)
		}
		if len(pages) != 1 {
			return nil, fmt.Errorf("parse atlas: %d pages, want 1", len(pages))
		}
		for name, f := range pages[0].Frames {
			regions[name] = frameToRegion(f)
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("parse atlas frames: %w", err)
		}
		for name, f := range frames {
			regions[name] = frameToRegion(f)
		}
	default:
		return nil, fmt.Errorf("parse atlas: JSON has neither \"frames\" nor \"textures\" key")
	}
	return regions, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func frameToRegion(f jsonFrame) Region {
	r := Region{
		X:         f.Frame.X,
		Y:         f.Frame.Y,
		Width:     f.Frame.W,
		Height:    f.Frame.H,
		OriginalW: f.SourceSize.W,
		OriginalH: f.SourceSize.H,
		OffsetX:   f.SpriteSourceSize.X,
		OffsetY:   f.SpriteSourceSize.Y,
		Rotated:   f.Rotated,
	}
	if r.OriginalW == 0 {
		r.OriginalW = r.Width
	}
	if r.OriginalH == 0 {
		r.OriginalH = r.Height
	}
	return r
}
