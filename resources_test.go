package guing

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, atlasImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testResources(t *testing.T) FSResources {
	return FSResources{FS: fstest.MapFS{
		"atlas/items.json":  {Data: []byte(hashAtlasJSON)},
		"atlas/items.png":   {Data: pngBytes(t)},
		"atlas/broken.json": {Data: []byte(`not json`)},
		"sounds/click.wav":  {Data: []byte("RIFF")},
		"music/theme.ogg":   {Data: []byte("OggS")},
	}}
}

func TestFSResources(t *testing.T) {
	res := testResources(t)

	img, err := res.LoadImage("atlas/items.png")
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("image %v, want 8x8", b)
	}
	if data, err := res.LoadSound("click.wav"); err != nil || string(data) != "RIFF" {
		t.Errorf("LoadSound = %q, %v", data, err)
	}
	if data, err := res.LoadSong("theme.ogg"); err != nil || string(data) != "OggS" {
		t.Errorf("LoadSong = %q, %v", data, err)
	}
	if _, err := res.LoadData("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
	if _, err := res.LoadImage("atlas/items.json"); err == nil {
		t.Error("decoding JSON as an image should fail")
	}
}

func TestFSResourcesDefaultFont(t *testing.T) {
	res := testResources(t)
	a, err := res.LoadFont("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := res.LoadFont("default")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("the default font source should be parsed once")
	}
	if _, err := res.LoadFont("missing.ttf"); err == nil {
		t.Error("a missing font should fail")
	}
}

func TestAtlasStoreLoadAll(t *testing.T) {
	tasks := &TaskQueue{}
	s := NewAtlasStore(tasks, 2, nil)
	handles, err := s.LoadAll(context.Background(), testResources(t), []AtlasSpec{
		{Name: "items", JSONPath: "atlas/items.json", ImagePath: "atlas/items.png", KeepData: true},
		{Name: "broken", JSONPath: "atlas/broken.json", ImagePath: "atlas/items.png"},
		{Name: "gone", JSONPath: "atlas/gone.json", ImagePath: "atlas/gone.png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 1 {
		t.Fatalf("loaded %v, want only items", handles)
	}
	h, ok := handles["items"]
	if !ok || s.Loaded() != 1 {
		t.Fatal("items should be the one loaded atlas")
	}
	if tasks.Len() != 1 {
		t.Errorf("queued uploads = %d, want 1", tasks.Len())
	}
	if _, err := s.Texture(h, "sword.png"); err != nil {
		t.Errorf("Texture: %v", err)
	}
}

func TestAtlasStoreLoadAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewAtlasStore(&TaskQueue{}, 1, nil)
	handles, err := s.LoadAll(ctx, testResources(t), []AtlasSpec{
		{Name: "items", JSONPath: "atlas/items.json", ImagePath: "atlas/items.png"},
	})
	if !errors.Is(err, context.Canceled) || len(handles) != 0 {
		t.Errorf("LoadAll = %v, %v; want nothing loaded and context.Canceled", handles, err)
	}
}
