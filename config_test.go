package guing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gui.json")
	if err := os.WriteFile(path, []byte(`{"fontSize": 20, "doubleClickMillis": -1, "debug": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FontSize != 20 || !cfg.Debug {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.DoubleClickMillis != 400 {
		t.Errorf("invalid value should fall back, DoubleClickMillis = %d", cfg.DoubleClickMillis)
	}
	if !cfg.FastDropBars || cfg.InventorySlots != 30 {
		t.Error("fields absent from the file should keep their defaults")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gui.json")
	if err := os.WriteFile(path, []byte(`{"fontSize": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("err = %v, want a parse error", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gui.json")
	want := DefaultConfig()
	want.UIScale = 1.5
	want.JournalShowAge = true
	if err := SaveConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestConfigGesture(t *testing.T) {
	g := DefaultConfig().gesture()
	if g.DoubleClickWindow != 400*time.Millisecond || g.DragDeadZone != 4 {
		t.Errorf("gesture config = %+v", g)
	}
}
