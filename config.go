package guing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Config holds the tunables of the GUI. It is stored as JSON next to the
// client's other settings.
type Config struct {
	DoubleClickMillis   int     `json:"doubleClickMillis"`
	DoubleClickDistance float64 `json:"doubleClickDistance"`
	DragDeadZone        float64 `json:"dragDeadZone"`
	InputQueueSize      int     `json:"inputQueueSize"`

	UIScale  float64 `json:"uiScale"`
	FontName string  `json:"fontName"`
	FontSize float64 `json:"fontSize"`

	InventorySlots   int     `json:"inventorySlots"`
	InventoryColumns int     `json:"inventoryColumns"`
	SlotSize         float64 `json:"slotSize"`

	// JournalMaxEntries caps stored messages; one message may wrap to
	// several lines.
	JournalMaxEntries int  `json:"journalMaxEntries"`
	JournalShowAge    bool `json:"journalShowAge"`

	BubbleLifetimeMillis int `json:"bubbleLifetimeMillis"`
	BubbleFadeMillis     int `json:"bubbleFadeMillis"`

	IndicatorMillis int  `json:"indicatorMillis"`
	FastDropBars    bool `json:"fastDropBars"`

	CommandsPerSecond float64 `json:"commandsPerSecond"`
	CommandBurst      int     `json:"commandBurst"`

	DecodeWorkers int    `json:"decodeWorkers"`
	StatePath     string `json:"statePath"`
	ScreenshotDir string `json:"screenshotDir"`

	Debug bool `json:"debug"`
}

// DefaultConfig returns the configuration used when no settings file exists.
func DefaultConfig() Config {
	return Config{
		DoubleClickMillis:    400,
		DoubleClickDistance:  4,
		DragDeadZone:         4,
		InputQueueSize:       256,
		UIScale:              1,
		FontName:             "default",
		FontSize:             14,
		InventorySlots:       30,
		InventoryColumns:     6,
		SlotSize:             36,
		JournalMaxEntries:    500,
		BubbleLifetimeMillis: 6000,
		BubbleFadeMillis:     800,
		IndicatorMillis:      350,
		FastDropBars:         true,
		CommandsPerSecond:    20,
		CommandBurst:         10,
		DecodeWorkers:        4,
		StatePath:            "gui.state",
		ScreenshotDir:        "screenshots",
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DoubleClickMillis <= 0 {
		c.DoubleClickMillis = d.DoubleClickMillis
	}
	if c.DoubleClickDistance <= 0 {
		c.DoubleClickDistance = d.DoubleClickDistance
	}
	if c.DragDeadZone <= 0 {
		c.DragDeadZone = d.DragDeadZone
	}
	if c.InputQueueSize <= 0 {
		c.InputQueueSize = d.InputQueueSize
	}
	if c.UIScale <= 0 {
		c.UIScale = d.UIScale
	}
	if c.FontName == "" {
		c.FontName = d.FontName
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.InventorySlots <= 0 {
		c.InventorySlots = d.InventorySlots
	}
	if c.InventoryColumns <= 0 {
		c.InventoryColumns = d.InventoryColumns
	}
	if c.SlotSize <= 0 {
		c.SlotSize = d.SlotSize
	}
	if c.JournalMaxEntries <= 0 {
		c.JournalMaxEntries = d.JournalMaxEntries
	}
	if c.BubbleLifetimeMillis <= 0 {
		c.BubbleLifetimeMillis = d.BubbleLifetimeMillis
	}
	if c.BubbleFadeMillis <= 0 {
		c.BubbleFadeMillis = d.BubbleFadeMillis
	}
	if c.IndicatorMillis <= 0 {
		c.IndicatorMillis = d.IndicatorMillis
	}
	if c.CommandsPerSecond <= 0 {
		c.CommandsPerSecond = d.CommandsPerSecond
	}
	if c.CommandBurst <= 0 {
		c.CommandBurst = d.CommandBurst
	}
	if c.DecodeWorkers <= 0 {
		c.DecodeWorkers = d.DecodeWorkers
	}
	if c.StatePath == "" {
		c.StatePath = d.StatePath
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	return c
}

// gesture returns the input coarsening thresholds.
func (c Config) gesture() GestureConfig {
	return GestureConfig{
		DoubleClickWindow:   time.Duration(c.DoubleClickMillis) * time.Millisecond,
		DoubleClickDistance: c.DoubleClickDistance,
		DragDeadZone:        c.DragDeadZone,
	}
}

// LoadConfig reads a JSON config file. A missing file is not an error and
// yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	// Fields missing from the file keep their defaults.
	c := DefaultConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c.withDefaults(), nil
}

// SaveConfig writes cfg as indented JSON.
func SaveConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
